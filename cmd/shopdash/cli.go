package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/angelmondragon/shopdash/internal/app"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/internal/render"
	"github.com/angelmondragon/shopdash/pkg/config"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitLoggedOut = 2

	sessionExpiredMessage = "Session expired, run `shopdash login`"
)

// errReported marks a failure whose message already reached the terminal.
var errReported = errors.New("reported")

type env struct {
	app *app.App
	out *render.Renderer
	in  *bufio.Reader
	raw io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, e *env, args []string) error
	// auth commands are allowed to see a 401 without it counting as expiry
	auth bool
}

var commands = map[string]command{
	"login":     {usage: "login [--email E] [--password P]", run: runLogin, auth: true},
	"register":  {usage: "register [--name N] [--email E] [--password P]", run: runRegister, auth: true},
	"logout":    {usage: "logout", run: runLogout},
	"whoami":    {usage: "whoami", run: runWhoami},
	"stores":    {usage: "stores [list|select ID|delete ID|sync [ID]|connect SHOP [--wait]]", run: runStores},
	"dashboard": {usage: "dashboard [--start YYYY-MM-DD --end YYYY-MM-DD] [--sync]", run: runDashboard},
	"customers": {usage: "customers [--page N] [--search Q]", run: runCustomers},
	"orders":    {usage: "orders [--page N] [--start D --end D] [--status S]", run: runOrders},
	"products":  {usage: "products [--page N] [--search Q]", run: runProducts},
	"serve":     {usage: "serve [--quiet]", run: runServe},
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, args []string, in io.Reader, out io.Writer) int {
	return runWith(ctx, cfg, logg, app.Options{}, args, in, out)
}

func runWith(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts app.Options, args []string, in io.Reader, out io.Writer) int {
	r := render.New(out)
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(r)
		if len(args) == 0 {
			return exitFailure
		}
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		r.Line("unknown command %q", args[0])
		usage(r)
		return exitFailure
	}

	ctx = logg.WithField(ctx, "command", args[0])
	a, err := app.New(ctx, cfg, logg, opts)
	if err != nil {
		logg.Error(ctx, "failed to start", err)
		r.Line("error: %v", err)
		return exitFailure
	}
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(ctx, "closing session store", err)
		}
	}()

	e := &env{app: a, out: r, in: bufio.NewReader(in), raw: out}
	err = cmd.run(ctx, e, args[1:])

	notices := a.Notices.Drain()
	r.Notices(notices)

	if a.SessionExpired() && !cmd.auth {
		r.Line(sessionExpiredMessage)
		return exitLoggedOut
	}
	if err == nil {
		return exitOK
	}
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if !errors.Is(err, errReported) && !hasErrorNotice(notices) {
		r.Line("error: %v", err)
	}
	return exitFailure
}

func usage(r *render.Renderer) {
	r.Line("usage: shopdash <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.Line("  %s", commands[name].usage)
	}
}

func hasErrorNotice(notices []notify.Notice) bool {
	for _, n := range notices {
		if n.Level == notify.LevelError {
			return true
		}
	}
	return false
}

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.raw)
	return fs
}

// prompt returns value when set, otherwise asks on stdin.
func (e *env) prompt(label, value string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	fmt.Fprintf(e.raw, "%s: ", label)
	line, err := e.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// requireSignedIn stops a command early instead of letting the backend
// reject an anonymous request.
func (e *env) requireSignedIn() error {
	if e.app.Session.IsAuthenticated() {
		return nil
	}
	e.out.Line("Not signed in. Run `shopdash login` first.")
	return errReported
}
