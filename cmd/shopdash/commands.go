package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/common-nighthawk/go-figure"

	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/orders"
	"github.com/angelmondragon/shopdash/internal/products"
	"github.com/angelmondragon/shopdash/internal/render"
	"github.com/angelmondragon/shopdash/internal/session"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/types"
)

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login", e)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email, err = e.prompt("Email", *email); err != nil {
		return err
	}
	if *password, err = e.prompt("Password", *password); err != nil {
		return err
	}
	return e.finishAuth(ctx, e.app.Session.Login(ctx, *email, *password))
}

func runRegister(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("register", e)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (min 6 characters)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *name, err = e.prompt("Name", *name); err != nil {
		return err
	}
	if *email, err = e.prompt("Email", *email); err != nil {
		return err
	}
	if *password, err = e.prompt("Password", *password); err != nil {
		return err
	}
	return e.finishAuth(ctx, e.app.Session.Register(ctx, *name, *email, *password))
}

// finishAuth reports the result and, like landing on the dashboard after
// signing in, loads the store list so a store gets selected.
func (e *env) finishAuth(ctx context.Context, res session.Result) error {
	if !res.Success {
		e.out.Line(res.Message)
		return errReported
	}
	if user := e.app.Session.User(); user != nil {
		e.out.Line("Signed in as %s <%s>", user.Name, user.Email)
	}
	// a failed load raises its own notice and does not undo the sign-in
	if err := e.app.Stores.Fetch(ctx); err == nil {
		if selected := e.app.Session.SelectedTenant(); selected != nil {
			e.out.Line("Current store: %s", selected.DisplayName())
		}
	}
	return nil
}

func runLogout(ctx context.Context, e *env, _ []string) error {
	if err := e.app.Session.Logout(ctx); err != nil {
		return err
	}
	e.out.Line("Signed out")
	return nil
}

func runWhoami(_ context.Context, e *env, _ []string) error {
	if err := e.requireSignedIn(); err != nil {
		return err
	}
	snap := e.app.Session.Snapshot()
	if snap.User != nil {
		e.out.Line("%s <%s>", snap.User.Name, snap.User.Email)
	}
	if snap.SelectedTenant != nil {
		e.out.Line("Store: %s", snap.SelectedTenant.DisplayName())
	} else {
		e.out.Line(render.NoStoreSelected)
	}
	if exp, ok := e.app.Session.TokenExpiry(); ok {
		e.out.Line("Token expires: %s", render.DateTime(&exp))
	}
	return nil
}

func runStores(ctx context.Context, e *env, args []string) error {
	if err := e.requireSignedIn(); err != nil {
		return err
	}
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	dir := e.app.Stores
	switch sub {
	case "list":
		if err := dir.Fetch(ctx); err != nil {
			return err
		}
		e.renderStores()
		return nil

	case "select":
		id, err := argID(args, "stores select ID")
		if err != nil {
			return err
		}
		if err := dir.Fetch(ctx); err != nil {
			return err
		}
		tenant, ok := dir.Find(id)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("store %s not found", id))
		}
		if err := e.app.Session.SelectTenant(ctx, &tenant); err != nil {
			return err
		}
		e.out.Line("Selected %s", tenant.DisplayName())
		return nil

	case "delete":
		id, err := argID(args, "stores delete ID")
		if err != nil {
			return err
		}
		if err := dir.Fetch(ctx); err != nil {
			return err
		}
		if err := dir.Delete(ctx, id); err != nil {
			return err
		}
		e.renderStores()
		return nil

	case "sync":
		var id types.ID
		if len(args) > 0 {
			id = types.ID(strings.TrimSpace(args[0]))
		} else if selected := e.app.Session.SelectedTenant(); selected != nil {
			id = selected.ID
		}
		if id.IsZero() {
			e.out.NoStore()
			return errReported
		}
		if err := dir.Sync(ctx, id); err != nil {
			return err
		}
		e.renderStores()
		return nil

	case "connect":
		return e.connectStore(ctx, args)

	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown stores action %q", sub))
	}
}

func (e *env) renderStores() {
	var selected types.ID
	if t := e.app.Session.SelectedTenant(); t != nil {
		selected = t.ID
	}
	e.out.Tenants(e.app.Stores.Tenants(), selected)
}

func (e *env) connectStore(ctx context.Context, args []string) error {
	fs := newFlagSet("stores connect", e)
	wait := fs.Bool("wait", false, "serve the return URL and wait for the install to finish")
	shop, rest := splitPositional(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if shop == "" && fs.NArg() > 0 {
		shop = fs.Arg(0)
	}

	link, err := e.app.Stores.ConnectURL(ctx, shop)
	if err != nil {
		return err
	}
	e.out.Line("Open this URL to install the app on %s:", strings.ToLower(strings.TrimSpace(shop)))
	e.out.Line("  %s", link)
	if !*wait {
		return nil
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var connected atomic.Bool
	srv := e.app.CallbackServer(func(ok bool) {
		if ok {
			connected.Store(true)
			cancel()
		}
	})
	e.out.Line("Waiting for the store to connect on http://%s%s ...", e.app.Config.Callback.Addr, e.app.Config.Callback.Path)
	if err := srv.ListenAndServe(waitCtx); err != nil {
		return err
	}
	if !connected.Load() {
		return ctx.Err()
	}
	e.renderStores()
	return nil
}

func runDashboard(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("dashboard", e)
	start := fs.String("start", "", "range start (YYYY-MM-DD)")
	end := fs.String("end", "", "range end (YYYY-MM-DD)")
	resync := fs.Bool("sync", false, "resync the store, then reload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.requireSignedIn(); err != nil {
		return err
	}

	dash := e.app.Dashboard
	if *start != "" || *end != "" {
		rng := dash.State().Range
		if err := overrideRange(&rng, *start, *end); err != nil {
			return err
		}
		// no tenant is set yet, so this only validates and stores the range
		if err := dash.SetDateRange(ctx, rng); err != nil {
			return err
		}
	}

	tenant := e.loadStores(ctx)
	if tenant == nil {
		e.out.NoStore()
		return nil
	}
	e.app.Mount(dash)

	err := dash.SetTenant(ctx, tenant)
	if err == nil && *resync {
		err = dash.Sync(ctx)
	}
	e.out.Line("Store: %s", tenant.DisplayName())
	e.out.Dashboard(dash.State())
	return err
}

func runCustomers(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("customers", e)
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "search customers by name or email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.requireSignedIn(); err != nil {
		return err
	}

	ctrl := e.app.Customers
	tenant := e.loadStores(ctx)
	ctrl.Prepare(tenant)
	if tenant == nil {
		e.out.NoStore()
		return nil
	}
	e.app.Mount(ctrl)

	var err error
	if strings.TrimSpace(*search) != "" {
		err = ctrl.Search(ctx, *search)
	} else {
		err = ctrl.SetPage(ctx, *page)
	}
	st := ctrl.State()
	e.out.Customers(st.Items, st.CurrentPage, st.TotalPages)
	return err
}

func runOrders(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("orders", e)
	page := fs.Int("page", 1, "page number")
	start := fs.String("start", "", "range start (YYYY-MM-DD)")
	end := fs.String("end", "", "range end (YYYY-MM-DD)")
	status := fs.String("status", orders.StatusAll, "financial status: "+strings.Join(orders.Statuses, ", "))
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.requireSignedIn(); err != nil {
		return err
	}

	ctrl := e.app.Orders
	filters := ctrl.State().Filters
	if err := overrideRange(&filters.Range, *start, *end); err != nil {
		return err
	}
	filters.Status = strings.ToLower(strings.TrimSpace(*status))
	// applied before a tenant is set, so nothing is requested yet
	if err := ctrl.ApplyFilters(ctx, filters); err != nil {
		return err
	}

	tenant := e.loadStores(ctx)
	ctrl.Prepare(tenant)
	if tenant == nil {
		e.out.NoStore()
		return nil
	}
	e.app.Mount(ctrl)

	err := ctrl.SetPage(ctx, *page)
	st := ctrl.State()
	e.out.Line("Orders %s to %s (%s)", st.Filters.Range.Start, st.Filters.Range.End, st.Filters.Status)
	e.out.Orders(st.Items, st.CurrentPage, st.TotalPages)
	return err
}

func runProducts(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("products", e)
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "filter products by title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.requireSignedIn(); err != nil {
		return err
	}

	ctrl := e.app.Products
	if err := ctrl.ApplyFilters(ctx, products.SearchFilters(*search)); err != nil {
		return err
	}

	tenant := e.loadStores(ctx)
	ctrl.Prepare(tenant)
	if tenant == nil {
		e.out.NoStore()
		return nil
	}
	e.app.Mount(ctrl)

	err := ctrl.SetPage(ctx, *page)
	st := ctrl.State()
	e.out.Products(st.Items, st.CurrentPage, st.TotalPages)
	return err
}

func runServe(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("serve", e)
	quiet := fs.Bool("quiet", false, "skip the banner")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*quiet {
		figure.NewFigure(serviceName, "cybermedium", true).Print()
		fmt.Fprintln(e.raw)
	}

	srv := e.app.CallbackServer(func(bool) {
		e.out.Notices(e.app.Notices.Drain())
	})
	cfg := e.app.Config
	e.out.Line("Listening on http://%s (return path %s, metrics /metrics)", cfg.Callback.Addr, cfg.Callback.Path)
	return srv.ListenAndServe(ctx)
}

// loadStores refreshes the store list the way every screen does on open and
// returns the selected store, if any.
func (e *env) loadStores(ctx context.Context) *models.Tenant {
	// a failed load keeps the persisted selection and raises a notice
	_ = e.app.Stores.Fetch(ctx)
	return e.app.Session.SelectedTenant()
}

func overrideRange(rng *types.DateRange, start, end string) error {
	if start != "" {
		d, err := types.ParseDate(start)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid --start date")
		}
		rng.Start = d
	}
	if end != "" {
		d, err := types.ParseDate(end)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid --end date")
		}
		rng.End = d
	}
	return nil
}

func argID(args []string, usage string) (types.ID, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "usage: shopdash "+usage)
	}
	return types.ID(strings.TrimSpace(args[0])), nil
}

// splitPositional lets a leading positional argument precede flags.
func splitPositional(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}
