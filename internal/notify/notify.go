// Package notify surfaces user-facing notices (toasts) raised by the session,
// tenant, listing and dashboard components.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/google/uuid"
)

// Level classifies a notice for presentation.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one transient message for the user.
type Notice struct {
	ID      uuid.UUID
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notices.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NewNotice stamps a notice with an id and the current time.
func NewNotice(level Level, message string) Notice {
	return Notice{
		ID:      uuid.New(),
		Level:   level,
		Message: message,
		At:      time.Now().UTC(),
	}
}

func Info(ctx context.Context, n Notifier, message string) {
	send(ctx, n, LevelInfo, message)
}

func Success(ctx context.Context, n Notifier, message string) {
	send(ctx, n, LevelSuccess, message)
}

func Warning(ctx context.Context, n Notifier, message string) {
	send(ctx, n, LevelWarning, message)
}

func Error(ctx context.Context, n Notifier, message string) {
	send(ctx, n, LevelError, message)
}

func send(ctx context.Context, n Notifier, level Level, message string) {
	if n == nil {
		return
	}
	n.Notify(ctx, NewNotice(level, message))
}

// LogNotifier writes notices to the structured logger.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogNotifier{logg: logg}
}

func (l *LogNotifier) Notify(ctx context.Context, notice Notice) {
	ctx = l.logg.WithFields(ctx, map[string]any{
		"notice_id":    notice.ID.String(),
		"notice_level": string(notice.Level),
	})
	switch notice.Level {
	case LevelError:
		l.logg.Error(ctx, notice.Message, nil)
	case LevelWarning:
		l.logg.Warn(ctx, notice.Message)
	default:
		l.logg.Info(ctx, notice.Message)
	}
}

// Recorder keeps notices in memory; the CLI drains it after each command.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Drain returns and forgets the recorded notices.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Messages lists recorded messages at the given level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, n := range r.Notices() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

// Multi fans a notice out to every non-nil notifier.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, notice Notice) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, notice)
		}
	}
}
