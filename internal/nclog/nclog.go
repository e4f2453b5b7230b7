// Package nclog centralizes this module's structured-logging construction,
// so that every package takes a *slog.Logger built the same way, the way
// dhcpsvc.Config.Logger is built once at the top and threaded down.
package nclog

import (
	"context"
	"log/slog"
	"os"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// Format is a logger's output encoding.
type Format string

// Format values.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New returns a *slog.Logger writing to os.Stderr at the given level and
// format.
func New(format Format, level slog.Level) (l *slog.Logger) {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch format {
	case FormatJSON:
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		h = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(h)
}

// Discard returns a logger that drops everything written to it, for tests
// and dry-run invocations.
func Discard() (l *slog.Logger) {
	return slogutil.NewDiscardLogger()
}

// RecoverAndLog recovers from a panic in the calling goroutine and logs it
// to l, re-raising nothing: the caller returns normally afterward.  Used at
// the top of long-running goroutines the way dhcpsvc.netInterface.handle
// uses it.  It must be deferred directly, and it calls recover itself, since
// recover has no effect when called from a function nested below the deferred
// one.
func RecoverAndLog(ctx context.Context, l *slog.Logger) {
	v := recover()
	if v == nil {
		return
	}

	l.ErrorContext(ctx, "recovered from panic", "value", v)
}
