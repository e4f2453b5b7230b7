// Command netreconciled loads a desired-state document and runs one
// reconcile pass against a stub backend.  Real netlink querying and backend
// application are the excluded collaborators spec.md names as external; this
// binary exists to exercise the pipeline end to end, not to be a production
// daemon.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/netreconcile/internal/aghalg"
	"github.com/AdguardTeam/netreconcile/internal/engineconfig"
	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"github.com/AdguardTeam/netreconcile/internal/nclog"
	"github.com/AdguardTeam/netreconcile/internal/reconcile"
	"github.com/AdguardTeam/netreconcile/internal/schema"
)

func main() {
	conf := &engineconfig.Config{
		ApplyTimeout: 30 * time.Second,
		LogFormat:    nclog.FormatText,
		LogLevel:     int(slog.LevelInfo),
	}

	if len(os.Args) > 1 {
		conf.DesiredStatePath = os.Args[1]
	}

	if err := conf.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "usage: netreconciled <desired-state.yaml>\n")
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", err)
		os.Exit(1)
	}

	logger := nclog.New(conf.LogFormat, slog.Level(conf.LogLevel))

	ctx := context.Background()
	defer nclog.RecoverAndLog(ctx, logger)

	if err := run(ctx, conf, logger); err != nil {
		logger.ErrorContext(ctx, "reconcile failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *engineconfig.Config, logger *slog.Logger) (err error) {
	raw, err := os.ReadFile(conf.DesiredStatePath)
	if err != nil {
		return fmt.Errorf("reading desired state: %w", err)
	}

	doc, err := schema.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing desired state: %w", err)
	}

	r := reconcile.New(&reconcile.Config{
		Querier:      &noOpQuerier{},
		Backend:      &loggingBackend{logger: logger},
		Logger:       logger,
		Clock:        timeutil.SystemClock{},
		ApplyTimeout: conf.ApplyTimeout,
	})

	res, err := r.Reconcile(ctx, doc.Interfaces, doc.DNS)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	logger.InfoContext(ctx, "reconcile finished", "applied", res.Applied, "mismatches", len(res.Mismatches))

	byInterface := mismatchesByInterface(res.Mismatches)
	byInterface.Range(func(name string, msgs []string) (cont bool) {
		for _, msg := range msgs {
			logger.WarnContext(ctx, "mismatch", "interface", name, "detail", msg)
		}

		return true
	})

	return nil
}

// mismatchesByInterface groups mismatches by interface name, in a map that
// reports them back out in sorted key order regardless of reconcile's
// internal ordering.
func mismatchesByInterface(mismatches []*ncerrors.MismatchError) (m *aghalg.SortedMap[string, []string]) {
	m = aghalg.NewSortedMap[string, []string]()
	for _, mm := range mismatches {
		existing, _ := m.Get(mm.Interface)
		m.Set(mm.Interface, append(existing, mm.Error()))
	}

	return m
}

// noOpQuerier is a stand-in [reconcile.NetworkStateQuerier] reporting an
// empty network: the real netlink-backed querier is an external
// collaborator this module does not implement.
type noOpQuerier struct{}

func (*noOpQuerier) Query(context.Context) (cur *reconcile.CurrentState, err error) {
	return &reconcile.CurrentState{}, nil
}

// loggingBackend is a stand-in [reconcile.BackendAdapter] that logs the
// for-apply view instead of touching any real network stack. The apply
// deadline is the Reconciler's concern, not this stub's; it just honors
// whatever context it's handed.
type loggingBackend struct {
	logger *slog.Logger
}

func (b *loggingBackend) Apply(ctx context.Context, ifaces []*ifacemerge.BaseInterface) (err error) {
	for _, iface := range ifaces {
		b.logger.InfoContext(ctx, "would apply", "interface", iface.Name, "kind", iface.Kind)
	}

	return nil
}
