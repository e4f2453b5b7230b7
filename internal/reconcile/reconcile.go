// Package reconcile wires the merge core, the DNS placement engine, and a
// caller-supplied backend adapter into the full reconciliation loop of
// spec.md §1: query current state, merge it against desired, hand the
// for-apply view to the backend, re-query, and verify against the for-verify
// view.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/AdguardTeam/netreconcile/internal/aghalg"
	"github.com/AdguardTeam/netreconcile/internal/dnsplace"
	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"github.com/AdguardTeam/netreconcile/internal/verify"
)

// CurrentState is a snapshot of queried current state: the interface set and
// the DNS configuration currently in effect.
type CurrentState struct {
	// Interfaces is the queried interface list, keyed by nothing in
	// particular; [ifacemerge.Set] assigns them identity by (name, kind).
	Interfaces []*ifacemerge.BaseInterface

	// DNS is the DNS configuration currently in effect, reconstructed from
	// whichever interfaces hold it.
	DNS dnsplace.GlobalConfig
}

// NetworkStateQuerier queries the backend for its current network state.
type NetworkStateQuerier interface {
	// Query returns the current state of the network.
	Query(ctx context.Context) (cur *CurrentState, err error)
}

// BackendAdapter applies a for-apply interface set to the backend.
type BackendAdapter interface {
	// Apply applies ifaces, returning an [ncerrors.ErrPluginFailure]-wrapped
	// error on any backend-reported failure.
	Apply(ctx context.Context, ifaces []*ifacemerge.BaseInterface) (err error)
}

// Config is the configuration for a [Reconciler].
type Config struct {
	// Querier retrieves the current network state.  It must not be nil.
	Querier NetworkStateQuerier

	// Backend applies the merged for-apply state.  It must not be nil.
	Backend BackendAdapter

	// Logger logs reconcile events.  It must not be nil.
	Logger *slog.Logger

	// Clock supplies the current time, overridable in tests.  It must not be
	// nil.
	Clock timeutil.Clock

	// ApplyTimeout bounds the backend's Apply call; it does not bound the
	// whole reconcile, per §5.  It must be positive.
	ApplyTimeout time.Duration
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (conf *Config) Validate() (err error) {
	if conf == nil {
		return errors.ErrNoValue
	}

	return errors.Join(
		validate.NotNilInterface("Querier", conf.Querier),
		validate.NotNilInterface("Backend", conf.Backend),
		validate.NotNil("Logger", conf.Logger),
		validate.NotNilInterface("Clock", conf.Clock),
		validate.Positive("ApplyTimeout", conf.ApplyTimeout),
	)
}

// Reconciler runs the reconcile loop against a configured backend.
type Reconciler struct {
	querier      NetworkStateQuerier
	backend      BackendAdapter
	logger       *slog.Logger
	clock        timeutil.Clock
	applyTimeout time.Duration

	// lastDNS is the DNS configuration placed on the previous successful
	// reconcile, used to compute dnsplace.ShouldPlace's dnsChanged trigger.
	lastDNS *dnsplace.GlobalConfig

	// history holds the most recent reconcile results, newest last, for a
	// caller-facing status report.
	history *aghalg.RingBuffer[*Result]
}

// historySize is the number of past results [Reconciler.History] retains.
const historySize = 16

// New returns a [Reconciler] built from conf.  conf must be valid; see
// [Config.Validate].
func New(conf *Config) (r *Reconciler) {
	return &Reconciler{
		querier:      conf.Querier,
		backend:      conf.Backend,
		logger:       conf.Logger,
		clock:        conf.Clock,
		applyTimeout: conf.ApplyTimeout,
		history:      aghalg.NewRingBuffer[*Result](historySize),
	}
}

// History returns the most recent reconcile results, oldest first.
func (r *Reconciler) History() (results []*Result) {
	r.history.Range(func(res *Result) (cont bool) {
		results = append(results, res)

		return true
	})

	return results
}

// Result is the outcome of one [Reconciler.Reconcile] call.
type Result struct {
	// Applied reports whether the backend's Apply was invoked at all; it is
	// false when the merged state equalled current state for every
	// interface and DNS placement, if it ran, changed no interface.
	Applied bool

	// Mismatches lists every verification failure found after apply.  An
	// empty (nil) slice means the backend's post-apply state matched the
	// for-verify view exactly.
	Mismatches []*ncerrors.MismatchError

	// Verified is [aghalg.NBNull] when Applied is false (nothing was applied,
	// so nothing was verified), [aghalg.NBTrue] when apply produced no
	// mismatches, and [aghalg.NBFalse] otherwise.
	Verified aghalg.NullBool
}

// Reconcile runs one full reconcile pass: query, merge, place DNS, apply (if
// anything changed), re-query, and verify.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	desired []*ifacemerge.BaseInterface,
	desiredDNS dnsplace.GlobalConfig,
) (res *Result, err error) {
	logger := r.logger
	start := r.clock.Now()

	cur, err := r.querier.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying current state: %w", err)
	}

	set, err := r.buildSet(desired, cur.Interfaces)
	if err != nil {
		return nil, fmt.Errorf("merging interfaces: %w", err)
	}

	dnsChanged := r.lastDNS == nil || !sameDNS(*r.lastDNS, desiredDNS)
	if dnsplace.ShouldPlace(set, dnsChanged) {
		if err = dnsplace.Place(set, desiredDNS); err != nil {
			return nil, fmt.Errorf("placing dns: %w", err)
		}
	}

	forApply, forVerify := collectChanged(set)
	if len(forApply) == 0 {
		logger.DebugContext(ctx, "nothing to apply", "elapsed", r.clock.Now().Sub(start))

		res = &Result{Applied: false, Verified: aghalg.NBNull}
		r.history.Append(res)

		return res, nil
	}

	logger.InfoContext(ctx, "applying", "interfaces", len(forApply))

	applyCtx, cancel := context.WithTimeout(ctx, r.applyTimeout)
	err = r.backend.Apply(applyCtx, forApply)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ncerrors.ErrPluginFailure, err)
	}

	postApply, err := r.querier.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-querying after apply: %w", err)
	}

	mismatches := r.verifyAll(forVerify, postApply.Interfaces)
	if len(mismatches) != 0 {
		logger.WarnContext(ctx, "verification failed", "mismatches", len(mismatches))
	}

	logger.InfoContext(ctx, "reconcile done", "elapsed", r.clock.Now().Sub(start))

	dnsCopy := desiredDNS
	r.lastDNS = &dnsCopy

	res = &Result{
		Applied:    true,
		Mismatches: mismatches,
		Verified:   aghalg.BoolToNullBool(len(mismatches) == 0),
	}
	r.history.Append(res)

	return res, nil
}

// buildSet constructs the merged interface set from desired and current
// interfaces, keyed by (name, kind).
func (r *Reconciler) buildSet(desired, current []*ifacemerge.BaseInterface) (set *ifacemerge.Set, err error) {
	set = ifacemerge.NewSet()

	currentByKey := make(map[ifacemerge.Key]*ifacemerge.BaseInterface, len(current))
	for _, c := range current {
		currentByKey[c.Key()] = c
	}

	seen := make(map[ifacemerge.Key]struct{}, len(desired))
	for _, d := range desired {
		seen[d.Key()] = struct{}{}

		mi, merr := ifacemerge.Build(d, currentByKey[d.Key()])
		if merr != nil {
			return nil, fmt.Errorf("interface %q: %w", d.Name, merr)
		}
		set.Add(mi)
	}

	for key, c := range currentByKey {
		if _, ok := seen[key]; ok {
			continue
		}

		mi, merr := ifacemerge.Build(nil, c)
		if merr != nil {
			return nil, fmt.Errorf("interface %q: %w", c.Name, merr)
		}
		set.Add(mi)
	}

	return set, nil
}

// collectChanged returns the for-apply and for-verify views of every
// interface whose IsChanged flag is set.
func collectChanged(set *ifacemerge.Set) (forApply, forVerify []*ifacemerge.BaseInterface) {
	for _, mi := range set.InOrder() {
		if !mi.IsChanged {
			continue
		}

		forApply = append(forApply, mi.ForApply)
		forVerify = append(forVerify, mi.ForVerify)
	}

	return forApply, forVerify
}

// verifyAll runs [verify.Interface] for each for-verify view against the
// matching post-apply interface, by (name, kind) identity.
func (r *Reconciler) verifyAll(
	forVerify, postApply []*ifacemerge.BaseInterface,
) (mismatches []*ncerrors.MismatchError) {
	byKey := make(map[ifacemerge.Key]*ifacemerge.BaseInterface, len(postApply))
	for _, p := range postApply {
		byKey[p.Key()] = p
	}

	for _, want := range forVerify {
		mismatches = append(mismatches, verify.Interface(want, byKey[want.Key()])...)
	}

	return mismatches
}

// sameDNS reports whether a and b describe the same DNS configuration.
func sameDNS(a, b dnsplace.GlobalConfig) (ok bool) {
	return stringSlicesEqual(a.Servers, b.Servers) &&
		stringSlicesEqual(a.Searches, b.Searches) &&
		stringSlicesEqual(a.Options, b.Options)
}

func stringSlicesEqual(a, b []string) (ok bool) {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
