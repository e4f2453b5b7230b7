// Package ncerrors defines the closed error-kind taxonomy shared by every
// stage of the reconciliation pipeline: sanitize, merge, DNS placement, and
// verification all fail through these kinds so that callers can branch on
// [errors.Is] / [errors.As] instead of parsing messages.
package ncerrors

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
)

// Sentinel error kinds.  A function that fails validation of user input
// wraps one of these with [fmt.Errorf] and "%w"; a function that detects an
// internal invariant violation returns [Bug] directly.
const (
	// ErrInvalidArgument reports that the user's desired state violates a
	// rule: bad prefix length, wrong address family in a stack, conflicting
	// token and autoconf, or an unsatisfiable DNS-holder selection.
	ErrInvalidArgument errors.Error = "invalid argument"

	// ErrNotImplemented reports that the input is syntactically valid but
	// this engine does not support it, e.g. a DNS server list whose family
	// pattern interleaves IPv4 and IPv6 in the middle.
	ErrNotImplemented errors.Error = "not implemented"

	// ErrVerification reports that post-apply state disagrees with the
	// for-verify view.
	ErrVerification errors.Error = "verification failed"

	// ErrPluginFailure reports that the backend adapter failed to apply the
	// merged state.  The backend's own error is wrapped, not replaced.
	ErrPluginFailure errors.Error = "backend plugin failure"

	// ErrBug reports that an internal invariant was violated.  Reaching this
	// is always a defect in this engine, never a consequence of bad input.
	ErrBug errors.Error = "internal invariant violated"
)

// InvalidArg wraps msg as an [ErrInvalidArgument].
func InvalidArg(format string, args ...any) (err error) {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// NotImplemented wraps msg as an [ErrNotImplemented].
func NotImplemented(format string, args ...any) (err error) {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotImplemented)
}

// Bug wraps msg as an [ErrBug].  It should be unreachable in practice; every
// call site documents the invariant it is guarding.
func Bug(format string, args ...any) (err error) {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrBug)
}

// MismatchError is a structured [ErrVerification] naming the interface,
// address family, and field that disagreed between the for-verify view and
// the post-apply current state.
type MismatchError struct {
	// Interface is the name of the interface that failed verification.
	Interface string

	// Family is the address family the mismatch occurred in, or empty if the
	// mismatch is not family-specific (e.g. DNS searches).
	Family string

	// Field is the name of the field that disagreed.
	Field string

	// Want is the expected value, formatted for display.
	Want string

	// Got is the actual value, formatted for display.
	Got string
}

// type check
var _ error = (*MismatchError)(nil)

// Error implements the error interface for *MismatchError.
func (e *MismatchError) Error() (s string) {
	family := e.Family
	if family != "" {
		family = " " + family
	}

	return fmt.Sprintf(
		"%s: verification failed: interface %q%s field %q: want %s, got %s",
		ErrVerification, e.Interface, family, e.Field, e.Want, e.Got,
	)
}

// Unwrap returns [ErrVerification] so that errors.Is(err, ErrVerification)
// holds for any *MismatchError.
func (e *MismatchError) Unwrap() (err error) {
	return ErrVerification
}
