package ipstack

import (
	"net/netip"
	"strings"

	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// tokenScratchPrefix is the constant prefix sanitize masks the token against, per
// §4.1.1: "mask with 2001:db8::/32, render, strip the constant prefix".  Any
// /32 prefix would do as scratch space as long as its first 64 bits are
// fixed and distinct from the token's trailing 64 bits; 2001:db8::/32 is the
// documentation prefix, chosen so the intermediate rendered address is
// obviously never a real one.
var tokenScratchPrefix = netip.MustParseAddr("2001:db8::")

// CanonicalizeToken parses raw as an IPv6 address, requires its leading 64
// bits to be zero, and returns the trailing 64 bits rendered in conventional
// colon-hex form (never mixed IPv4-decimal), so that "::0.0.250.193" and
// "::fac1" canonicalize identically. An empty string or "::" means
// "default" and is returned unchanged.
func CanonicalizeToken(raw string) (canon string, err error) {
	if raw == "" || raw == "::" {
		return raw, nil
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil || !addr.Is6() {
		return "", ncerrors.InvalidArg("token %q is not a valid ipv6 address", raw)
	}

	b := addr.As16()
	for i := range 8 {
		if b[i] != 0 {
			return "", ncerrors.InvalidArg("token %q: leading 64 bits must be zero", raw)
		}
	}

	// Graft the trailing 64 bits onto the scratch prefix, render, and strip
	// the known prefix back off; this forces conventional colon-hex
	// rendering of what would otherwise sometimes print in the
	// dotted-decimal IPv4-mapped form (e.g. "::0.0.250.193").
	scratch := tokenScratchPrefix.As16()
	var merged [16]byte
	copy(merged[:8], scratch[:8])
	copy(merged[8:], b[8:])

	rendered := netip.AddrFrom16(merged).String()
	canon, ok := strings.CutPrefix(rendered, "2001:db8::")
	if !ok {
		// A tail of three zero groups ("x:0:0:0") is a longer zero run than
		// the scratch prefix's own, so the rendering compresses the tail
		// instead ("2001:db8:0:0:x::"); spell those groups out.
		tail, cut := strings.CutPrefix(rendered, "2001:db8:0:0:")
		tail, trimmed := strings.CutSuffix(tail, "::")
		if !cut || !trimmed {
			return "", ncerrors.Bug("token canonicalization: unexpected rendering %q", rendered)
		}
		canon = tail + ":0:0:0"
	}

	return "::" + canon, nil
}
