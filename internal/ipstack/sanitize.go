package ipstack

import (
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// Sanitize normalizes s in place per §4.1's numbered rules. isDesired gates
// the rules that only apply to user-facing input (family cross-check,
// prefix-length bounds, strict token rejection) as opposed to a
// merged-but-not-yet-verified stack, where those checks would reject data
// the engine itself produced. Sanitize is idempotent: calling it twice on
// its own output is a no-op.
func Sanitize(s *Stack, isDesired bool) (err error) {
	if s == nil {
		return nil
	}

	if isDesired {
		if err = checkFamilyPurity(s); err != nil {
			return err
		}

		if err = checkPrefixBounds(s); err != nil {
			return err
		}
	}

	filterIPv6LinkLocal(s)
	purgeAutoAddresses(s)
	collapseEmptyAddressSet(s)
	applyDynamicDefaults(s)

	if !BoolVal(s.Enabled, false) {
		clearOnDisabled(s)
	} else if !s.IsAuto() {
		clearNonAutoFields(s)
	}

	enforceHostnameConsistency(s)
	stripQueryOnlyFields(s)

	return sanitizeToken(s, isDesired)
}

// checkFamilyPurity implements rule 1: an IPv4 stack never contains an IPv6
// address and vice versa.
func checkFamilyPurity(s *Stack) (err error) {
	if s.Addresses == nil {
		return nil
	}

	wantV6 := s.Family == FamilyIPv6
	for _, a := range *s.Addresses {
		if a.Prefix.Addr().Is6() != wantV6 {
			return ncerrors.InvalidArg(
				"address %s does not match stack family %s", a, s.Family,
			)
		}
	}

	return nil
}

// checkPrefixBounds implements rule 2.
func checkPrefixBounds(s *Stack) (err error) {
	if s.Addresses == nil {
		return nil
	}

	max := 32
	if s.Family == FamilyIPv6 {
		max = 128
	}

	for _, a := range *s.Addresses {
		if a.Prefix.Bits() > max || a.Prefix.Bits() < 0 {
			return ncerrors.InvalidArg(
				"prefix length %d out of bounds for %s", a.Prefix.Bits(), s.Family,
			)
		}
	}

	return nil
}

// filterIPv6LinkLocal implements rule 3.
func filterIPv6LinkLocal(s *Stack) {
	if s.Family != FamilyIPv6 || s.Addresses == nil {
		return
	}

	kept := (*s.Addresses)[:0:0]
	for _, a := range *s.Addresses {
		if !a.IsIPv6LinkLocal() {
			kept = append(kept, a)
		}
	}
	*s.Addresses = kept
}

// purgeAutoAddresses implements rule 4: remove any address with a finite
// lifetime and clear lifetime fields on the remainder.
func purgeAutoAddresses(s *Stack) {
	if s.Addresses == nil {
		return
	}

	kept := (*s.Addresses)[:0:0]
	for _, a := range *s.Addresses {
		if a.IsAuto() {
			continue
		}
		a.ClearLifetimes()
		kept = append(kept, a)
	}
	*s.Addresses = kept
}

// collapseEmptyAddressSet implements rule 5.
func collapseEmptyAddressSet(s *Stack) {
	if BoolVal(s.Enabled, false) && s.Addresses != nil && len(*s.Addresses) == 0 {
		s.Enabled = Bool(false)
	}
}

// applyDynamicDefaults implements rule 6.
func applyDynamicDefaults(s *Stack) {
	if !BoolVal(s.Enabled, false) || !s.IsAuto() {
		return
	}

	if s.AutoDNS == nil {
		s.AutoDNS = Bool(true)
	}
	if s.AutoRoutes == nil {
		s.AutoRoutes = Bool(true)
	}
	if s.AutoGateway == nil {
		s.AutoGateway = Bool(true)
	}
}

// clearOnDisabled implements rule 7.
func clearOnDisabled(s *Stack) {
	s.DHCP = nil
	s.Autoconf = nil
	s.Addresses = nil
}

// clearNonAutoFields implements rule 8.
func clearNonAutoFields(s *Stack) {
	s.AutoDNS = nil
	s.AutoGateway = nil
	s.AutoRoutes = nil
	s.AutoTableID = nil
	s.AutoRouteMetric = nil
	s.DHCPClientID = nil
	s.DHCPDuid = nil
	s.DHCPSendHostname = nil
	s.DHCPCustomHostname = nil
}

// enforceHostnameConsistency implements rule 9.
func enforceHostnameConsistency(s *Stack) {
	if s.DHCPSendHostname != nil && !*s.DHCPSendHostname {
		s.DHCPCustomHostname = nil
	}
}

// stripQueryOnlyFields implements rule 10.
func stripQueryOnlyFields(s *Stack) {
	if s.Addresses == nil {
		return
	}

	for i := range *s.Addresses {
		(*s.Addresses)[i].MPTCPFlags = ""
	}
}

// sanitizeToken implements rule 11.
func sanitizeToken(s *Stack, isDesired bool) (err error) {
	if s.Family != FamilyIPv6 || s.Token == nil {
		return nil
	}

	raw := *s.Token
	if isDesired && s.Autoconf != nil && !*s.Autoconf && raw != "" && raw != "::" {
		return ncerrors.InvalidArg("token %q set while autoconf is explicitly disabled", raw)
	}

	canon, err := CanonicalizeToken(raw)
	if err != nil {
		return err
	}
	s.Token = &canon

	return nil
}
