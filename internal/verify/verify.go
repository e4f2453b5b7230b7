// Package verify implements post-apply verification: comparing the
// re-queried current state against the for-verify view stored by the merge
// pipeline, under the extra-address and auto-address relaxations of §4.4.
package verify

import (
	"fmt"
	"net/netip"

	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// Interface compares postApply (the re-queried current state) against
// forVerify for one interface and returns every mismatch found. An empty
// result means the interface verified cleanly.
func Interface(forVerify, postApply *ifacemerge.BaseInterface) (mismatches []*ncerrors.MismatchError) {
	if forVerify == nil {
		return nil
	}

	if postApply == nil {
		return []*ncerrors.MismatchError{{
			Interface: forVerify.Name,
			Field:     "presence",
			Want:      "present",
			Got:       "absent",
		}}
	}

	for _, fam := range [...]ipstack.Family{ipstack.FamilyIPv4, ipstack.FamilyIPv6} {
		mismatches = append(mismatches, verifyStack(forVerify.Name, fam, forVerify.StackFor(fam), postApply.StackFor(fam))...)
	}

	return mismatches
}

// verifyStack compares one family's stacks.
func verifyStack(ifaceName string, fam ipstack.Family, want, got *ipstack.Stack) (mismatches []*ncerrors.MismatchError) {
	if want == nil {
		return nil
	}

	if got == nil {
		return []*ncerrors.MismatchError{{
			Interface: ifaceName,
			Family:    fam.String(),
			Field:     "stack",
			Want:      "present",
			Got:       "absent",
		}}
	}

	if ipstack.BoolVal(want.Enabled, false) != ipstack.BoolVal(got.Enabled, false) {
		mismatches = append(mismatches, &ncerrors.MismatchError{
			Interface: ifaceName,
			Family:    fam.String(),
			Field:     "enabled",
			Want:      fmt.Sprint(ipstack.BoolVal(want.Enabled, false)),
			Got:       fmt.Sprint(ipstack.BoolVal(got.Enabled, false)),
		})
	}

	mismatches = append(mismatches, verifyAddresses(ifaceName, fam, want, got)...)
	mismatches = append(mismatches, verifyDNS(ifaceName, fam, want.DNS, got.DNS)...)

	return mismatches
}

// verifyAddresses implements the extra-address and auto-address
// relaxations: every want address must be present in got; got may have
// additional (non-auto) addresses only when allow_extra_address is set
// (the default).
func verifyAddresses(ifaceName string, fam ipstack.Family, want, got *ipstack.Stack) (mismatches []*ncerrors.MismatchError) {
	wantAddrs := stackAddrs(want)
	gotAddrs := stackAddrs(got)

	gotSet := make(map[netip.Prefix]ipstack.Addr, len(gotAddrs))
	for _, a := range gotAddrs {
		gotSet[a.Prefix] = a
	}

	for _, w := range wantAddrs {
		if _, ok := gotSet[w.Prefix]; !ok {
			mismatches = append(mismatches, &ncerrors.MismatchError{
				Interface: ifaceName,
				Family:    fam.String(),
				Field:     "addresses",
				Want:      w.String(),
				Got:       "missing",
			})
		}
	}

	allowExtra := want.AllowExtraAddress == nil || *want.AllowExtraAddress
	if allowExtra {
		return mismatches
	}

	wantSet := make(map[netip.Prefix]struct{}, len(wantAddrs))
	for _, w := range wantAddrs {
		wantSet[w.Prefix] = struct{}{}
	}

	for _, g := range gotAddrs {
		if g.IsAuto() {
			// Auto addresses are never counted as "extra".
			continue
		}
		if _, ok := wantSet[g.Prefix]; !ok {
			mismatches = append(mismatches, &ncerrors.MismatchError{
				Interface: ifaceName,
				Family:    fam.String(),
				Field:     "addresses",
				Want:      "no extra addresses",
				Got:       g.String() + " (unexpected)",
			})
		}
	}

	return mismatches
}

func stackAddrs(s *ipstack.Stack) (addrs []ipstack.Addr) {
	if s == nil || s.Addresses == nil {
		return nil
	}

	return *s.Addresses
}

// verifyDNS compares DNS slots, normalizing IPv6 textual server forms before
// comparison per §4.4.
func verifyDNS(
	ifaceName string,
	fam ipstack.Family,
	want, got *ipstack.DNSClientState,
) (mismatches []*ncerrors.MismatchError) {
	if want == nil {
		// No DNS opinion was recorded for this stack; nothing to verify.
		return nil
	}

	if want.IsEmpty() {
		// The purge phase explicitly installed an empty state here: the
		// backend must have actually cleared DNS, not just left it alone.
		if !got.IsEmpty() {
			mismatches = append(mismatches, &ncerrors.MismatchError{
				Interface: ifaceName,
				Family:    fam.String(),
				Field:     "dns",
				Want:      "cleared",
				Got:       "still configured",
			})
		}

		return mismatches
	}

	var gotServersRaw, gotSearches, gotOptions []string
	if got != nil {
		gotServersRaw, gotSearches, gotOptions = got.Servers, got.Searches, got.Options
	}

	wantServers := canonicalizeAll(want.Servers)
	gotServers := canonicalizeAll(gotServersRaw)

	if !stringSlicesEqual(wantServers, gotServers) {
		mismatches = append(mismatches, &ncerrors.MismatchError{
			Interface: ifaceName,
			Family:    fam.String(),
			Field:     "dns.servers",
			Want:      fmt.Sprint(wantServers),
			Got:       fmt.Sprint(gotServers),
		})
	}

	if !stringSlicesEqual(want.Searches, gotSearches) {
		mismatches = append(mismatches, &ncerrors.MismatchError{
			Interface: ifaceName,
			Family:    fam.String(),
			Field:     "dns.searches",
			Want:      fmt.Sprint(want.Searches),
			Got:       fmt.Sprint(gotSearches),
		})
	}

	if !stringSlicesEqual(want.Options, gotOptions) {
		mismatches = append(mismatches, &ncerrors.MismatchError{
			Interface: ifaceName,
			Family:    fam.String(),
			Field:     "dns.options",
			Want:      fmt.Sprint(want.Options),
			Got:       fmt.Sprint(gotOptions),
		})
	}

	return mismatches
}

// canonicalizeAll normalizes every server in servers to its canonical IPv6
// form when parseable as an IP address, leaving anything else (hostnames)
// unchanged.
func canonicalizeAll(servers []string) (out []string) {
	out = make([]string, len(servers))
	for i, s := range servers {
		if addr, err := netip.ParseAddr(s); err == nil {
			out[i] = addr.String()
		} else {
			out[i] = s
		}
	}

	return out
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
