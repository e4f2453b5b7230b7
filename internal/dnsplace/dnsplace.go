// Package dnsplace implements the DNS placement engine: given a global DNS
// configuration (servers, searches, options) and a merged interface set, it
// decides which interface(s) carry that configuration in their per-family
// DNS slot, because the backend stores DNS per interface rather than
// globally. See spec.md §4.5.
package dnsplace

import (
	"net/netip"
	"sort"
	"strings"

	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// GlobalConfig is the DNS configuration the user wants applied somewhere in
// the interface set.
type GlobalConfig struct {
	// Servers is the ordered list of name server addresses, IPv4 and IPv6
	// possibly intermixed (subject to the ordering constraint, §4.5).
	Servers []string

	// Searches is the ordered search-domain list.
	Searches []string

	// Options is the ordered resolver-option list.
	Options []string
}

// IsEmpty reports whether g carries no configuration at all.
func (g GlobalConfig) IsEmpty() (ok bool) {
	return len(g.Servers) == 0 && len(g.Searches) == 0 && len(g.Options) == 0
}

// priority values written to the chosen holders' DNS slots: 40 for the
// preferred family, 50 for the other, matching the backend's route-metric-
// like priority field.
const (
	priorityPreferred = 40
	priorityOther     = 50
)

// ShouldPlace implements the placement trigger: run placement when either
// the global DNS configuration changed since the last reconcile (dnsChanged,
// which the caller — normally package reconcile — determines by comparing
// against the last-applied configuration) or the interfaces currently
// holding DNS no longer satisfy validity.
func ShouldPlace(set *ifacemerge.Set, dnsChanged bool) (should bool) {
	if dnsChanged {
		return true
	}

	for _, fam := range [...]ipstack.Family{ipstack.FamilyIPv4, ipstack.FamilyIPv6} {
		for _, mi := range set.InOrder() {
			if !isCurrentHolder(mi, fam) {
				continue
			}

			if !mi.ForApply.StackFor(fam).ValidForDNS() {
				return true
			}
		}
	}

	return false
}

// Place runs the full DNS placement algorithm against set, mutating the
// for-apply and for-verify views of whichever interfaces end up holding DNS
// (new holders and purged former holders alike).
func Place(set *ifacemerge.Set, global GlobalConfig) (err error) {
	if err = validateOrdering(global.Servers); err != nil {
		return err
	}

	v4Servers, v6Servers, preferredFamily := splitServers(global.Servers)

	zoneHolder, v6Servers := zoneShortCircuit(v6Servers)

	if len(global.Servers) > 0 {
		if err = placeFamily(set, ipstack.FamilyIPv4, v4Servers, global, preferredFamily, ""); err != nil {
			return err
		}
		if err = placeFamily(set, ipstack.FamilyIPv6, v6Servers, global, preferredFamily, zoneHolder); err != nil {
			return err
		}

		return nil
	}

	if global.Searches != nil || global.Options != nil {
		return placeSearchOptionsOnly(set, global)
	}

	purgeUnchosenHolders(set, ipstack.FamilyIPv4, ifacemerge.Key{})
	purgeUnchosenHolders(set, ipstack.FamilyIPv6, ifacemerge.Key{})

	return nil
}

// splitServers partitions servers into v4/v6 lists preserving order, and
// returns the preferred family: that of servers[0].
func splitServers(servers []string) (v4, v6 []string, preferred ipstack.Family) {
	for i, s := range servers {
		fam := familyOf(s)
		if i == 0 {
			preferred = fam
		}

		switch fam {
		case ipstack.FamilyIPv4:
			v4 = append(v4, s)
		case ipstack.FamilyIPv6:
			v6 = append(v6, s)
		}
	}

	return v4, v6, preferred
}

// familyOf returns the address family of a (possibly zone-suffixed) textual
// IP address.
func familyOf(s string) (fam ipstack.Family) {
	bare, _, _ := strings.Cut(s, "%")
	addr, err := netip.ParseAddr(bare)
	if err != nil {
		return ipstack.FamilyUnknown
	}

	if addr.Is4() || addr.Is4In6() {
		return ipstack.FamilyIPv4
	}

	return ipstack.FamilyIPv6
}

// validateOrdering implements the ordering-constraint rejection: compress
// runs of equal family into a single character and reject if the result
// contains "464" or "646" as a substring.
func validateOrdering(servers []string) (err error) {
	var compressed strings.Builder
	var last byte

	for _, s := range servers {
		var c byte
		switch familyOf(s) {
		case ipstack.FamilyIPv4:
			c = '4'
		case ipstack.FamilyIPv6:
			c = '6'
		default:
			continue
		}

		if c != last {
			compressed.WriteByte(c)
			last = c
		}
	}

	pattern := compressed.String()
	if strings.Contains(pattern, "464") || strings.Contains(pattern, "646") {
		return ncerrors.NotImplemented(
			"IPv4/IPv6 nameserver placed in the middle of the opposite family is not supported",
		)
	}

	return nil
}

// zoneShortCircuit scans v6Servers for a zone-suffixed address and, if
// found, returns the zone as the forced v6 holder interface name and the
// server list with the zone stripped from every entry.
func zoneShortCircuit(v6Servers []string) (holder string, stripped []string) {
	stripped = make([]string, len(v6Servers))
	for i, s := range v6Servers {
		bare, zone, ok := strings.Cut(s, "%")
		stripped[i] = bare
		if ok && holder == "" {
			holder = zone
		}
	}

	return holder, stripped
}

// isCurrentHolder reports whether mi's current view already holds DNS for
// fam, i.e. it is a "previous holder" that the purge phase must consider.
func isCurrentHolder(mi *ifacemerge.MergedInterface, fam ipstack.Family) (ok bool) {
	if mi.Current == nil {
		return false
	}

	s := mi.Current.StackFor(fam)

	return s != nil && !s.DNS.IsEmpty()
}

// sortedByName returns a copy of mis sorted alphabetically by ForApply name,
// used for the deterministic valid-from-current fallback.
func sortedByName(mis []*ifacemerge.MergedInterface) (out []*ifacemerge.MergedInterface) {
	out = append(out, mis...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ForApply.Name < out[j].ForApply.Name
	})

	return out
}
