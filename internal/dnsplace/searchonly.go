package dnsplace

import (
	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// placeSearchOptionsOnly implements the second pass used when the input
// carries searches or options but no servers: selection runs independently,
// with its own priority ordering, per §4.5's "Search/option-only placement".
func placeSearchOptionsOnly(set *ifacemerge.Set, global GlobalConfig) (err error) {
	holder, fam, err := selectSearchOptionsHolder(set)
	if err != nil {
		return err
	}

	otherFam := ipstack.FamilyIPv6
	if fam == ipstack.FamilyIPv6 {
		otherFam = ipstack.FamilyIPv4
	}

	purgeUnchosenHolders(set, fam, holder.ForApply.Key())
	purgeUnchosenHolders(set, otherFam, ifacemerge.Key{})

	s := holder.ForApply.StackFor(fam)
	existing := s.DNS
	var servers []string
	if existing != nil {
		servers = existing.Servers
	}

	writeDNS(holder, fam, servers, global.Searches, global.Options, priorityPreferred)

	return nil
}

// selectSearchOptionsHolder implements the (a)-(e) chain. It returns the
// chosen interface and which family's stack to write into.
func selectSearchOptionsHolder(set *ifacemerge.Set) (holder *ifacemerge.MergedInterface, fam ipstack.Family, err error) {
	all := set.InOrder()

	// (a) current v6 holder still valid, (b) current v4 holder still valid.
	for _, f := range [...]ipstack.Family{ipstack.FamilyIPv6, ipstack.FamilyIPv4} {
		for _, mi := range all {
			if isCurrentHolder(mi, f) && mi.ForApply.StackFor(f).ValidForDNS() {
				return mi, f, nil
			}
		}
	}

	// (c) any auto interface in desired insertion order, v6 before v4.
	for _, f := range [...]ipstack.Family{ipstack.FamilyIPv6, ipstack.FamilyIPv4} {
		for _, mi := range all {
			if mi.Desired == nil {
				continue
			}
			if s := mi.ForApply.StackFor(f); s != nil && s.IsAuto() {
				return mi, f, nil
			}
		}
	}

	// (d) any auto interface in current state, same family preference,
	// skipping external-managed/unmanaged.
	for _, f := range [...]ipstack.Family{ipstack.FamilyIPv6, ipstack.FamilyIPv4} {
		for _, mi := range all {
			if mi.Current == nil || mi.ForApply.ExternallyManaged || mi.ForApply.Unmanaged {
				continue
			}
			if s := mi.ForApply.StackFor(f); s != nil && s.IsAuto() {
				return mi, f, nil
			}
		}
	}

	// (e) any IP-enabled interface in desired then current, same family
	// preference.
	for _, f := range [...]ipstack.Family{ipstack.FamilyIPv6, ipstack.FamilyIPv4} {
		for _, mi := range all {
			if mi.Desired == nil {
				continue
			}
			if s := mi.ForApply.StackFor(f); s != nil && ipstack.BoolVal(s.Enabled, false) {
				return mi, f, nil
			}
		}
		for _, mi := range all {
			if mi.Desired != nil {
				continue
			}
			if s := mi.ForApply.StackFor(f); s != nil && ipstack.BoolVal(s.Enabled, false) {
				return mi, f, nil
			}
		}
	}

	return nil, ipstack.FamilyUnknown, ncerrors.InvalidArg(
		"dns: no valid holder interface found for search/option-only placement",
	)
}
