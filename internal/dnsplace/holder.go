package dnsplace

import (
	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// placeFamily runs holder selection, purge, and write for one family. If
// servers is empty, no holder is needed for this family (the other family
// may still carry servers) unless forcedHolder names one via the IPv6 zone
// short-circuit.
func placeFamily(
	set *ifacemerge.Set,
	fam ipstack.Family,
	servers []string,
	global GlobalConfig,
	preferredFamily ipstack.Family,
	forcedHolder string,
) (err error) {
	if len(servers) == 0 && forcedHolder == "" {
		purgeUnchosenHolders(set, fam, ifacemerge.Key{})

		return nil
	}

	var holder *ifacemerge.MergedInterface
	if forcedHolder != "" {
		holder = findByName(set, forcedHolder)
		if holder == nil {
			return ncerrors.InvalidArg(
				"dns: zone-qualified server names interface %q, which is not in the interface set",
				forcedHolder,
			)
		}
	} else {
		holder, err = selectHolder(set, fam)
		if err != nil {
			return err
		}
	}

	purgeUnchosenHolders(set, fam, holder.ForApply.Key())

	preferred := fam == preferredFamily
	priority := priorityOther
	searches, options := []string(nil), []string(nil)
	if preferred {
		priority = priorityPreferred
		searches, options = global.Searches, global.Options
	}

	writeDNS(holder, fam, servers, searches, options, priority)

	return nil
}

// selectHolder implements the per-family holder-selection priority chain.
func selectHolder(set *ifacemerge.Set, fam ipstack.Family) (holder *ifacemerge.MergedInterface, err error) {
	all := set.InOrder()

	// 1. Sticky current.
	for _, mi := range all {
		if isCurrentHolder(mi, fam) && mi.ForApply.StackFor(fam).ValidForDNS() && mi.IsChanged {
			return mi, nil
		}
	}

	// 2. Preferred-from-desired.
	for _, mi := range all {
		if mi.Desired == nil || !mi.IsChanged {
			continue
		}
		if mi.ForApply.Kind.IsUserSpace() || mi.ForApply.Kind == ifacemerge.KindLoopback {
			continue
		}
		if mi.ForApply.StackFor(fam).PreferredForDNS() {
			return mi, nil
		}
	}

	// 3. Valid-from-desired.
	for _, mi := range all {
		if mi.Desired == nil || !mi.IsChanged {
			continue
		}
		if mi.ForApply.Kind.IsUserSpace() || mi.ForApply.Kind == ifacemerge.KindLoopback {
			continue
		}
		if mi.ForApply.StackFor(fam).ValidForDNS() {
			return mi, nil
		}
	}

	// 4. Valid-from-current, alphabetical for determinism.
	var candidates []*ifacemerge.MergedInterface
	for _, mi := range all {
		if mi.Desired != nil || mi.IsChanged {
			continue
		}
		if mi.ForApply.Kind.IsUserSpace() || mi.ForApply.Kind == ifacemerge.KindLoopback {
			continue
		}
		if mi.ForApply.ExternallyManaged || mi.ForApply.Unmanaged {
			continue
		}
		if mi.ForApply.StackFor(fam).ValidForDNS() {
			candidates = append(candidates, mi)
		}
	}
	if len(candidates) > 0 {
		return sortedByName(candidates)[0], nil
	}

	return nil, ncerrors.InvalidArg("dns: no valid holder interface found for %s servers", fam)
}

// purgeUnchosenHolders clears DNS from every previous holder of fam other
// than keep (the zero Key if no holder was chosen this round, purging all
// previous holders).
func purgeUnchosenHolders(set *ifacemerge.Set, fam ipstack.Family, keep ifacemerge.Key) {
	for _, mi := range set.InOrder() {
		if !isCurrentHolder(mi, fam) {
			continue
		}
		if mi.ForApply.Key() == keep {
			continue
		}

		installEmpty(mi, fam)
	}
}

// installEmpty writes an empty DNS state to mi's for-apply and for-verify
// views for fam, hoisting a stack from the merged view if for-apply lacks
// one, and marks mi changed.
func installEmpty(mi *ifacemerge.MergedInterface, fam ipstack.Family) {
	empty := &ipstack.DNSClientState{}

	for _, view := range [...]*ifacemerge.BaseInterface{mi.ForApply, mi.ForVerify} {
		s := view.StackFor(fam)
		if s == nil {
			s = hoistStack(mi, fam)
			view.SetStackFor(fam, s)
		}
		s.DNS = empty
	}

	mi.IsChanged = true
}

// writeDNS installs the chosen DNS configuration on holder's for-apply and
// for-verify views for fam.
func writeDNS(holder *ifacemerge.MergedInterface, fam ipstack.Family, servers, searches, options []string, priority int) {
	state := &ipstack.DNSClientState{
		Servers:  servers,
		Searches: searches,
		Options:  options,
		Priority: &priority,
	}

	for _, view := range [...]*ifacemerge.BaseInterface{holder.ForApply, holder.ForVerify} {
		s := view.StackFor(fam)
		if s == nil {
			s = hoistStack(holder, fam)
			view.SetStackFor(fam, s)
		}
		s.DNS = state
	}

	holder.IsChanged = true
}

// hoistStack returns a stack to attach DNS to when the for-apply/for-verify
// view lacks one for fam, preferring the current view's stack (cloned), then
// the desired view's stack (cloned), and falling back to a bare enabled stack.
func hoistStack(mi *ifacemerge.MergedInterface, fam ipstack.Family) (s *ipstack.Stack) {
	if mi.Current != nil {
		if cur := mi.Current.StackFor(fam); cur != nil {
			return cur.Clone()
		}
	}
	if mi.Desired != nil {
		if des := mi.Desired.StackFor(fam); des != nil {
			return des.Clone()
		}
	}

	return &ipstack.Stack{Family: fam, Enabled: ipstack.Bool(true), PropList: ipstack.PropSet{}}
}

// findByName returns the MergedInterface whose for-apply name matches name,
// or nil.
func findByName(set *ifacemerge.Set, name string) (mi *ifacemerge.MergedInterface) {
	for _, m := range set.InOrder() {
		if m.ForApply.Name == name {
			return m
		}
	}

	return nil
}
