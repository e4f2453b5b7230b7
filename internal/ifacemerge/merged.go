package ifacemerge

import (
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// MergedInterface is a single interface's (desired, current, for_apply,
// for_verify) view quadruple, per §4.3. The four views share no mutable
// state; ownership is strictly per-view.
type MergedInterface struct {
	Desired   *BaseInterface
	Current   *BaseInterface
	ForApply  *BaseInterface
	ForVerify *BaseInterface

	// IsChanged is true once this interface's for-apply view differs from
	// current, either because only one of desired/current existed, or
	// because a per-family merge or DNS placement touched it.
	IsChanged bool
}

// Build constructs a [MergedInterface] for one (desired, current) pair, per
// §4.3 steps 1-4. Either desired or current may be nil, but not both.
func Build(desired, current *BaseInterface) (mi *MergedInterface, err error) {
	if desired == nil && current == nil {
		return nil, ncerrors.Bug("ifacemerge.Build: both desired and current are nil")
	}

	mi = &MergedInterface{Desired: desired, Current: current}

	switch {
	case desired != nil && current != nil:
		mi.ForApply = desired.Clone()
		mi.ForVerify = desired.Clone()
	case desired != nil:
		mi.ForApply = desired.Clone()
		mi.ForVerify = desired.Clone()
		mi.IsChanged = true
	default:
		mi.ForApply = current.Clone()
		mi.ForVerify = current.Clone()
		mi.IsChanged = true
	}

	if desired != nil && current != nil {
		for _, fam := range [...]ipstack.Family{ipstack.FamilyIPv4, ipstack.FamilyIPv6} {
			curStack := current.StackFor(fam)
			if curStack == nil {
				if mi.ForApply.StackFor(fam) != nil {
					mi.IsChanged = true
				}

				continue
			}

			if err = mergeFamily(mi.ForApply, curStack, fam); err != nil {
				return nil, err
			}
			if err = mergeFamily(mi.ForVerify, curStack, fam); err != nil {
				return nil, err
			}

			if !mi.ForApply.StackFor(fam).Equal(curStack) {
				mi.IsChanged = true
			}
		}

		if !sameScalarFields(desired, current) {
			mi.IsChanged = true
		}
	}

	if err = validateWaitIP(mi.ForApply); err != nil {
		return nil, err
	}
	clearWaitIPIfUnsupported(mi.ForApply)
	clearWaitIPIfUnsupported(mi.ForVerify)

	return mi, nil
}

// mergeFamily runs [ipstack.Merge] on iface's stack for fam against cur,
// governed by the stack's own prop list (merge_ip's behavior — the merge
// entry point used during initial construction, before DNS placement's own
// writes).
func mergeFamily(iface *BaseInterface, cur *ipstack.Stack, fam ipstack.Family) (err error) {
	s := iface.StackFor(fam)
	if s == nil {
		return nil
	}

	return ipstack.Merge(s, nil, cur, ipstack.GovernBySelf, false)
}

// sameScalarFields reports whether desired's non-stack fields match current's,
// the other half (alongside per-family [ipstack.Stack.Equal]) of deciding
// whether an interface actually needs to be applied.
func sameScalarFields(desired, current *BaseInterface) (ok bool) {
	return desired.MTU == current.MTU &&
		desired.MACAddress == current.MACAddress &&
		desired.WaitIP == current.WaitIP &&
		ipstack.BoolVal(desired.AcceptAllMACAddresses, false) ==
			ipstack.BoolVal(current.AcceptAllMACAddresses, false)
}

// validateWaitIP implements rule 7: wait_ip must reference only enabled
// families.
func validateWaitIP(iface *BaseInterface) (err error) {
	wantV4 := iface.WaitIP == ipstack.WaitIPv4 || iface.WaitIP == ipstack.WaitIPv4AndV6
	wantV6 := iface.WaitIP == ipstack.WaitIPv6 || iface.WaitIP == ipstack.WaitIPv4AndV6

	if wantV4 && !ipstack.BoolVal(stackEnabled(iface.IPv4), false) {
		return ncerrors.InvalidArg("interface %q: wait_ip=ipv4 requires ipv4 enabled", iface.Name)
	}
	if wantV6 && !ipstack.BoolVal(stackEnabled(iface.IPv6), false) {
		return ncerrors.InvalidArg("interface %q: wait_ip=ipv6 requires ipv6 enabled", iface.Name)
	}

	return nil
}

func stackEnabled(s *ipstack.Stack) (p *bool) {
	if s == nil {
		return nil
	}

	return s.Enabled
}

// clearWaitIPIfUnsupported implements the step-4 clear: kinds that cannot
// hold IP (controller-only user-space kinds) never carry a wait_ip policy.
func clearWaitIPIfUnsupported(iface *BaseInterface) {
	if iface != nil && !iface.Kind.CanHoldIP() {
		iface.WaitIP = ipstack.WaitIPNone
	}
}
