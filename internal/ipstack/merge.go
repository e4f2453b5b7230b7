package ipstack

// PropSource says which side's PropList governs a [Merge] call: whether a
// field counts as "the desired side wrote this" based on the mutated
// stack's own PropList, or a separately supplied desired stack's PropList.
// This collapses the source's two historical merge entry points
// (merge_ip keyed off self, special_merge keyed off a separate desired) into
// one primitive parameterized by this choice, per the design notes' Open
// Question.
type PropSource uint8

const (
	// GovernBySelf reads prop_list membership from the stack being merged
	// itself — the merge_ip behavior.
	GovernBySelf PropSource = iota

	// GovernByDesired reads prop_list membership from a distinct desired
	// stack passed to Merge — the special_merge behavior.
	GovernByDesired
)

// Merge combines self (the stack being produced, desired-shaped) with
// current in place, under the three-valued "property list" rule. When
// source is GovernBySelf, desired should be self (or nil); when it is
// GovernByDesired, desired supplies the governing PropList while self
// supplies the values being merged. resanitize, when true, re-runs
// [Sanitize] with isDesired=false at the end, matching special_merge's
// additional normalization pass.
func Merge(self *Stack, desired *Stack, current *Stack, source PropSource, resanitize bool) (err error) {
	if self == nil || current == nil {
		return nil
	}

	governor := self
	if source == GovernByDesired && desired != nil {
		governor = desired
	}

	if !governor.PropList.Has(PropEnabled) {
		self.Enabled = current.Enabled
	}

	if self.DHCP == nil && BoolVal(self.Enabled, false) {
		self.DHCP = current.DHCP
	}

	if self.Family == FamilyIPv6 && self.Autoconf == nil && BoolVal(self.Enabled, false) {
		self.Autoconf = current.Autoconf
	}

	convertDynamicToStatic(self, current)

	if resanitize {
		return Sanitize(self, false)
	}

	return nil
}

// convertDynamicToStatic implements the dynamic→static conversion: if
// current is auto with addresses, self is enabled and not auto, and self's
// own address list is empty of anything but auto/v6-link-local entries (or
// absent), the formerly-dynamic addresses are copied into self as static
// addresses with lifetimes cleared.
func convertDynamicToStatic(self, current *Stack) {
	if !current.IsAuto() || current.Addresses == nil || len(*current.Addresses) == 0 {
		return
	}

	if !BoolVal(self.Enabled, false) || self.IsAuto() {
		return
	}

	if !onlyAutoOrLinkLocal(self.Addresses) {
		return
	}

	copied := make([]Addr, len(*current.Addresses))
	copy(copied, *current.Addresses)
	for i := range copied {
		copied[i].ClearLifetimes()
	}
	self.Addresses = &copied
}

// onlyAutoOrLinkLocal reports whether addrs is nil, empty, or contains only
// addresses that are auto or IPv6 link-local — i.e. nothing the user
// actually configured as a static address.
func onlyAutoOrLinkLocal(addrs *[]Addr) (ok bool) {
	if addrs == nil {
		return true
	}

	for _, a := range *addrs {
		if !a.IsAuto() && !a.IsIPv6LinkLocal() {
			return false
		}
	}

	return true
}
