package ipstack

import "net/netip"

// DNSClientState is the per-stack DNS slot the placement engine (package
// dnsplace) writes into a stack's DNS field.  It lives here, rather than in
// package dnsplace, because it is carried on every [Stack] value regardless
// of whether DNS placement ever touches that interface.
type DNSClientState struct {
	// Servers is the ordered list of name servers of this stack's family.
	Servers []string

	// Searches is the global search-domain list, present only on the
	// preferred holder.
	Searches []string

	// Options is the global resolver-option list, present only on the
	// preferred holder.
	Options []string

	// Priority is the backend route-metric-like priority: 40 for the
	// preferred family's holder, 50 for the other.  Nil means "no DNS
	// configured on this stack".
	Priority *int
}

// IsEmpty reports whether d carries no servers, searches, or options — the
// shape written to a former holder during the DNS purge phase.
func (d *DNSClientState) IsEmpty() (ok bool) {
	return d == nil || (len(d.Servers) == 0 && len(d.Searches) == 0 && len(d.Options) == 0)
}

// Stack is a single address family's IP configuration for one interface.
// The same type represents IPv4 and IPv6 stacks; Family says which, and
// which of the family-specific fields (Autoconf, DHCPDuid, AddrGenMode,
// Token for IPv6; DHCPClientID for IPv4) are meaningful.  Unifying the two
// keeps sanitize and merge single implementations instead of two near-
// duplicates, per the design notes' preference for one merge primitive over
// two historical entry points.
type Stack struct {
	// Enabled is whether the stack carries any configuration at all.
	Enabled *bool

	// DHCP is whether DHCP (v4) or DHCPv6 (v6) is active.
	DHCP *bool

	// Autoconf is whether IPv6 SLAAC is active.  IPv6 only.
	Autoconf *bool

	// Addresses is nil to preserve whatever addresses are already present,
	// or a (possibly empty) slice to set the address list explicitly.
	Addresses *[]Addr

	AutoDNS         *bool
	AutoGateway     *bool
	AutoRoutes      *bool
	AutoTableID     *uint32
	AutoRouteMetric *int32

	// DHCPClientID is the DHCPv4 client-id variant.  IPv4 only.
	DHCPClientID *Dhcpv4ClientID

	// DHCPDuid is the DHCPv6 DUID variant.  IPv6 only.
	DHCPDuid *Dhcpv6Duid

	// AddrGenMode is the IPv6 address-generation mode.  IPv6 only.
	AddrGenMode *AddrGenMode

	// Token is the IPv6 manual-token textual form, canonicalized by
	// sanitize.  IPv6 only.
	Token *string

	DHCPSendHostname   *bool
	DHCPCustomHostname *string

	// AllowExtraAddress governs verification's extra-address relaxation.
	// Defaults to true when unset.
	AllowExtraAddress *bool

	// DNS is the opaque slot the DNS placement engine reads and writes.
	DNS *DNSClientState

	// Family says which address family this stack holds.
	Family Family

	// PropList is the set of field names the user explicitly wrote for this
	// stack.  Empty (not nil) for a stack built from current state, since
	// every field of current state is, by definition, "present".
	PropList PropSet
}

// NewCurrentStack returns a Stack suitable for representing queried current
// state, with an empty (non-nil) PropList: [Merge] reads prop lists only
// from the self or desired side, never from current.
func NewCurrentStack(family Family) (s *Stack) {
	return &Stack{Family: family, PropList: PropSet{}}
}

// Clone returns a deep-enough copy of s for independent mutation: PropList
// and the Addresses slice (if any) are copied; the Addr values within are
// copied by value since Addr has no pointer fields of consequence for
// mutation (ClearLifetimes replaces pointers, not the pointee).
func (s *Stack) Clone() (cp *Stack) {
	if s == nil {
		return nil
	}

	c := *s
	c.PropList = s.PropList.Clone()
	if s.Addresses != nil {
		addrs := make([]Addr, len(*s.Addresses))
		copy(addrs, *s.Addresses)
		c.Addresses = &addrs
	}

	return &c
}

// Equal reports whether s and other describe the same configuration, for
// the purpose of deciding whether a merged interface actually needs to be
// applied. Addresses are compared as a set of prefixes (ordering carries no
// meaning on the wire); DNS is excluded, since DNS placement tracks its own
// change state independently of stack equality.
func (s *Stack) Equal(other *Stack) (ok bool) {
	if s == nil || other == nil {
		return s == other
	}

	switch {
	case BoolVal(s.Enabled, false) != BoolVal(other.Enabled, false):
		return false
	case BoolVal(s.DHCP, false) != BoolVal(other.DHCP, false):
		return false
	case BoolVal(s.Autoconf, false) != BoolVal(other.Autoconf, false):
		return false
	case BoolVal(s.AutoDNS, false) != BoolVal(other.AutoDNS, false):
		return false
	case BoolVal(s.AutoGateway, false) != BoolVal(other.AutoGateway, false):
		return false
	case BoolVal(s.AutoRoutes, false) != BoolVal(other.AutoRoutes, false):
		return false
	case BoolVal(s.DHCPSendHostname, false) != BoolVal(other.DHCPSendHostname, false):
		return false
	}

	if !uint32PtrEqual(s.AutoTableID, other.AutoTableID) {
		return false
	}
	if !int32PtrEqual(s.AutoRouteMetric, other.AutoRouteMetric) {
		return false
	}

	if !stringerPtrEqual(s.DHCPClientID, other.DHCPClientID) {
		return false
	}
	if !stringerPtrEqual(s.DHCPDuid, other.DHCPDuid) {
		return false
	}
	if !stringerPtrEqual(s.AddrGenMode, other.AddrGenMode) {
		return false
	}

	if !stringPtrEqual(s.Token, other.Token) {
		return false
	}
	if !stringPtrEqual(s.DHCPCustomHostname, other.DHCPCustomHostname) {
		return false
	}

	return addrSetEqual(s.Addresses, other.Addresses)
}

func uint32PtrEqual(a, b *uint32) (ok bool) {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func int32PtrEqual(a, b *int32) (ok bool) {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func stringPtrEqual(a, b *string) (ok bool) {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// stringer is satisfied by [Dhcpv4ClientID], [Dhcpv6Duid], and
// [AddrGenMode], which all round-trip through their Raw field.
type stringer interface {
	String() string
}

func stringerPtrEqual[T stringer](a, b *T) (ok bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return (*a).String() == (*b).String()
}

func addrSetEqual(a, b *[]Addr) (ok bool) {
	al, bl := addrList(a), addrList(b)
	if len(al) != len(bl) {
		return false
	}

	seen := make(map[netip.Prefix]int, len(al))
	for _, addr := range al {
		seen[addr.Prefix]++
	}
	for _, addr := range bl {
		seen[addr.Prefix]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}

	return true
}

func addrList(a *[]Addr) (out []Addr) {
	if a == nil {
		return nil
	}

	return *a
}

// BoolVal dereferences p, returning def if p is nil.
func BoolVal(p *bool, def bool) (v bool) {
	if p == nil {
		return def
	}

	return *p
}

// Bool returns a pointer to a copy of v, for building literal [Stack]
// values.
func Bool(v bool) (p *bool) { return &v }

// IsAuto reports whether the stack is dynamic: for IPv4, DHCP is on; for
// IPv6, DHCP or Autoconf is on.  A disabled stack is never auto.
func (s *Stack) IsAuto() (ok bool) {
	if s == nil || !BoolVal(s.Enabled, false) {
		return false
	}

	if BoolVal(s.DHCP, false) {
		return true
	}

	return s.Family == FamilyIPv6 && BoolVal(s.Autoconf, false)
}

// IsStatic reports whether the stack is enabled, not auto, and carries at
// least one address.
func (s *Stack) IsStatic() (ok bool) {
	if s == nil || !BoolVal(s.Enabled, false) || s.IsAuto() {
		return false
	}

	return s.Addresses != nil && len(*s.Addresses) > 0
}

// ValidForDNS reports whether the stack is enabled and either static or
// auto, the "valid for DNS" predicate from the placement engine.
func (s *Stack) ValidForDNS() (ok bool) {
	if s == nil || !BoolVal(s.Enabled, false) {
		return false
	}

	return s.IsStatic() || s.IsAuto()
}

// PreferredForDNS reports whether the stack is a preferred DNS holder
// candidate: static with addresses, or auto with auto_dns explicitly false.
// For IPv6 a static stack must additionally have a non-empty address list
// (already implied by IsStatic, kept explicit per spec wording).
func (s *Stack) PreferredForDNS() (ok bool) {
	if s == nil || !BoolVal(s.Enabled, false) {
		return false
	}

	if s.IsStatic() {
		return s.Addresses != nil && len(*s.Addresses) > 0
	}

	return s.IsAuto() && s.AutoDNS != nil && !*s.AutoDNS
}
