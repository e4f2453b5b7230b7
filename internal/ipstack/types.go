// Package ipstack implements the IP value model, sanitizer, and merger: the
// part of the reconciliation core that normalizes a single interface's IPv4
// or IPv6 configuration and merges a desired stack against a current one.
//
// Optional ("three-valued") fields are represented as pointers, the same way
// the rest of the Go ecosystem represents Option<T>: nil means "the user did
// not write this field", a non-nil pointer means "the user wrote this value,
// including its zero value".  [PropSet] exists alongside this for the one
// thing a bare pointer cannot express on its own: which keys the wire
// decoder actually saw, used to answer "enabled in prop_list?" without
// re-deriving it from field nil-ness at every call site.  Unknown fields are
// rejected by the schema package's key allow-list, not by PropSet.
package ipstack

import (
	"fmt"
	"net/netip"
)

// Family is an IP address family.
type Family uint8

// Family values.  The numeric codes match the netlink-facing AF_INET /
// AF_INET6 constants named in the wire contract.
const (
	FamilyUnknown Family = 0
	FamilyIPv4    Family = 2
	FamilyIPv6    Family = 10
)

// String implements the fmt.Stringer interface for Family.
func (f Family) String() (s string) {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// WaitIP is the interface's wait-for-ip policy.
type WaitIP string

// WaitIP values.
const (
	WaitIPNone     WaitIP = ""
	WaitIPAny      WaitIP = "any"
	WaitIPv4       WaitIP = "ipv4"
	WaitIPv6       WaitIP = "ipv6"
	WaitIPv4AndV6  WaitIP = "ipv4+ipv6"
)

// Dhcpv4ClientID is the DHCPv4 client-identifier variant.  Unrecognized wire
// strings are preserved verbatim in Raw with Known left as its zero value,
// so that round-tripping through the schema never loses a backend-specific
// string.
type Dhcpv4ClientID struct {
	// Raw is the original wire string.  It is always set, including for
	// recognized variants, so String always round-trips.
	Raw string

	// Known is the recognized form, or dhcpv4ClientIDOther if Raw did not
	// match a recognized variant.
	Known dhcpv4ClientIDKind
}

type dhcpv4ClientIDKind uint8

const (
	dhcpv4ClientIDOther dhcpv4ClientIDKind = iota
	dhcpv4ClientIDLinkLayerAddress
	dhcpv4ClientIDIaidPlusDuid
)

// NewDhcpv4ClientID parses s into a [Dhcpv4ClientID], preserving s verbatim
// regardless of whether it matches a recognized variant.
func NewDhcpv4ClientID(s string) (id Dhcpv4ClientID) {
	id = Dhcpv4ClientID{Raw: s}
	switch lowerASCII(s) {
	case "ll":
		id.Known = dhcpv4ClientIDLinkLayerAddress
	case "iaid+duid":
		id.Known = dhcpv4ClientIDIaidPlusDuid
	default:
		id.Known = dhcpv4ClientIDOther
	}

	return id
}

// String implements the fmt.Stringer interface for Dhcpv4ClientID.  It
// always returns the original wire string.
func (id Dhcpv4ClientID) String() (s string) { return id.Raw }

// Dhcpv6Duid is the DHCPv6 DUID variant, round-tripped the same way as
// [Dhcpv4ClientID].
type Dhcpv6Duid struct {
	Raw   string
	Known dhcpv6DuidKind
}

type dhcpv6DuidKind uint8

const (
	dhcpv6DuidOther dhcpv6DuidKind = iota
	dhcpv6DuidLinkLayerAddressPlusTime
	dhcpv6DuidEnterpriseNumber
	dhcpv6DuidLinkLayerAddress
	dhcpv6DuidUUID
)

// NewDhcpv6Duid parses s into a [Dhcpv6Duid].
func NewDhcpv6Duid(s string) (d Dhcpv6Duid) {
	d = Dhcpv6Duid{Raw: s}
	switch lowerASCII(s) {
	case "llt":
		d.Known = dhcpv6DuidLinkLayerAddressPlusTime
	case "en":
		d.Known = dhcpv6DuidEnterpriseNumber
	case "ll":
		d.Known = dhcpv6DuidLinkLayerAddress
	case "uuid":
		d.Known = dhcpv6DuidUUID
	default:
		d.Known = dhcpv6DuidOther
	}

	return d
}

// String implements the fmt.Stringer interface for Dhcpv6Duid.
func (d Dhcpv6Duid) String() (s string) { return d.Raw }

// AddrGenMode is the IPv6 address-generation mode.
type AddrGenMode struct {
	Raw   string
	Known addrGenModeKind
}

type addrGenModeKind uint8

const (
	addrGenModeOther addrGenModeKind = iota
	addrGenModeEui64
	addrGenModeStablePrivacy
)

// NewAddrGenMode parses s into an [AddrGenMode].
func NewAddrGenMode(s string) (m AddrGenMode) {
	m = AddrGenMode{Raw: s}
	switch lowerASCII(s) {
	case "eui64":
		m.Known = addrGenModeEui64
	case "stable-privacy":
		m.Known = addrGenModeStablePrivacy
	default:
		m.Known = addrGenModeOther
	}

	return m
}

// String implements the fmt.Stringer interface for AddrGenMode.
func (m AddrGenMode) String() (s string) { return m.Raw }

func lowerASCII(s string) (out string) {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}

	return string(b)
}

// Addr is a single address on an interface stack.
type Addr struct {
	// Prefix is the address and its prefix length, already masked to the
	// prefix per the CIDR-canonicalization rule.
	Prefix netip.Prefix

	// ValidLifetime is the address's valid lifetime as parsed from the wire
	// "forever" / "<N>sec" form.  A nil ValidLifetime (or one for which
	// [Lifetime.IsForever] is true) marks the address as static; a finite
	// lifetime marks it as an auto address learned from DHCP/RA.
	ValidLifetime *Lifetime

	// PreferredLifetime mirrors ValidLifetime for the preferred lifetime.
	PreferredLifetime *Lifetime

	// MPTCPFlags is query-only: populated when reading current state,
	// stripped before apply.
	MPTCPFlags string
}

// IsAuto reports whether a has a finite valid lifetime, making it an address
// learned from DHCP or router advertisement rather than user-configured.
func (a Addr) IsAuto() (ok bool) {
	return a.ValidLifetime != nil && !a.ValidLifetime.IsForever()
}

// IsIPv6LinkLocal reports whether a's address falls in fe80::/10.
func (a Addr) IsIPv6LinkLocal() (ok bool) {
	return a.Prefix.Addr().Is6() && ipv6LinkLocalRange.Contains(a.Prefix.Addr())
}

var ipv6LinkLocalRange = netip.MustParsePrefix("fe80::/10")

// String implements the fmt.Stringer interface for Addr.
func (a Addr) String() (s string) {
	return a.Prefix.String()
}

// ClearLifetimes clears both lifetime fields, the way sanitize does for
// addresses surviving the auto-address purge and for the dynamic-to-static
// conversion.
func (a *Addr) ClearLifetimes() {
	a.ValidLifetime = nil
	a.PreferredLifetime = nil
}

// Lifetime is an address lifetime: either the "forever" sentinel or a
// duration measured in whole seconds, per the wire "<N>sec" format.
type Lifetime struct {
	seconds uint32
	forever bool
}

// Forever is the "forever" lifetime sentinel.
var Forever = Lifetime{forever: true}

// NewLifetimeSeconds returns a finite lifetime of n seconds.
func NewLifetimeSeconds(n uint32) (l Lifetime) {
	return Lifetime{seconds: n}
}

// IsForever reports whether l is the "forever" sentinel.
func (l Lifetime) IsForever() (ok bool) { return l.forever }

// Seconds returns l's duration in seconds.  It panics if l is the "forever"
// sentinel; callers must check IsForever first.
func (l Lifetime) Seconds() (n uint32) {
	if l.forever {
		panic("ipstack: Seconds called on forever lifetime")
	}

	return l.seconds
}

// String implements the fmt.Stringer interface for Lifetime.
func (l Lifetime) String() (s string) {
	if l.forever {
		return "forever"
	}

	return fmt.Sprintf("%dsec", l.seconds)
}
