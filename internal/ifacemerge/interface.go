package ifacemerge

import (
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/routestack"
)

// BaseInterface is the shared shape of every interface kind, regardless of
// the per-kind detail (bond/bridge/OVS/VLAN/...) that spec.md treats as a
// uniform consumer of this framework.
type BaseInterface struct {
	// Name is the interface's kernel-visible (or OVS user-space) name.
	Name string

	// Kind is the interface's type.
	Kind Kind

	// State is the interface's administrative state.
	State State

	// Controller is a non-owning back-reference to this interface's
	// controller (parent bridge/bond/vrf), named by string per the design
	// notes — there are no pointer cycles in the interface graph.
	Controller string

	// ControllerKind is the kind of Controller, or KindUnknown if Controller
	// is empty.
	ControllerKind Kind

	// IPv4 is this interface's IPv4 stack, or nil if unconfigured.
	IPv4 *ipstack.Stack

	// IPv6 is this interface's IPv6 stack, or nil if unconfigured.
	IPv6 *ipstack.Stack

	// MTU is the interface's maximum transmission unit, or 0 if unset.
	MTU uint32

	// MACAddress is the interface's hardware address, or empty if unset.
	MACAddress string

	// AcceptAllMACAddresses enables promiscuous-like acceptance of frames
	// destined for any MAC address.
	AcceptAllMACAddresses *bool

	// WaitIP is the interface's wait-for-ip policy.
	WaitIP ipstack.WaitIP

	// Routes carries the routes destined for this interface. The merge core
	// does not interpret their contents; they ride through for-apply/
	// for-verify untouched, per §3's route/route-rule scoping.
	Routes []routestack.RouteEntry

	// RouteRules carries the route rules associated with this interface,
	// with the same pass-through treatment as Routes.
	RouteRules []routestack.RouteRuleEntry

	// ExternallyManaged reports whether some other tool, not this engine,
	// owns this interface's configuration. Used only by DNS placement to
	// disqualify an interface as a new DNS holder.
	ExternallyManaged bool

	// Unmanaged reports whether the backend does not manage this interface
	// at all. Used the same way as ExternallyManaged.
	Unmanaged bool
}

// Key returns iface's (name, kind) identity.
func (iface *BaseInterface) Key() (k Key) {
	if iface == nil {
		return Key{}
	}

	return Key{Name: iface.Name, Kind: iface.Kind}
}

// Clone returns a deep-enough copy of iface for independent mutation as a
// for-apply or for-verify view.
func (iface *BaseInterface) Clone() (cp *BaseInterface) {
	if iface == nil {
		return nil
	}

	c := *iface
	c.IPv4 = iface.IPv4.Clone()
	c.IPv6 = iface.IPv6.Clone()

	if iface.Routes != nil {
		c.Routes = append([]routestack.RouteEntry(nil), iface.Routes...)
	}
	if iface.RouteRules != nil {
		c.RouteRules = append([]routestack.RouteRuleEntry(nil), iface.RouteRules...)
	}

	return &c
}

// StackFor returns iface's stack for the given family, or nil.
func (iface *BaseInterface) StackFor(fam ipstack.Family) (s *ipstack.Stack) {
	if iface == nil {
		return nil
	}

	switch fam {
	case ipstack.FamilyIPv4:
		return iface.IPv4
	case ipstack.FamilyIPv6:
		return iface.IPv6
	default:
		return nil
	}
}

// SetStackFor sets iface's stack for the given family.
func (iface *BaseInterface) SetStackFor(fam ipstack.Family, s *ipstack.Stack) {
	switch fam {
	case ipstack.FamilyIPv4:
		iface.IPv4 = s
	case ipstack.FamilyIPv6:
		iface.IPv6 = s
	}
}
