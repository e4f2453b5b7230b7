// Package ifacemerge implements the merged-interface framework: given a
// desired and a current [BaseInterface], it produces the (current, for-apply,
// for-verify) triple described in §4.3, tracking whether each interface
// changed.
package ifacemerge

// Kind is an interface's type, the closed variant set from §3.
type Kind string

// Kind values.
const (
	KindEthernet    Kind = "ethernet"
	KindVeth        Kind = "veth"
	KindBond        Kind = "bond"
	KindBridge      Kind = "bridge"
	KindOVSBridge   Kind = "ovs-bridge"
	KindOVSInterface Kind = "ovs-interface"
	KindOVSPort     Kind = "ovs-port"
	KindVLAN        Kind = "vlan"
	KindVXLAN       Kind = "vxlan"
	KindMacvlan     Kind = "macvlan"
	KindMacvtap     Kind = "macvtap"
	KindMacsec      Kind = "macsec"
	KindVRF         Kind = "vrf"
	KindInfiniband  Kind = "infiniband"
	KindLoopback    Kind = "loopback"
	KindDummy       Kind = "dummy"
	KindIPsec       Kind = "ipsec"
	KindUnknown     Kind = "unknown"
)

// IsUserSpace reports whether k lives in the OVS user-space namespace rather
// than the kernel-visible one.
func (k Kind) IsUserSpace() (ok bool) {
	switch k {
	case KindOVSBridge, KindOVSInterface, KindOVSPort:
		return true
	default:
		return false
	}
}

// CanHoldIP reports whether an interface of kind k can carry an IP stack at
// all. Controller-only user-space kinds (OVS bridges and ports, which exist
// only to group other interfaces) cannot.
func (k Kind) CanHoldIP() (ok bool) {
	switch k {
	case KindOVSBridge, KindOVSPort:
		return false
	default:
		return true
	}
}

// State is an interface's administrative state.
type State string

// State values.
const (
	StateUp     State = "up"
	StateDown   State = "down"
	StateAbsent State = "absent"
	StateIgnore State = "ignore"
)

// Key identifies an interface by (name, kind); user-space (OVS) names live
// in a parallel namespace from kernel-visible names, so Kind participates in
// the key.
type Key struct {
	Name string
	Kind Kind
}
