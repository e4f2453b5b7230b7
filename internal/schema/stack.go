package schema

import (
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"gopkg.in/yaml.v3"
)

// stackKeyToProp maps a kebab-case wire key to its internal prop name. Keys
// absent from this table are rejected by UnmarshalYAML.
var stackKeyToProp = map[string]string{
	"enabled":              ipstack.PropEnabled,
	"dhcp":                 ipstack.PropDHCP,
	"autoconf":             ipstack.PropAutoconf,
	"address":              ipstack.PropAddresses,
	"auto-dns":             ipstack.PropAutoDNS,
	"auto-gateway":         ipstack.PropAutoGateway,
	"auto-routes":          ipstack.PropAutoRoutes,
	"auto-route-table-id":  ipstack.PropAutoTableID,
	"auto-route-metric":    ipstack.PropAutoRouteMetric,
	"dhcp-client-id":       ipstack.PropDHCPClientID,
	"dhcp-duid":            ipstack.PropDHCPDuid,
	"addr-gen-mode":        ipstack.PropAddrGenMode,
	"token":                ipstack.PropToken,
	"dhcp-send-hostname":   ipstack.PropDHCPSendHostname,
	"dhcp-custom-hostname": ipstack.PropDHCPCustomHost,
	"allow-extra-address":  ipstack.PropAllowExtraAddress,
}

// StackWire is the wire decoding of one address family's IP stack block.
type StackWire struct {
	stack *ipstack.Stack
}

// Stack returns the decoded [ipstack.Stack]. Family must still be set by the
// caller (StackWire has no way to know which family block it decoded).
func (w *StackWire) Stack() (s *ipstack.Stack) { return w.stack }

// UnmarshalYAML implements the yaml.Unmarshaler interface for *StackWire.
func (w *StackWire) UnmarshalYAML(node *yaml.Node) (err error) {
	if node.Kind != yaml.MappingNode {
		return ncerrors.InvalidArg("line %d: ip stack must be a mapping", node.Line)
	}

	s := &ipstack.Stack{PropList: ipstack.PropSet{}}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]

		prop, known := stackKeyToProp[key]
		if !known {
			return ncerrors.InvalidArg("line %d: unknown ip stack field %q", val.Line, key)
		}
		s.PropList.Add(prop)

		if err = decodeStackField(s, key, val); err != nil {
			return err
		}
	}

	w.stack = s

	return nil
}

// decodeStackField decodes a single recognized wire key into s.
func decodeStackField(s *ipstack.Stack, key string, val *yaml.Node) (err error) {
	switch key {
	case "enabled":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.Enabled = &bv
	case "dhcp":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.DHCP = &bv
	case "autoconf":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.Autoconf = &bv
	case "address":
		var wires []addrWire
		if err = val.Decode(&wires); err != nil {
			return ncerrors.InvalidArg("line %d: invalid address list", val.Line)
		}
		addrs := make([]ipstack.Addr, 0, len(wires))
		for _, aw := range wires {
			a, aerr := aw.toAddr()
			if aerr != nil {
				return aerr
			}
			addrs = append(addrs, a)
		}
		s.Addresses = &addrs
	case "auto-dns":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.AutoDNS = &bv
	case "auto-gateway":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.AutoGateway = &bv
	case "auto-routes":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.AutoRoutes = &bv
	case "auto-route-table-id":
		var u flexUint
		if err = val.Decode(&u); err != nil {
			return err
		}
		uv := uint32(u)
		s.AutoTableID = &uv
	case "auto-route-metric":
		var n int32
		if err = val.Decode(&n); err != nil {
			return ncerrors.InvalidArg("line %d: invalid auto-route-metric", val.Line)
		}
		s.AutoRouteMetric = &n
	case "dhcp-client-id":
		id := ipstack.NewDhcpv4ClientID(val.Value)
		s.DHCPClientID = &id
	case "dhcp-duid":
		d := ipstack.NewDhcpv6Duid(val.Value)
		s.DHCPDuid = &d
	case "addr-gen-mode":
		m := ipstack.NewAddrGenMode(val.Value)
		s.AddrGenMode = &m
	case "token":
		tok := val.Value
		s.Token = &tok
	case "dhcp-send-hostname":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.DHCPSendHostname = &bv
	case "dhcp-custom-hostname":
		h := val.Value
		s.DHCPCustomHostname = &h
	case "allow-extra-address":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		s.AllowExtraAddress = &bv
	}

	return nil
}
