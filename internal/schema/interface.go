package schema

import (
	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"gopkg.in/yaml.v3"
)

// interfaceKnownKeys is the allow-list of top-level interface keys. Unlike
// the ip stack blocks, an interface's own keys are not prop-tracked: the
// merge core never needs to ask "did the user write mtu at all" the way it
// asks that of ip-stack fields.
var interfaceKnownKeys = map[string]struct{}{
	"name":                      {},
	"type":                      {},
	"state":                     {},
	"controller":                {},
	"controller-type":           {},
	"ipv4":                      {},
	"ipv6":                      {},
	"mtu":                       {},
	"mac-address":               {},
	"accept-all-mac-addresses": {},
	"wait-ip":                   {},
	"routes":                    {},
	"route-rules":               {},
}

// InterfaceWire is the wire decoding of one interface entry.
type InterfaceWire struct {
	iface *ifacemerge.BaseInterface
}

// Interface returns the decoded [ifacemerge.BaseInterface].
func (w *InterfaceWire) Interface() (iface *ifacemerge.BaseInterface) { return w.iface }

// UnmarshalYAML implements the yaml.Unmarshaler interface for *InterfaceWire.
func (w *InterfaceWire) UnmarshalYAML(node *yaml.Node) (err error) {
	if node.Kind != yaml.MappingNode {
		return ncerrors.InvalidArg("line %d: interface must be a mapping", node.Line)
	}

	iface := &ifacemerge.BaseInterface{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]

		if _, known := interfaceKnownKeys[key]; !known {
			return ncerrors.InvalidArg("line %d: unknown interface field %q", val.Line, key)
		}

		if err = decodeInterfaceField(iface, key, val); err != nil {
			return err
		}
	}

	if iface.Name == "" {
		return ncerrors.InvalidArg("line %d: interface is missing a name", node.Line)
	}

	w.iface = iface

	return nil
}

func decodeInterfaceField(iface *ifacemerge.BaseInterface, key string, val *yaml.Node) (err error) {
	switch key {
	case "name":
		iface.Name = val.Value
	case "type":
		iface.Kind = ifacemerge.Kind(val.Value)
	case "state":
		iface.State = ifacemerge.State(val.Value)
	case "controller":
		iface.Controller = val.Value
	case "controller-type":
		iface.ControllerKind = ifacemerge.Kind(val.Value)
	case "ipv4":
		var sw StackWire
		if err = val.Decode(&sw); err != nil {
			return err
		}
		s := sw.Stack()
		s.Family = ipstack.FamilyIPv4
		iface.IPv4 = s
	case "ipv6":
		var sw StackWire
		if err = val.Decode(&sw); err != nil {
			return err
		}
		s := sw.Stack()
		s.Family = ipstack.FamilyIPv6
		iface.IPv6 = s
	case "mtu":
		var u flexUint
		if err = val.Decode(&u); err != nil {
			return err
		}
		iface.MTU = uint32(u)
	case "mac-address":
		iface.MACAddress = val.Value
	case "accept-all-mac-addresses":
		var b flexBool
		if err = val.Decode(&b); err != nil {
			return err
		}
		bv := bool(b)
		iface.AcceptAllMACAddresses = &bv
	case "wait-ip":
		iface.WaitIP = ipstack.WaitIP(val.Value)
	case "routes":
		routesNode := findKey(val, "config")
		if routesNode == nil {
			return nil
		}
		if iface.Routes, err = decodeRoutes(routesNode); err != nil {
			return err
		}
	case "route-rules":
		rulesNode := findKey(val, "config")
		if rulesNode == nil {
			return nil
		}
		if iface.RouteRules, err = decodeRouteRules(rulesNode); err != nil {
			return err
		}
	}

	return nil
}

// findKey returns the value node mapped to key within mapping node, or nil.
func findKey(node *yaml.Node, key string) (val *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}
