package schema

import (
	"net/netip"

	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"github.com/AdguardTeam/netreconcile/internal/routestack"
	"gopkg.in/yaml.v3"
)

// routeWire is the wire decoding of a single route entry. Field contents are
// passed through opaquely; this engine never merges or validates them.
type routeWire struct {
	Destination string `yaml:"destination"`
	NextHop     string `yaml:"next-hop-address"`
	Interface   string `yaml:"next-hop-interface"`
	TableID     uint32 `yaml:"table-id"`
	Metric      int    `yaml:"metric"`
}

func (r routeWire) toEntry() (e routestack.RouteEntry, err error) {
	if r.Destination != "" {
		e.Destination, err = netip.ParsePrefix(r.Destination)
		if err != nil {
			return routestack.RouteEntry{}, ncerrors.InvalidArg(
				"route destination %q is not a valid prefix", r.Destination,
			)
		}
	}

	if r.NextHop != "" {
		e.NextHop, err = netip.ParseAddr(r.NextHop)
		if err != nil {
			return routestack.RouteEntry{}, ncerrors.InvalidArg(
				"route next-hop %q is not a valid address", r.NextHop,
			)
		}
	}

	e.Interface = r.Interface
	e.TableID = r.TableID
	e.Metric = r.Metric

	return e, nil
}

// routeRuleWire is the wire decoding of a single route-rule entry.
type routeRuleWire struct {
	IPFrom   string `yaml:"ip-from"`
	IPTo     string `yaml:"ip-to"`
	Action   string `yaml:"action"`
	Priority uint32 `yaml:"priority"`
	TableID  uint32 `yaml:"route-table"`
	FwMark   uint32 `yaml:"fwmark"`
	FwMask   uint32 `yaml:"fwmask"`
}

func (r routeRuleWire) toEntry() (e routestack.RouteRuleEntry, err error) {
	if r.IPFrom != "" {
		e.IPFrom, err = netip.ParsePrefix(r.IPFrom)
		if err != nil {
			return routestack.RouteRuleEntry{}, ncerrors.InvalidArg(
				"route rule ip-from %q is not a valid prefix", r.IPFrom,
			)
		}
	}

	if r.IPTo != "" {
		e.IPTo, err = netip.ParsePrefix(r.IPTo)
		if err != nil {
			return routestack.RouteRuleEntry{}, ncerrors.InvalidArg(
				"route rule ip-to %q is not a valid prefix", r.IPTo,
			)
		}
	}

	switch r.Action {
	case "", "table":
		e.Action = routestack.ActionTable
	case "blackhole":
		e.Action = routestack.ActionBlackhole
	default:
		return routestack.RouteRuleEntry{}, ncerrors.InvalidArg(
			"route rule action %q is not recognized", r.Action,
		)
	}

	e.Priority = r.Priority
	e.TableID = r.TableID
	e.FwMark = r.FwMark
	e.FwMask = r.FwMask

	return e, nil
}

// decodeRoutes decodes a "config" list of route entries from node.
func decodeRoutes(node *yaml.Node) (entries []routestack.RouteEntry, err error) {
	var wires []routeWire
	if err = node.Decode(&wires); err != nil {
		return nil, ncerrors.InvalidArg("line %d: invalid route list", node.Line)
	}

	entries = make([]routestack.RouteEntry, 0, len(wires))
	for _, w := range wires {
		e, eerr := w.toEntry()
		if eerr != nil {
			return nil, eerr
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// decodeRouteRules decodes a "config" list of route-rule entries from node.
func decodeRouteRules(node *yaml.Node) (entries []routestack.RouteRuleEntry, err error) {
	var wires []routeRuleWire
	if err = node.Decode(&wires); err != nil {
		return nil, ncerrors.InvalidArg("line %d: invalid route-rule list", node.Line)
	}

	entries = make([]routestack.RouteRuleEntry, 0, len(wires))
	for _, w := range wires {
		e, eerr := w.toEntry()
		if eerr != nil {
			return nil, eerr
		}
		entries = append(entries, e)
	}

	return entries, nil
}
