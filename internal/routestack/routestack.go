// Package routestack holds the route and route-rule value types. Per
// spec.md §1 ("Not a routing daemon... delegated to the backend"), this
// engine does not merge or validate route contents — these types exist only
// so that [ifacemerge.BaseInterface] can carry them opaquely from desired
// through to for-apply/for-verify, the way the backend's wire format
// expects them to ride alongside IP configuration.
package routestack

import "net/netip"

// RuleAction is a route rule's action.
type RuleAction string

// RuleAction values.
const (
	ActionUnknown   RuleAction = ""
	ActionTable     RuleAction = "table"
	ActionBlackhole RuleAction = "blackhole"
)

// RouteEntry is a single route destined for an interface.
type RouteEntry struct {
	// Destination is the route's destination prefix.
	Destination netip.Prefix

	// NextHop is the route's next-hop address, or the zero [netip.Addr] for
	// a directly-connected route.
	NextHop netip.Addr

	// Interface is the outgoing interface name.
	Interface string

	// TableID is the routing table this route belongs to.
	TableID uint32

	// Metric is the route's priority; lower wins.
	Metric int
}

// RouteRuleEntry is a single policy-routing rule.
type RouteRuleEntry struct {
	// IPFrom is the source prefix to match, or the zero [netip.Prefix] for
	// "any".
	IPFrom netip.Prefix

	// IPTo is the destination prefix to match, or the zero [netip.Prefix]
	// for "any".
	IPTo netip.Prefix

	// Action is the rule's action.
	Action RuleAction

	// Priority is the rule's evaluation priority; lower is evaluated first.
	Priority uint32

	// TableID is the table a "table" action rule directs lookups to.
	TableID uint32

	// FwMark and FwMask match packets by firewall mark, when FwMask is
	// non-zero.
	FwMark uint32
	FwMask uint32
}
