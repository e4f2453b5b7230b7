package schema

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"gopkg.in/yaml.v3"
)

// addrWire decodes a single address entry, either the plain "ip/prefix"
// scalar form or the expanded mapping form with valid-life-time /
// preferred-life-time (and their aliases).
type addrWire struct {
	ip                string
	prefixLen         int
	hasPrefixLen      bool
	validLifeTime     string
	preferredLifeTime string
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for *addrWire.
func (a *addrWire) UnmarshalYAML(node *yaml.Node) (err error) {
	if node.Kind == yaml.ScalarNode {
		a.ip = node.Value

		return nil
	}

	if node.Kind != yaml.MappingNode {
		return ncerrors.InvalidArg("line %d: address must be a string or a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "ip":
			a.ip = val.Value
		case "prefix-length":
			var n int
			if err = val.Decode(&n); err != nil {
				return ncerrors.InvalidArg("line %d: invalid prefix-length", val.Line)
			}
			a.prefixLen = n
			a.hasPrefixLen = true
		case "valid-life-time", "valid-left", "valid-lft":
			a.validLifeTime = val.Value
		case "preferred-life-time", "preferred-left", "preferred-lft":
			a.preferredLifeTime = val.Value
		case "mptcp-flags":
			// Query-only; accepted on input and discarded here.
		default:
			return ncerrors.InvalidArg("line %d: unknown address field %q", val.Line, key)
		}
	}

	return nil
}

// toAddr converts a into a fully resolved [ipstack.Addr], applying the CIDR
// canonicalization rule: a missing prefix length defaults to 32 (v4) / 128
// (v6), and the address is masked to the prefix.
func (a addrWire) toAddr() (addr ipstack.Addr, err error) {
	ipOnly, cidrLen, hasCidr := strings.Cut(a.ip, "/")

	parsed, err := netip.ParseAddr(ipOnly)
	if err != nil {
		return ipstack.Addr{}, ncerrors.InvalidArg("address %q is not a valid ip", a.ip)
	}

	bits := a.prefixLen
	hasBits := a.hasPrefixLen
	if hasCidr {
		var n int
		if _, serr := fmt.Sscanf(cidrLen, "%d", &n); serr != nil {
			return ipstack.Addr{}, ncerrors.InvalidArg("address %q has an invalid prefix", a.ip)
		}
		bits = n
		hasBits = true
	}

	if !hasBits {
		if parsed.Is4() {
			bits = 32
		} else {
			bits = 128
		}
	}

	prefix := netip.PrefixFrom(parsed, bits)
	if !prefix.IsValid() {
		return ipstack.Addr{}, ncerrors.InvalidArg("address %q/%d is not a valid prefix", ipOnly, bits)
	}
	prefix = prefix.Masked()

	addr = ipstack.Addr{Prefix: prefix}

	if a.validLifeTime != "" {
		lt, lerr := parseLifetime(a.validLifeTime)
		if lerr != nil {
			return ipstack.Addr{}, lerr
		}
		addr.ValidLifetime = &lt
	}
	if a.preferredLifeTime != "" {
		lt, lerr := parseLifetime(a.preferredLifeTime)
		if lerr != nil {
			return ipstack.Addr{}, lerr
		}
		addr.PreferredLifetime = &lt
	}

	return addr, nil
}
