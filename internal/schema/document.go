package schema

import (
	"github.com/AdguardTeam/netreconcile/internal/aghalg"
	"github.com/AdguardTeam/netreconcile/internal/dnsplace"
	"github.com/AdguardTeam/netreconcile/internal/ifacemerge"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"gopkg.in/yaml.v3"
)

// Document is the top-level desired-state document: an interface list plus
// the global DNS configuration, the shape a user hands the reconciler.
type Document struct {
	Interfaces []*ifacemerge.BaseInterface
	DNS        dnsplace.GlobalConfig
}

var documentKnownKeys = map[string]struct{}{
	"interfaces":   {},
	"dns-resolver": {},
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for *Document.
func (d *Document) UnmarshalYAML(node *yaml.Node) (err error) {
	if node.Kind != yaml.MappingNode {
		return ncerrors.InvalidArg("line %d: top-level document must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]

		if _, known := documentKnownKeys[key]; !known {
			return ncerrors.InvalidArg("line %d: unknown top-level field %q", val.Line, key)
		}

		switch key {
		case "interfaces":
			var wires []*InterfaceWire
			if err = val.Decode(&wires); err != nil {
				return err
			}
			d.Interfaces = make([]*ifacemerge.BaseInterface, len(wires))
			for wi, w := range wires {
				d.Interfaces[wi] = w.Interface()
			}

			if err = checkUniqueNames(d.Interfaces); err != nil {
				return err
			}
		case "dns-resolver":
			if err = decodeDNSResolver(val, &d.DNS); err != nil {
				return err
			}
		}
	}

	return nil
}

var dnsResolverKnownKeys = map[string]struct{}{
	"config": {},
}

var dnsConfigKnownKeys = map[string]struct{}{
	"server":  {},
	"search":  {},
	"options": {},
}

// decodeDNSResolver decodes the "dns-resolver: config: {...}" block.
func decodeDNSResolver(node *yaml.Node, out *dnsplace.GlobalConfig) (err error) {
	if node.Kind != yaml.MappingNode {
		return ncerrors.InvalidArg("line %d: dns-resolver must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]

		if _, known := dnsResolverKnownKeys[key]; !known {
			return ncerrors.InvalidArg("line %d: unknown dns-resolver field %q", val.Line, key)
		}

		if key != "config" {
			continue
		}

		if val.Kind != yaml.MappingNode {
			return ncerrors.InvalidArg("line %d: dns-resolver config must be a mapping", val.Line)
		}

		for j := 0; j+1 < len(val.Content); j += 2 {
			ckey, cval := val.Content[j].Value, val.Content[j+1]

			if _, known := dnsConfigKnownKeys[ckey]; !known {
				return ncerrors.InvalidArg("line %d: unknown dns-resolver config field %q", cval.Line, ckey)
			}

			switch ckey {
			case "server":
				if err = cval.Decode(&out.Servers); err != nil {
					return ncerrors.InvalidArg("line %d: invalid server list", cval.Line)
				}
			case "search":
				if err = cval.Decode(&out.Searches); err != nil {
					return ncerrors.InvalidArg("line %d: invalid search list", cval.Line)
				}
			case "options":
				if err = cval.Decode(&out.Options); err != nil {
					return ncerrors.InvalidArg("line %d: invalid options list", cval.Line)
				}
			}
		}
	}

	return nil
}

// checkUniqueNames rejects a document naming the same interface twice,
// using the uniqueness checker the rest of this module's teacher lineage
// uses for validating collections of user input.
func checkUniqueNames(ifaces []*ifacemerge.BaseInterface) (err error) {
	uc := make(aghalg.UniqChecker[string], len(ifaces))
	for _, iface := range ifaces {
		uc.Add(iface.Name)
	}

	if err = uc.Validate(); err != nil {
		return ncerrors.InvalidArg("duplicate interface name: %s", err)
	}

	return nil
}

// Parse decodes raw YAML bytes into a [Document].
func Parse(raw []byte) (doc *Document, err error) {
	doc = &Document{}
	if err = yaml.Unmarshal(raw, doc); err != nil {
		return nil, err
	}

	return doc, nil
}
