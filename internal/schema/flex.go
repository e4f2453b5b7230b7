// Package schema implements the user-facing wire schema: kebab-case YAML
// mapped onto the internal underscored model, tolerant boolean/uint
// decoding, case-insensitive enums with verbatim round-trip for unrecognized
// values, and the prop_list collection that lets the merge core distinguish
// "field absent" from "field set to its zero value". See spec.md §6.
package schema

import (
	"strconv"
	"strings"

	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
	"gopkg.in/yaml.v3"
)

// flexBool decodes a YAML boolean that tolerates the strings "true"/"false"
// in addition to native booleans.
type flexBool bool

// UnmarshalYAML implements the yaml.Unmarshaler interface for *flexBool.
func (b *flexBool) UnmarshalYAML(node *yaml.Node) (err error) {
	var raw string
	if err = node.Decode(&raw); err == nil {
		switch strings.ToLower(raw) {
		case "true":
			*b = true

			return nil
		case "false":
			*b = false

			return nil
		}
	}

	var v bool
	if err = node.Decode(&v); err != nil {
		return ncerrors.InvalidArg("line %d: %q is not a valid boolean", node.Line, node.Value)
	}
	*b = flexBool(v)

	return nil
}

// flexUint decodes a YAML unsigned integer that tolerates a decimal string.
type flexUint uint32

// UnmarshalYAML implements the yaml.Unmarshaler interface for *flexUint.
func (u *flexUint) UnmarshalYAML(node *yaml.Node) (err error) {
	var raw string
	if err = node.Decode(&raw); err == nil {
		n, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			return ncerrors.InvalidArg("line %d: %q is not a valid unsigned integer", node.Line, raw)
		}
		*u = flexUint(n)

		return nil
	}

	var v uint32
	if err = node.Decode(&v); err != nil {
		return ncerrors.InvalidArg("line %d: %q is not a valid unsigned integer", node.Line, node.Value)
	}
	*u = flexUint(v)

	return nil
}

// mapKeys returns the scalar keys of a YAML mapping node, in document
// order.
func mapKeys(node *yaml.Node) (keys []string, err error) {
	if node.Kind != yaml.MappingNode {
		return nil, ncerrors.InvalidArg("line %d: expected a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}

	return keys, nil
}
