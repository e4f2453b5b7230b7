package schema

import (
	"strconv"
	"strings"

	"github.com/AdguardTeam/netreconcile/internal/ipstack"
	"github.com/AdguardTeam/netreconcile/internal/ncerrors"
)

// parseLifetime parses the wire "forever" / "<N>sec" textual form.
func parseLifetime(raw string) (lt ipstack.Lifetime, err error) {
	if raw == "" || strings.EqualFold(raw, "forever") {
		return ipstack.Forever, nil
	}

	n, ok := strings.CutSuffix(raw, "sec")
	if !ok {
		return ipstack.Lifetime{}, ncerrors.InvalidArg(
			"lifetime %q: must be \"forever\" or \"<N>sec\"", raw,
		)
	}

	v, perr := strconv.ParseUint(n, 10, 32)
	if perr != nil {
		return ipstack.Lifetime{}, ncerrors.InvalidArg("lifetime %q: invalid seconds count", raw)
	}

	return ipstack.NewLifetimeSeconds(uint32(v)), nil
}

// formatLifetime is the inverse of parseLifetime.
func formatLifetime(lt *ipstack.Lifetime) (raw string) {
	if lt == nil {
		return ""
	}

	return lt.String()
}
