// Package engineconfig holds the engine-level knobs that sit above the
// reconcile core itself: the apply deadline, the desired-state source, and
// logging configuration.  Grounded on the teacher's dhcpsvc.Config shape —
// a flat struct with a Validate method, no nested builder.
package engineconfig

import (
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/AdguardTeam/netreconcile/internal/nclog"
)

// Config is the top-level engine configuration.
type Config struct {
	// DesiredStatePath is the path to the YAML desired-state document.  It
	// must not be empty.
	DesiredStatePath string

	// ApplyTimeout bounds the backend's Apply call; it does not bound the
	// whole reconcile, per §5.  It must be positive.
	ApplyTimeout time.Duration

	// LogFormat selects the logger's output encoding.
	LogFormat nclog.Format

	// LogLevel selects the minimum logged level.
	LogLevel int
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (conf *Config) Validate() (err error) {
	if conf == nil {
		return errors.ErrNoValue
	}

	return errors.Join(
		validate.NotEmpty("DesiredStatePath", conf.DesiredStatePath),
		validate.Positive("ApplyTimeout", conf.ApplyTimeout),
	)
}
