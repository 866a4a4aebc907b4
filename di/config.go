package di

import "github.com/kbukum/beankit/validation"

// Invalidation controls how far a replacement propagates to dependents.
type Invalidation string

const (
	// InvalidateDirect clears only beans that depend on the replaced bean.
	InvalidateDirect Invalidation = "direct"
	// InvalidateTransitive also clears their dependents, up to the roots.
	InvalidateTransitive Invalidation = "transitive"
)

// Config holds Manager settings.
type Config struct {
	Invalidation Invalidation `yaml:"invalidation" mapstructure:"invalidation" validate:"oneof=direct transitive"`
	// DisableCycleDetection lets re-entrant factories recurse without bound.
	DisableCycleDetection bool `yaml:"disable_cycle_detection" mapstructure:"disable_cycle_detection"`
}

// ApplyDefaults sets transitive invalidation when unset.
func (c *Config) ApplyDefaults() {
	if c.Invalidation == "" {
		c.Invalidation = InvalidateTransitive
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
