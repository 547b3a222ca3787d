package surface

import (
	"fmt"
	"io"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables of the extrema searches.
type Config struct {
	// AngularSamples is the number of grid samples per full period of a
	// periodic parameter.
	AngularSamples int `toml:"angular_samples"`
	// MinLinearSamples and MaxLinearSamples bound the number of grid samples
	// along a non-periodic parameter. The count in between is proportional
	// to the length of the iso-curve along that parameter.
	MinLinearSamples int `toml:"min_linear_samples"`
	MaxLinearSamples int `toml:"max_linear_samples"`
	// Seeds is the number of grid samples refined per category (minima,
	// maxima).
	Seeds               int `toml:"seeds"`
	PowellMaxIterations int `toml:"powell_max_iterations"`
	NewtonMaxIterations int `toml:"newton_max_iterations"`
	// BoundarySamples is the number of samples along each edge of a bounded
	// domain.
	BoundarySamples int `toml:"boundary_samples"`
	// PolishRounds bounds the alternating footpoint projections applied to
	// refined extrema. Zero disables polishing.
	PolishRounds int `toml:"polish_rounds"`
	// Workers bounds the number of goroutines of the grid scan.
	Workers int `toml:"workers"`
	// UnboundedRadius is the radius of the region searched when both shapes
	// have infinite parameter ranges.
	UnboundedRadius float64 `toml:"unbounded_radius"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		AngularSamples:      36,
		MinLinearSamples:    8,
		MaxLinearSamples:    72,
		Seeds:               4,
		PowellMaxIterations: 50,
		NewtonMaxIterations: 20,
		BoundarySamples:     36,
		PolishRounds:        8,
		Workers:             runtime.GOMAXPROCS(0),
		UnboundedRadius:     100,
	}
}

// DecodeConfig reads a TOML document over the default configuration and
// validates the result.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range field. The error wraps
// [ErrInvalidInput].
func (cfg Config) Validate() error {
	switch {
	case cfg.AngularSamples < 4:
		return fmt.Errorf("angular_samples must be at least 4, got %d: %w", cfg.AngularSamples, ErrInvalidInput)
	case cfg.MinLinearSamples < 2:
		return fmt.Errorf("min_linear_samples must be at least 2, got %d: %w", cfg.MinLinearSamples, ErrInvalidInput)
	case cfg.MaxLinearSamples < cfg.MinLinearSamples:
		return fmt.Errorf("max_linear_samples (%d) is less than min_linear_samples (%d): %w",
			cfg.MaxLinearSamples, cfg.MinLinearSamples, ErrInvalidInput)
	case cfg.Seeds < 1:
		return fmt.Errorf("seeds must be positive, got %d: %w", cfg.Seeds, ErrInvalidInput)
	case cfg.PowellMaxIterations < 1:
		return fmt.Errorf("powell_max_iterations must be positive, got %d: %w", cfg.PowellMaxIterations, ErrInvalidInput)
	case cfg.NewtonMaxIterations < 1:
		return fmt.Errorf("newton_max_iterations must be positive, got %d: %w", cfg.NewtonMaxIterations, ErrInvalidInput)
	case cfg.BoundarySamples < 2:
		return fmt.Errorf("boundary_samples must be at least 2, got %d: %w", cfg.BoundarySamples, ErrInvalidInput)
	case cfg.PolishRounds < 0:
		return fmt.Errorf("polish_rounds must not be negative, got %d: %w", cfg.PolishRounds, ErrInvalidInput)
	case cfg.Workers < 1:
		return fmt.Errorf("workers must be positive, got %d: %w", cfg.Workers, ErrInvalidInput)
	case !(cfg.UnboundedRadius > 0):
		return fmt.Errorf("unbounded_radius must be positive, got %g: %w", cfg.UnboundedRadius, ErrInvalidInput)
	}
	return nil
}
