package surface

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`
angular_samples = 72
seeds = 8
unbounded_radius = 1e3
`))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.AngularSamples = 72
	want.Seeds = 8
	want.UnboundedRadius = 1000
	diff(t, want, cfg)

	cfg, err = DecodeConfig(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	diff(t, DefaultConfig(), cfg)
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{"syntax", "seeds = ", false},
		{"type", `seeds = "four"`, false},
		{"seeds", "seeds = 0", true},
		{"angular", "angular_samples = 2", true},
		{"linear", "min_linear_samples = 10\nmax_linear_samples = 9", true},
		{"polish", "polish_rounds = -1", true},
		{"radius", "unbounded_radius = 0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrInvalidInput); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalidInput) = %t, want %t", err, got, tt.invalid)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.PolishRounds = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("polishing should be optional: %v", err)
	}
}
