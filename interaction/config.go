package interaction

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Default proxy sizes and aim band, in meters.
var (
	DefaultControllerHalfExtents = mgl64.Vec3{0.03, 0.03, 0.07}
	DefaultThumbHalfExtents      = mgl64.Vec3{0.01, 0.01, 0.015}
	DefaultPalmHalfExtents       = mgl64.Vec3{0.045, 0.015, 0.05}
)

const (
	// DefaultNear is the minimum distance of an aim hit.
	DefaultNear = 0.0
	// DefaultFar is the maximum distance of an aim hit.
	DefaultFar = 50.0
)

// Config holds the tunables of the interaction step.
type Config struct {
	// Near and Far bound the distance of aim hits along the aim ray.
	Near float64 `json:"near"`
	Far  float64 `json:"far"`

	ControllerHalfExtents mgl64.Vec3 `json:"controller_half_extents"`
	ThumbHalfExtents      mgl64.Vec3 `json:"thumb_half_extents"`
	PalmHalfExtents       mgl64.Vec3 `json:"palm_half_extents"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Near:                  DefaultNear,
		Far:                   DefaultFar,
		ControllerHalfExtents: DefaultControllerHalfExtents,
		ThumbHalfExtents:      DefaultThumbHalfExtents,
		PalmHalfExtents:       DefaultPalmHalfExtents,
	}
}

// Ensure fills unset fields with defaults.
func (cfg *Config) Ensure() {
	if cfg.Far == 0 {
		cfg.Far = DefaultFar
	}
	if cfg.ControllerHalfExtents == (mgl64.Vec3{}) {
		cfg.ControllerHalfExtents = DefaultControllerHalfExtents
	}
	if cfg.ThumbHalfExtents == (mgl64.Vec3{}) {
		cfg.ThumbHalfExtents = DefaultThumbHalfExtents
	}
	if cfg.PalmHalfExtents == (mgl64.Vec3{}) {
		cfg.PalmHalfExtents = DefaultPalmHalfExtents
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Near < 0 {
		return errors.Errorf("%s.near: must be non-negative, got %v", path, cfg.Near)
	}
	if cfg.Far <= cfg.Near {
		return errors.Errorf("%s.far: must be greater than near (%v), got %v", path, cfg.Near, cfg.Far)
	}
	for name, half := range map[string]mgl64.Vec3{
		"controller_half_extents": cfg.ControllerHalfExtents,
		"thumb_half_extents":      cfg.ThumbHalfExtents,
		"palm_half_extents":       cfg.PalmHalfExtents,
	} {
		if half[0] < 0 || half[1] < 0 || half[2] < 0 {
			return errors.Errorf("%s.%s: must be non-negative, got %v", path, name, half)
		}
	}
	return nil
}
