// Package policy holds the per-location verification configuration: face
// threshold, distance normalization, required signal combination, and the
// grace window for lateness. Policies are read-only at decision time.
package policy

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// SignalRequirement selects which location signals must pass in addition to
// the face match.
type SignalRequirement string

const (
	RequireFaceOnly   SignalRequirement = "face-only"
	RequireGPS        SignalRequirement = "gps"
	RequireWifi       SignalRequirement = "wifi"
	RequireGPSAndWifi SignalRequirement = "gps-and-wifi"
	RequireGPSOrWifi  SignalRequirement = "gps-or-wifi"
)

// Policy is the effective verification configuration for one location.
type Policy struct {
	// FaceThreshold is the minimum similarity score (0-100) for a face pass.
	FaceThreshold float64 `yaml:"face_threshold"`
	// DistanceNormalization maps cosine distance to score: a distance of
	// exactly this value scores 0. Shared by enrollment and verification.
	DistanceNormalization float64 `yaml:"distance_normalization"`
	// RequiredSignals selects the mandatory location signal combination.
	RequiredSignals SignalRequirement `yaml:"required_signals"`
	// GraceMinutes is the window after scheduled start before a check-in
	// counts as late.
	GraceMinutes int `yaml:"grace_minutes"`
	// MinEnrollQuality is the minimum upstream source-quality score a new
	// descriptor needs to be accepted for enrollment.
	MinEnrollQuality float64 `yaml:"min_enroll_quality"`
	// ExclusiveEnrollment makes a new enrollment replace prior descriptors
	// instead of accumulating them.
	ExclusiveEnrollment bool `yaml:"exclusive_enrollment"`
}

// Default returns the global default policy parsed from the embedded YAML.
func Default() Policy {
	var p Policy
	if err := yaml.Unmarshal(defaultsYAML, &p); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return p
}

// Validate checks a policy for values the engine cannot act on.
func (p Policy) Validate() error {
	if p.FaceThreshold < 0 || p.FaceThreshold > 100 {
		return fmt.Errorf("face_threshold must be in [0, 100], got %f", p.FaceThreshold)
	}
	if p.DistanceNormalization <= 0 {
		return fmt.Errorf("distance_normalization must be positive, got %f", p.DistanceNormalization)
	}
	if p.GraceMinutes < 0 {
		return fmt.Errorf("grace_minutes must not be negative, got %d", p.GraceMinutes)
	}
	switch p.RequiredSignals {
	case RequireFaceOnly, RequireGPS, RequireWifi, RequireGPSAndWifi, RequireGPSOrWifi:
	default:
		return fmt.Errorf("unknown required_signals value %q", p.RequiredSignals)
	}
	return nil
}
