package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	assert.Equal(t, 80.0, p.FaceThreshold)
	assert.Equal(t, 1.0, p.DistanceNormalization)
	assert.Equal(t, RequireGPSOrWifi, p.RequiredSignals)
	assert.Equal(t, 15, p.GraceMinutes)
	assert.False(t, p.ExclusiveEnrollment)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Policy)
		valid  bool
	}{
		{"default", func(p *Policy) {}, true},
		{"threshold too high", func(p *Policy) { p.FaceThreshold = 101 }, false},
		{"threshold negative", func(p *Policy) { p.FaceThreshold = -1 }, false},
		{"zero normalization", func(p *Policy) { p.DistanceNormalization = 0 }, false},
		{"negative grace", func(p *Policy) { p.GraceMinutes = -5 }, false},
		{"unknown signals", func(p *Policy) { p.RequiredSignals = "carrier-pigeon" }, false},
		{"face only", func(p *Policy) { p.RequiredSignals = RequireFaceOnly }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Default()
			tc.mutate(&p)
			err := p.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
