package vsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLayer(t *testing.T) {
	tests := []struct {
		name  string
		layer Layer
		want  []string
	}{
		{"valid", NewLayer(5, 180), nil},
		{"valid with density", Layer{D: Num(5), Vs: Num(180), Rho: Num(1800)}, nil},
		{"blank", Layer{}, []string{msgThickness, msgVelocity}},
		{"zero thickness", NewLayer(0, 180), []string{msgThickness}},
		{"deep", NewLayer(10001, 180), []string{msgThicknessLarge}},
		{"fast", NewLayer(5, 7000), []string{msgVelocityLarge}},
		{"negative velocity", NewLayer(5, -1), []string{msgVelocity}},
		{"zero density", Layer{D: Num(5), Vs: Num(180), Rho: Num(0)}, []string{msgDensity}},
		{"heavy", Layer{D: Num(5), Vs: Num(180), Rho: Num(6000)}, []string{msgDensity}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateLayer(tt.layer))
		})
	}
}

func TestValidateProfilePrefixesLayer(t *testing.T) {
	msgs := ValidateProfile([]Layer{NewLayer(5, 180), NewLayer(5, 0)})
	assert.Equal(t, []string{"layer 2: " + msgVelocity}, msgs)
	assert.Empty(t, ValidateProfile(ozkan()))
}
