package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampProgress(t *testing.T) {
	tests := []struct {
		name            string
		current, target int
		wantCurrent     int
		wantPercentage  int
	}{
		{"zero progress", 0, 10, 0, 0},
		{"partial", 3, 10, 3, 30},
		{"exact", 10, 10, 10, 100},
		{"overshoot clamped", 25, 10, 10, 100},
		{"negative clamped", -3, 10, 0, 0},
		{"rounds half up", 1, 3, 1, 33},
		{"rounds to nearest", 2, 3, 2, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampProgress(tt.current, tt.target)
			assert.Equal(t, tt.wantCurrent, got.Current)
			assert.Equal(t, tt.target, got.Target)
			assert.Equal(t, tt.wantPercentage, got.Percentage)
		})
	}
}

func TestProgressPercentageDegenerateTargets(t *testing.T) {
	assert.Equal(t, 0, ProgressPercentage(5, 0))
	assert.Equal(t, 0, ProgressPercentage(5, -1))
}
