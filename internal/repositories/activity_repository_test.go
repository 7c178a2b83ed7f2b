package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContributorScore(t *testing.T) {
	tests := []struct {
		name           string
		likes, doodles int
		want           int
	}{
		{"no activity", 0, 0, 0},
		{"likes only", 10, 0, 7},
		{"doodles only", 0, 10, 3},
		{"mixed", 10, 10, 10},
		{"fraction floors down", 1, 1, 1}, // 0.7 + 0.3 = 1.0
		{"floors not rounds", 2, 1, 1},    // 1.4 + 0.3 = 1.7
		{"larger volume", 100, 50, 85},    // 70 + 15
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContributorScore(tt.likes, tt.doodles))
		})
	}
}
