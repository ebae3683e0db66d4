package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPrice(t *testing.T) {
	policy := NewIncrementPolicy()

	tests := []struct {
		name       string
		currentBid int64
		want       int64
	}{
		{"low tier", 10, 20},
		{"low tier at zero", 0, 10},
		{"low tier crossing boundary", 95, 105},
		{"mid tier lower bound", 100, 105},
		{"mid tier", 150, 155},
		{"mid tier crossing boundary", 199, 204},
		{"high tier lower bound", 200, 202},
		{"high tier", 250, 252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.NextPrice(tt.currentBid))
		})
	}
}

func TestNextPriceIsStrictlyIncreasing(t *testing.T) {
	policy := NewIncrementPolicy()

	bid := int64(0)
	for i := 0; i < 500; i++ {
		next := policy.NextPrice(bid)
		assert.Greater(t, next, bid)
		bid = next
	}
}
