package alert

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAlert_IsTriggeredBy(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		target    int64
		current   int64
		expected  bool
	}{
		{name: "above, price higher", direction: DirectionAbove, target: 50000, current: 51000, expected: true},
		{name: "above, price equal", direction: DirectionAbove, target: 50000, current: 50000, expected: true},
		{name: "above, price lower", direction: DirectionAbove, target: 50000, current: 49000, expected: false},
		{name: "below, price lower", direction: DirectionBelow, target: 2000, current: 1900, expected: true},
		{name: "below, price equal", direction: DirectionBelow, target: 2000, current: 2000, expected: true},
		{name: "below, price higher", direction: DirectionBelow, target: 2000, current: 2100, expected: false},
		{name: "unknown direction", direction: "sideways", target: 1, current: 1, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Alert{Direction: tt.direction, TargetPrice: decimal.NewFromInt(tt.target)}
			assert.Equal(t, tt.expected, a.IsTriggeredBy(decimal.NewFromInt(tt.current)))
		})
	}
}

func TestAlert_Validate(t *testing.T) {
	valid := NewAlert("user-1", "bitcoin", decimal.NewFromInt(50000), DirectionAbove)
	assert.NoError(t, valid.Validate())
	assert.NotEmpty(t, valid.ID)
	assert.False(t, valid.Triggered)

	invalid := Alert{Direction: "up", TargetPrice: decimal.Zero}
	err := invalid.Validate()
	assert.ErrorIs(t, err, ErrInvalidAlert)
	assert.Contains(t, err.Error(), "coinId is required")
	assert.Contains(t, err.Error(), "targetPrice must be positive")
	assert.Contains(t, err.Error(), "direction must be above or below")
}

func TestPatch_Apply(t *testing.T) {
	a := *NewAlert("user-1", "bitcoin", decimal.NewFromInt(50000), DirectionAbove)
	below := DirectionBelow
	target := decimal.NewFromInt(30000)

	patched := Patch{Direction: &below, TargetPrice: &target}.Apply(a)

	assert.Equal(t, DirectionBelow, patched.Direction)
	assert.True(t, patched.TargetPrice.Equal(target))
	assert.Equal(t, "bitcoin", patched.CoinID)
	assert.Equal(t, DirectionAbove, a.Direction)
}
