package holding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewHolding(t *testing.T) {
	tests := []struct {
		name            string
		quantity        string
		totalCost       string
		realized        string
		price           string
		wantAverage     string
		wantValue       string
		wantProfitLoss  string
		wantPercent     float64
		wantTotalProfit string
	}{
		{
			name:            "single bitcoin in profit",
			quantity:        "1",
			totalCost:       "40020",
			realized:        "0",
			price:           "45000",
			wantAverage:     "40020",
			wantValue:       "45000",
			wantProfitLoss:  "4980",
			wantPercent:     12.4437781,
			wantTotalProfit: "4980",
		},
		{
			name:            "closed position keeps realized gain",
			quantity:        "0",
			totalCost:       "0",
			realized:        "50",
			price:           "120",
			wantAverage:     "0",
			wantValue:       "0",
			wantProfitLoss:  "0",
			wantPercent:     0,
			wantTotalProfit: "50",
		},
		{
			name:            "missing price values position at zero",
			quantity:        "2",
			totalCost:       "100",
			realized:        "0",
			price:           "0",
			wantAverage:     "50",
			wantValue:       "0",
			wantProfitLoss:  "-100",
			wantPercent:     -100,
			wantTotalProfit: "-100",
		},
		{
			name:            "oversold position has no average and no percent",
			quantity:        "-1",
			totalCost:       "-100",
			realized:        "20",
			price:           "150",
			wantAverage:     "0",
			wantValue:       "-150",
			wantProfitLoss:  "-50",
			wantPercent:     0,
			wantTotalProfit: "-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHolding("bitcoin", d(tt.quantity), d(tt.totalCost), d(tt.realized), d(tt.price))

			assert.Equal(t, "bitcoin", h.CoinID)
			assert.True(t, h.AveragePrice.Equal(d(tt.wantAverage)), "average = %s", h.AveragePrice)
			assert.True(t, h.Value.Equal(d(tt.wantValue)), "value = %s", h.Value)
			assert.True(t, h.ProfitLoss.Equal(d(tt.wantProfitLoss)), "profitLoss = %s", h.ProfitLoss)
			assert.InDelta(t, tt.wantPercent, h.ProfitLossPercent.InexactFloat64(), 1e-6)
			assert.True(t, h.TotalProfitLoss().Equal(d(tt.wantTotalProfit)), "total = %s", h.TotalProfitLoss())
		})
	}
}
