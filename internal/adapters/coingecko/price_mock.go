package coingecko

import (
	"context"

	"github.com/shopspring/decimal"

	"cryptotrack/internal/domain/price"
)

var defaultMockPrices = map[string]decimal.Decimal{
	"bitcoin":  decimal.NewFromInt(45000),
	"ethereum": decimal.NewFromInt(2200),
	"solana":   decimal.NewFromInt(95),
	"cardano":  decimal.RequireFromString("0.45"),
	"dogecoin": decimal.RequireFromString("0.08"),
}

// MockProvider serves a fixed price table. It backs PRICE_PROVIDER=mock and
// acts as the fallback when the live API is unreachable.
type MockProvider struct {
	prices map[string]decimal.Decimal
}

// NewMockProvider uses the built-in table when prices is nil.
func NewMockProvider(prices map[string]decimal.Decimal) *MockProvider {
	if prices == nil {
		prices = defaultMockPrices
	}
	return &MockProvider{prices: prices}
}

func (p *MockProvider) GetPrices(_ context.Context, coinIDs []string, currency string) (map[string]price.Price, error) {
	results := make(map[string]price.Price, len(coinIDs))
	for _, id := range coinIDs {
		if v, ok := p.prices[id]; ok {
			results[id] = price.NewPrice(id, v, currency)
		}
	}
	return results, nil
}
