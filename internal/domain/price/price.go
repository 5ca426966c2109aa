package price

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "usd"

// Price is the quote of one coin in one currency.
type Price struct {
	CoinID      string
	Value       decimal.Decimal
	Currency    string
	LastUpdated time.Time
}

func NewPrice(coinID string, value decimal.Decimal, currency string) Price {
	return Price{
		CoinID:      coinID,
		Value:       value,
		Currency:    NormalizeCurrency(currency),
		LastUpdated: time.Now(),
	}
}

// NormalizeCurrency lowercases currency and defaults it to usd.
func NormalizeCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// Provider quotes coins by ID. Coins the provider does not know are absent
// from the result rather than reported as errors.
type Provider interface {
	GetPrices(ctx context.Context, coinIDs []string, currency string) (map[string]Price, error)
}

// Values flattens quotes into the coinID -> value map the valuation engine takes.
func Values(prices map[string]Price) map[string]decimal.Decimal {
	values := make(map[string]decimal.Decimal, len(prices))
	for id, p := range prices {
		values[id] = p.Value
	}
	return values
}
