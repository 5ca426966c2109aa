package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptotrack/internal/domain/price"
)

const maxBatchSize = 250

// simplePriceResponse is keyed by coin ID, then by currency code or
// last_updated_at.
type simplePriceResponse map[string]map[string]decimal.Decimal

// PriceProvider quotes coins through the /simple/price endpoint.
type PriceProvider struct {
	client *Client
}

func NewPriceProvider(client *Client) *PriceProvider {
	return &PriceProvider{client: client}
}

func (p *PriceProvider) GetPrices(ctx context.Context, coinIDs []string, currency string) (map[string]price.Price, error) {
	currency = price.NormalizeCurrency(currency)
	results := make(map[string]price.Price, len(coinIDs))

	for i := 0; i < len(coinIDs); i += maxBatchSize {
		end := min(i+maxBatchSize, len(coinIDs))

		batch, err := p.fetchBatch(ctx, coinIDs[i:end], currency)
		if err != nil {
			return nil, err
		}
		for id, pr := range batch {
			results[id] = pr
		}
	}

	return results, nil
}

func (p *PriceProvider) fetchBatch(ctx context.Context, coinIDs []string, currency string) (map[string]price.Price, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(coinIDs, ","))
	query.Set("vs_currencies", currency)
	query.Set("include_last_updated_at", "true")
	query.Set("precision", "full")

	var data simplePriceResponse
	if err := p.client.Get(ctx, "/simple/price", query, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	results := make(map[string]price.Price, len(data))
	for id, fields := range data {
		value, ok := fields[currency]
		if !ok {
			continue
		}

		quote := price.NewPrice(id, value, currency)
		if ts, ok := fields["last_updated_at"]; ok {
			quote.LastUpdated = time.Unix(ts.IntPart(), 0)
		}
		results[id] = quote
	}

	return results, nil
}
