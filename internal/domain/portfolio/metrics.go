package portfolio

import (
	"slices"
	"strings"

	"cryptotrack/internal/domain/holding"
	"cryptotrack/internal/domain/transaction"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Metrics is the valuation of a whole transaction history.
type Metrics struct {
	Holdings               []holding.Holding
	TotalValue             decimal.Decimal
	TotalProfitLoss        decimal.Decimal
	TotalProfitLossPercent decimal.Decimal
}

// position is the running state of one coin while the history is replayed.
type position struct {
	quantity  decimal.Decimal
	totalCost decimal.Decimal
	realized  decimal.Decimal
}

// costOf returns the cost basis of qty at the current average price. The
// product is taken before dividing so selling the whole position removes
// exactly totalCost.
func (p *position) costOf(qty decimal.Decimal) decimal.Decimal {
	if !p.quantity.IsPositive() {
		return decimal.Zero
	}
	return p.totalCost.Mul(qty).Div(p.quantity)
}

func (p *position) apply(t transaction.Transaction) {
	switch t.Type {
	case transaction.TransactionTypeBuy:
		p.quantity = p.quantity.Add(t.Quantity)
		p.totalCost = p.totalCost.Add(t.Cost())
	case transaction.TransactionTypeSell:
		// Cost basis leaves at the average price held before the sell.
		costOfSold := p.costOf(t.Quantity)
		p.realized = p.realized.Add(t.Proceeds().Sub(costOfSold))
		p.totalCost = p.totalCost.Sub(costOfSold)
		p.quantity = p.quantity.Sub(t.Quantity)
	}
}

// chronological returns a copy of txs stable-sorted by timestamp.
func chronological(txs []transaction.Transaction) []transaction.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b transaction.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// Aggregate replays txs in chronological order using average-cost accounting
// and values every coin seen at currentPrices. A coin missing from
// currentPrices is valued at zero. Sells beyond the recorded quantity are not
// rejected; use ValidateHistory to detect them.
//
// Holdings are returned sorted by coin ID. Aggregate does not modify txs.
func Aggregate(txs []transaction.Transaction, currentPrices map[string]decimal.Decimal) Metrics {
	positions := make(map[string]*position)
	totalInitialBuyCost := decimal.Zero

	for _, t := range chronological(txs) {
		p, ok := positions[t.CoinID]
		if !ok {
			p = &position{}
			positions[t.CoinID] = p
		}
		p.apply(t)

		if t.IsBuy() {
			totalInitialBuyCost = totalInitialBuyCost.Add(t.Cost())
		}
	}

	m := Metrics{
		Holdings:               make([]holding.Holding, 0, len(positions)),
		TotalValue:             decimal.Zero,
		TotalProfitLoss:        decimal.Zero,
		TotalProfitLossPercent: decimal.Zero,
	}

	for coinID, p := range positions {
		h := holding.NewHolding(coinID, p.quantity, p.totalCost, p.realized, currentPrices[coinID])
		m.Holdings = append(m.Holdings, h)
		m.TotalValue = m.TotalValue.Add(h.Value)
		m.TotalProfitLoss = m.TotalProfitLoss.Add(h.TotalProfitLoss())
	}

	slices.SortFunc(m.Holdings, func(a, b holding.Holding) int {
		return strings.Compare(a.CoinID, b.CoinID)
	})

	if totalInitialBuyCost.IsPositive() {
		m.TotalProfitLossPercent = m.TotalProfitLoss.Div(totalInitialBuyCost).Mul(hundred)
	}

	return m
}

// Holding returns the holding for coinID, if present.
func (m Metrics) Holding(coinID string) (holding.Holding, bool) {
	for _, h := range m.Holdings {
		if h.CoinID == coinID {
			return h, true
		}
	}
	return holding.Holding{}, false
}
