package holding

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Holding is the valued position of one user in one coin. It is derived from
// the transaction history on every request and never stored.
type Holding struct {
	CoinID             string
	Quantity           decimal.Decimal
	TotalCost          decimal.Decimal
	AveragePrice       decimal.Decimal
	CurrentPrice       decimal.Decimal
	Value              decimal.Decimal
	ProfitLoss         decimal.Decimal // unrealized
	ProfitLossPercent  decimal.Decimal
	RealizedProfitLoss decimal.Decimal
}

// NewHolding values a position at currentPrice. quantity, totalCost and
// realized come from replaying the coin's transactions.
func NewHolding(coinID string, quantity, totalCost, realized, currentPrice decimal.Decimal) Holding {
	h := Holding{
		CoinID:             coinID,
		Quantity:           quantity,
		TotalCost:          totalCost,
		AveragePrice:       decimal.Zero,
		CurrentPrice:       currentPrice,
		ProfitLossPercent:  decimal.Zero,
		RealizedProfitLoss: realized,
	}

	if quantity.IsPositive() {
		h.AveragePrice = totalCost.Div(quantity)
	}

	h.Value = quantity.Mul(currentPrice)
	h.ProfitLoss = h.Value.Sub(totalCost)

	if totalCost.IsPositive() {
		h.ProfitLossPercent = h.ProfitLoss.Div(totalCost).Mul(hundred)
	}

	return h
}

// TotalProfitLoss is realized plus unrealized profit/loss.
func (h Holding) TotalProfitLoss() decimal.Decimal {
	return h.RealizedProfitLoss.Add(h.ProfitLoss)
}
