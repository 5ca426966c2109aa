package portfolio

import (
	"cryptotrack/internal/domain/transaction"

	"github.com/shopspring/decimal"
)

// AverageCost returns the lifetime weighted average buy price of txs, fees
// included. Sells are ignored. Returns zero when there are no buys.
func AverageCost(txs []transaction.Transaction) decimal.Decimal {
	totalQuantity := decimal.Zero
	totalCost := decimal.Zero

	for _, t := range txs {
		if !t.IsBuy() {
			continue
		}
		totalQuantity = totalQuantity.Add(t.Quantity)
		totalCost = totalCost.Add(t.Cost())
	}

	if totalQuantity.IsZero() {
		return decimal.Zero
	}
	return totalCost.Div(totalQuantity)
}

// ProfitLoss returns the whole-history profit/loss of a single coin's txs
// valued at currentPrice: what is held now plus what was sold, minus what was
// spent. The net quantity is not clamped, so an oversold history values the
// shortfall negatively.
func ProfitLoss(txs []transaction.Transaction, currentPrice decimal.Decimal) decimal.Decimal {
	totalBuyValue := decimal.Zero
	totalSellValue := decimal.Zero
	netQuantity := decimal.Zero

	for _, t := range txs {
		switch t.Type {
		case transaction.TransactionTypeBuy:
			totalBuyValue = totalBuyValue.Add(t.Cost())
			netQuantity = netQuantity.Add(t.Quantity)
		case transaction.TransactionTypeSell:
			totalSellValue = totalSellValue.Add(t.Proceeds())
			netQuantity = netQuantity.Sub(t.Quantity)
		}
	}

	currentHoldingsValue := netQuantity.Mul(currentPrice)
	return currentHoldingsValue.Add(totalSellValue).Sub(totalBuyValue)
}
