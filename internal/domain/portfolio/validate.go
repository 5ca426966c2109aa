package portfolio

import (
	"errors"
	"fmt"
	"time"

	"cryptotrack/internal/domain/transaction"

	"github.com/shopspring/decimal"
)

var ErrOversell = errors.New("sell exceeds recorded holdings")

// OversellError describes the first sell that takes a coin's quantity below zero.
type OversellError struct {
	TransactionID string
	CoinID        string
	Timestamp     time.Time
	Available     decimal.Decimal
	Requested     decimal.Decimal
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("%s: coin=%s at %s available=%s requested=%s",
		ErrOversell, e.CoinID, e.Timestamp.Format(time.RFC3339), e.Available, e.Requested)
}

func (e *OversellError) Unwrap() error { return ErrOversell }

// ValidateHistory replays txs in the same order as Aggregate and reports the
// first sell that exceeds the quantity held at that point. Aggregate accepts
// such histories; callers that want strict books check them here first.
func ValidateHistory(txs []transaction.Transaction) error {
	held := make(map[string]decimal.Decimal)

	for _, t := range chronological(txs) {
		switch t.Type {
		case transaction.TransactionTypeBuy:
			held[t.CoinID] = held[t.CoinID].Add(t.Quantity)
		case transaction.TransactionTypeSell:
			available := held[t.CoinID]
			if t.Quantity.GreaterThan(available) {
				return &OversellError{
					TransactionID: t.ID,
					CoinID:        t.CoinID,
					Timestamp:     t.Timestamp,
					Available:     available,
					Requested:     t.Quantity,
				}
			}
			held[t.CoinID] = available.Sub(t.Quantity)
		}
	}

	return nil
}
