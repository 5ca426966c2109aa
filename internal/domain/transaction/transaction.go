package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// ParseType accepts "buy" or "sell" in any case.
func ParseType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionTypeBuy, TransactionTypeSell:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
	}
}

// Transaction is a single buy or sell of a coin, owned by one user.
// Records are treated as immutable values once stored.
type Transaction struct {
	ID           string
	UserID       string
	CoinID       string
	CoinSymbol   string
	Type         TransactionType
	Quantity     decimal.Decimal
	PricePerCoin decimal.Decimal
	Fee          decimal.Decimal
	Timestamp    time.Time
	Exchange     string
	Notes        string
	CreatedAt    time.Time
}

func NewTransaction(userID string, id string) *Transaction {
	if id == "" {
		id = uuid.New().String()
	}

	return &Transaction{
		ID:        id,
		UserID:    userID,
		Fee:       decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
}

// Cost is what a buy added to the position: quantity * price + fee.
func (t Transaction) Cost() decimal.Decimal {
	return t.Quantity.Mul(t.PricePerCoin).Add(t.Fee)
}

// Proceeds is what a sell returned: quantity * price - fee.
func (t Transaction) Proceeds() decimal.Decimal {
	return t.Quantity.Mul(t.PricePerCoin).Sub(t.Fee)
}

func (t Transaction) IsBuy() bool  { return t.Type == TransactionTypeBuy }
func (t Transaction) IsSell() bool { return t.Type == TransactionTypeSell }

// Timestamps are stored as fixed-width text, so only four-digit years sort.
const (
	minYear = 1000
	maxYear = 9999
)

// Validate checks the fields the valuation engine relies on.
func (t Transaction) Validate() error {
	var problems []string

	if strings.TrimSpace(t.CoinID) == "" {
		problems = append(problems, "coinId is required")
	}
	if strings.TrimSpace(t.CoinSymbol) == "" {
		problems = append(problems, "coinSymbol is required")
	}
	if t.Type != TransactionTypeBuy && t.Type != TransactionTypeSell {
		problems = append(problems, fmt.Sprintf("type must be buy or sell, got %q", t.Type))
	}
	if !t.Quantity.IsPositive() {
		problems = append(problems, "quantity must be positive")
	}
	if !t.PricePerCoin.IsPositive() {
		problems = append(problems, "pricePerCoin must be positive")
	}
	if t.Fee.IsNegative() {
		problems = append(problems, "fee must not be negative")
	}
	if t.Timestamp.IsZero() {
		problems = append(problems, "timestamp is required")
	} else if y := t.Timestamp.UTC().Year(); y < minYear || y > maxYear {
		problems = append(problems, fmt.Sprintf("timestamp year must be between %d and %d, got %d", minYear, maxYear, y))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, strings.Join(problems, "; "))
	}
	return nil
}

// Patch holds the fields of an update request; nil means unchanged.
type Patch struct {
	CoinID       *string
	CoinSymbol   *string
	Type         *TransactionType
	Quantity     *decimal.Decimal
	PricePerCoin *decimal.Decimal
	Fee          *decimal.Decimal
	Timestamp    *time.Time
	Exchange     *string
	Notes        *string
}

// Apply returns a copy of t with the patch applied.
func (p Patch) Apply(t Transaction) Transaction {
	if p.CoinID != nil {
		t.CoinID = *p.CoinID
	}
	if p.CoinSymbol != nil {
		t.CoinSymbol = *p.CoinSymbol
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.PricePerCoin != nil {
		t.PricePerCoin = *p.PricePerCoin
	}
	if p.Fee != nil {
		t.Fee = *p.Fee
	}
	if p.Timestamp != nil {
		t.Timestamp = *p.Timestamp
	}
	if p.Exchange != nil {
		t.Exchange = *p.Exchange
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}

// CoinIDs returns the distinct coin IDs in first-seen order.
func CoinIDs(txs []Transaction) []string {
	seen := make(map[string]struct{}, len(txs))
	ids := make([]string, 0, len(txs))
	for _, t := range txs {
		if _, ok := seen[t.CoinID]; ok {
			continue
		}
		seen[t.CoinID] = struct{}{}
		ids = append(ids, t.CoinID)
	}
	return ids
}

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Transaction, error)
	GetByID(ctx context.Context, userID string, id string) (*Transaction, error)
	Create(ctx context.Context, t *Transaction) error
	CreateBatch(ctx context.Context, txs []Transaction) error
	Update(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, userID string, id string) error
}
