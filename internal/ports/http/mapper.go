package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	portfolioService "cryptotrack/internal/application/portfolio"
	"cryptotrack/internal/domain/alert"
	"cryptotrack/internal/domain/holding"
	"cryptotrack/internal/domain/transaction"
	"cryptotrack/internal/domain/user"
)

var ErrMissingField = errors.New("missing required field")

func float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func ToHTTPUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func ToHTTPTransaction(t *transaction.Transaction) *Transaction {
	if t == nil {
		return nil
	}
	return &Transaction{
		ID:           t.ID,
		CoinID:       t.CoinID,
		CoinSymbol:   t.CoinSymbol,
		Type:         string(t.Type),
		Quantity:     float(t.Quantity),
		PricePerCoin: float(t.PricePerCoin),
		Fee:          float(t.Fee),
		Timestamp:    t.Timestamp,
		Exchange:     t.Exchange,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
	}
}

func ToHTTPTransactions(transactions []transaction.Transaction) []Transaction {
	result := make([]Transaction, len(transactions))
	for i := range transactions {
		result[i] = *ToHTTPTransaction(&transactions[i])
	}
	return result
}

// ToDomainTransaction builds a new transaction for userID. Field validity is
// left to Transaction.Validate; only presence is checked here.
func ToDomainTransaction(req TransactionRequest, userID string) (*transaction.Transaction, error) {
	var missing []string
	if req.CoinID == nil {
		missing = append(missing, "coinId")
	}
	if req.CoinSymbol == nil {
		missing = append(missing, "coinSymbol")
	}
	if req.Type == nil {
		missing = append(missing, "type")
	}
	if req.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if req.PricePerCoin == nil {
		missing = append(missing, "pricePerCoin")
	}
	if req.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	patch, err := ToDomainTransactionPatch(req)
	if err != nil {
		return nil, err
	}
	t := patch.Apply(*transaction.NewTransaction(userID, ""))
	return &t, nil
}

func ToDomainTransactionPatch(req TransactionRequest) (transaction.Patch, error) {
	patch := transaction.Patch{
		CoinID:       trimmed(req.CoinID),
		CoinSymbol:   upper(req.CoinSymbol),
		Quantity:     req.Quantity,
		PricePerCoin: req.PricePerCoin,
		Fee:          req.Fee,
		Exchange:     req.Exchange,
		Notes:        req.Notes,
	}
	if req.Type != nil {
		t, err := transaction.ParseType(*req.Type)
		if err != nil {
			return transaction.Patch{}, err
		}
		patch.Type = &t
	}
	if req.Timestamp != nil {
		ts := req.Timestamp.UTC()
		patch.Timestamp = &ts
	}
	return patch, nil
}

func ToHTTPHolding(h holding.Holding) Holding {
	return Holding{
		CoinID:             h.CoinID,
		Quantity:           float(h.Quantity),
		TotalCost:          float(h.TotalCost),
		AveragePrice:       float(h.AveragePrice),
		CurrentPrice:       float(h.CurrentPrice),
		Value:              float(h.Value),
		ProfitLoss:         float(h.ProfitLoss),
		ProfitLossPercent:  float(h.ProfitLossPercent),
		RealizedProfitLoss: float(h.RealizedProfitLoss),
	}
}

func ToHTTPPortfolio(v *portfolioService.Valuation) *Portfolio {
	if v == nil {
		return nil
	}
	holdings := make([]Holding, len(v.Holdings))
	for i, h := range v.Holdings {
		holdings[i] = ToHTTPHolding(h)
	}
	return &Portfolio{
		Holdings:               holdings,
		TotalValue:             float(v.TotalValue),
		TotalProfitLoss:        float(v.TotalProfitLoss),
		TotalProfitLossPercent: float(v.TotalProfitLossPercent),
		Currency:               v.Currency,
		PricesPartial:          v.PricesPartial,
		ValuedAt:               v.ValuedAt,
	}
}

func ToHTTPAlert(a *alert.Alert) *Alert {
	if a == nil {
		return nil
	}
	return &Alert{
		ID:          a.ID,
		CoinID:      a.CoinID,
		TargetPrice: float(a.TargetPrice),
		Direction:   string(a.Direction),
		Triggered:   a.Triggered,
		CreatedAt:   a.CreatedAt,
	}
}

func ToHTTPAlerts(alerts []alert.Alert) []Alert {
	result := make([]Alert, len(alerts))
	for i := range alerts {
		result[i] = *ToHTTPAlert(&alerts[i])
	}
	return result
}

func ToDomainAlert(req AlertRequest, userID string) (*alert.Alert, error) {
	var missing []string
	if req.CoinID == nil {
		missing = append(missing, "coinId")
	}
	if req.TargetPrice == nil {
		missing = append(missing, "targetPrice")
	}
	if req.Direction == nil {
		missing = append(missing, "direction")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	return alert.NewAlert(userID, strings.TrimSpace(*req.CoinID), *req.TargetPrice,
		alert.Direction(strings.ToLower(*req.Direction))), nil
}

func ToDomainAlertPatch(req AlertRequest) alert.Patch {
	patch := alert.Patch{
		CoinID:      trimmed(req.CoinID),
		TargetPrice: req.TargetPrice,
		Triggered:   req.Triggered,
	}
	if req.Direction != nil {
		d := alert.Direction(strings.ToLower(*req.Direction))
		patch.Direction = &d
	}
	return patch
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*s))
	return &v
}
