package http

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	portfolioService "cryptotrack/internal/application/portfolio"
	"cryptotrack/internal/domain/alert"
	"cryptotrack/internal/domain/transaction"
	"cryptotrack/internal/domain/user"
)

// Services the HTTP adapter depends on.

type TransactionService interface {
	List(ctx context.Context, userID string) ([]transaction.Transaction, error)
	Get(ctx context.Context, userID, id string) (*transaction.Transaction, error)
	Create(ctx context.Context, t *transaction.Transaction) error
	Update(ctx context.Context, userID, id string, patch transaction.Patch) (*transaction.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
	Import(ctx context.Context, userID string, r io.Reader) (int, error)
	Export(ctx context.Context, userID string, w io.Writer) error
}

type PortfolioService interface {
	GetMetrics(ctx context.Context, userID string) (*portfolioService.Valuation, error)
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type AlertService interface {
	List(ctx context.Context, userID string) ([]alert.Alert, error)
	Get(ctx context.Context, userID, id string) (*alert.Alert, error)
	Create(ctx context.Context, a *alert.Alert) error
	Update(ctx context.Context, userID, id string, patch alert.Patch) (*alert.Alert, error)
	Delete(ctx context.Context, userID, id string) error
}

// Requests. Decimal fields accept JSON numbers or numeric strings.

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TransactionRequest struct {
	CoinID       *string          `json:"coinId"`
	CoinSymbol   *string          `json:"coinSymbol"`
	Type         *string          `json:"type"`
	Quantity     *decimal.Decimal `json:"quantity"`
	PricePerCoin *decimal.Decimal `json:"pricePerCoin"`
	Fee          *decimal.Decimal `json:"fee"`
	Timestamp    *time.Time       `json:"timestamp"`
	Exchange     *string          `json:"exchange"`
	Notes        *string          `json:"notes"`
}

type ImportRequest struct {
	CSV string `json:"csv"`
}

type AlertRequest struct {
	CoinID      *string          `json:"coinId"`
	TargetPrice *decimal.Decimal `json:"targetPrice"`
	Direction   *string          `json:"direction"`
	Triggered   *bool            `json:"triggered"`
}

// Responses.

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user,omitempty"`
}

type Transaction struct {
	ID           string    `json:"id"`
	CoinID       string    `json:"coinId"`
	CoinSymbol   string    `json:"coinSymbol"`
	Type         string    `json:"type"`
	Quantity     float64   `json:"quantity"`
	PricePerCoin float64   `json:"pricePerCoin"`
	Fee          float64   `json:"fee"`
	Timestamp    time.Time `json:"timestamp"`
	Exchange     string    `json:"exchange,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

type Holding struct {
	CoinID             string  `json:"coinId"`
	Quantity           float64 `json:"quantity"`
	TotalCost          float64 `json:"totalCost"`
	AveragePrice       float64 `json:"averagePrice"`
	CurrentPrice       float64 `json:"currentPrice"`
	Value              float64 `json:"value"`
	ProfitLoss         float64 `json:"profitLoss"`
	ProfitLossPercent  float64 `json:"profitLossPercent"`
	RealizedProfitLoss float64 `json:"realizedProfitLoss"`
}

type Portfolio struct {
	Holdings               []Holding `json:"holdings"`
	TotalValue             float64   `json:"totalValue"`
	TotalProfitLoss        float64   `json:"totalProfitLoss"`
	TotalProfitLossPercent float64   `json:"totalProfitLossPercent"`
	Currency               string    `json:"currency"`
	PricesPartial          bool      `json:"pricesPartial"`
	ValuedAt               time.Time `json:"valuedAt"`
}

type Alert struct {
	ID          string    `json:"id"`
	CoinID      string    `json:"coinId"`
	TargetPrice float64   `json:"targetPrice"`
	Direction   string    `json:"direction"`
	Triggered   bool      `json:"triggered"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}
