package portfolio

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	loggeradapter "cryptotrack/internal/adapters/logger"
	domainPortfolio "cryptotrack/internal/domain/portfolio"
	"cryptotrack/internal/domain/price"
	domainTransaction "cryptotrack/internal/domain/transaction"
)

// Valuation is a user's metrics together with the quotes they were computed from.
type Valuation struct {
	domainPortfolio.Metrics
	Currency      string
	Prices        map[string]decimal.Decimal
	PricesPartial bool
	ValuedAt      time.Time
}

type Service struct {
	transactionRepo domainTransaction.Repository
	priceProvider   price.Provider
	currency        string
	logger          *loggeradapter.Logger
}

func NewService(transactionRepo domainTransaction.Repository, priceProvider price.Provider, currency string, logger *loggeradapter.Logger) *Service {
	if logger == nil {
		logger = loggeradapter.NewNopLogger()
	}
	return &Service{
		transactionRepo: transactionRepo,
		priceProvider:   priceProvider,
		currency:        price.NormalizeCurrency(currency),
		logger:          logger.Named("portfolio"),
	}
}

// GetMetrics values the user's full history at current prices. A price
// lookup failure does not fail the call: affected coins are valued at zero
// and PricesPartial is set.
func (s *Service) GetMetrics(ctx context.Context, userID string) (*Valuation, error) {
	s.logger.Info("Valuing portfolio", zap.String("user_id", userID))

	txs, err := s.transactionRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load transactions", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	coinIDs := domainTransaction.CoinIDs(txs)
	prices := make(map[string]decimal.Decimal)
	partial := false

	if len(coinIDs) > 0 {
		quotes, err := s.priceProvider.GetPrices(ctx, coinIDs, s.currency)
		if err != nil {
			s.logger.Warn("Price lookup failed, valuing at zero", zap.String("user_id", userID), zap.Error(err))
			partial = true
		} else {
			prices = price.Values(quotes)
			partial = len(prices) < len(coinIDs)
		}
	}

	metrics := domainPortfolio.Aggregate(txs, prices)

	s.logger.Info("Valued portfolio",
		zap.String("user_id", userID),
		zap.Int("transactions", len(txs)),
		zap.Int("holdings", len(metrics.Holdings)),
		zap.String("total_value", metrics.TotalValue.StringFixed(2)),
	)

	return &Valuation{
		Metrics:       metrics,
		Currency:      s.currency,
		Prices:        prices,
		PricesPartial: partial,
		ValuedAt:      time.Now().UTC(),
	}, nil
}
