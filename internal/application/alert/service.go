package alert

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	loggeradapter "cryptotrack/internal/adapters/logger"
	"cryptotrack/internal/domain/alert"
	"cryptotrack/internal/domain/price"
)

type Service struct {
	repo          alert.Repository
	priceProvider price.Provider
	currency      string
	logger        *loggeradapter.Logger
}

func NewService(repo alert.Repository, priceProvider price.Provider, currency string, logger *loggeradapter.Logger) *Service {
	if logger == nil {
		logger = loggeradapter.NewNopLogger()
	}
	return &Service{
		repo:          repo,
		priceProvider: priceProvider,
		currency:      price.NormalizeCurrency(currency),
		logger:        logger.Named("alerts"),
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]alert.Alert, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*alert.Alert, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, a *alert.Alert) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error("Failed to create alert", zap.String("user_id", a.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("Created alert",
		zap.String("user_id", a.UserID),
		zap.String("id", a.ID),
		zap.String("coin_id", a.CoinID),
		zap.String("direction", string(a.Direction)),
		zap.String("target_price", a.TargetPrice.String()),
	)
	return nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch alert.Patch) (*alert.Alert, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*existing)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("Failed to update alert", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// CheckAlerts prices every pending alert's coin once and marks the alerts
// whose condition now holds. It returns the alerts that fired.
func (s *Service) CheckAlerts(ctx context.Context) ([]alert.Alert, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending alerts: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var coinIDs []string
	for _, a := range pending {
		if _, ok := seen[a.CoinID]; !ok {
			seen[a.CoinID] = struct{}{}
			coinIDs = append(coinIDs, a.CoinID)
		}
	}

	quotes, err := s.priceProvider.GetPrices(ctx, coinIDs, s.currency)
	if err != nil {
		return nil, fmt.Errorf("failed to price alerts: %w", err)
	}

	var (
		fired []alert.Alert
		ids   []string
	)
	for _, a := range pending {
		q, ok := quotes[a.CoinID]
		if !ok || !a.IsTriggeredBy(q.Value) {
			continue
		}
		a.Triggered = true
		fired = append(fired, a)
		ids = append(ids, a.ID)
		s.logger.Info("Alert triggered",
			zap.String("id", a.ID),
			zap.String("user_id", a.UserID),
			zap.String("coin_id", a.CoinID),
			zap.String("price", q.Value.String()),
			zap.String("target_price", a.TargetPrice.String()),
		)
	}

	if err := s.repo.MarkTriggered(ctx, ids); err != nil {
		return nil, err
	}

	return fired, nil
}
