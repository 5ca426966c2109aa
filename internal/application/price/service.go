package price

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cryptotrack/internal/adapters/logger"
	"cryptotrack/internal/domain/price"
)

var ErrPricesUnavailable = errors.New("prices unavailable")

// Cache is the slice of the generic TTL cache the service relies on.
type Cache interface {
	GetBatch(ctx context.Context, keys []string) map[string]price.Price
	GetBatchStale(ctx context.Context, keys []string) map[string]price.Price
	SetBatch(ctx context.Context, items map[string]price.Price)
}

// Limiter throttles calls to the upstream provider.
type Limiter interface {
	Wait(ctx context.Context) error
}

// CacheService decorates a price provider with a TTL cache, a rate limit on
// upstream calls and an optional fallback provider.
type CacheService struct {
	cache    Cache
	limiter  Limiter
	primary  price.Provider
	fallback price.Provider
	logger   *logger.Logger
}

// NewCacheService wires the service. fallback and limiter may be nil.
func NewCacheService(cache Cache, primary, fallback price.Provider, limiter Limiter, l *logger.Logger) *CacheService {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &CacheService{
		cache:    cache,
		limiter:  limiter,
		primary:  primary,
		fallback: fallback,
		logger:   l.Named("prices"),
	}
}

func cacheKey(currency, coinID string) string {
	return currency + ":" + coinID
}

// GetPrices returns fresh cached quotes and fetches the rest. If the primary
// provider fails it tries the fallback, then any stale cached quotes.
func (s *CacheService) GetPrices(ctx context.Context, coinIDs []string, currency string) (map[string]price.Price, error) {
	currency = price.NormalizeCurrency(currency)
	results := make(map[string]price.Price, len(coinIDs))
	if len(coinIDs) == 0 {
		return results, nil
	}

	keys := make([]string, len(coinIDs))
	for i, id := range coinIDs {
		keys[i] = cacheKey(currency, id)
	}

	cached := s.cache.GetBatch(ctx, keys)
	var missed []string
	for i, id := range coinIDs {
		if p, ok := cached[keys[i]]; ok {
			results[id] = p
		} else {
			missed = append(missed, id)
		}
	}

	if len(missed) == 0 {
		return results, nil
	}

	fetched, err := s.fetch(ctx, missed, currency)
	if err != nil {
		stale := s.staleQuotes(ctx, missed, currency)
		if len(stale) == 0 && len(results) == 0 {
			return nil, err
		}
		s.logger.Warn("Serving stale prices", zap.Error(err), zap.Int("stale", len(stale)))
		for id, p := range stale {
			results[id] = p
		}
		return results, nil
	}

	toCache := make(map[string]price.Price, len(fetched))
	for id, p := range fetched {
		results[id] = p
		toCache[cacheKey(currency, id)] = p
	}
	s.cache.SetBatch(ctx, toCache)

	return results, nil
}

func (s *CacheService) fetch(ctx context.Context, coinIDs []string, currency string) (map[string]price.Price, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPricesUnavailable, err)
		}
	}

	fetched, err := s.primary.GetPrices(ctx, coinIDs, currency)
	if err == nil {
		return fetched, nil
	}
	s.logger.Warn("Primary price provider failed", zap.Error(err), zap.Strings("coins", coinIDs))

	if s.fallback == nil {
		return nil, fmt.Errorf("%w: %w", ErrPricesUnavailable, err)
	}

	fetched, fbErr := s.fallback.GetPrices(ctx, coinIDs, currency)
	if fbErr != nil {
		s.logger.Error("Fallback price provider failed", zap.Error(fbErr))
		return nil, fmt.Errorf("%w: %w", ErrPricesUnavailable, errors.Join(err, fbErr))
	}
	return fetched, nil
}

func (s *CacheService) staleQuotes(ctx context.Context, coinIDs []string, currency string) map[string]price.Price {
	keys := make([]string, len(coinIDs))
	for i, id := range coinIDs {
		keys[i] = cacheKey(currency, id)
	}
	stale := s.cache.GetBatchStale(ctx, keys)

	res := make(map[string]price.Price, len(stale))
	for i, id := range coinIDs {
		if p, ok := stale[keys[i]]; ok {
			res[id] = p
		}
	}
	return res
}
