package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotrack/internal/adapters/coingecko"
	"cryptotrack/internal/domain/alert"
	"cryptotrack/internal/domain/price"
)

type memoryAlerts struct {
	alerts []*alert.Alert
	marked []string
}

func (m *memoryAlerts) ListByUser(_ context.Context, userID string) ([]alert.Alert, error) {
	var out []alert.Alert
	for _, a := range m.alerts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memoryAlerts) ListPending(context.Context) ([]alert.Alert, error) {
	var out []alert.Alert
	for _, a := range m.alerts {
		if !a.Triggered {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memoryAlerts) GetByID(_ context.Context, userID, id string) (*alert.Alert, error) {
	for _, a := range m.alerts {
		if a.UserID == userID && a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, alert.ErrAlertNotFound
}

func (m *memoryAlerts) Create(_ context.Context, a *alert.Alert) error {
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *memoryAlerts) Update(_ context.Context, a *alert.Alert) error {
	for i, existing := range m.alerts {
		if existing.ID == a.ID {
			c := *a
			m.alerts[i] = &c
			return nil
		}
	}
	return alert.ErrAlertNotFound
}

func (m *memoryAlerts) Delete(_ context.Context, userID, id string) error {
	for i, a := range m.alerts {
		if a.UserID == userID && a.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return alert.ErrAlertNotFound
}

func (m *memoryAlerts) MarkTriggered(_ context.Context, ids []string) error {
	m.marked = append(m.marked, ids...)
	for _, a := range m.alerts {
		for _, id := range ids {
			if a.ID == id {
				a.Triggered = true
			}
		}
	}
	return nil
}

type failingProvider struct{}

func (failingProvider) GetPrices(context.Context, []string, string) (map[string]price.Price, error) {
	return nil, errors.New("upstream down")
}

func TestService_CheckAlerts(t *testing.T) {
	ctx := context.Background()
	repo := &memoryAlerts{}
	// mock prices: bitcoin 45000, ethereum 2200
	svc := NewService(repo, coingecko.NewMockProvider(nil), "usd", nil)

	btcAbove := alert.NewAlert("user-1", "bitcoin", decimal.NewFromInt(44000), alert.DirectionAbove)
	btcBelow := alert.NewAlert("user-1", "bitcoin", decimal.NewFromInt(30000), alert.DirectionBelow)
	ethBelow := alert.NewAlert("user-2", "ethereum", decimal.NewFromInt(2200), alert.DirectionBelow)
	unknown := alert.NewAlert("user-2", "obscurecoin", decimal.NewFromInt(1), alert.DirectionAbove)
	for _, a := range []*alert.Alert{btcAbove, btcBelow, ethBelow, unknown} {
		require.NoError(t, svc.Create(ctx, a))
	}

	fired, err := svc.CheckAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, fired, 2)
	assert.ElementsMatch(t, []string{btcAbove.ID, ethBelow.ID}, repo.marked)
	assert.True(t, fired[0].Triggered)

	fired, err = svc.CheckAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, fired, "alerts fire once")
}

func TestService_CheckAlerts_PriceFailure(t *testing.T) {
	ctx := context.Background()
	repo := &memoryAlerts{}
	svc := NewService(repo, failingProvider{}, "usd", nil)
	require.NoError(t, svc.Create(ctx, alert.NewAlert("user-1", "bitcoin", decimal.NewFromInt(1), alert.DirectionAbove)))

	_, err := svc.CheckAlerts(ctx)
	assert.ErrorContains(t, err, "upstream down")
	assert.Empty(t, repo.marked)
}

func TestService_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := &memoryAlerts{}
	svc := NewService(repo, coingecko.NewMockProvider(nil), "usd", nil)

	err := svc.Create(ctx, alert.NewAlert("user-1", "", decimal.Zero, alert.DirectionAbove))
	assert.ErrorIs(t, err, alert.ErrInvalidAlert)

	a := alert.NewAlert("user-1", "bitcoin", decimal.NewFromInt(50000), alert.DirectionAbove)
	require.NoError(t, svc.Create(ctx, a))

	target := decimal.NewFromInt(60000)
	updated, err := svc.Update(ctx, "user-1", a.ID, alert.Patch{TargetPrice: &target})
	require.NoError(t, err)
	assert.True(t, updated.TargetPrice.Equal(target))

	bad := alert.Direction("sideways")
	_, err = svc.Update(ctx, "user-1", a.ID, alert.Patch{Direction: &bad})
	assert.ErrorIs(t, err, alert.ErrInvalidAlert)

	_, err = svc.Update(ctx, "user-2", a.ID, alert.Patch{TargetPrice: &target})
	assert.ErrorIs(t, err, alert.ErrAlertNotFound)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, "user-1", a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "user-1", a.ID), alert.ErrAlertNotFound)
}
