package alert

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
	ErrAlertNotFound = errors.New("alert not found")
	ErrInvalidAlert  = errors.New("invalid alert")
)

type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Alert fires once when a coin's price crosses TargetPrice in Direction.
type Alert struct {
	ID          string
	UserID      string
	CoinID      string
	TargetPrice decimal.Decimal
	Direction   Direction
	Triggered   bool
	CreatedAt   time.Time
}

func NewAlert(userID, coinID string, target decimal.Decimal, direction Direction) *Alert {
	return &Alert{
		ID:          uuid.New().String(),
		UserID:      userID,
		CoinID:      coinID,
		TargetPrice: target,
		Direction:   direction,
		CreatedAt:   time.Now().UTC(),
	}
}

func (a Alert) Validate() error {
	var problems []string
	if strings.TrimSpace(a.CoinID) == "" {
		problems = append(problems, "coinId is required")
	}
	if !a.TargetPrice.IsPositive() {
		problems = append(problems, "targetPrice must be positive")
	}
	if a.Direction != DirectionAbove && a.Direction != DirectionBelow {
		problems = append(problems, fmt.Sprintf("direction must be above or below, got %q", a.Direction))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAlert, strings.Join(problems, "; "))
	}
	return nil
}

// IsTriggeredBy reports whether current satisfies the alert condition.
func (a Alert) IsTriggeredBy(current decimal.Decimal) bool {
	switch a.Direction {
	case DirectionAbove:
		return current.GreaterThanOrEqual(a.TargetPrice)
	case DirectionBelow:
		return current.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}

// Patch holds the fields of an update request; nil means unchanged.
type Patch struct {
	CoinID      *string
	TargetPrice *decimal.Decimal
	Direction   *Direction
	Triggered   *bool
}

func (p Patch) Apply(a Alert) Alert {
	if p.CoinID != nil {
		a.CoinID = *p.CoinID
	}
	if p.TargetPrice != nil {
		a.TargetPrice = *p.TargetPrice
	}
	if p.Direction != nil {
		a.Direction = *p.Direction
	}
	if p.Triggered != nil {
		a.Triggered = *p.Triggered
	}
	return a
}

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Alert, error)
	ListPending(ctx context.Context) ([]Alert, error)
	GetByID(ctx context.Context, userID string, id string) (*Alert, error)
	Create(ctx context.Context, a *Alert) error
	Update(ctx context.Context, a *Alert) error
	Delete(ctx context.Context, userID string, id string) error
	MarkTriggered(ctx context.Context, ids []string) error
}
