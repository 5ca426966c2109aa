package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cryptotrack/internal/domain/alert"
)

const alertColumns = `id, user_id, coin_id, target_price, direction, triggered, created_at`

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID string) ([]alert.Alert, error) {
	return r.list(ctx, `SELECT `+alertColumns+` FROM alerts WHERE user_id = ? ORDER BY created_at, rowid`, userID)
}

// ListPending returns every alert, across users, that has not fired yet.
func (r *AlertRepository) ListPending(ctx context.Context) ([]alert.Alert, error) {
	return r.list(ctx, `SELECT `+alertColumns+` FROM alerts WHERE triggered = 0 ORDER BY coin_id, rowid`)
}

func (r *AlertRepository) GetByID(ctx context.Context, userID string, id string) (*alert.Alert, error) {
	a, err := scanAlert(r.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%s", alert.ErrAlertNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.CoinID, a.TargetPrice.String(), string(a.Direction), a.Triggered, formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET coin_id = ?, target_price = ?, direction = ?, triggered = ? WHERE user_id = ? AND id = ?`,
		a.CoinID, a.TargetPrice.String(), string(a.Direction), a.Triggered, a.UserID, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	return requireAffected(res, fmt.Errorf("%w: id=%s", alert.ErrAlertNotFound, a.ID))
}

func (r *AlertRepository) Delete(ctx context.Context, userID string, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return requireAffected(res, fmt.Errorf("%w: id=%s", alert.ErrAlertNotFound, id))
}

func (r *AlertRepository) MarkTriggered(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE alerts SET triggered = 1 WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("failed to mark alerts triggered: %w", err)
	}
	return nil
}

func (r *AlertRepository) list(ctx context.Context, query string, args ...any) ([]alert.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]alert.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

func scanAlert(s scanner) (*alert.Alert, error) {
	var (
		a                 alert.Alert
		target, direction string
		createdAtStr      string
	)
	err := s.Scan(&a.ID, &a.UserID, &a.CoinID, &target, &direction, &a.Triggered, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	a.Direction = alert.Direction(direction)
	if a.TargetPrice, err = parseDecimal("target_price", target); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &a, nil
}
