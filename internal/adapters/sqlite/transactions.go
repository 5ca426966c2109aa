package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cryptotrack/internal/domain/transaction"
)

const transactionColumns = `id, user_id, coin_id, coin_symbol, type, quantity, price_per_coin, fee, timestamp, exchange, notes, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByUser returns the user's transactions in ascending timestamp order,
// insertion order breaking ties.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]transaction.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY timestamp, rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID string, id string) (*transaction.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? AND id = ?`,
		userID, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%s", transaction.ErrTransactionNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	if _, err := r.db.ExecContext(ctx, insertTransaction, transactionArgs(t)...); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// CreateBatch inserts every transaction or none of them.
func (r *TransactionRepository) CreateBatch(ctx context.Context, txs []transaction.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range txs {
		if _, err := stmt.ExecContext(ctx, transactionArgs(&txs[i])...); err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", i+1, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET
			coin_id = ?, coin_symbol = ?, type = ?, quantity = ?, price_per_coin = ?,
			fee = ?, timestamp = ?, exchange = ?, notes = ?
		WHERE user_id = ? AND id = ?`,
		t.CoinID, t.CoinSymbol, string(t.Type), t.Quantity.String(), t.PricePerCoin.String(),
		t.Fee.String(), formatTime(t.Timestamp), t.Exchange, t.Notes,
		t.UserID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireAffected(res, fmt.Errorf("%w: id=%s", transaction.ErrTransactionNotFound, t.ID))
}

func (r *TransactionRepository) Delete(ctx context.Context, userID string, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(res, fmt.Errorf("%w: id=%s", transaction.ErrTransactionNotFound, id))
}

const insertTransaction = `INSERT INTO transactions (` + transactionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func transactionArgs(t *transaction.Transaction) []any {
	return []any{
		t.ID, t.UserID, t.CoinID, t.CoinSymbol, string(t.Type),
		t.Quantity.String(), t.PricePerCoin.String(), t.Fee.String(),
		formatTime(t.Timestamp), t.Exchange, t.Notes, formatTime(t.CreatedAt),
	}
}

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		t                          transaction.Transaction
		txType                     string
		quantity, price, fee       string
		timestampStr, createdAtStr string
	)
	err := s.Scan(&t.ID, &t.UserID, &t.CoinID, &t.CoinSymbol, &txType,
		&quantity, &price, &fee, &timestampStr, &t.Exchange, &t.Notes, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	t.Type = transaction.TransactionType(txType)
	if t.Quantity, err = parseDecimal("quantity", quantity); err != nil {
		return nil, err
	}
	if t.PricePerCoin, err = parseDecimal("price_per_coin", price); err != nil {
		return nil, err
	}
	if t.Fee, err = parseDecimal("fee", fee); err != nil {
		return nil, err
	}
	if t.Timestamp, err = parseTime(timestampStr); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &t, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
