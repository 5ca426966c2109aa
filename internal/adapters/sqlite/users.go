package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cryptotrack/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email=%s", user.ErrUserExists, u.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, `email = ?`, user.NormalizeEmail(email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *UserRepository) get(ctx context.Context, where string, arg string) (*user.User, error) {
	var (
		u            user.User
		createdAtStr string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &u, nil
}
