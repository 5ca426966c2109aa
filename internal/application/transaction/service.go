package transaction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"

	csvcodec "cryptotrack/internal/adapters/csv"
	loggeradapter "cryptotrack/internal/adapters/logger"
	"cryptotrack/internal/domain/portfolio"
	"cryptotrack/internal/domain/transaction"
)

var ErrEmptyImport = errors.New("import contains no transactions")

type Service struct {
	repo          transaction.Repository
	strictHistory bool
	logger        *loggeradapter.Logger
}

// NewService builds the service. With strictHistory set, writes that would
// leave any coin oversold are rejected with portfolio.ErrOversell.
func NewService(repo transaction.Repository, strictHistory bool, logger *loggeradapter.Logger) *Service {
	if logger == nil {
		logger = loggeradapter.NewNopLogger()
	}
	return &Service{
		repo:          repo,
		strictHistory: strictHistory,
		logger:        logger.Named("transactions"),
	}
}

// List returns the user's transactions newest first.
func (s *Service) List(ctx context.Context, userID string) ([]transaction.Transaction, error) {
	txs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list transactions", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	slices.Reverse(txs)
	return txs, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*transaction.Transaction, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, t *transaction.Transaction) error {
	if err := t.Validate(); err != nil {
		s.logger.Warn("Rejected invalid transaction", zap.String("user_id", t.UserID), zap.Error(err))
		return err
	}

	if err := s.checkHistory(ctx, t.UserID, func(history []transaction.Transaction) []transaction.Transaction {
		return append(history, *t)
	}); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("Failed to create transaction", zap.String("user_id", t.UserID), zap.Error(err))
		return err
	}

	s.logger.Info("Created transaction",
		zap.String("user_id", t.UserID),
		zap.String("id", t.ID),
		zap.String("coin_id", t.CoinID),
		zap.String("type", string(t.Type)),
	)
	return nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch transaction.Patch) (*transaction.Transaction, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*existing)
	if err := updated.Validate(); err != nil {
		s.logger.Warn("Rejected invalid transaction update", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.checkHistory(ctx, userID, func(history []transaction.Transaction) []transaction.Transaction {
		for i := range history {
			if history[i].ID == id {
				history[i] = updated
			}
		}
		return history
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("Failed to update transaction", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Updated transaction", zap.String("user_id", userID), zap.String("id", id))
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.checkHistory(ctx, userID, func(history []transaction.Transaction) []transaction.Transaction {
		kept := history[:0]
		for _, t := range history {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		return kept
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("Deleted transaction", zap.String("user_id", userID), zap.String("id", id))
	return nil
}

// Import decodes a CSV document and stores every row in one batch. Nothing is
// stored if any row is invalid.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (int, error) {
	txs, err := csvcodec.Decode(r, userID)
	if err != nil {
		s.logger.Warn("Rejected CSV import", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	if len(txs) == 0 {
		return 0, ErrEmptyImport
	}

	if err := s.checkHistory(ctx, userID, func(history []transaction.Transaction) []transaction.Transaction {
		return append(history, txs...)
	}); err != nil {
		return 0, err
	}

	if err := s.repo.CreateBatch(ctx, txs); err != nil {
		s.logger.Error("Failed to store imported transactions", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}

	s.logger.Info("Imported transactions", zap.String("user_id", userID), zap.Int("count", len(txs)))
	return len(txs), nil
}

func (s *Service) Export(ctx context.Context, userID string, w io.Writer) error {
	txs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load transactions for export", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if err := csvcodec.Encode(w, txs); err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	return nil
}

// checkHistory replays the user's history after edit and rejects oversells.
// It is a no-op unless strict history is enabled.
func (s *Service) checkHistory(ctx context.Context, userID string, edit func([]transaction.Transaction) []transaction.Transaction) error {
	if !s.strictHistory {
		return nil
	}

	history, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := portfolio.ValidateHistory(edit(history)); err != nil {
		s.logger.Warn("Rejected change that oversells", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
