package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotrack/internal/domain/alert"
	"cryptotrack/internal/domain/transaction"
	"cryptotrack/internal/domain/user"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) *user.User {
	t.Helper()
	u := user.NewUser(email, "hash")
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func newTx(userID, coinID string, txType transaction.TransactionType, qty, price string, ts time.Time) transaction.Transaction {
	t := transaction.NewTransaction(userID, "")
	t.CoinID = coinID
	t.CoinSymbol = coinID[:3]
	t.Type = txType
	t.Quantity = decimal.RequireFromString(qty)
	t.PricePerCoin = decimal.RequireFromString(price)
	t.Timestamp = ts
	return *t
}

var day0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "alice@example.com")

	tx := newTx(u.ID, "bitcoin", transaction.TransactionTypeBuy, "0.123456789012345678", "40000.01", day0.Add(1500*time.Millisecond))
	tx.Fee = decimal.RequireFromString("12.5")
	tx.Exchange = "kraken"
	tx.Notes = "first"
	require.NoError(t, repo.Create(ctx, &tx))

	got, err := repo.GetByID(ctx, u.ID, tx.ID)
	require.NoError(t, err)

	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, transaction.TransactionTypeBuy, got.Type)
	assert.True(t, got.Quantity.Equal(tx.Quantity), "decimals survive storage exactly")
	assert.True(t, got.PricePerCoin.Equal(tx.PricePerCoin))
	assert.True(t, got.Fee.Equal(tx.Fee))
	assert.True(t, got.Timestamp.Equal(tx.Timestamp))
	assert.Equal(t, "kraken", got.Exchange)
	assert.Equal(t, "first", got.Notes)
}

func TestTransactionRepository_ScopedByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	tx := newTx(alice.ID, "bitcoin", transaction.TransactionTypeBuy, "1", "100", day0)
	require.NoError(t, repo.Create(ctx, &tx))

	_, err := repo.GetByID(ctx, bob.ID, tx.ID)
	assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, tx.ID), transaction.ErrTransactionNotFound)

	list, err := repo.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTransactionRepository_ListOrdered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "alice@example.com")

	third := newTx(u.ID, "bitcoin", transaction.TransactionTypeSell, "1", "300", day0.AddDate(0, 0, 10))
	first := newTx(u.ID, "bitcoin", transaction.TransactionTypeBuy, "2", "100", day0)
	second := newTx(u.ID, "ethereum", transaction.TransactionTypeBuy, "5", "10", day0.Add(90*time.Millisecond))
	require.NoError(t, repo.CreateBatch(ctx, []transaction.Transaction{third, first, second}))

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestTransactionRepository_CreateBatchIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "alice@example.com")

	ok := newTx(u.ID, "bitcoin", transaction.TransactionTypeBuy, "1", "100", day0)
	dup := ok

	err := repo.CreateBatch(ctx, []transaction.Transaction{ok, dup})
	require.Error(t, err)

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "a failed batch leaves nothing behind")
}

func TestTransactionRepository_UpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "alice@example.com")

	tx := newTx(u.ID, "bitcoin", transaction.TransactionTypeBuy, "1", "100", day0)
	require.NoError(t, repo.Create(ctx, &tx))

	tx.Quantity = decimal.RequireFromString("2.5")
	tx.Notes = "edited"
	require.NoError(t, repo.Update(ctx, &tx))

	got, err := repo.GetByID(ctx, u.ID, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "edited", got.Notes)

	require.NoError(t, repo.Delete(ctx, u.ID, tx.ID))
	_, err = repo.GetByID(ctx, u.ID, tx.ID)
	assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)

	missing := newTx(u.ID, "bitcoin", transaction.TransactionTypeBuy, "1", "1", day0)
	assert.ErrorIs(t, repo.Update(ctx, &missing), transaction.ErrTransactionNotFound)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "Alice@Example.com")
	assert.Equal(t, "alice@example.com", u.Email)

	got, err := repo.GetByEmail(ctx, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)

	err = repo.Create(ctx, user.NewUser("alice@example.com", "other"))
	assert.ErrorIs(t, err, user.ErrUserExists)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestAlertRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	a1 := alert.NewAlert(alice.ID, "bitcoin", decimal.NewFromInt(50000), alert.DirectionAbove)
	a2 := alert.NewAlert(alice.ID, "ethereum", decimal.RequireFromString("1999.99"), alert.DirectionBelow)
	a3 := alert.NewAlert(bob.ID, "bitcoin", decimal.NewFromInt(30000), alert.DirectionBelow)
	for _, a := range []*alert.Alert{a1, a2, a3} {
		require.NoError(t, repo.Create(ctx, a))
	}

	list, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[1].TargetPrice.Equal(decimal.RequireFromString("1999.99")))

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	require.NoError(t, repo.MarkTriggered(ctx, []string{a1.ID, a3.ID}))
	pending, err = repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a2.ID, pending[0].ID)

	got, err := repo.GetByID(ctx, alice.ID, a1.ID)
	require.NoError(t, err)
	assert.True(t, got.Triggered)

	_, err = repo.GetByID(ctx, bob.ID, a1.ID)
	assert.ErrorIs(t, err, alert.ErrAlertNotFound)

	got.Triggered = false
	got.Direction = alert.DirectionBelow
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, alice.ID, a1.ID)
	require.NoError(t, err)
	assert.False(t, got.Triggered)
	assert.Equal(t, alert.DirectionBelow, got.Direction)

	require.NoError(t, repo.Delete(ctx, alice.ID, a1.ID))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID, a1.ID), alert.ErrAlertNotFound)
}

func TestOpen_FileBased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	u := seedUser(t, db, "alice@example.com")
	tx := newTx(u.ID, "bitcoin", transaction.TransactionTypeBuy, "1", "100", day0)
	require.NoError(t, NewTransactionRepository(db).Create(ctx, &tx))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	list, err := NewTransactionRepository(db).ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTransactionRepository_ConcurrentCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.db")
	ctx := context.Background()
	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)
	u := seedUser(t, db, "alice@example.com")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := newTx(u.ID, "bitcoin", transaction.TransactionTypeBuy, "1", "100", day0.Add(time.Duration(i)*time.Hour))
			errs <- repo.Create(ctx, &tx)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
