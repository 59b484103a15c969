package credits

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite allows one writer; a single connection avoids busy errors under
	// concurrent test load.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, credits int64) *models.User {
	t.Helper()

	user := &models.User{
		Name:     "Test User",
		Email:    fmt.Sprintf("ledger-%d@example.com", credits),
		Password: "hashed",
		Role:     models.ROLE_USER,
		Status:   models.STATUS_ACTIVE,
		Credits:  credits,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestDebitDecrementsBalance(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 5)
	ledger := NewLedger(db)

	require.NoError(t, ledger.Debit(user.ID, 1))

	balance, err := ledger.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance)
}

func TestDebitInsufficientCredits(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 0)
	ledger := NewLedger(db)

	err := ledger.Debit(user.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	balance, err := ledger.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "failed debit must not touch the balance")
}

func TestDebitUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	err := ledger.Debit(9999, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 5)
	ledger := NewLedger(db)

	assert.Error(t, ledger.Debit(user.ID, 0))
	assert.Error(t, ledger.Debit(user.ID, -1))
}

func TestCreditIncrementsBalance(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 2)
	ledger := NewLedger(db)

	require.NoError(t, ledger.Credit(user.ID, 50))

	balance, err := ledger.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(52), balance)
}

func TestCreditUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	assert.ErrorIs(t, ledger.Credit(9999, 10), gorm.ErrRecordNotFound)
}

// With a starting balance of B and more than B concurrent debits, exactly B
// must succeed and the balance must land on zero, never below.
func TestDebitConcurrentNeverOverdraws(t *testing.T) {
	db := newTestDB(t)

	const startBalance = 10
	const attempts = 25

	user := createTestUser(t, db, startBalance)
	ledger := NewLedger(db)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Debit(user.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrInsufficientCredits) {
			t.Fatalf("unexpected debit error: %v", err)
		}
	}
	assert.Equal(t, startBalance, succeeded)

	balance, err := ledger.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}
