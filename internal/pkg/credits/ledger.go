package credits

import (
	"errors"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"gorm.io/gorm"
)

// ErrInsufficientCredits is returned when a debit would drive the balance negative.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Ledger holds the authoritative credit balance per account. Debits are a
// single guarded UPDATE so concurrent calls on the same account can never
// overdraw the balance.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a credit ledger backed by the given database handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Debit atomically checks and decrements the account balance.
func (l *Ledger) Debit(accountID uint, amount int64) error {
	return l.DebitTx(l.db, accountID, amount)
}

// DebitTx runs the guarded decrement inside the caller's transaction, letting
// the orchestrator pair the debit with its job insert as one unit.
func (l *Ledger) DebitTx(tx *gorm.DB, accountID uint, amount int64) error {
	if amount <= 0 {
		return errors.New("debit amount must be positive")
	}
	result := tx.Model(&models.User{}).
		Where("id = ? AND credits >= ?", accountID, amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the account does not exist or the balance is too low.
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientCredits
	}
	return nil
}

// Credit adds credits to the account balance.
func (l *Ledger) Credit(accountID uint, amount int64) error {
	return l.CreditTx(l.db, accountID, amount)
}

// CreditTx adds credits inside the caller's transaction.
func (l *Ledger) CreditTx(tx *gorm.DB, accountID uint, amount int64) error {
	if amount <= 0 {
		return errors.New("credit amount must be positive")
	}
	result := tx.Model(&models.User{}).
		Where("id = ?", accountID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Balance reads the current balance for an account.
func (l *Ledger) Balance(accountID uint) (int64, error) {
	var user models.User
	if err := l.db.Select("credits").First(&user, accountID).Error; err != nil {
		return 0, err
	}
	return user.Credits, nil
}
