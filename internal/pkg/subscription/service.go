package subscription

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/audit"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/credits"
)

var (
	ErrAlreadySubscribed    = errors.New("account already has an active subscription")
	ErrNoActiveSubscription = errors.New("account has no active subscription")
)

// Service manages per-account subscription periods. The invariant it
// maintains: at most one active record per account, superseded records are
// marked renewed or expired, never deleted.
type Service struct {
	db     *gorm.DB
	repo   repository.SubscriptionRepository
	users  repository.UserRepository
	ledger *credits.Ledger
	sink   audit.Sink
	now    func() time.Time
}

// NewService wires the subscription service.
func NewService(db *gorm.DB, repo repository.SubscriptionRepository, users repository.UserRepository, ledger *credits.Ledger, sink audit.Sink) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		users:  users,
		ledger: ledger,
		sink:   sink,
		now:    time.Now,
	}
}

// Plans returns the plan catalog.
func (s *Service) Plans() ([]models.SubscriptionPlan, error) {
	return s.repo.ListPlans()
}

// Current returns the account's active subscription, or ErrNoActiveSubscription.
func (s *Service) Current(userID uint) (*models.UserSubscription, error) {
	active, err := s.activeFor(userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActiveSubscription
	}
	return active, nil
}

// Subscribe starts a plan for an account with no active subscription.
func (s *Service) Subscribe(userID uint, planCode string) (*models.UserSubscription, error) {
	plan, err := s.repo.GetPlanByCode(planCode)
	if err != nil {
		return nil, err
	}

	active, err := s.activeFor(userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAlreadySubscribed
	}

	sub, err := s.openPeriod(userID, plan, nil)
	if err != nil {
		return nil, err
	}

	s.sink.Record(userID, models.AuditActionSubscribed, map[string]interface{}{
		"plan":            plan.Code,
		"subscription_id": sub.ID,
	})
	return sub, nil
}

// Upgrade switches the account to a new plan mid-cycle. The prior record is
// marked renewed, a fresh active record dated now is inserted, and the
// prorated price is returned for the caller to settle out-of-band.
func (s *Service) Upgrade(userID uint, planCode string) (*models.UserSubscription, decimal.Decimal, error) {
	newPlan, err := s.repo.GetPlanByCode(planCode)
	if err != nil {
		return nil, decimal.Zero, err
	}

	current, err := s.activeFor(userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if current == nil {
		return nil, decimal.Zero, ErrNoActiveSubscription
	}

	currentPlan, err := s.repo.GetPlanByID(current.PlanID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	proratedPrice := QuoteUpgrade(current, currentPlan, newPlan.FinalPrice(), s.now())

	sub, err := s.openPeriod(userID, newPlan, current)
	if err != nil {
		return nil, decimal.Zero, err
	}

	s.sink.Record(userID, models.AuditActionSubscriptionUpgrade, map[string]interface{}{
		"from_plan":       currentPlan.Code,
		"to_plan":         newPlan.Code,
		"subscription_id": sub.ID,
		"prorated_price":  proratedPrice.String(),
	})
	return sub, proratedPrice, nil
}

// Cancel marks the active subscription cancelled. EndDate is untouched:
// access continues until natural expiry, nothing is revoked immediately.
func (s *Service) Cancel(userID uint) (*models.UserSubscription, error) {
	current, err := s.activeFor(userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoActiveSubscription
	}

	if err := s.repo.UpdateStatusTx(s.db, current.ID, models.SubscriptionStatusCancelled); err != nil {
		return nil, err
	}
	current.Status = models.SubscriptionStatusCancelled
	s.clearActiveRef(userID)

	s.sink.Record(userID, models.AuditActionSubscriptionCancel, map[string]interface{}{
		"subscription_id": current.ID,
	})
	return current, nil
}

// openPeriod inserts a new active record and, in the same transaction,
// supersedes the prior one and applies the plan's credit grant. The active
// record is re-read inside the transaction so two concurrent opens for one
// account can never both commit an active row.
func (s *Service) openPeriod(userID uint, plan *models.SubscriptionPlan, prior *models.UserSubscription) (*models.UserSubscription, error) {
	now := s.now()
	sub := &models.UserSubscription{
		UserID:          userID,
		PlanID:          plan.ID,
		PricingSnapshot: plan.FinalPrice(),
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, plan.DurationDays),
		Status:          models.SubscriptionStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		active, err := s.repo.GetActiveByUserTx(tx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if prior == nil {
			if active != nil {
				return ErrAlreadySubscribed
			}
		} else {
			if active == nil || active.ID != prior.ID {
				return ErrNoActiveSubscription
			}
			if err := s.repo.UpdateStatusTx(tx, prior.ID, models.SubscriptionStatusRenewed); err != nil {
				return err
			}
		}
		if err := s.repo.CreateSubscriptionTx(tx, sub); err != nil {
			return err
		}
		if plan.Credits > 0 {
			if err := s.ledger.CreditTx(tx, userID, plan.Credits); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.SetActiveSubscription(userID, &sub.ID); err != nil {
		log.Errorf("[Subscription] Failed to update active subscription ref for user %d: %v", userID, err)
	}
	return sub, nil
}

// activeFor returns the account's active record, lazily expiring a record
// whose period already lapsed.
func (s *Service) activeFor(userID uint) (*models.UserSubscription, error) {
	active, err := s.repo.GetActiveByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if s.now().After(active.EndDate) {
		if err := s.repo.UpdateStatusTx(s.db, active.ID, models.SubscriptionStatusExpired); err != nil {
			return nil, err
		}
		s.clearActiveRef(userID)
		return nil, nil
	}
	return active, nil
}

// clearActiveRef drops the account's active-subscription pointer once the
// record it names stops being active. Best-effort like the set side.
func (s *Service) clearActiveRef(userID uint) {
	if err := s.users.SetActiveSubscription(userID, nil); err != nil {
		log.Errorf("[Subscription] Failed to clear active subscription ref for user %d: %v", userID, err)
	}
}

// SeedDefaultPlans upserts the default plan catalog. Idempotent.
func SeedDefaultPlans(repo repository.SubscriptionRepository) error {
	yearlyDiscount := 20
	plans := []models.SubscriptionPlan{
		{Code: "starter_monthly", Name: "Starter", DurationDays: 30, BasePrice: decimal.NewFromFloat(9.99), Credits: 50},
		{Code: "pro_monthly", Name: "Pro", DurationDays: 30, BasePrice: decimal.NewFromFloat(29.99), Credits: 250},
		{Code: "pro_yearly", Name: "Pro Annual", DurationDays: 365, BasePrice: decimal.NewFromFloat(359.88), DiscountPercent: &yearlyDiscount, Credits: 3000},
	}
	for i := range plans {
		if err := repo.SavePlan(&plans[i]); err != nil {
			return err
		}
	}
	return nil
}
