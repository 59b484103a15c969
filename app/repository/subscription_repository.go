package repository

import (
	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetPlanByID retrieves a plan by its ID
func (r *subscriptionRepository) GetPlanByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetPlanByCode retrieves a plan by its code
func (r *subscriptionRepository) GetPlanByCode(code string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.Where("code = ?", code).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListPlans returns the full plan catalog
func (r *subscriptionRepository) ListPlans() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Order("base_price ASC").Find(&plans).Error
	return plans, err
}

// SavePlan upserts a plan by code (used by catalog seeding)
func (r *subscriptionRepository) SavePlan(plan *models.SubscriptionPlan) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"duration_days",
			"base_price",
			"discount_percent",
			"credits",
		}),
	}).Create(plan).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("code = ?", plan.Code).First(plan).Error
}

// GetActiveByUser returns the account's single active subscription record
func (r *subscriptionRepository) GetActiveByUser(userID uint) (*models.UserSubscription, error) {
	return r.GetActiveByUserTx(r.db, userID)
}

// GetActiveByUserTx runs the active-record lookup inside the caller's
// transaction so subscribe can re-check uniqueness before inserting
func (r *subscriptionRepository) GetActiveByUserTx(tx *gorm.DB, userID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := tx.Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscriptionTx inserts a subscription record inside the caller's transaction
func (r *subscriptionRepository) CreateSubscriptionTx(tx *gorm.DB, sub *models.UserSubscription) error {
	return tx.Create(sub).Error
}

// UpdateStatusTx updates a subscription record's status inside the caller's transaction
func (r *subscriptionRepository) UpdateStatusTx(tx *gorm.DB, id uint, status string) error {
	return tx.Model(&models.UserSubscription{}).Where("id = ?", id).
		Update("status", status).Error
}
