package repository

import (
	"time"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for account-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateRefreshTokenHash(id uint, hash string) error
	SetActiveSubscription(id uint, subscriptionID *uint) error
	Count() (int64, error)
}

// TryOnJobRepository defines the interface for job persistence. Status
// updates are guarded so a terminal job never re-enters an earlier state.
type TryOnJobRepository interface {
	Create(job *models.TryOnJob) error
	CreateTx(tx *gorm.DB, job *models.TryOnJob) error
	GetByID(id string) (*models.TryOnJob, error)
	GetByUserID(userID uint, limit int) ([]models.TryOnJob, error)
	MarkProcessing(id string) error
	MarkDone(id string, outputImageKey string, providerMetadata string) error
	MarkFailed(id string) error
	Delete(id string) error
	DeleteExpired(now time.Time) (int64, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// SiteIntegrationRepository defines the interface for the site-integration registry
type SiteIntegrationRepository interface {
	Create(integration *models.SiteIntegration) error
	GetByToken(token string) (*models.SiteIntegration, error)
	GetByOwner(ownerUserID uint) ([]models.SiteIntegration, error)
}

// SubscriptionRepository defines the interface for plan reference data and
// per-account subscription records
type SubscriptionRepository interface {
	GetPlanByID(id uint) (*models.SubscriptionPlan, error)
	GetPlanByCode(code string) (*models.SubscriptionPlan, error)
	ListPlans() ([]models.SubscriptionPlan, error)
	SavePlan(plan *models.SubscriptionPlan) error
	GetActiveByUser(userID uint) (*models.UserSubscription, error)
	GetActiveByUserTx(tx *gorm.DB, userID uint) (*models.UserSubscription, error)
	CreateSubscriptionTx(tx *gorm.DB, sub *models.UserSubscription) error
	UpdateStatusTx(tx *gorm.DB, id uint, status string) error
}

// AuditLogRepository defines the interface for the append-only audit trail
type AuditLogRepository interface {
	Create(entry *models.AuditLog) error
	GetRecent(limit int) ([]models.AuditLog, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	TryOnJob        TryOnJobRepository
	SiteIntegration SiteIntegrationRepository
	Subscription    SubscriptionRepository
	AuditLog        AuditLogRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		TryOnJob:        NewTryOnJobRepository(db),
		SiteIntegration: NewSiteIntegrationRepository(db),
		Subscription:    NewSubscriptionRepository(db),
		AuditLog:        NewAuditLogRepository(db),
	}
}
