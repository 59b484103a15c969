package repository

import (
	"strings"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"gorm.io/gorm"
)

// siteIntegrationRepository implements the SiteIntegrationRepository interface
type siteIntegrationRepository struct {
	db *gorm.DB
}

// NewSiteIntegrationRepository creates a new site integration repository instance
func NewSiteIntegrationRepository(db *gorm.DB) SiteIntegrationRepository {
	return &siteIntegrationRepository{db: db}
}

// Create persists a new site integration
func (r *siteIntegrationRepository) Create(integration *models.SiteIntegration) error {
	return r.db.Create(integration).Error
}

// GetByToken resolves an opaque site token to its integration record
func (r *siteIntegrationRepository) GetByToken(token string) (*models.SiteIntegration, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var integration models.SiteIntegration
	err := r.db.Where("site_token = ?", trimmed).First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// GetByOwner lists all integrations registered by the given account
func (r *siteIntegrationRepository) GetByOwner(ownerUserID uint) ([]models.SiteIntegration, error) {
	var integrations []models.SiteIntegration
	err := r.db.Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Find(&integrations).Error
	return integrations, err
}
