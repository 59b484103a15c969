package repository

import (
	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"gorm.io/gorm"
)

// auditLogRepository implements the AuditLogRepository interface
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create appends an audit entry
func (r *auditLogRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// GetRecent returns the newest audit entries, bounded by limit
func (r *auditLogRepository) GetRecent(limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
