package repository

import (
	"time"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"gorm.io/gorm"
)

// tryOnJobRepository implements the TryOnJobRepository interface
type tryOnJobRepository struct {
	db *gorm.DB
}

// NewTryOnJobRepository creates a new try-on job repository instance
func NewTryOnJobRepository(db *gorm.DB) TryOnJobRepository {
	return &tryOnJobRepository{db: db}
}

// Create persists a new job record
func (r *tryOnJobRepository) Create(job *models.TryOnJob) error {
	return r.db.Create(job).Error
}

// CreateTx persists a new job record inside the caller's transaction. Used by
// the orchestrator so the credit debit and the job insert commit as one unit.
func (r *tryOnJobRepository) CreateTx(tx *gorm.DB, job *models.TryOnJob) error {
	return tx.Create(job).Error
}

// GetByID retrieves a job by its ID
func (r *tryOnJobRepository) GetByID(id string) (*models.TryOnJob, error) {
	var job models.TryOnJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByUserID returns the user's jobs newest-first, bounded by limit
func (r *tryOnJobRepository) GetByUserID(userID uint, limit int) ([]models.TryOnJob, error) {
	var jobs []models.TryOnJob
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// MarkProcessing moves a queued job to processing. The status guard in the
// WHERE clause keeps transitions one-directional under concurrent readers.
// Returns gorm.ErrRecordNotFound when no queued row exists to transition,
// so workers can tell a vanished job from a successful claim.
func (r *tryOnJobRepository) MarkProcessing(id string) error {
	result := r.db.Model(&models.TryOnJob{}).
		Where("id = ? AND status = ?", id, models.TryOnStatusQueued).
		Update("status", models.TryOnStatusProcessing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkDone finalizes a job with its output reference and provider metadata
func (r *tryOnJobRepository) MarkDone(id string, outputImageKey string, providerMetadata string) error {
	return r.db.Model(&models.TryOnJob{}).
		Where("id = ? AND status IN ?", id, []string{models.TryOnStatusQueued, models.TryOnStatusProcessing}).
		Updates(map[string]interface{}{
			"status":            models.TryOnStatusDone,
			"output_image_key":  outputImageKey,
			"provider_metadata": providerMetadata,
		}).Error
}

// MarkFailed finalizes a job as failed
func (r *tryOnJobRepository) MarkFailed(id string) error {
	return r.db.Model(&models.TryOnJob{}).
		Where("id = ? AND status IN ?", id, []string{models.TryOnStatusQueued, models.TryOnStatusProcessing}).
		Update("status", models.TryOnStatusFailed).Error
}

// Delete removes a job record
func (r *tryOnJobRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.TryOnJob{}).Error
}

// DeleteExpired removes all jobs past their expiry timestamp regardless of
// status and returns the number of records removed.
func (r *tryOnJobRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.TryOnJob{})
	return result.RowsAffected, result.Error
}

// Count returns the total number of jobs
func (r *tryOnJobRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.TryOnJob{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of jobs in the given status
func (r *tryOnJobRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.TryOnJob{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
