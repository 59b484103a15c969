package models

import (
	"time"
)

const (
	TryOnStatusQueued     = "queued"
	TryOnStatusProcessing = "processing"
	TryOnStatusDone       = "done"
	TryOnStatusFailed     = "failed"
)

// TryOnJobTTL is how long a job record is kept before the purge sweep may
// remove it.
const TryOnJobTTL = 24 * time.Hour

// TryOnJob is one try-on generation request and its lifecycle record.
// Status only ever walks queued -> processing -> done|failed.
type TryOnJob struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	SiteID           string    `gorm:"type:varchar(36);index;default:''" json:"site_id,omitempty"`
	ProductID        string    `gorm:"type:varchar(100);default:''" json:"product_id,omitempty"`
	GarmentURL       string    `gorm:"type:varchar(2048);not null" json:"garment_url"`
	HumanImageKey    string    `gorm:"type:varchar(255);not null" json:"-"`
	Status           string    `gorm:"type:varchar(20);not null;default:'queued';index" json:"status"`
	OutputImageKey   string    `gorm:"type:varchar(2048);default:''" json:"output_image_key,omitempty"`
	ProviderMetadata string    `gorm:"type:longtext" json:"-"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt        time.Time `gorm:"not null;index" json:"expires_at"`
}

// IsTerminal reports whether the job reached a final state.
func (j *TryOnJob) IsTerminal() bool {
	return j.Status == TryOnStatusDone || j.Status == TryOnStatusFailed
}

// IsExpired reports whether the job is past its expiry timestamp.
func (j *TryOnJob) IsExpired(now time.Time) bool {
	return now.After(j.ExpiresAt)
}
