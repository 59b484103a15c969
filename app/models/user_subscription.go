package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusRenewed   = "renewed"
	SubscriptionStatusCancelled = "cancelled"
)

// UserSubscription records one subscription period for an account. At most
// one record per account is active at any time; superseded records are marked
// renewed or expired, never deleted. PricingSnapshot is the price at time of
// purchase and is never recomputed from current plan pricing.
type UserSubscription struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PlanID          uint            `gorm:"not null;index" json:"plan_id"`
	PricingSnapshot decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"pricing_snapshot"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	EndDate         time.Time       `gorm:"not null" json:"end_date"`
	Status          string          `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether this record is the account's current subscription.
func (s *UserSubscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}
