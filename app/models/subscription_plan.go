package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan is immutable reference data describing a purchasable plan.
type SubscriptionPlan struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Code            string          `gorm:"type:varchar(50);uniqueIndex" json:"code"`
	Name            string          `gorm:"type:varchar(150)" json:"name"`
	DurationDays    int             `gorm:"not null" json:"duration_days"`
	BasePrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	DiscountPercent *int            `gorm:"default:null" json:"discount_percent,omitempty"`
	Credits         int64           `gorm:"not null;default:0" json:"credits"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// FinalPrice applies the plan discount, when present, to the base price.
func (p *SubscriptionPlan) FinalPrice() decimal.Decimal {
	if p.DiscountPercent == nil || *p.DiscountPercent <= 0 {
		return p.BasePrice
	}
	discount := decimal.NewFromInt(int64(100 - *p.DiscountPercent)).Div(decimal.NewFromInt(100))
	return p.BasePrice.Mul(discount).Round(2)
}
