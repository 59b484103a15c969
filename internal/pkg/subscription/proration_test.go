package subscription

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
)

func TestQuoteUpgrade(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		snapshot    string
		totalDays   int
		elapsedDays int
		newPrice    string
		want        string
	}{
		{
			// 10 of 30 days used: $30 snapshot leaves $20 of value, so a
			// $99 plan costs $79 to switch into.
			name:        "mid cycle upgrade",
			snapshot:    "30.00",
			totalDays:   30,
			elapsedDays: 10,
			newPrice:    "99.00",
			want:        "79",
		},
		{
			name:        "upgrade on day one keeps full remaining value",
			snapshot:    "30.00",
			totalDays:   30,
			elapsedDays: 0,
			newPrice:    "99.00",
			want:        "69",
		},
		{
			name:        "fully elapsed period credits nothing",
			snapshot:    "30.00",
			totalDays:   30,
			elapsedDays: 30,
			newPrice:    "99.00",
			want:        "99",
		},
		{
			name:        "elapsed beyond the period clamps to the period",
			snapshot:    "30.00",
			totalDays:   30,
			elapsedDays: 45,
			newPrice:    "99.00",
			want:        "99",
		},
		{
			name:        "remaining value above new price floors at zero",
			snapshot:    "359.88",
			totalDays:   365,
			elapsedDays: 5,
			newPrice:    "9.99",
			want:        "0",
		},
		{
			name:        "fractional result rounds to cents",
			snapshot:    "10.00",
			totalDays:   30,
			elapsedDays: 10,
			newPrice:    "29.99",
			want:        "23.32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := &models.UserSubscription{
				PricingSnapshot: decimal.RequireFromString(tt.snapshot),
				StartDate:       start,
				EndDate:         start.AddDate(0, 0, tt.totalDays),
				Status:          models.SubscriptionStatusActive,
			}
			currentPlan := &models.SubscriptionPlan{DurationDays: tt.totalDays}
			now := start.AddDate(0, 0, tt.elapsedDays)

			got := QuoteUpgrade(current, currentPlan, decimal.RequireFromString(tt.newPrice), now)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"QuoteUpgrade() = %s, want %s", got, tt.want)
		})
	}
}

func TestQuoteUpgradeZeroDurationPlan(t *testing.T) {
	current := &models.UserSubscription{
		PricingSnapshot: decimal.RequireFromString("30.00"),
		StartDate:       time.Now(),
	}
	got := QuoteUpgrade(current, &models.SubscriptionPlan{DurationDays: 0}, decimal.RequireFromString("99.00"), time.Now())
	assert.True(t, got.Equal(decimal.RequireFromString("99")))
}

func TestQuoteUpgradePartialDayCountsAsNotElapsed(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	current := &models.UserSubscription{
		PricingSnapshot: decimal.RequireFromString("30.00"),
		StartDate:       start,
	}
	// 23 hours into the cycle still counts as day zero.
	got := QuoteUpgrade(current, &models.SubscriptionPlan{DurationDays: 30}, decimal.RequireFromString("99.00"), start.Add(23*time.Hour))
	assert.True(t, got.Equal(decimal.RequireFromString("69")))
}
