package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
)

// QuoteUpgrade computes the cost of switching mid-cycle: the unused value of
// the current period, priced at the original purchase snapshot, is credited
// against the new plan's price. Floors at zero; no refunds.
func QuoteUpgrade(current *models.UserSubscription, currentPlan *models.SubscriptionPlan, newPricing decimal.Decimal, now time.Time) decimal.Decimal {
	totalDays := currentPlan.DurationDays
	if totalDays <= 0 {
		return newPricing.Round(2)
	}

	daysElapsed := int(now.Sub(current.StartDate).Hours() / 24)
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	if daysElapsed > totalDays {
		daysElapsed = totalDays
	}
	daysRemaining := totalDays - daysElapsed

	remainingValue := current.PricingSnapshot.
		Mul(decimal.NewFromInt(int64(daysRemaining))).
		Div(decimal.NewFromInt(int64(totalDays)))

	prorated := newPricing.Sub(remainingValue)
	if prorated.IsNegative() {
		return decimal.Zero
	}
	return prorated.Round(2)
}
