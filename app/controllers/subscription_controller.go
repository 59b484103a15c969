package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/subscription"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/usercontext"
)

type subscribeRequest struct {
	Plan string `json:"plan"`
}

// HandleListPlans returns the plan catalog including discounted final prices.
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := subscriptionService.Plans()
	if err != nil {
		log.Errorf("[Subscription] Failed to load plan catalog: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plans"})
	}

	items := make([]fiber.Map, 0, len(plans))
	for i := range plans {
		items = append(items, planResponse(&plans[i]))
	}
	return c.JSON(fiber.Map{"plans": items})
}

// HandleCurrentSubscription returns the caller's active subscription.
func HandleCurrentSubscription(c *fiber.Ctx) error {
	sub, err := subscriptionService.Current(usercontext.GetUserID(c))
	if err != nil {
		return subscriptionError(c, err)
	}
	return c.JSON(subscriptionResponse(sub))
}

// HandleSubscribe starts a plan for an account with no active subscription.
func HandleSubscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil || req.Plan == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "plan is required"})
	}

	sub, err := subscriptionService.Subscribe(usercontext.GetUserID(c), req.Plan)
	if err != nil {
		return subscriptionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(subscriptionResponse(sub))
}

// HandleUpgradeSubscription switches the caller to a new plan mid-cycle and
// reports the prorated price for the switch.
func HandleUpgradeSubscription(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil || req.Plan == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "plan is required"})
	}

	sub, proratedPrice, err := subscriptionService.Upgrade(usercontext.GetUserID(c), req.Plan)
	if err != nil {
		return subscriptionError(c, err)
	}

	resp := subscriptionResponse(sub)
	resp["prorated_price"] = proratedPrice.StringFixed(2)
	return c.JSON(resp)
}

// HandleCancelSubscription cancels the active subscription. Access runs until
// the paid period ends.
func HandleCancelSubscription(c *fiber.Ctx) error {
	sub, err := subscriptionService.Cancel(usercontext.GetUserID(c))
	if err != nil {
		return subscriptionError(c, err)
	}
	return c.JSON(subscriptionResponse(sub))
}

func planResponse(plan *models.SubscriptionPlan) fiber.Map {
	resp := fiber.Map{
		"code":          plan.Code,
		"name":          plan.Name,
		"duration_days": plan.DurationDays,
		"base_price":    plan.BasePrice.StringFixed(2),
		"final_price":   plan.FinalPrice().StringFixed(2),
		"credits":       plan.Credits,
	}
	if plan.DiscountPercent != nil {
		resp["discount_percent"] = *plan.DiscountPercent
	}
	return resp
}

func subscriptionResponse(sub *models.UserSubscription) fiber.Map {
	resp := fiber.Map{
		"id":               sub.ID,
		"plan_id":          sub.PlanID,
		"pricing_snapshot": sub.PricingSnapshot.StringFixed(2),
		"start_date":       sub.StartDate,
		"end_date":         sub.EndDate,
		"status":           sub.Status,
	}
	if plan, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetPlanByID(sub.PlanID); err == nil {
		resp["plan"] = plan.Code
	}
	return resp
}

func subscriptionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, subscription.ErrAlreadySubscribed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "An active subscription already exists"})
	case errors.Is(err, subscription.ErrNoActiveSubscription):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "No active subscription"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown plan"})
	default:
		log.Errorf("[Subscription] Operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Subscription operation failed"})
	}
}
