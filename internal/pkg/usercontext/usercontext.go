package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
)

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyUserContext); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetSiteIntegration returns the integration resolved by the site token
// middleware, or nil outside site-token routes.
func GetSiteIntegration(c *fiber.Ctx) *models.SiteIntegration {
	if v := c.Locals(KeySiteIntegration); v != nil {
		if integration, ok := v.(*models.SiteIntegration); ok {
			return integration
		}
	}
	return nil
}
