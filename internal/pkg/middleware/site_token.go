package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/usercontext"
)

// SiteTokenAuth authenticates embedded third-party requests via an opaque
// site token carried in the X-Site-Token header or the siteToken form field.
// When the request carries an Origin/Referer and the integration restricts
// domains, the origin must contain one of the allow-listed hostnames.
func SiteTokenAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractSiteToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Site token required"})
		}

		repo := repository.GetGlobalFactory().GetSiteIntegrationRepository()
		integration, err := repo.GetByToken(token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid site token"})
			}
			log.Errorf("[SiteToken] lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Site token verification failed"})
		}

		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			origin = c.Get(fiber.HeaderReferer)
		}
		if !OriginAllowed(origin, integration.DomainList()) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Domain not authorized"})
		}

		c.Locals(usercontext.KeySiteIntegration, integration)
		return c.Next()
	}
}

// OriginAllowed checks a request origin against an integration's domain
// allow-list. An empty list or an absent origin passes.
func OriginAllowed(origin string, allowedDomains []string) bool {
	if origin == "" || len(allowedDomains) == 0 {
		return true
	}
	for _, domain := range allowedDomains {
		if domain == "" {
			continue
		}
		if strings.Contains(origin, domain) {
			return true
		}
	}
	return false
}

func extractSiteToken(c *fiber.Ctx) string {
	token := strings.TrimSpace(c.Get("X-Site-Token"))
	if token != "" {
		return token
	}
	return strings.TrimSpace(c.FormValue("siteToken"))
}
