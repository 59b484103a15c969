package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/usercontext"
)

type createIntegrationRequest struct {
	AllowedDomains []string `json:"allowed_domains"`
}

// HandleCreateIntegration registers a site integration for the caller and
// returns the generated opaque token. An empty domain list leaves the token
// unrestricted.
func HandleCreateIntegration(c *fiber.Ctx) error {
	var req createIntegrationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "allowed_domains must be an array"})
	}

	domains := make([]string, 0, len(req.AllowedDomains))
	for _, raw := range req.AllowedDomains {
		domain := strings.TrimSpace(raw)
		if domain == "" || strings.ContainsAny(domain, " /") || strings.Contains(domain, "://") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "allowed_domains must contain bare hostnames"})
		}
		domains = append(domains, domain)
	}

	userID := usercontext.GetUserID(c)
	integration, err := models.NewSiteIntegration(userID, domains)
	if err != nil {
		log.Errorf("[Integration] Failed to build integration: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Integration creation failed"})
	}

	repo := repository.GetGlobalFactory().GetSiteIntegrationRepository()
	if err := repo.Create(integration); err != nil {
		log.Errorf("[Integration] Failed to persist integration: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Integration creation failed"})
	}

	auditSink.Record(userID, models.AuditActionIntegrationCreated, map[string]interface{}{
		"site_id": integration.SiteID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"site_id":         integration.SiteID,
		"site_token":      integration.SiteToken,
		"allowed_domains": integration.DomainList(),
	})
}

// HandleListIntegrations lists the caller's integrations.
func HandleListIntegrations(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetSiteIntegrationRepository()
	integrations, err := repo.GetByOwner(usercontext.GetUserID(c))
	if err != nil {
		log.Errorf("[Integration] List failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list integrations"})
	}

	items := make([]fiber.Map, 0, len(integrations))
	for i := range integrations {
		items = append(items, fiber.Map{
			"site_id":         integrations[i].SiteID,
			"site_token":      integrations[i].SiteToken,
			"allowed_domains": integrations[i].DomainList(),
			"created_at":      integrations[i].CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"integrations": items})
}
