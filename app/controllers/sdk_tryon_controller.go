package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/tryon"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/usercontext"
)

// HandleSDKCreateTryOn accepts a submission from an embedded SDK. The
// integration's owning account pays, not the anonymous end user.
func HandleSDKCreateTryOn(c *fiber.Ctx) error {
	return createSiteTryOn(c, models.AuditActionSDKTryOnCreated, false)
}

// HandlePluginCreateTryOn accepts a submission from the shop plugin. Same
// billing attribution as the SDK path; the garment may also be uploaded.
func HandlePluginCreateTryOn(c *fiber.Ctx) error {
	return createSiteTryOn(c, models.AuditActionPluginTryOnCreated, true)
}

func createSiteTryOn(c *fiber.Ctx, auditAction string, allowGarmentUpload bool) error {
	integration := usercontext.GetSiteIntegration(c)
	if integration == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Site token required"})
	}

	humanImageKey, humanImageURL, ok := storeHumanImage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Human image required"})
	}

	var garmentURL string
	if allowGarmentUpload {
		garmentURL = resolveGarmentURL(c)
	} else {
		garmentURL = c.FormValue("garmentUrl")
	}
	if garmentURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "garmentUrl required"})
	}

	job, err := tryonService.Submit(tryon.SubmitRequest{
		PayerID:       integration.OwnerUserID,
		SiteID:        integration.SiteID,
		ProductID:     c.FormValue("productId"),
		GarmentURL:    garmentURL,
		HumanImageKey: humanImageKey,
		HumanImageURL: humanImageURL,
		AuditAction:   auditAction,
	})
	if err != nil {
		return tryonSubmitError(c, err, "Site owner has insufficient credits")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"expires_at": job.ExpiresAt,
	})
}

// HandleSiteGetTryOn returns a job to the site integration that created it.
func HandleSiteGetTryOn(c *fiber.Ctx) error {
	integration := usercontext.GetSiteIntegration(c)
	if integration == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Site token required"})
	}

	job, err := tryonService.Get(c.Params("id"), tryon.Principal{SiteID: integration.SiteID})
	if err != nil {
		return tryonLookupError(c, err)
	}
	return c.JSON(tryonResponse(job))
}
