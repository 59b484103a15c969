package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/credits"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/tryon"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/usercontext"
)

// HandleCreateTryOn accepts a first-party submission: a human photo upload
// plus a garment upload or garment URL. The caller's own account is charged.
func HandleCreateTryOn(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	humanImageKey, humanImageURL, ok := storeHumanImage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Human image required"})
	}

	garmentURL := resolveGarmentURL(c)
	if garmentURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Garment image or URL required"})
	}

	job, err := tryonService.Submit(tryon.SubmitRequest{
		PayerID:       userID,
		ProductID:     c.FormValue("productId"),
		GarmentURL:    garmentURL,
		HumanImageKey: humanImageKey,
		HumanImageURL: humanImageURL,
		AuditAction:   models.AuditActionTryOnCreated,
	})
	if err != nil {
		return tryonSubmitError(c, err, "Insufficient credits")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"expires_at": job.ExpiresAt,
	})
}

// HandleGetTryOn returns a job's public projection to its owning account.
func HandleGetTryOn(c *fiber.Ctx) error {
	job, err := tryonService.Get(c.Params("id"), tryon.Principal{UserID: usercontext.GetUserID(c)})
	if err != nil {
		return tryonLookupError(c, err)
	}
	return c.JSON(tryonResponse(job))
}

// HandleListTryOns returns the caller's jobs newest-first.
func HandleListTryOns(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))

	jobs, err := tryonService.List(usercontext.GetUserID(c), limit)
	if err != nil {
		log.Errorf("[TryOn] List failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list try-ons"})
	}

	items := make([]fiber.Map, 0, len(jobs))
	for i := range jobs {
		items = append(items, tryonResponse(&jobs[i]))
	}
	return c.JSON(fiber.Map{"tryons": items, "total": len(items)})
}

// HandleDeleteTryOn removes a job owned by the caller. No credit refund.
func HandleDeleteTryOn(c *fiber.Ctx) error {
	err := tryonService.Delete(c.Params("id"), tryon.Principal{UserID: usercontext.GetUserID(c)})
	if err != nil {
		return tryonLookupError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Try-on deleted successfully"})
}

// storeHumanImage persists the uploaded person photo and returns its storage
// key and public URL.
func storeHumanImage(c *fiber.Ctx) (key string, url string, ok bool) {
	file, err := c.FormFile("humanImage")
	if err != nil || file == nil {
		return "", "", false
	}
	key, err = blobStorage.Store(file)
	if err != nil {
		log.Errorf("[TryOn] Failed to store human image: %v", err)
		return "", "", false
	}
	return key, blobStorage.URLFor(key), true
}

// resolveGarmentURL prefers the garmentUrl field, falling back to an uploaded
// garment image.
func resolveGarmentURL(c *fiber.Ctx) string {
	if url := c.FormValue("garmentUrl"); url != "" {
		return url
	}
	file, err := c.FormFile("garmentImage")
	if err != nil || file == nil {
		return ""
	}
	key, err := blobStorage.Store(file)
	if err != nil {
		log.Errorf("[TryOn] Failed to store garment image: %v", err)
		return ""
	}
	return blobStorage.URLFor(key)
}

func tryonResponse(job *models.TryOnJob) fiber.Map {
	return fiber.Map{
		"id":          job.ID,
		"status":      job.Status,
		"output_url":  job.OutputImageKey,
		"garment_url": job.GarmentURL,
		"product_id":  job.ProductID,
		"created_at":  job.CreatedAt,
		"expires_at":  job.ExpiresAt,
	}
}

func tryonSubmitError(c *fiber.Ctx, err error, creditMessage string) error {
	switch {
	case errors.Is(err, tryon.ErrMissingInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	case errors.Is(err, credits.ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient_credits", "message": creditMessage})
	default:
		log.Errorf("[TryOn] Submit failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Try-on submission failed"})
	}
}

func tryonLookupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, tryon.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Try-on not found"})
	case errors.Is(err, tryon.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Access denied"})
	default:
		log.Errorf("[TryOn] Lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Try-on lookup failed"})
	}
}
