package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/usercontext"
)

const adminAuditFeedLimit = 50

// HandlePurgeExpiredJobs deletes every try-on job past its expiry. Safe to
// call repeatedly, the sweeper runs the same operation on a timer.
func HandlePurgeExpiredJobs(c *fiber.Ctx) error {
	deleted, err := tryonService.PurgeExpired(time.Now())
	if err != nil {
		log.Errorf("[Admin] Purge failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Purge failed"})
	}

	auditSink.Record(usercontext.GetUserID(c), models.AuditActionAdminPurge, map[string]interface{}{
		"deleted_count": deleted,
	})

	return c.JSON(fiber.Map{
		"message":       "Expired jobs purged",
		"deleted_count": deleted,
	})
}

// HandleAdminMetrics reports account and job counters plus the latest audit
// entries.
func HandleAdminMetrics(c *fiber.Ctx) error {
	factory := repository.GetGlobalFactory()
	users := factory.GetUserRepository()
	jobs := factory.GetTryOnJobRepository()
	audits := factory.GetAuditLogRepository()

	userCount, err := users.Count()
	if err != nil {
		log.Errorf("[Admin] Failed to count users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Metrics unavailable"})
	}

	jobCount, err := jobs.Count()
	if err != nil {
		log.Errorf("[Admin] Failed to count jobs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Metrics unavailable"})
	}

	byStatus := fiber.Map{}
	for _, status := range []string{
		models.TryOnStatusQueued,
		models.TryOnStatusProcessing,
		models.TryOnStatusDone,
		models.TryOnStatusFailed,
	} {
		count, err := jobs.CountByStatus(status)
		if err != nil {
			log.Errorf("[Admin] Failed to count %s jobs: %v", status, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Metrics unavailable"})
		}
		byStatus[status] = count
	}

	recent, err := audits.GetRecent(adminAuditFeedLimit)
	if err != nil {
		log.Errorf("[Admin] Failed to load audit feed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Metrics unavailable"})
	}

	auditItems := make([]fiber.Map, 0, len(recent))
	for i := range recent {
		auditItems = append(auditItems, fiber.Map{
			"user_id":    recent[i].UserID,
			"action":     recent[i].Action,
			"detail":     recent[i].Detail,
			"created_at": recent[i].CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"users": fiber.Map{"total": userCount},
		"jobs": fiber.Map{
			"total":     jobCount,
			"by_status": byStatus,
		},
		"recent_audit": auditItems,
	})
}
