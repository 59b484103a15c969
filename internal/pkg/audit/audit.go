package audit

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2/log"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
)

// Sink appends security/billing-relevant events. Writes are best-effort: a
// failed audit write must never fail the primary operation.
type Sink interface {
	Record(accountID uint, action string, detail map[string]interface{})
}

type dbSink struct {
	repo repository.AuditLogRepository
}

// NewSink creates an audit sink backed by the audit log repository.
func NewSink(repo repository.AuditLogRepository) Sink {
	return &dbSink{repo: repo}
}

func (s *dbSink) Record(accountID uint, action string, detail map[string]interface{}) {
	payload := ""
	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			payload = string(data)
		} else {
			log.Warnf("[Audit] Failed to marshal detail for action %s: %v", action, err)
		}
	}
	entry := &models.AuditLog{
		UserID: accountID,
		Action: action,
		Detail: payload,
	}
	if err := s.repo.Create(entry); err != nil {
		log.Errorf("[Audit] Failed to record %s for account %d: %v", action, accountID, err)
	}
}

// NopSink discards all entries. Used in tests.
type NopSink struct{}

func (NopSink) Record(accountID uint, action string, detail map[string]interface{}) {}
