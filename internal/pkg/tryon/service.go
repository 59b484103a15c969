package tryon

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/audit"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/credits"
)

var (
	ErrMissingInput = errors.New("human image and garment reference are required")
	ErrNotFound     = errors.New("try-on not found")
	ErrAccessDenied = errors.New("access denied")
)

const defaultListLimit = 50

// Principal identifies who is asking: a session user or a site integration.
type Principal struct {
	UserID uint
	SiteID string
}

// SubmitRequest carries a validated, payer-resolved submission.
type SubmitRequest struct {
	PayerID       uint
	SiteID        string
	ProductID     string
	GarmentURL    string
	HumanImageKey string
	HumanImageURL string
	AuditAction   string
}

// Service drives a submission from intake to its terminal state. The credit
// debit and the job insert commit in one transaction, so no job ever exists
// without a matching debit.
type Service struct {
	db         *gorm.DB
	jobs       repository.TryOnJobRepository
	ledger     *credits.Ledger
	sink       audit.Sink
	dispatcher *Dispatcher

	sweepStop chan struct{}
	sweepWg   sync.WaitGroup
	sweepMu   sync.Mutex
	sweeping  bool
}

// NewService wires the orchestrator.
func NewService(db *gorm.DB, jobs repository.TryOnJobRepository, ledger *credits.Ledger, sink audit.Sink, dispatcher *Dispatcher) *Service {
	return &Service{
		db:         db,
		jobs:       jobs,
		ledger:     ledger,
		sink:       sink,
		dispatcher: dispatcher,
	}
}

// Submit runs the synchronous intake phase and hands the provider call to the
// dispatcher. Returns the persisted job, still queued.
func (s *Service) Submit(req SubmitRequest) (*models.TryOnJob, error) {
	if req.HumanImageKey == "" || req.GarmentURL == "" {
		return nil, ErrMissingInput
	}

	now := time.Now()
	job := &models.TryOnJob{
		ID:            uuid.New().String(),
		UserID:        req.PayerID,
		SiteID:        req.SiteID,
		ProductID:     req.ProductID,
		GarmentURL:    req.GarmentURL,
		HumanImageKey: req.HumanImageKey,
		Status:        models.TryOnStatusQueued,
		CreatedAt:     now,
		ExpiresAt:     now.Add(models.TryOnJobTTL),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.DebitTx(tx, req.PayerID, 1); err != nil {
			return err
		}
		return s.jobs.CreateTx(tx, job)
	})
	if err != nil {
		return nil, err
	}

	action := req.AuditAction
	if action == "" {
		action = models.AuditActionTryOnCreated
	}
	detail := map[string]interface{}{"tryon_id": job.ID}
	if req.ProductID != "" {
		detail["product_id"] = req.ProductID
	}
	if req.SiteID != "" {
		detail["site_id"] = req.SiteID
	}
	s.sink.Record(req.PayerID, action, detail)

	s.dispatcher.Enqueue(Task{
		JobID:           job.ID,
		HumanImageURL:   req.HumanImageURL,
		GarmentImageURL: req.GarmentURL,
	})

	return job, nil
}

// Get returns a job after verifying the principal owns it: session callers by
// account id, site-token callers by site id.
func (s *Service) Get(jobID string, p Principal) (*models.TryOnJob, error) {
	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !owns(job, p) {
		return nil, ErrAccessDenied
	}
	return job, nil
}

// List returns the account's jobs newest-first, bounded by limit.
func (s *Service) List(userID uint, limit int) ([]models.TryOnJob, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.jobs.GetByUserID(userID, limit)
}

// Delete removes a job after the same ownership check Get applies. Credits
// are not refunded.
func (s *Service) Delete(jobID string, p Principal) error {
	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !owns(job, p) {
		return ErrAccessDenied
	}
	if err := s.jobs.Delete(jobID); err != nil {
		return err
	}
	s.sink.Record(p.UserID, models.AuditActionTryOnDeleted, map[string]interface{}{"tryon_id": jobID})
	return nil
}

// PurgeExpired removes all jobs past their expiry regardless of status and
// returns the count removed. Safe to repeat.
func (s *Service) PurgeExpired(now time.Time) (int64, error) {
	return s.jobs.DeleteExpired(now)
}

func owns(job *models.TryOnJob, p Principal) bool {
	if p.SiteID != "" {
		return job.SiteID == p.SiteID
	}
	return job.UserID == p.UserID
}

// StartSweeper periodically purges expired jobs until StopSweeper is called.
func (s *Service) StartSweeper(interval time.Duration) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	if s.sweeping {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}

	s.sweepStop = make(chan struct{})
	s.sweeping = true
	s.sweepWg.Add(1)

	go func() {
		defer s.sweepWg.Done()
		log.Infof("[TryOn Sweeper] Running (interval=%s)", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.sweepStop:
				log.Info("[TryOn Sweeper] Stopping")
				return
			case <-ticker.C:
				removed, err := s.PurgeExpired(time.Now())
				if err != nil {
					log.Errorf("[TryOn Sweeper] Purge failed: %v", err)
					continue
				}
				if removed > 0 {
					log.Infof("[TryOn Sweeper] Purged %d expired jobs", removed)
				}
			}
		}
	}()
}

// StopSweeper stops the purge sweeper.
func (s *Service) StopSweeper() {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	if !s.sweeping {
		return
	}
	close(s.sweepStop)
	s.sweeping = false
	s.sweepWg.Wait()
}
