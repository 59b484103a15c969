package tryon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/credits"
)

// stubGateway returns a canned result or error without talking to a provider.
type stubGateway struct {
	result *GenerateResult
	err    error
	delay  time.Duration
}

func (g *stubGateway) Generate(ctx context.Context, humanImageURL, garmentImageURL string) (*GenerateResult, error) {
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return g.result, g.err
}

// recordingSink captures audit entries for assertions.
type recordingSink struct {
	mu      sync.Mutex
	actions []string
}

func (s *recordingSink) Record(accountID uint, action string, detail map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
}

func (s *recordingSink) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.actions...)
}

type serviceFixture struct {
	db         *gorm.DB
	jobs       repository.TryOnJobRepository
	ledger     *credits.Ledger
	sink       *recordingSink
	dispatcher *Dispatcher
	service    *Service
}

func newServiceFixture(t *testing.T, gateway Gateway) *serviceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.TryOnJob{}))

	if gateway == nil {
		gateway = &stubGateway{result: &GenerateResult{Success: true, OutputURL: "https://cdn.example.com/out.png"}}
	}

	jobs := repository.NewTryOnJobRepository(db)
	ledger := credits.NewLedger(db)
	sink := &recordingSink{}
	dispatcher := NewDispatcher(jobs, gateway, 1, time.Second)

	return &serviceFixture{
		db:         db,
		jobs:       jobs,
		ledger:     ledger,
		sink:       sink,
		dispatcher: dispatcher,
		service:    NewService(db, jobs, ledger, sink, dispatcher),
	}
}

func (f *serviceFixture) createUser(t *testing.T, credits int64) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Test User",
		Email:    fmt.Sprintf("tryon-%d-%d@example.com", credits, time.Now().UnixNano()),
		Password: "hashed",
		Role:     models.ROLE_USER,
		Status:   models.STATUS_ACTIVE,
		Credits:  credits,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func submitRequest(userID uint) SubmitRequest {
	return SubmitRequest{
		PayerID:       userID,
		GarmentURL:    "https://shop.example.com/garment.png",
		HumanImageKey: "human-key.png",
		HumanImageURL: "http://localhost:4000/uploads/human-key.png",
	}
}

func TestSubmitCreatesQueuedJobAndDebitsOneCredit(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 3)

	job, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.TryOnStatusQueued, job.Status)
	assert.Equal(t, user.ID, job.UserID)
	assert.WithinDuration(t, job.CreatedAt.Add(models.TryOnJobTTL), job.ExpiresAt, time.Second)

	balance, err := f.ledger.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)

	assert.Contains(t, f.sink.recorded(), models.AuditActionTryOnCreated)

	stored, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TryOnStatusQueued, stored.Status)
}

func TestSubmitInsufficientCreditsLeavesNoJob(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 0)

	_, err := f.service.Submit(submitRequest(user.ID))
	assert.ErrorIs(t, err, credits.ErrInsufficientCredits)

	count, err := f.jobs.Count()
	require.NoError(t, err)
	assert.Zero(t, count, "failed submit must not persist a job")
	assert.Empty(t, f.sink.recorded())
}

func TestSubmitMissingInput(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 3)

	req := submitRequest(user.ID)
	req.GarmentURL = ""
	_, err := f.service.Submit(req)
	assert.ErrorIs(t, err, ErrMissingInput)

	req = submitRequest(user.ID)
	req.HumanImageKey = ""
	_, err = f.service.Submit(req)
	assert.ErrorIs(t, err, ErrMissingInput)

	balance, err := f.ledger.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance, "rejected input must not charge")
}

func TestSubmitCustomAuditAction(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 3)

	req := submitRequest(user.ID)
	req.SiteID = "site-1"
	req.AuditAction = models.AuditActionSDKTryOnCreated
	_, err := f.service.Submit(req)
	require.NoError(t, err)

	assert.Contains(t, f.sink.recorded(), models.AuditActionSDKTryOnCreated)
}

func TestDispatcherCompletesJob(t *testing.T) {
	f := newServiceFixture(t, &stubGateway{
		result: &GenerateResult{Success: true, OutputURL: "https://cdn.example.com/out.png", Metadata: `{"id":"p1"}`},
	})
	user := f.createUser(t, 3)

	f.dispatcher.Start()
	defer f.dispatcher.Stop()

	job, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)

	stored := waitForTerminal(t, f.jobs, job.ID)
	assert.Equal(t, models.TryOnStatusDone, stored.Status)
	assert.Equal(t, "https://cdn.example.com/out.png", stored.OutputImageKey)
	assert.Equal(t, `{"id":"p1"}`, stored.ProviderMetadata)
}

func TestDispatcherFailsJobOnProviderError(t *testing.T) {
	f := newServiceFixture(t, &stubGateway{err: errors.New("provider down")})
	user := f.createUser(t, 3)

	f.dispatcher.Start()
	defer f.dispatcher.Stop()

	job, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)

	stored := waitForTerminal(t, f.jobs, job.ID)
	assert.Equal(t, models.TryOnStatusFailed, stored.Status)

	// Credits are consumed on submit, failure does not refund.
	balance, err := f.ledger.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)
}

func TestDispatcherFailsJobOnEmptyOutput(t *testing.T) {
	f := newServiceFixture(t, &stubGateway{result: &GenerateResult{Success: true}})
	user := f.createUser(t, 3)

	f.dispatcher.Start()
	defer f.dispatcher.Stop()

	job, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)

	stored := waitForTerminal(t, f.jobs, job.ID)
	assert.Equal(t, models.TryOnStatusFailed, stored.Status)
}

func waitForTerminal(t *testing.T, jobs repository.TryOnJobRepository, id string) *models.TryOnJob {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := jobs.GetByID(id)
		require.NoError(t, err)
		if job.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return nil
}

// countingGateway tracks how often the provider is invoked.
type countingGateway struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGateway) Generate(ctx context.Context, humanImageURL, garmentImageURL string) (*GenerateResult, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return &GenerateResult{Success: true, OutputURL: "https://cdn.example.com/out.png"}, nil
}

func (g *countingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestMarkProcessingReportsVanishedJob(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 3)

	job, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)

	require.NoError(t, f.jobs.Delete(job.ID))

	assert.ErrorIs(t, f.jobs.MarkProcessing(job.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.jobs.MarkProcessing("never-existed"), gorm.ErrRecordNotFound)
}

func TestDispatcherSkipsJobDeletedBeforePickup(t *testing.T) {
	gateway := &countingGateway{}
	f := newServiceFixture(t, gateway)
	user := f.createUser(t, 3)

	// Submit while the workers are idle, then delete the job before any
	// worker can claim it.
	job, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(job.ID, Principal{UserID: user.ID}))

	f.dispatcher.Start()
	defer f.dispatcher.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, gateway.count(), "vanished job must not reach the provider")
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := f.createUser(t, 3)
	other := f.createUser(t, 3)

	job, err := f.service.Submit(submitRequest(owner.ID))
	require.NoError(t, err)

	got, err := f.service.Get(job.ID, Principal{UserID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = f.service.Get(job.ID, Principal{UserID: other.ID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.service.Get("missing-id", Principal{UserID: owner.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSitePrincipalMatchesBySite(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := f.createUser(t, 3)

	req := submitRequest(owner.ID)
	req.SiteID = "site-1"
	job, err := f.service.Submit(req)
	require.NoError(t, err)

	_, err = f.service.Get(job.ID, Principal{SiteID: "site-1"})
	require.NoError(t, err)

	_, err = f.service.Get(job.ID, Principal{SiteID: "site-2"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDeleteRemovesOwnJobOnly(t *testing.T) {
	f := newServiceFixture(t, nil)
	owner := f.createUser(t, 3)
	other := f.createUser(t, 3)

	job, err := f.service.Submit(submitRequest(owner.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Delete(job.ID, Principal{UserID: other.ID}), ErrAccessDenied)

	require.NoError(t, f.service.Delete(job.ID, Principal{UserID: owner.ID}))
	assert.Contains(t, f.sink.recorded(), models.AuditActionTryOnDeleted)

	_, err = f.service.Get(job.ID, Principal{UserID: owner.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again reports not found.
	assert.ErrorIs(t, f.service.Delete(job.ID, Principal{UserID: owner.ID}), ErrNotFound)
}

func TestListReturnsNewestFirst(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 10)

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := f.service.Submit(submitRequest(user.ID))
		require.NoError(t, err)
		ids = append(ids, job.ID)
		time.Sleep(5 * time.Millisecond)
	}

	jobs, err := f.service.List(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, ids[2], jobs[0].ID)
	assert.Equal(t, ids[0], jobs[2].ID)

	limited, err := f.service.List(user.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPurgeExpiredRemovesOnlyLapsedJobs(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 10)

	fresh, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)

	expired := &models.TryOnJob{
		ID:            "expired-job",
		UserID:        user.ID,
		GarmentURL:    "https://shop.example.com/garment.png",
		HumanImageKey: "human-key.png",
		Status:        models.TryOnStatusDone,
		CreatedAt:     time.Now().Add(-25 * time.Hour),
		ExpiresAt:     time.Now().Add(-time.Hour),
	}
	require.NoError(t, f.jobs.Create(expired))

	removed, err := f.service.PurgeExpired(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = f.jobs.GetByID(fresh.ID)
	require.NoError(t, err, "unexpired job must survive the purge")

	// Idempotent: a second purge finds nothing.
	removed, err = f.service.PurgeExpired(time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStatusTransitionsAreMonotonic(t *testing.T) {
	f := newServiceFixture(t, nil)
	user := f.createUser(t, 10)

	job, err := f.service.Submit(submitRequest(user.ID))
	require.NoError(t, err)

	require.NoError(t, f.jobs.MarkProcessing(job.ID))
	require.NoError(t, f.jobs.MarkDone(job.ID, "out.png", ""))

	// Terminal jobs never move again.
	_ = f.jobs.MarkProcessing(job.ID)
	_ = f.jobs.MarkFailed(job.ID)

	stored, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TryOnStatusDone, stored.Status)
	assert.Equal(t, "out.png", stored.OutputImageKey)
}
