package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/VaishaliGajapathi/GlamArTryon/app/controllers"
	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/audit"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/blobstore"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/cache"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/credits"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/database"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/env"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/router"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/subscription"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/tryon"
)

const expirySweepInterval = time.Hour

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalFactory()

	storage, err := blobstore.Setup()
	if err != nil {
		log.Fatalf("blob store setup failed: %v", err)
	}

	ledger := credits.NewLedger(db)
	sink := audit.NewSink(repos.GetAuditLogRepository())

	workers, _ := strconv.Atoi(env.GetEnv("TRYON_WORKERS", "3"))
	dispatcher := tryon.NewDispatcher(repos.GetTryOnJobRepository(), tryon.NewReplicateGateway(), workers, 0)

	tryonService := tryon.NewService(db, repos.GetTryOnJobRepository(), ledger, sink, dispatcher)
	subscriptionService := subscription.NewService(db, repos.GetSubscriptionRepository(), repos.GetUserRepository(), ledger, sink)

	if err := subscription.SeedDefaultPlans(repos.GetSubscriptionRepository()); err != nil {
		log.Fatalf("plan seeding failed: %v", err)
	}

	controllers.Initialize(tryonService, subscriptionService, sink, storage)

	dispatcher.Start()
	tryonService.StartSweeper(expirySweepInterval)

	app := newFiberApp()

	// shutdown drains workers before the process exits
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		tryonService.StopSweeper()
		dispatcher.Stop()
		_ = app.Shutdown()
	}()

	err = app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func newFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20 MiB, bounded by the largest human image upload
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// static uploads (local blob store)
	app.Static("/uploads", env.GetEnv("UPLOAD_DIR", "./uploads"), fiber.Static{
		CacheDuration: 10 * time.Second,
		MaxAge:        604800, // 7 days
	})

	// ROUTER
	router.InstallRouter(app)

	return app
}
