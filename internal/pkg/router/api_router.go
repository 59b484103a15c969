package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/VaishaliGajapathi/GlamArTryon/app/controllers"
	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/middleware"
)

type ApiRouter struct {
	// RateLimitStore backs every limiter on the API surface. Nil falls back
	// to the Redis store inside middleware.RateLimit.
	RateLimitStore middleware.RateLimitStore
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})

	h.registerSessionRoutes(api)
	h.registerSDKRoutes(api)
	h.registerPluginRoutes(api)
	h.registerAdminRoutes(api)
}

// registerSessionRoutes wires the dashboard surface: JWT sessions, the
// strictest request budget.
func (h ApiRouter) registerSessionRoutes(api fiber.Router) {
	sessionLimiter := middleware.RateLimit(middleware.RateLimitConfig{
		Scope:       "session",
		MaxRequests: middleware.DefaultSessionMaxRequests,
		Window:      middleware.DefaultRateLimitWindow,
		Store:       h.RateLimitStore,
	})

	tryon := api.Group("/tryon", middleware.JWTAuth(), sessionLimiter)
	tryon.Post("/", controllers.HandleCreateTryOn)
	tryon.Get("/", controllers.HandleListTryOns)
	tryon.Get("/:id", controllers.HandleGetTryOn)
	tryon.Delete("/:id", controllers.HandleDeleteTryOn)

	integrations := api.Group("/integrations", middleware.JWTAuth(), sessionLimiter)
	integrations.Post("/", controllers.HandleCreateIntegration)
	integrations.Get("/", controllers.HandleListIntegrations)

	subscriptions := api.Group("/subscriptions", middleware.JWTAuth(), sessionLimiter)
	subscriptions.Get("/plans", controllers.HandleListPlans)
	subscriptions.Get("/current", controllers.HandleCurrentSubscription)
	subscriptions.Post("/subscribe", controllers.HandleSubscribe)
	subscriptions.Post("/upgrade", controllers.HandleUpgradeSubscription)
	subscriptions.Post("/cancel", controllers.HandleCancelSubscription)
}

// registerSDKRoutes wires the embeddable SDK surface, authenticated with a
// site token instead of a user session.
func (h ApiRouter) registerSDKRoutes(api fiber.Router) {
	sdk := api.Group("/sdk", middleware.SiteTokenAuth(), middleware.RateLimit(middleware.RateLimitConfig{
		Scope:       "sdk",
		MaxRequests: middleware.DefaultSDKMaxRequests,
		Window:      middleware.DefaultRateLimitWindow,
		Store:       h.RateLimitStore,
	}))
	sdk.Post("/tryon", controllers.HandleSDKCreateTryOn)
	sdk.Get("/tryon/:id", controllers.HandleSiteGetTryOn)
}

// registerPluginRoutes wires the shop-plugin surface. Plugins may upload the
// garment image instead of passing a URL.
func (h ApiRouter) registerPluginRoutes(api fiber.Router) {
	plugin := api.Group("/plugin", middleware.SiteTokenAuth(), middleware.RateLimit(middleware.RateLimitConfig{
		Scope:       "plugin",
		MaxRequests: middleware.DefaultPluginMaxRequests,
		Window:      middleware.DefaultRateLimitWindow,
		Store:       h.RateLimitStore,
	}))
	plugin.Post("/try-on", controllers.HandlePluginCreateTryOn)
	plugin.Get("/try-on/:id", controllers.HandleSiteGetTryOn)
}

func (h ApiRouter) registerAdminRoutes(api fiber.Router) {
	admin := api.Group("/admin", middleware.JWTAuth(), middleware.RequireAdmin)
	admin.Post("/purge-cache", controllers.HandlePurgeExpiredJobs)
	admin.Get("/metrics", controllers.HandleAdminMetrics)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
