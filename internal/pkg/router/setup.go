package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs one route surface onto the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// Auth routes first so the token endpoints are reachable without any
	// API-group middleware, then the authenticated API surface.
	setup(app, NewAuthRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
