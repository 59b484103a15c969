package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/VaishaliGajapathi/GlamArTryon/app/controllers"
)

type AuthRouter struct {
}

func (h AuthRouter) InstallRouter(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/refresh", controllers.HandleRefresh)
}

func NewAuthRouter() *AuthRouter {
	return &AuthRouter{}
}
