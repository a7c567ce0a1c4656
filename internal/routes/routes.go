package routes

import (
	"github.com/edmorua/admin-user-back/internal/handlers"
	"github.com/edmorua/admin-user-back/internal/middleware"
	"github.com/edmorua/admin-user-back/internal/token"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	tokens *token.Service,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/", healthHandler.Root)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Check)

	protected := middleware.Authenticate(tokens)

	// Static segments are registered before /:userId so they are not
	// captured as ids.
	users := api.Group("/users")
	users.Get("/myprofile", protected, userHandler.MyProfile)
	users.Post("/signin", userHandler.SignIn)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Register)
	users.Get("/:userId", protected, userHandler.Get)
	users.Put("/:userId", protected, userHandler.Update)
	users.Delete("/:userId", protected, userHandler.Delete)
}
