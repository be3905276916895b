package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/notes-service/internal/api/http/handlers"
	"github.com/spec-kit/notes-service/internal/auth"
	"github.com/spec-kit/notes-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Users        *handlers.UsersHandler
	Notes        *handlers.NotesHandler
	Guard        *auth.Guard
	LoginLimiter *LoginLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth", cfg.LoginLimiter.Handle, cfg.Auth.Login)
	app.Get("/auth/refresh", cfg.Auth.Refresh)
	app.Post("/auth/logout", cfg.Auth.Logout)

	// Listing users is open to any authenticated caller (the note assignment
	// form needs it); mutations are manager/admin territory.
	users := app.Group("/users", cfg.Guard.Handle)
	users.Get("", cfg.Users.List)
	users.Post("", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Users.Create)
	users.Patch("", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Users.Update)
	users.Delete("", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Users.Delete)

	notes := app.Group("/notes", cfg.Guard.Handle)
	notes.Get("", cfg.Notes.List)
	notes.Post("", cfg.Notes.Create)
	notes.Patch("", cfg.Notes.Update)
	notes.Delete("", cfg.Notes.Delete)
}
