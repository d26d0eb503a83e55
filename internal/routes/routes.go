package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/mcontreras/contact-form-api/internal/config"
	"github.com/mcontreras/contact-form-api/internal/handlers"
	"github.com/mcontreras/contact-form-api/internal/middleware"
	"github.com/mcontreras/contact-form-api/internal/models"
	"github.com/mcontreras/contact-form-api/internal/token"
	"gorm.io/gorm"
)

func perIPLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	tokens *token.Service,
	authHandler *handlers.AuthHandler,
	formHandler *handlers.FormHandler,
	seedHandler *handlers.SeedHandler,
	healthHandler *handlers.HealthHandler,
) {
	protected := middleware.Protected(cfg)
	loadUser := middleware.LoadUser(db)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	optionalAuth := middleware.OptionalAuthenticate(db, tokens)

	api := app.Group("/api")

	// General API rate limiter: 100 req / 15 min per IP.
	api.Use(perIPLimiter(100, 15*time.Minute))

	api.Get("/health", healthHandler.Check)

	// Contact forms. Submission works for anonymous callers; when a bearer
	// token resolves, the submitter is recorded.
	api.Get("/forms", formHandler.List)
	api.Post("/forms", optionalAuth, formHandler.Create)

	// Auth — public, with stricter per-route limits.
	auth := api.Group("/auth")
	auth.Post("/register", perIPLimiter(3, time.Hour), authHandler.Register)
	auth.Post("/login", perIPLimiter(5, 15*time.Minute), authHandler.Login)
	auth.Post("/refresh", perIPLimiter(10, 15*time.Minute), authHandler.Refresh)

	// Auth — bearer token required.
	auth.Post("/logout", protected, loadUser, authHandler.Logout)
	auth.Post("/logout-all", protected, loadUser, authHandler.LogoutAll)
	auth.Get("/profile", protected, loadUser, authHandler.Profile)
	auth.Put("/profile", protected, loadUser, authHandler.UpdateProfile)
	auth.Put("/change-password", perIPLimiter(3, time.Hour), protected, loadUser, authHandler.ChangePassword)

	// Admin.
	auth.Get("/users", protected, loadUser, adminOnly, authHandler.ListUsers)
	auth.Put("/users/:id/toggle-status", protected, loadUser, adminOnly, authHandler.ToggleUserStatus)
	auth.Post("/cleanup-tokens", protected, loadUser, adminOnly, authHandler.CleanupTokens)

	// Seed tooling (admin only).
	seed := api.Group("/seed", protected, loadUser, adminOnly)
	seed.Post("/run", seedHandler.Run)
	seed.Delete("/clear", seedHandler.Clear)
	seed.Get("/status", seedHandler.Status)
	seed.Post("/create-tables", seedHandler.CreateTables)
}
