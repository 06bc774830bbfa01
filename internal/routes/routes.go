package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mosswell/inkwell/internal/auth"
	"github.com/mosswell/inkwell/internal/handlers"
	"github.com/mosswell/inkwell/internal/middleware"
	"github.com/mosswell/inkwell/internal/models"
	"github.com/mosswell/inkwell/internal/ratelimit"
)

// Config carries the route-level settings.
type Config struct {
	CookieConfig     auth.CookieConfig
	LoginLimiter     *ratelimit.Limiter // sliding window keyed by client IP
	LoginBurstWindow time.Duration
	LoginBurstMax    int
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	cfg Config,
	sessions *auth.SessionManager,
	authHandler *handlers.AuthHandler,
	commentHandler *handlers.CommentHandler,
	postHandler *handlers.PostHandler,
	settingHandler *handlers.SettingHandler,
) {
	// Public routes - no authentication required
	router.Post("/comments", commentHandler.Submit)
	router.Get("/comments", commentHandler.ListForPost)
	router.Get("/posts", postHandler.List)
	router.Get("/posts/{slug}", postHandler.Get)
	router.Get("/settings", settingHandler.List)

	router.Route("/admin", func(r chi.Router) {
		// Login sits behind two per-IP layers: a coarse burst cap, then
		// the sliding-window limiter that reports the remaining budget.
		// The per-account lockout inside the auth service is the third.
		r.With(
			middleware.LoginRateLimit(cfg.LoginBurstMax, cfg.LoginBurstWindow),
			middleware.SlidingWindowByIP(cfg.LoginLimiter),
		).Post("/login", authHandler.Login)

		// Everything else requires a valid admin session.
		r.Group(func(r chi.Router) {
			r.Use(auth.SessionMiddleware(sessions, cfg.CookieConfig))
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Post("/logout", authHandler.Logout)
			r.Put("/account/password", authHandler.ChangePassword)

			r.Get("/comments", commentHandler.AdminList)
			r.Patch("/comments/{id}", commentHandler.Moderate)
			r.Delete("/comments/{id}", commentHandler.Delete)

			r.Post("/posts", postHandler.Create)
			r.Put("/posts/{id}", postHandler.Update)
			r.Delete("/posts/{id}", postHandler.Delete)

			r.Put("/settings", settingHandler.Upsert)
		})
	})
}
