package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/ptec-dev/audit-management/internal/auth"
	"github.com/ptec-dev/audit-management/internal/menu"
	"github.com/ptec-dev/audit-management/internal/portal"
	"github.com/ptec-dev/audit-management/internal/transport/middleware"
	"github.com/ptec-dev/audit-management/internal/transport/swagger"
	"github.com/ptec-dev/audit-management/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, portalAPI portal.API, authHandler *auth.Handler, userHandler *user.Handler, menuHandler *menu.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		// The gate decides per route: its allow-list passes the public
		// endpoints, everything else needs a portal-confirmed token.
		r.Use(middleware.AuthGate(portalAPI, logger))

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes (public per the gate's allow-list)
		r.Post("/login", authHandler.Login)
		r.Post("/verify-otp", authHandler.VerifyOtp)
		r.Post("/resend-otp", authHandler.ResendOtp)
		r.Post("/send-otp", authHandler.SendOtp)

		// Reset flow (public; tokens are single-use and expiring)
		r.Post("/validate-reset-token", userHandler.ValidateResetToken)
		r.Post("/reset-password", userHandler.ResetPassword)

		// Session lifecycle (protected: the session credential itself is
		// the argument, but the caller must still hold a live access token)
		r.Post("/session/refresh", authHandler.RefreshSession)
		r.Post("/logout", authHandler.Logout)

		// Current user
		r.Get("/users/me", userHandler.GetCurrentUser)

		// Menu routes
		r.Route("/menu_audit", func(mr chi.Router) {
			mr.Get("/", menuHandler.GetAllMenus)
			mr.Get("/by-role/{roleId}", menuHandler.GetMenusByRole)
			mr.Get("/tree/{roleId}", menuHandler.GetMenuTreeByRole)
			mr.Get("/my-menus", menuHandler.GetMyMenus)
			mr.Get("/check-permission", menuHandler.CheckPermission)
		})
	})
}
