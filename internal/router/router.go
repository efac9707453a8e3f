package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"daptic-backend/internal/handlers"
	"daptic-backend/internal/middleware"
	"daptic-backend/internal/views"
)

func New(
	sessions *middleware.SessionManager,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recover)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/static/*", http.StripPrefix("/static/", views.Static()))

	r.Group(func(r chi.Router) {
		r.Use(sessions.LoadSession)

		// ──── Pages ────
		r.Get("/", chatHandler.Home)
		r.Get("/signup", authHandler.SignupPage)
		r.Post("/signup", authHandler.Signup)
		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		// ──── API ────
		r.Route("/api", func(r chi.Router) {
			r.Get("/current_user", chatHandler.CurrentUser)
			r.Post("/generate", chatHandler.Generate)
			r.Get("/history", chatHandler.History)
		})
	})

	return r
}
