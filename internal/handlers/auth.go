package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"daptic-backend/internal/middleware"
	"daptic-backend/internal/models"
	"daptic-backend/internal/services"
	"daptic-backend/internal/views"
)

type accountService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.Account, error)
	Verify(ctx context.Context, username, password string) (*models.Account, error)
}

type AuthHandler struct {
	authService accountService
	sessions    *middleware.SessionManager
	views       *views.Renderer
	logger      *slog.Logger
}

func NewAuthHandler(authService accountService, sessions *middleware.SessionManager, renderer *views.Renderer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		views:       renderer,
		logger:      slog.Default().With("component", "auth"),
	}
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, views.PageSignup, pageData(w, r, "Sign up"))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, r, middleware.FlashError, "Please fill all required fields.")
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	_, err := h.authService.Signup(r.Context(), models.SignupRequest{
		FullName: r.PostFormValue("fullname"),
		Email:    r.PostFormValue("email"),
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	})
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			middleware.SetFlash(w, r, middleware.FlashError, verr.Message)
		case errors.Is(err, services.ErrDuplicateIdentity):
			middleware.SetFlash(w, r, middleware.FlashError, "Email or username already exists!")
		default:
			h.logger.Error("signup failed", "error", err)
			middleware.SetFlash(w, r, middleware.FlashError, "An error occurred during signup.")
		}
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	middleware.SetFlash(w, r, middleware.FlashSuccess, "Account created successfully! Please login.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, views.PageLogin, pageData(w, r, "Login"))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, r, middleware.FlashError, "Provide username and password.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	account, err := h.authService.Verify(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			middleware.SetFlash(w, r, middleware.FlashError, verr.Message)
		case errors.Is(err, services.ErrInvalidCredentials):
			middleware.SetFlash(w, r, middleware.FlashError, "Invalid username or password!")
		default:
			h.logger.Error("login failed", "error", err)
			middleware.SetFlash(w, r, middleware.FlashError, "Login error occurred.")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.sessions.Establish(w, r, account.Username); err != nil {
		h.logger.Error("failed to establish session", "error", err)
		middleware.SetFlash(w, r, middleware.FlashError, "Login error occurred.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.logger.Info("login successful", "username", account.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	middleware.SetFlash(w, r, middleware.FlashInfo, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Shared helpers

func pageData(w http.ResponseWriter, r *http.Request, title string) views.PageData {
	data := views.PageData{
		Title:    title,
		Username: middleware.GetUsername(r.Context()),
	}
	if f := middleware.PopFlash(w, r); f != nil {
		data.Flash = &views.Flash{Category: f.Category, Message: f.Message}
	}
	return data
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, details interface{}) {
	writeJSON(w, status, models.ErrorResponse{Error: message, Details: details})
}
