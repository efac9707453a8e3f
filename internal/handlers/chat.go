package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"daptic-backend/internal/middleware"
	"daptic-backend/internal/models"
	"daptic-backend/internal/services"
	"daptic-backend/internal/views"
)

// maxGenerateBody bounds the /api/generate request body.
const maxGenerateBody = 1 << 20

type chatRelay interface {
	Generate(ctx context.Context, in services.GenerateInput) (services.GenerateResult, error)
}

type historySource interface {
	History(ctx context.Context, username string) []models.ConversationTurn
}

type ChatHandler struct {
	relay     chatRelay
	history   historySource
	views     *views.Renderer
	maxPrompt int
	logger    *slog.Logger
}

func NewChatHandler(relay chatRelay, history historySource, renderer *views.Renderer, maxPrompt int) *ChatHandler {
	return &ChatHandler{
		relay:     relay,
		history:   history,
		views:     renderer,
		maxPrompt: maxPrompt,
		logger:    slog.Default().With("component", "chat"),
	}
}

// Home renders the chat page with the user's stored history, or sends an
// anonymous visitor to the login page.
func (h *ChatHandler) Home(w http.ResponseWriter, r *http.Request) {
	username := middleware.GetUsername(r.Context())
	if username == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := pageData(w, r, "Chat")
	data.History = h.views.Turns(h.history.History(r.Context(), username))
	data.MaxPrompt = h.maxPrompt
	h.views.Render(w, views.PageIndex, data)
}

func (h *ChatHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.CurrentUserResponse{Username: middleware.GetUsername(r.Context())})
}

func (h *ChatHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", nil)
		return
	}

	result, err := h.relay.Generate(r.Context(), services.GenerateInput{
		Prompt:           req.Prompt,
		SessionUsername:  middleware.GetUsername(r.Context()),
		ProvidedUsername: req.Username,
	})
	if err != nil {
		h.handleRelayError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateResponse{Reply: result.Reply})
}

func (h *ChatHandler) handleRelayError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		tooLong     *services.PromptTooLongError
		unreachable *services.RemoteUnreachableError
		remote      *services.RemoteError
		badJSON     *services.InvalidUpstreamJSONError
	)

	switch {
	case errors.Is(err, services.ErrPromptMissing):
		writeError(w, http.StatusBadRequest, "Prompt required", nil)
	case errors.As(err, &tooLong):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Prompt too long (max %d)", tooLong.Max), nil)
	case errors.As(err, &unreachable):
		h.logger.Error("remote API unreachable", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeError(w, http.StatusBadGateway, "Failed to reach remote API", unreachable.Err.Error())
	case errors.As(err, &remote):
		h.logger.Error("remote API error", "status", remote.Status, "details", remote.Details, "request_id", middleware.GetRequestID(r.Context()))
		writeError(w, upstreamStatus(remote.Status), "Remote API error", remote.Details)
	case errors.As(err, &badJSON):
		h.logger.Error("invalid JSON from remote API", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeError(w, http.StatusBadGateway, "Invalid JSON from remote API", nil)
	default:
		h.logger.Error("relay failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// upstreamStatus passes the upstream status through unless it cannot be
// written as a response status.
func upstreamStatus(status int) int {
	if status < 100 || status > 999 {
		return http.StatusBadGateway
	}
	return status
}

// History never fails: the username is taken from the session, then the
// query string, then the anonymous fallback.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	username := services.ResolveUsername(middleware.GetUsername(r.Context()), r.URL.Query().Get("username"))
	writeJSON(w, http.StatusOK, models.HistoryResponse{History: h.history.History(r.Context(), username)})
}
