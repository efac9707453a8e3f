package models

// GenerateRequest is the payload accepted by POST /api/generate.
type GenerateRequest struct {
	Prompt   string `json:"prompt"`
	Username string `json:"username"`
}

// GenerateResponse is the reply from the relay.
type GenerateResponse struct {
	Reply string `json:"reply"`
}

type HistoryResponse struct {
	History []ConversationTurn `json:"history"`
}

type CurrentUserResponse struct {
	Username string `json:"username"`
}

// ErrorResponse is the error body for every /api endpoint.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}
