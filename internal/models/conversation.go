package models

import "time"

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// AnonymousUsername is recorded when a relay caller has neither a session nor
// an explicit username.
const AnonymousUsername = "anonymous"

// ConversationTurn is one persisted message. Turns for a username are read
// back in id order, which is creation order.
type ConversationTurn struct {
	ID        int64     `json:"-"`
	Username  string    `json:"-"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
