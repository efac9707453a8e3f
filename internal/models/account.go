package models

import "time"

// Account is a registered user. Email and username are each unique; rows are
// never updated or deleted once created.
type Account struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type SignupRequest struct {
	FullName string
	Email    string
	Username string
	Password string
	Confirm  string
}

type LoginRequest struct {
	Username string
	Password string
}
