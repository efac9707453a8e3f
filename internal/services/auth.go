package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"daptic-backend/internal/models"
	"daptic-backend/internal/repository"
)

const bcryptCost = 12

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

type AuthService struct {
	accounts repository.AccountRepository
	cost     int

	// dummyHash is compared against when the username does not exist so a
	// failed login costs the same either way. It is hashed at s.cost.
	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(accounts repository.AccountRepository) *AuthService {
	return &AuthService{accounts: accounts, cost: bcryptCost}
}

// Signup creates an account with a bcrypt-hashed password. A taken email or
// username yields ErrDuplicateIdentity and no row.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.Account, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if fullName == "" || email == "" || username == "" || req.Password == "" {
		return nil, &ValidationError{Message: "Please fill all required fields."}
	}
	if req.Password != req.Confirm {
		return nil, &ValidationError{Message: "Passwords do not match!"}
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, &ValidationError{Message: fmt.Sprintf("Password is too long (max %d bytes).", maxPasswordBytes)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		FullName:     fullName,
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Verify checks a username/password pair against the stored hash.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &ValidationError{Message: "Provide username and password."}
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), s.cost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
