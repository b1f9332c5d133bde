package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"resume-matcher/internal/shared/telemetry"
)

const bcryptCost = 10

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password too long")
)

const (
	MsgAllFieldsRequired  = "All fields are required"
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgPasswordTooLong    = "Password is too long. Please use at most 72 bytes."
)

// TokenSigner issues session tokens for a user id.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

// Registration is the input of Register.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Service struct {
	Repo   Repo
	Tokens TokenSigner
	now    func() time.Time
}

func NewService(repo Repo, tokens TokenSigner) *Service {
	return &Service{Repo: repo, Tokens: tokens, now: func() time.Time { return time.Now().UTC() }}
}

// Register creates a user and returns a session token.
func (s *Service) Register(ctx context.Context, in Registration) (string, error) {
	email := normalizeEmail(in.Email)
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if email == "" || in.Password == "" || first == "" || last == "" {
		return "", ErrInvalidInput
	}
	if len(in.Password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return "", ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		CreatedAt:    s.now(),
	}
	user.UpdatedAt = user.CreatedAt
	if err := s.Repo.Create(ctx, user); err != nil {
		return "", err
	}

	telemetry.Info("user.registered", map[string]any{"user_id": user.ID})
	return s.Tokens.Sign(user.ID)
}

// Login verifies credentials. Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.Tokens.Sign(user.ID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
