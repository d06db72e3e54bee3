// Package auth registers users, checks passwords and issues bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"habitd/internal/models"
	"habitd/internal/storage"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

var (
	// ErrValidation marks a register or login request with missing fields.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials is returned by Login for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized marks a missing, malformed or expired token.
	ErrUnauthorized = errors.New("not authorized")
	// ErrEmailTaken is returned by Register when the email is already used.
	ErrEmailTaken = errors.New("user already exists")
)

// Registration is the input of Service.Register.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Session is returned after a successful register or login. The user fields
// are flattened next to the token in JSON.
type Session struct {
	models.User
	Token string `json:"token"`
}

// Service implements register, login and token resolution.
type Service struct {
	store  storage.Store
	tokens *Tokens
	cost   int
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost overrides the bcrypt work factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService builds a Service.
func NewService(store storage.Store, tokens *Tokens, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, tokens: tokens, cost: bcrypt.DefaultCost, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account and returns a session for it.
func (s *Service) Register(ctx context.Context, in Registration) (Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	switch {
	case name == "":
		return Session{}, fmt.Errorf("%w: name is required", ErrValidation)
	case email == "" || !strings.Contains(email, "@"):
		return Session{}, fmt.Errorf("%w: a valid email is required", ErrValidation)
	case len(in.Password) < MinPasswordLength:
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, models.User{Name: name, Email: email, PasswordHash: string(hash)})
	if errors.Is(err, storage.ErrConflict) {
		return Session{}, ErrEmailTaken
	}
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", slog.String("user", user.ID))
	return s.session(user)
}

// Login checks the password for email and returns a session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// Authenticate resolves a bearer token to the id of an existing user.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	if _, err := s.Me(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// Me returns the user behind an authenticated id.
func (s *Service) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("%w: unknown user", ErrUnauthorized)
	}
	return user, err
}

func (s *Service) session(user models.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
