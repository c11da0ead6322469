// Package auth provides authentication services
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/findosh/showroom/internal/models"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session token
const CookieName = "auth-token"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// UserStore is the user persistence the service needs
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Service handles authentication operations
type Service struct {
	users     UserStore
	tokens    *TokenIssuer
	passwords *PasswordHasher
}

// NewService creates a new auth service
func NewService(users UserStore, tokens *TokenIssuer, passwords *PasswordHasher) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
	}
}

// Tokens returns the issuer used by the service
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// CreateAdminInput contains the data for a new back-office account
type CreateAdminInput struct {
	Email    string
	Password string
	Name     string
}

// CreateAdmin creates a new admin account
func (s *Service) CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if len(input.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(email, input.Name, hash)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	User    *models.User
	Token   string
	Expires time.Time
}

// Login checks credentials and issues a token
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.passwords.Verify(user.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &LoginResult{
		User:    user,
		Token:   token,
		Expires: s.tokens.now().UTC().Truncate(time.Second).Add(s.tokens.TTL()),
	}, nil
}

// Authenticate returns the user behind the request's token, or nil. The
// Authorization header wins over the cookie when both are present. An
// error is returned only when the user store fails.
func (s *Service) Authenticate(r *http.Request) (*models.User, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new one
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !s.passwords.Verify(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// TokenFromRequest extracts the raw token from the Authorization header,
// falling back to the auth cookie only when no bearer header is sent
func TokenFromRequest(r *http.Request) string {
	if m := bearerPattern.FindStringSubmatch(r.Header.Get("Authorization")); m != nil {
		return strings.TrimSpace(m[1])
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
