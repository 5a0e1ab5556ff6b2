package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherhub/server/internal/auth"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Error types for user domain operations
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminSignupClosed  = errors.New("cannot register as an admin")
)

// User is an account record. PasswordHash never leaves the domain layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}

// Summary is the public identity shape embedded in event and RSVP payloads.
type Summary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email}
}

// CreateParams contains parameters for inserting a new user.
type CreateParams struct {
	Email        string
	PasswordHash string
	Role         auth.Role
}

// Repository is the identity store. The email uniqueness constraint lives in
// the store; Create surfaces a duplicate as ErrEmailTaken.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]User, error)
	UpdateRole(ctx context.Context, id string, role auth.Role) error
}

// Service handles signup, login and role administration.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// Signup registers a new account. The first account ever created is promoted
// to ADMIN regardless of the requested role; afterwards requesting ADMIN is
// rejected. An empty role defaults to ATTENDEE.
func (s *Service) Signup(ctx context.Context, email, password, requestedRole string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	role := auth.DefaultRole
	if requestedRole != "" {
		parsed, err := auth.ParseRole(requestedRole)
		if err != nil {
			return User{}, err
		}
		role = parsed
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return User{}, fmt.Errorf("count users: %w", err)
	}
	if count == 0 {
		role = auth.RoleAdmin
	} else if role == auth.RoleAdmin {
		return User{}, ErrAdminSignupClosed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return User{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

// Authenticate verifies credentials for login. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Count returns the total number of registered users.
func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// List returns all users for the admin console.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole overwrites the target user's role. Unknown role values are
// rejected before anything is persisted.
func (s *Service) UpdateRole(ctx context.Context, id, newRole string) error {
	role, err := auth.ParseRole(newRole)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Str("role", string(role)).Msg("user role updated")
	return nil
}
