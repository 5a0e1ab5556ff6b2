package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("notification not found")

// Notification types, one per lifecycle transition.
const (
	TypeEventCreated   = "EVENT_CREATED"
	TypeEventSuggested = "EVENT_SUGGESTED"
	TypeEventApproved  = "EVENT_APPROVED"
	TypeRSVPConfirmed  = "RSVP_CONFIRMED"
)

// InboxLimit caps how many notifications a listing returns.
const InboxLimit = 20

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateParams contains parameters for inserting a notification.
type CreateParams struct {
	UserID  string
	Title   string
	Message string
	Type    string
}

// Repository is the per-user notification store. MarkRead encodes ownership
// in the lookup predicate: it only matches rows belonging to userID.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Notification, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID string) (Notification, error)
}

// Service is the notification inbox.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "notifications").Logger(),
	}
}

// ListForUser returns the caller's own notifications, newest first,
// capped at InboxLimit.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	items, err := s.repo.ListForUser(ctx, userID, InboxLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead marks a notification as read and returns the updated record. The
// update only matches rows owned by userID, so marking someone else's
// notification reports ErrNotFound. Marking an already-read notification
// succeeds as a no-op.
func (s *Service) MarkRead(ctx context.Context, id, userID string) (Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}
