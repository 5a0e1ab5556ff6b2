package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/domain/ids"
	"github.com/gatherhub/server/internal/domain/notifications"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/metrics"
	"github.com/gatherhub/server/internal/realtime"
	"github.com/gatherhub/server/internal/sanitize"
	"github.com/rs/zerolog"
)

// DefaultCapacity replaces an absent, zero or negative capacity.
const DefaultCapacity = 100

// DefaultRSVPStatus is used when an RSVP does not specify one.
const DefaultRSVPStatus = "GOING"

// Event is the lifecycle aggregate. Organizer and RSVPs are populated on
// listing reads, nil elsewhere.
type Event struct {
	ID          string         `json:"-"`
	ULID        string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        time.Time      `json:"date"`
	Location    string         `json:"location"`
	Capacity    int            `json:"capacity"`
	OrganizerID string         `json:"organizerId"`
	Approved    bool           `json:"approved"`
	CreatedAt   time.Time      `json:"createdAt"`
	Organizer   *users.Summary `json:"organizer,omitempty"`
	RSVPs       []RSVP         `json:"rsvps,omitempty"`
}

// RSVP links a user to an approved event, at most once per pair.
type RSVP struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	EventID   string         `json:"eventId"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	User      *users.Summary `json:"user,omitempty"`
}

// Actor is the verified caller identity handed down from the access boundary.
type Actor struct {
	ID    string
	Email string
	Role  auth.Role
}

// EventInput carries the caller-supplied event fields.
type EventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    int
}

// CreateParams contains parameters for inserting an event.
type CreateParams struct {
	ULID        string
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    int
	OrganizerID string
	Approved    bool
}

// CreateRSVPParams contains parameters for inserting an RSVP. The event is
// addressed by its public ULID.
type CreateRSVPParams struct {
	UserID    string
	EventULID string
	Status    string
}

// Repository is the event store. Approve is a blind one-way update: it does
// not guard against re-approval, so repeated calls succeed and the caller
// re-runs fan-out (the documented quirk).
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Event, error)
	GetByULID(ctx context.Context, ulid string) (Event, error)
	Approve(ctx context.Context, ulid string) (Event, error)
	ListApproved(ctx context.Context) ([]Event, error)
	ListPending(ctx context.Context) ([]Event, error)
}

// RSVPRepository is the attendance store. The (user, event) uniqueness
// constraint lives in the store; Create surfaces a duplicate as
// ErrAlreadyRSVPed.
type RSVPRepository interface {
	Create(ctx context.Context, params CreateRSVPParams) (RSVP, error)
}

// Notifier is the best-effort broadcast abstraction for notification fan-out.
type Notifier interface {
	Broadcast(ctx context.Context, messages []notifications.Message) []notifications.Outcome
}

// Service orchestrates the event lifecycle: creation, suggestion, approval
// and RSVP, plus the notification fan-out each transition triggers.
type Service struct {
	events   Repository
	rsvps    RSVPRepository
	users    users.Repository
	notifier Notifier
	hub      *realtime.Hub
	logger   zerolog.Logger
}

func NewService(
	events Repository,
	rsvps RSVPRepository,
	userRepo users.Repository,
	notifier Notifier,
	hub *realtime.Hub,
	logger zerolog.Logger,
) *Service {
	return &Service{
		events:   events,
		rsvps:    rsvps,
		users:    userRepo,
		notifier: notifier,
		hub:      hub,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

// Create persists an admin-authored event, approved immediately, and
// notifies every user.
func (s *Service) Create(ctx context.Context, actor Actor, input EventInput) (Event, error) {
	params, err := s.buildCreateParams(actor, input, true)
	if err != nil {
		return Event{}, err
	}

	event, err := s.events.Create(ctx, params)
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	event.Organizer = &users.Summary{ID: actor.ID, Email: actor.Email}

	recipients, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("event", event.ULID).Msg("fan-out recipient lookup failed")
	} else {
		s.notifier.Broadcast(ctx, notifications.EventCreated(eventInfo(event), userIDs(recipients)))
	}

	s.hub.Publish(realtime.TopicEventCreated, event)
	metrics.EventsCreatedTotal.WithLabelValues("created").Inc()
	s.logger.Info().Str("event", event.ULID).Str("organizer", actor.ID).Msg("event created")
	return event, nil
}

// Suggest persists an organizer-authored event pending approval and notifies
// every admin.
func (s *Service) Suggest(ctx context.Context, actor Actor, input EventInput) (Event, error) {
	params, err := s.buildCreateParams(actor, input, false)
	if err != nil {
		return Event{}, err
	}

	event, err := s.events.Create(ctx, params)
	if err != nil {
		return Event{}, fmt.Errorf("suggest event: %w", err)
	}
	event.Organizer = &users.Summary{ID: actor.ID, Email: actor.Email}

	admins, err := s.users.ListByRole(ctx, auth.RoleAdmin)
	if err != nil {
		s.logger.Error().Err(err).Str("event", event.ULID).Msg("fan-out recipient lookup failed")
	} else {
		s.notifier.Broadcast(ctx, notifications.EventSuggested(eventInfo(event), actor.Email, userIDs(admins)))
	}

	metrics.EventsCreatedTotal.WithLabelValues("suggested").Inc()
	s.logger.Info().Str("event", event.ULID).Str("organizer", actor.ID).Msg("event suggested")
	return event, nil
}

// Approve flips an event to approved. It is deliberately not idempotence-
// guarded: approving an already-approved event succeeds and re-sends the
// full fan-out. Two broadcasts go out: an ownership notice to the organizer
// and an availability notice to every user, organizer included.
func (s *Service) Approve(ctx context.Context, actor Actor, eventULID string) (Event, error) {
	if err := ids.ValidateULID(eventULID); err != nil {
		return Event{}, ErrNotFound
	}

	event, err := s.events.Approve(ctx, ids.Normalize(eventULID))
	if err != nil {
		return Event{}, err
	}

	info := eventInfo(event)
	s.notifier.Broadcast(ctx, []notifications.Message{
		notifications.EventApprovedOwner(info, event.OrganizerID),
	})

	recipients, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("event", event.ULID).Msg("fan-out recipient lookup failed")
	} else {
		s.notifier.Broadcast(ctx, notifications.EventApprovedAll(info, userIDs(recipients)))
	}

	s.hub.Publish(realtime.TopicEventApproved, event)
	s.logger.Info().Str("event", event.ULID).Str("approved_by", actor.ID).Msg("event approved")
	return event, nil
}

// ListApproved returns approved events ordered by date ascending, each with
// organizer identity and full RSVP list.
func (s *Service) ListApproved(ctx context.Context) ([]Event, error) {
	items, err := s.events.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return items, nil
}

// ListPending returns unapproved events, most recent suggestion first, with
// organizer identity.
func (s *Service) ListPending(ctx context.Context) ([]Event, error) {
	items, err := s.events.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	return items, nil
}

// CreateRSVP records attendance against an approved event and notifies the
// event's organizer.
func (s *Service) CreateRSVP(ctx context.Context, actor Actor, eventULID, status string) (RSVP, error) {
	if err := ids.ValidateULID(eventULID); err != nil {
		return RSVP{}, ErrNotFound
	}

	event, err := s.events.GetByULID(ctx, ids.Normalize(eventULID))
	if err != nil {
		return RSVP{}, err
	}
	if !event.Approved {
		return RSVP{}, ErrNotApproved
	}

	status, err = normalizeRSVPStatus(status)
	if err != nil {
		return RSVP{}, err
	}

	rsvp, err := s.rsvps.Create(ctx, CreateRSVPParams{
		UserID:    actor.ID,
		EventULID: event.ULID,
		Status:    status,
	})
	if err != nil {
		return RSVP{}, err
	}
	rsvp.User = &users.Summary{ID: actor.ID, Email: actor.Email}

	s.notifier.Broadcast(ctx, []notifications.Message{
		notifications.RSVPConfirmed(eventInfo(event), actor.Email, event.OrganizerID),
	})

	s.hub.Publish(realtime.TopicRSVPCreated, rsvp)
	metrics.RSVPsTotal.WithLabelValues(status).Inc()
	s.logger.Info().Str("event", event.ULID).Str("user", actor.ID).Msg("rsvp created")
	return rsvp, nil
}

func (s *Service) buildCreateParams(actor Actor, input EventInput, approved bool) (CreateParams, error) {
	title := sanitize.Text(strings.TrimSpace(input.Title))
	description := sanitize.HTML(strings.TrimSpace(input.Description))
	location := sanitize.Text(strings.TrimSpace(input.Location))

	if title == "" {
		return CreateParams{}, ValidationError{Field: "title", Message: "is required"}
	}
	if description == "" {
		return CreateParams{}, ValidationError{Field: "description", Message: "is required"}
	}
	if input.Date.IsZero() {
		return CreateParams{}, ValidationError{Field: "date", Message: "is required"}
	}
	if location == "" {
		return CreateParams{}, ValidationError{Field: "location", Message: "is required"}
	}

	capacity := input.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	ulid, err := ids.NewULID()
	if err != nil {
		return CreateParams{}, fmt.Errorf("mint event id: %w", err)
	}

	return CreateParams{
		ULID:        ulid,
		Title:       title,
		Description: description,
		Date:        input.Date,
		Location:    location,
		Capacity:    capacity,
		OrganizerID: actor.ID,
		Approved:    approved,
	}, nil
}

func normalizeRSVPStatus(status string) (string, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return DefaultRSVPStatus, nil
	}
	switch status {
	case "GOING", "MAYBE", "NOT_GOING":
		return status, nil
	default:
		return "", ValidationError{Field: "status", Message: "must be GOING, MAYBE or NOT_GOING"}
	}
}

func eventInfo(event Event) notifications.EventInfo {
	return notifications.EventInfo{
		Title:    event.Title,
		Date:     event.Date,
		Location: event.Location,
	}
}

func userIDs(list []users.User) []string {
	out := make([]string, 0, len(list))
	for _, u := range list {
		out = append(out, u.ID)
	}
	return out
}
