package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherhub/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Message is one recipient's share of a fan-out.
type Message struct {
	UserID string
	Title  string
	Body   string
	Type   string
}

// Outcome reports the result of delivering one Message.
type Outcome struct {
	UserID string
	Err    error
}

// Broadcaster persists fan-out messages best-effort. Each creation is
// independent: a failure for one recipient is logged and recorded in the
// outcome list, never propagated, so the remaining recipients still get
// their copy.
type Broadcaster struct {
	repo   Repository
	logger zerolog.Logger
}

func NewBroadcaster(repo Repository, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		repo:   repo,
		logger: logger.With().Str("component", "fanout").Logger(),
	}
}

func (b *Broadcaster) Broadcast(ctx context.Context, messages []Message) []Outcome {
	outcomes := make([]Outcome, 0, len(messages))
	for _, msg := range messages {
		_, err := b.repo.Create(ctx, CreateParams{
			UserID:  msg.UserID,
			Title:   msg.Title,
			Message: msg.Body,
			Type:    msg.Type,
		})
		outcome := "ok"
		if err != nil {
			outcome = "error"
			b.logger.Error().Err(err).
				Str("user_id", msg.UserID).
				Str("type", msg.Type).
				Msg("notification creation failed")
		}
		metrics.NotificationsFanoutTotal.WithLabelValues(msg.Type, outcome).Inc()
		outcomes = append(outcomes, Outcome{UserID: msg.UserID, Err: err})
	}
	return outcomes
}

// EventInfo carries the event fields interpolated into message templates.
type EventInfo struct {
	Title    string
	Date     time.Time
	Location string
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// EventCreated composes the broadcast sent to every user when an admin
// creates an event.
func EventCreated(ev EventInfo, recipientIDs []string) []Message {
	messages := make([]Message, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		messages = append(messages, Message{
			UserID: id,
			Title:  "New Event Created!",
			Body:   fmt.Sprintf("A new event %q has been scheduled for %s", ev.Title, formatDate(ev.Date)),
			Type:   TypeEventCreated,
		})
	}
	return messages
}

// EventSuggested composes the notice sent to admins when an organizer
// suggests an event.
func EventSuggested(ev EventInfo, organizerEmail string, adminIDs []string) []Message {
	messages := make([]Message, 0, len(adminIDs))
	for _, id := range adminIDs {
		messages = append(messages, Message{
			UserID: id,
			Title:  "Event Suggestion",
			Body:   fmt.Sprintf("Organizer %s suggested event: %q", organizerEmail, ev.Title),
			Type:   TypeEventSuggested,
		})
	}
	return messages
}

// EventApprovedOwner composes the ownership notice sent to the organizer
// when their suggestion is approved.
func EventApprovedOwner(ev EventInfo, organizerID string) Message {
	return Message{
		UserID: organizerID,
		Title:  "Event Approved!",
		Body:   fmt.Sprintf("Your event %q has been approved and is now visible to all users.", ev.Title),
		Type:   TypeEventApproved,
	}
}

// EventApprovedAll composes the availability notice sent to every user when
// an event is approved.
func EventApprovedAll(ev EventInfo, recipientIDs []string) []Message {
	messages := make([]Message, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		messages = append(messages, Message{
			UserID: id,
			Title:  "New Event Available!",
			Body:   fmt.Sprintf("Event %q is happening on %s at %s", ev.Title, formatDate(ev.Date), ev.Location),
			Type:   TypeEventApproved,
		})
	}
	return messages
}

// RSVPConfirmed composes the notice sent to the event's organizer when
// someone RSVPs.
func RSVPConfirmed(ev EventInfo, attendeeEmail, organizerID string) Message {
	return Message{
		UserID: organizerID,
		Title:  "New RSVP!",
		Body:   fmt.Sprintf("User %s RSVPed to your event %q", attendeeEmail, ev.Title),
		Type:   TypeRSVPConfirmed,
	}
}
