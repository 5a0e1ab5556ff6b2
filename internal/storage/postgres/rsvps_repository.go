package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherhub/server/internal/domain/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ events.RSVPRepository = (*RSVPRepository)(nil)

type RSVPRepository struct {
	pool *pgxpool.Pool
}

// Create inserts an RSVP, resolving the event by its public identifier in
// the same statement. The (user_id, event_id) unique constraint is the
// source of truth for the one-RSVP-per-event rule.
func (r *RSVPRepository) Create(ctx context.Context, params events.CreateRSVPParams) (events.RSVP, error) {
	userID, err := uuid.Parse(params.UserID)
	if err != nil {
		return events.RSVP{}, fmt.Errorf("invalid user id: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO rsvps (user_id, event_id, status)
SELECT $1, e.id, $3 FROM events e WHERE e.ulid = $2
RETURNING id, created_at`,
		userID, params.EventULID, params.Status)

	var rsvpID uuid.UUID
	rsvp := events.RSVP{
		UserID:  params.UserID,
		EventID: params.EventULID,
		Status:  params.Status,
	}
	if err := row.Scan(&rsvpID, &rsvp.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return events.RSVP{}, events.ErrAlreadyRSVPed
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return events.RSVP{}, events.ErrNotFound
		}
		return events.RSVP{}, fmt.Errorf("insert rsvp: %w", err)
	}
	rsvp.ID = rsvpID.String()
	return rsvp, nil
}
