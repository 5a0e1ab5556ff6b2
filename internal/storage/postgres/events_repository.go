package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

const eventColumns = `e.id, e.ulid, e.title, e.description, e.event_date, e.location, e.capacity, e.organizer_id, e.approved, e.created_at`

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (events.Event, error) {
	organizerID, err := uuid.Parse(params.OrganizerID)
	if err != nil {
		return events.Event{}, fmt.Errorf("invalid organizer id: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO events (ulid, title, description, event_date, location, capacity, organizer_id, approved)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, ulid, title, description, event_date, location, capacity, organizer_id, approved, created_at`,
		params.ULID, params.Title, params.Description, params.Date,
		params.Location, params.Capacity, organizerID, params.Approved)

	event, err := scanEvent(row)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByULID(ctx context.Context, ulid string) (events.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.ulid = $1`, ulid)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Approve sets approved=true unconditionally. Re-approving an already
// approved event succeeds and returns the row again.
func (r *EventRepository) Approve(ctx context.Context, ulid string) (events.Event, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE events SET approved = true WHERE ulid = $1
RETURNING id, ulid, title, description, event_date, location, capacity, organizer_id, approved, created_at`,
		ulid)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("approve event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) ListApproved(ctx context.Context) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`, u.email
  FROM events e
  JOIN users u ON u.id = e.organizer_id
 WHERE e.approved
 ORDER BY e.event_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list approved events: %w", err)
	}
	defer rows.Close()

	items, err := collectEventsWithOrganizer(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	if err := r.attachRSVPs(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EventRepository) ListPending(ctx context.Context) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`, u.email
  FROM events e
  JOIN users u ON u.id = e.organizer_id
 WHERE NOT e.approved
 ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	defer rows.Close()

	return collectEventsWithOrganizer(rows)
}

// attachRSVPs loads the RSVP lists for the given events in one query and
// groups them in memory.
func (r *EventRepository) attachRSVPs(ctx context.Context, items []events.Event) error {
	eventIDs := make([]uuid.UUID, 0, len(items))
	index := make(map[string]int, len(items))
	for i, event := range items {
		id, err := uuid.Parse(event.ID)
		if err != nil {
			return fmt.Errorf("invalid event id %q: %w", event.ID, err)
		}
		eventIDs = append(eventIDs, id)
		index[event.ULID] = i
	}

	rows, err := r.pool.Query(ctx, `
SELECT r.id, r.user_id, e.ulid, r.status, r.created_at, u.email
  FROM rsvps r
  JOIN events e ON e.id = r.event_id
  JOIN users u ON u.id = r.user_id
 WHERE r.event_id = ANY($1)
 ORDER BY r.created_at ASC`,
		eventIDs)
	if err != nil {
		return fmt.Errorf("list rsvps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rsvp      events.RSVP
			rsvpID    uuid.UUID
			userID    uuid.UUID
			userEmail string
		)
		if err := rows.Scan(&rsvpID, &userID, &rsvp.EventID, &rsvp.Status, &rsvp.CreatedAt, &userEmail); err != nil {
			return fmt.Errorf("scan rsvp: %w", err)
		}
		rsvp.ID = rsvpID.String()
		rsvp.UserID = userID.String()
		rsvp.User = &users.Summary{ID: rsvp.UserID, Email: userEmail}

		if i, ok := index[rsvp.EventID]; ok {
			items[i].RSVPs = append(items[i].RSVPs, rsvp)
		}
	}
	return rows.Err()
}

func scanEvent(row pgx.Row) (events.Event, error) {
	var (
		event       events.Event
		id          uuid.UUID
		organizerID uuid.UUID
	)
	if err := row.Scan(
		&id, &event.ULID, &event.Title, &event.Description, &event.Date,
		&event.Location, &event.Capacity, &organizerID, &event.Approved, &event.CreatedAt,
	); err != nil {
		return events.Event{}, err
	}
	event.ID = id.String()
	event.OrganizerID = organizerID.String()
	return event, nil
}

func collectEventsWithOrganizer(rows pgx.Rows) ([]events.Event, error) {
	items := make([]events.Event, 0)
	for rows.Next() {
		var (
			event          events.Event
			id             uuid.UUID
			organizerID    uuid.UUID
			organizerEmail string
		)
		if err := rows.Scan(
			&id, &event.ULID, &event.Title, &event.Description, &event.Date,
			&event.Location, &event.Capacity, &organizerID, &event.Approved, &event.CreatedAt,
			&organizerEmail,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.ID = id.String()
		event.OrganizerID = organizerID.String()
		event.Organizer = &users.Summary{ID: event.OrganizerID, Email: organizerEmail}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}
