package postgres

import (
	"errors"
	"fmt"

	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/notifications"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements storage.Repository with a PostgreSQL backend.
// Every operation is a single round trip; there are no application-level
// transactions spanning multiple calls.
type Repository struct {
	pool *pgxpool.Pool

	users         *UserRepository
	events        *EventRepository
	rsvps         *RSVPRepository
	notifications *NotificationRepository
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{
		pool:          pool,
		users:         &UserRepository{pool: pool},
		events:        &EventRepository{pool: pool},
		rsvps:         &RSVPRepository{pool: pool},
		notifications: &NotificationRepository{pool: pool},
	}, nil
}

func (r *Repository) Users() users.Repository {
	return r.users
}

func (r *Repository) Events() events.Repository {
	return r.events
}

func (r *Repository) RSVPs() events.RSVPRepository {
	return r.rsvps
}

func (r *Repository) Notifications() notifications.Repository {
	return r.notifications
}

// isUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505), which both the duplicate-email and duplicate-RSVP races
// resolve to.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
