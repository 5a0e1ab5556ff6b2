package storage

import (
	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/notifications"
	"github.com/gatherhub/server/internal/domain/users"
)

// Repository groups data access by domain. Uniqueness constraints (user
// email, one RSVP per user per event) are enforced by the backing store,
// not here.
type Repository interface {
	Users() users.Repository
	Events() events.Repository
	RSVPs() events.RSVPRepository
	Notifications() notifications.Repository
}
