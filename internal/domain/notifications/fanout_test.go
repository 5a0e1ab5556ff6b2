package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	created []Notification
	failFor map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{failFor: make(map[string]error)}
}

func (f *fakeRepo) Create(ctx context.Context, params CreateParams) (Notification, error) {
	if err, ok := f.failFor[params.UserID]; ok {
		return Notification{}, err
	}
	n := Notification{
		ID:        fmt.Sprintf("n-%d", len(f.created)+1),
		UserID:    params.UserID,
		Title:     params.Title,
		Message:   params.Message,
		Type:      params.Type,
		CreatedAt: time.Now(),
	}
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	var out []Notification
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		if f.created[i].UserID == userID {
			out = append(out, f.created[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, id, userID string) (Notification, error) {
	for i, n := range f.created {
		if n.ID == id && n.UserID == userID {
			f.created[i].Read = true
			return f.created[i], nil
		}
	}
	return Notification{}, ErrNotFound
}

func TestBroadcastContinuesPastFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.failFor["user-2"] = errors.New("insert failed")
	broadcaster := NewBroadcaster(repo, zerolog.Nop())

	ev := EventInfo{Title: "Meetup", Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Location: "Main Hall"}
	outcomes := broadcaster.Broadcast(context.Background(), EventCreated(ev, []string{"user-1", "user-2", "user-3"}))

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)

	// user-1 and user-3 still got their copies
	require.Len(t, repo.created, 2)
	assert.Equal(t, "user-1", repo.created[0].UserID)
	assert.Equal(t, "user-3", repo.created[1].UserID)
}

func TestMessageTemplates(t *testing.T) {
	ev := EventInfo{
		Title:    "Meetup",
		Date:     time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		Location: "Main Hall",
	}

	created := EventCreated(ev, []string{"u1"})
	require.Len(t, created, 1)
	assert.Equal(t, "New Event Created!", created[0].Title)
	assert.Equal(t, `A new event "Meetup" has been scheduled for October 1, 2026`, created[0].Body)
	assert.Equal(t, TypeEventCreated, created[0].Type)

	suggested := EventSuggested(ev, "org@example.com", []string{"a1", "a2"})
	require.Len(t, suggested, 2)
	assert.Equal(t, "Event Suggestion", suggested[0].Title)
	assert.Equal(t, `Organizer org@example.com suggested event: "Meetup"`, suggested[0].Body)

	owner := EventApprovedOwner(ev, "org-1")
	assert.Equal(t, "org-1", owner.UserID)
	assert.Equal(t, "Event Approved!", owner.Title)
	assert.Equal(t, `Your event "Meetup" has been approved and is now visible to all users.`, owner.Body)

	all := EventApprovedAll(ev, []string{"u1"})
	require.Len(t, all, 1)
	assert.Equal(t, "New Event Available!", all[0].Title)
	assert.Equal(t, `Event "Meetup" is happening on October 1, 2026 at Main Hall`, all[0].Body)

	rsvp := RSVPConfirmed(ev, "att@example.com", "org-1")
	assert.Equal(t, "org-1", rsvp.UserID)
	assert.Equal(t, "New RSVP!", rsvp.Title)
	assert.Equal(t, `User att@example.com RSVPed to your event "Meetup"`, rsvp.Body)
}
