package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/domain/notifications"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/realtime"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	events map[string]Event
	nextID int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, params CreateParams) (Event, error) {
	f.nextID++
	event := Event{
		ID:          fmt.Sprintf("internal-%d", f.nextID),
		ULID:        params.ULID,
		Title:       params.Title,
		Description: params.Description,
		Date:        params.Date,
		Location:    params.Location,
		Capacity:    params.Capacity,
		OrganizerID: params.OrganizerID,
		Approved:    params.Approved,
		CreatedAt:   time.Now(),
	}
	f.events[params.ULID] = event
	return event, nil
}

func (f *fakeEventRepo) GetByULID(ctx context.Context, ulid string) (Event, error) {
	event, ok := f.events[ulid]
	if !ok {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (f *fakeEventRepo) Approve(ctx context.Context, ulid string) (Event, error) {
	event, ok := f.events[ulid]
	if !ok {
		return Event{}, ErrNotFound
	}
	event.Approved = true
	f.events[ulid] = event
	return event, nil
}

func (f *fakeEventRepo) ListApproved(ctx context.Context) ([]Event, error) {
	var out []Event
	for _, e := range f.events {
		if e.Approved {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListPending(ctx context.Context) ([]Event, error) {
	var out []Event
	for _, e := range f.events {
		if !e.Approved {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeRSVPRepo struct {
	rsvps map[string]RSVP // keyed by userID + eventULID
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{rsvps: make(map[string]RSVP)}
}

func (f *fakeRSVPRepo) Create(ctx context.Context, params CreateRSVPParams) (RSVP, error) {
	key := params.UserID + "/" + params.EventULID
	if _, ok := f.rsvps[key]; ok {
		return RSVP{}, ErrAlreadyRSVPed
	}
	rsvp := RSVP{
		ID:        fmt.Sprintf("rsvp-%d", len(f.rsvps)+1),
		UserID:    params.UserID,
		EventID:   params.EventULID,
		Status:    params.Status,
		CreatedAt: time.Now(),
	}
	f.rsvps[key] = rsvp
	return rsvp, nil
}

type fakeUserRepo struct {
	users []users.User
}

func (f *fakeUserRepo) Create(ctx context.Context, params users.CreateParams) (users.User, error) {
	user := users.User{ID: fmt.Sprintf("user-%d", len(f.users)+1), Email: params.Email, Role: params.Role}
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]users.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role auth.Role) ([]users.User, error) {
	var out []users.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	for i, u := range f.users {
		if u.ID == id {
			f.users[i].Role = role
			return nil
		}
	}
	return users.ErrNotFound
}

type fakeNotifier struct {
	messages []notifications.Message
}

func (f *fakeNotifier) Broadcast(ctx context.Context, messages []notifications.Message) []notifications.Outcome {
	f.messages = append(f.messages, messages...)
	outcomes := make([]notifications.Outcome, 0, len(messages))
	for _, m := range messages {
		outcomes = append(outcomes, notifications.Outcome{UserID: m.UserID})
	}
	return outcomes
}

func (f *fakeNotifier) byType(typ string) []notifications.Message {
	var out []notifications.Message
	for _, m := range f.messages {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	service  *Service
	events   *fakeEventRepo
	rsvps    *fakeRSVPRepo
	users    *fakeUserRepo
	notifier *fakeNotifier
	hub      *realtime.Hub
}

func newFixture() *fixture {
	eventRepo := newFakeEventRepo()
	rsvpRepo := newFakeRSVPRepo()
	userRepo := &fakeUserRepo{users: []users.User{
		{ID: "admin-1", Email: "admin@example.com", Role: auth.RoleAdmin},
		{ID: "org-1", Email: "organizer@example.com", Role: auth.RoleOrganizer},
		{ID: "att-1", Email: "attendee@example.com", Role: auth.RoleAttendee},
	}}
	notifier := &fakeNotifier{}
	hub := realtime.NewHub()
	return &fixture{
		service:  NewService(eventRepo, rsvpRepo, userRepo, notifier, hub, zerolog.Nop()),
		events:   eventRepo,
		rsvps:    rsvpRepo,
		users:    userRepo,
		notifier: notifier,
		hub:      hub,
	}
}

var adminActor = Actor{ID: "admin-1", Email: "admin@example.com", Role: auth.RoleAdmin}
var organizerActor = Actor{ID: "org-1", Email: "organizer@example.com", Role: auth.RoleOrganizer}
var attendeeActor = Actor{ID: "att-1", Email: "attendee@example.com", Role: auth.RoleAttendee}

func validInput() EventInput {
	return EventInput{
		Title:       "Meetup",
		Description: "Monthly community meetup",
		Date:        time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		Location:    "Main Hall",
		Capacity:    50,
	}
}

func TestCreateApprovesImmediatelyAndNotifiesEveryone(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Create(context.Background(), adminActor, validInput())
	require.NoError(t, err)
	assert.True(t, event.Approved)
	assert.Equal(t, "admin-1", event.OrganizerID)
	require.NotNil(t, event.Organizer)
	assert.Equal(t, "admin@example.com", event.Organizer.Email)

	created := fx.notifier.byType(notifications.TypeEventCreated)
	require.Len(t, created, 3)
	recipients := map[string]bool{}
	for _, m := range created {
		recipients[m.UserID] = true
		assert.Equal(t, "New Event Created!", m.Title)
	}
	assert.True(t, recipients["admin-1"])
	assert.True(t, recipients["org-1"])
	assert.True(t, recipients["att-1"])
}

func TestCreateDefaultsCapacity(t *testing.T) {
	fx := newFixture()

	for _, capacity := range []int{0, -5} {
		input := validInput()
		input.Capacity = capacity
		event, err := fx.service.Create(context.Background(), adminActor, input)
		require.NoError(t, err)
		assert.Equal(t, DefaultCapacity, event.Capacity)
	}

	input := validInput()
	input.Capacity = 25
	event, err := fx.service.Create(context.Background(), adminActor, input)
	require.NoError(t, err)
	assert.Equal(t, 25, event.Capacity)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	fx := newFixture()

	tests := []struct {
		name   string
		mutate func(*EventInput)
	}{
		{"missing title", func(in *EventInput) { in.Title = "" }},
		{"missing description", func(in *EventInput) { in.Description = "" }},
		{"missing date", func(in *EventInput) { in.Date = time.Time{} }},
		{"missing location", func(in *EventInput) { in.Location = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := fx.service.Create(context.Background(), adminActor, input)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestCreateSanitizesMarkup(t *testing.T) {
	fx := newFixture()

	input := validInput()
	input.Title = "<script>alert(1)</script>Meetup"
	input.Description = "<p>fine</p><script>alert(1)</script>"

	event, err := fx.service.Create(context.Background(), adminActor, input)
	require.NoError(t, err)
	assert.Equal(t, "Meetup", event.Title)
	assert.NotContains(t, event.Description, "<script>")
	assert.Contains(t, event.Description, "<p>fine</p>")
}

func TestSuggestNotifiesAdminsOnly(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Suggest(context.Background(), organizerActor, validInput())
	require.NoError(t, err)
	assert.False(t, event.Approved)

	suggested := fx.notifier.byType(notifications.TypeEventSuggested)
	require.Len(t, suggested, 1)
	assert.Equal(t, "admin-1", suggested[0].UserID)
	assert.Contains(t, suggested[0].Body, "organizer@example.com")
}

func TestApproveNotifiesOwnerAndEveryone(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Suggest(context.Background(), organizerActor, validInput())
	require.NoError(t, err)

	approved, err := fx.service.Approve(context.Background(), adminActor, event.ULID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	messages := fx.notifier.byType(notifications.TypeEventApproved)
	// 1 ownership notice + 3 availability notices, organizer gets both.
	require.Len(t, messages, 4)

	ownerNotices := 0
	for _, m := range messages {
		if m.Title == "Event Approved!" {
			ownerNotices++
			assert.Equal(t, "org-1", m.UserID)
		}
	}
	assert.Equal(t, 1, ownerNotices)
}

func TestApproveUnknownEvent(t *testing.T) {
	fx := newFixture()

	_, err := fx.service.Approve(context.Background(), adminActor, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fx.service.Approve(context.Background(), adminActor, "not-a-ulid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveAgainResendsFanout(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Suggest(context.Background(), organizerActor, validInput())
	require.NoError(t, err)

	_, err = fx.service.Approve(context.Background(), adminActor, event.ULID)
	require.NoError(t, err)
	firstBatch := len(fx.notifier.byType(notifications.TypeEventApproved))

	_, err = fx.service.Approve(context.Background(), adminActor, event.ULID)
	require.NoError(t, err)
	assert.Equal(t, firstBatch*2, len(fx.notifier.byType(notifications.TypeEventApproved)))
}

func TestCreateRSVP(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Create(context.Background(), adminActor, validInput())
	require.NoError(t, err)

	rsvp, err := fx.service.CreateRSVP(context.Background(), attendeeActor, event.ULID, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRSVPStatus, rsvp.Status)
	assert.Equal(t, "att-1", rsvp.UserID)

	confirmed := fx.notifier.byType(notifications.TypeRSVPConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "admin-1", confirmed[0].UserID)
	assert.Contains(t, confirmed[0].Body, "attendee@example.com")
}

func TestCreateRSVPNormalizesStatus(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Create(context.Background(), adminActor, validInput())
	require.NoError(t, err)

	rsvp, err := fx.service.CreateRSVP(context.Background(), attendeeActor, event.ULID, "maybe")
	require.NoError(t, err)
	assert.Equal(t, "MAYBE", rsvp.Status)

	_, err = fx.service.CreateRSVP(context.Background(), organizerActor, event.ULID, "PERHAPS")
	assert.True(t, IsValidation(err))
}

func TestCreateRSVPRejectsUnapprovedEvent(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Suggest(context.Background(), organizerActor, validInput())
	require.NoError(t, err)

	_, err = fx.service.CreateRSVP(context.Background(), attendeeActor, event.ULID, "")
	assert.ErrorIs(t, err, ErrNotApproved)
	assert.Empty(t, fx.rsvps.rsvps)
}

func TestCreateRSVPConflictOnSecondAttempt(t *testing.T) {
	fx := newFixture()

	event, err := fx.service.Create(context.Background(), adminActor, validInput())
	require.NoError(t, err)

	_, err = fx.service.CreateRSVP(context.Background(), attendeeActor, event.ULID, "")
	require.NoError(t, err)

	_, err = fx.service.CreateRSVP(context.Background(), attendeeActor, event.ULID, "")
	assert.ErrorIs(t, err, ErrAlreadyRSVPed)
	assert.Len(t, fx.rsvps.rsvps, 1)
}

func TestCreateRSVPUnknownEvent(t *testing.T) {
	fx := newFixture()

	_, err := fx.service.CreateRSVP(context.Background(), attendeeActor, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHubReceivesLifecycleEvents(t *testing.T) {
	fx := newFixture()

	ch, cancel := fx.hub.Subscribe(8)
	defer cancel()

	event, err := fx.service.Create(context.Background(), adminActor, validInput())
	require.NoError(t, err)

	_, err = fx.service.CreateRSVP(context.Background(), attendeeActor, event.ULID, "")
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, realtime.TopicEventCreated, first.Topic)
	second := <-ch
	assert.Equal(t, realtime.TopicRSVPCreated, second.Topic)
}
