package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/domain/events"
	"github.com/go-playground/validator/v10"
)

// EventsHandler serves the event lifecycle: listing, creation, suggestion,
// approval and RSVP.
type EventsHandler struct {
	service  *events.Service
	validate *validator.Validate
}

func NewEventsHandler(service *events.Service) *EventsHandler {
	return &EventsHandler{
		service:  service,
		validate: validator.New(),
	}
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Capacity    int       `json:"capacity"`
}

type rsvpRequest struct {
	Status string `json:"status"`
}

type eventResponse struct {
	Event events.Event `json:"event"`
}

type eventsResponse struct {
	Events []events.Event `json:"events"`
}

type rsvpResponse struct {
	RSVP events.RSVP `json:"rsvp"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListApproved(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "could not list events", err)
		return
	}
	respond.JSON(w, http.StatusOK, eventsResponse{Events: items})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.createEvent(w, r, (*events.Service).Create)
}

func (h *EventsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	h.createEvent(w, r, (*events.Service).Suggest)
}

func (h *EventsHandler) createEvent(
	w http.ResponseWriter,
	r *http.Request,
	op func(*events.Service, context.Context, events.Actor, events.EventInput) (events.Event, error),
) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "title, description, date and location are required", err)
		return
	}

	event, err := op(h.service, r.Context(), actor, events.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
	})
	if err != nil {
		if events.IsValidation(err) {
			respond.Error(w, r, http.StatusBadRequest, err.Error(), err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "could not create event", err)
		return
	}

	respond.JSON(w, http.StatusCreated, eventResponse{Event: event})
}

func (h *EventsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	event, err := h.service.Approve(r.Context(), actor, pathParam(r, "id"))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, "event not found", err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "could not approve event", err)
		return
	}

	respond.JSON(w, http.StatusOK, eventResponse{Event: event})
}

func (h *EventsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPending(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "could not list pending events", err)
		return
	}
	respond.JSON(w, http.StatusOK, eventsResponse{Events: items})
}

func (h *EventsHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var req rsvpRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	rsvp, err := h.service.CreateRSVP(r.Context(), actor, pathParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, events.ErrNotFound):
			respond.Error(w, r, http.StatusNotFound, "event not found", err)
		case errors.Is(err, events.ErrNotApproved):
			respond.Error(w, r, http.StatusPreconditionFailed, "event is not approved yet", err)
		case errors.Is(err, events.ErrAlreadyRSVPed):
			respond.Error(w, r, http.StatusConflict, "already RSVPed to this event", err)
		case events.IsValidation(err):
			respond.Error(w, r, http.StatusBadRequest, err.Error(), err)
		default:
			respond.Error(w, r, http.StatusInternalServerError, "could not create RSVP", err)
		}
		return
	}

	respond.JSON(w, http.StatusCreated, rsvpResponse{RSVP: rsvp})
}
