package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/domain/notifications"
)

// NotificationsHandler serves the caller's notification inbox.
type NotificationsHandler struct {
	service *notifications.Service
}

func NewNotificationsHandler(service *notifications.Service) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

type notificationsResponse struct {
	Notifications []notifications.Notification `json:"notifications"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	items, err := h.service.ListForUser(r.Context(), actor.ID)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "could not list notifications", err)
		return
	}
	respond.JSON(w, http.StatusOK, notificationsResponse{Notifications: items})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	if _, err := h.service.MarkRead(r.Context(), pathParam(r, "id"), actor.ID); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, "notification not found", err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "could not update notification", err)
		return
	}

	respond.JSON(w, http.StatusOK, messageResponse{Message: "notification marked as read"})
}
