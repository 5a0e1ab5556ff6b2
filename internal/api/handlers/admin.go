package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/go-playground/validator/v10"
)

// AdminHandler serves the admin console endpoints.
type AdminHandler struct {
	users    *users.Service
	validate *validator.Validate
}

func NewAdminHandler(userService *users.Service) *AdminHandler {
	return &AdminHandler{
		users:    userService,
		validate: validator.New(),
	}
}

type statsResponse struct {
	UserCount int64 `json:"userCount"`
}

type adminUserPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type usersResponse struct {
	Users []adminUserPayload `json:"users"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.users.Count(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "could not load stats", err)
		return
	}
	respond.JSON(w, http.StatusOK, statsResponse{UserCount: count})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "could not list users", err)
		return
	}

	payload := make([]adminUserPayload, 0, len(list))
	for _, user := range list {
		payload = append(payload, adminUserPayload{
			ID:        user.ID,
			Email:     user.Email,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, usersResponse{Users: payload})
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "role is required", err)
		return
	}

	if err := h.users.UpdateRole(r.Context(), pathParam(r, "id"), req.Role); err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownRole):
			respond.Error(w, r, http.StatusBadRequest, "invalid role", err)
		case errors.Is(err, users.ErrNotFound):
			respond.Error(w, r, http.StatusNotFound, "user not found", err)
		default:
			respond.Error(w, r, http.StatusInternalServerError, "could not update role", err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, successResponse{Success: true})
}
