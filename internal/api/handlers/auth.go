package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/email"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	users    *users.Service
	tokens   *auth.JWTManager
	mailer   *email.Service
	validate *validator.Validate
}

func NewAuthHandler(userService *users.Service, tokens *auth.JWTManager, mailer *email.Service) *AuthHandler {
	return &AuthHandler{
		users:    userService,
		tokens:   tokens,
		mailer:   mailer,
		validate: validator.New(),
	}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "email and password are required", err)
		return
	}

	user, err := h.users.Signup(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(w, r, http.StatusConflict, "user already exists", err)
		case errors.Is(err, users.ErrAdminSignupClosed):
			respond.Error(w, r, http.StatusForbidden, "cannot register as an admin", err)
		case errors.Is(err, auth.ErrUnknownRole):
			respond.Error(w, r, http.StatusBadRequest, "invalid role", err)
		default:
			respond.Error(w, r, http.StatusInternalServerError, "signup failed", err)
		}
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "signup failed", err)
		return
	}

	// Best effort; signup never fails because the welcome mail did.
	if sendErr := h.mailer.SendWelcome(r.Context(), user.Email); sendErr != nil {
		zerolog.Ctx(r.Context()).Warn().Err(sendErr).Str("user_id", user.ID).Msg("welcome email failed")
	}

	respond.JSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userPayload{ID: user.ID, Email: user.Email, Role: string(user.Role)},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "email and password are required", err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			respond.Error(w, r, http.StatusUnauthorized, "invalid credentials", err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "login failed", err)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "login failed", err)
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userPayload{ID: user.ID, Email: user.Email, Role: string(user.Role)},
	})
}
