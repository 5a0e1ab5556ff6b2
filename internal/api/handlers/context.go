package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/domain/events"
)

var errNoActor = errors.New("no authenticated caller in context")

// actorFromRequest converts the verified token claims placed by the auth
// middleware into a domain actor.
func actorFromRequest(r *http.Request) (events.Actor, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return events.Actor{}, errNoActor
	}
	return events.Actor{
		ID:    claims.UserID(),
		Email: claims.Email,
		Role:  claims.ParsedRole(),
	}, nil
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
