package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("event not found")
	ErrNotApproved   = errors.New("event not approved")
	ErrAlreadyRSVPed = errors.New("already RSVPed to this event")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
