package domain

import "net/http"

// Error is a request-terminating failure. It carries the HTTP status and the
// message key the transport boundary resolves against the locale catalog;
// internal error detail never reaches the client.
type Error struct {
	Status     int
	MessageKey string
	Validation map[string]string
}

func (e *Error) Error() string { return e.MessageKey }

var (
	ErrAuthenticationFailure  = &Error{Status: http.StatusUnauthorized, MessageKey: "AUTHENTICATION_FAILURE"}
	ErrInactiveAccount        = &Error{Status: http.StatusForbidden, MessageKey: "INACTIVE_ACCOUNT_FAILURE"}
	ErrUnauthorizedUserUpdate = &Error{Status: http.StatusForbidden, MessageKey: "UNAUTHORIZED_USER_UPDATE"}
	ErrUserNotFound           = &Error{Status: http.StatusNotFound, MessageKey: "USER_NOT_FOUND"}
	ErrInvalidActivationToken = &Error{Status: http.StatusBadRequest, MessageKey: "ACCOUNT_ACTIVATION_FAILURE"}
	ErrEmailFailure           = &Error{Status: http.StatusBadGateway, MessageKey: "EMAIL_FAILURE"}
	ErrInvalidToken           = &Error{Status: http.StatusUnauthorized, MessageKey: "INVALID_TOKEN"}
)

// NewValidationError wraps per-field message keys produced by the validator.
func NewValidationError(fields map[string]string) *Error {
	return &Error{
		Status:     http.StatusBadRequest,
		MessageKey: "VALIDATION_FAILURE",
		Validation: fields,
	}
}
