package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classes surfaced by the client. Concrete errors match one of them
// through errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication rejected")
	ErrTransport      = errors.New("transport failure")
	ErrAuthorization  = errors.New("session expired")
)

var (
	ErrPasswordMismatch  = NewValidationError("Las contraseñas no coinciden")
	ErrNoActiveUser      = NewValidationError("No hay un usuario activo")
	ErrOperationInFlight = errors.New("auth operation already in progress")
	ErrNoRefreshToken    = fmt.Errorf("%w: no refresh token", ErrAuthorization)
	ErrInvalidToken      = errors.New("invalid token")
	ErrUnknownResource   = errors.New("unknown resource")
	ErrUnknownRole       = errors.New("unknown role")
	ErrSuperseded        = errors.New("superseded by a newer session operation")
	ErrNothingToUpdate   = NewValidationError("No hay cambios para guardar")
)

// Localized fallbacks shown when the server gives no usable detail.
const (
	MsgLoginFailed    = "Error al iniciar sesión. Por favor, verifica tus credenciales."
	MsgRegisterFailed = "Error al registrar usuario. Por favor, intenta nuevamente."
	MsgUpdateFailed   = "Error al actualizar usuario."
	MsgTransport      = "No se pudo conectar con el servidor. Intenta nuevamente."
	MsgSessionExpired = "Tu sesión ha expirado. Inicia sesión nuevamente."
)

// ValidationError is a local error that never reached the network.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, http.StatusText(e.Status))
}

// Is lets callers match 401 answers against ErrAuthentication.
func (e *APIError) Is(target error) bool {
	return target == ErrAuthentication && e.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// UserMessage turns any error into the single string displayed to the user.
// Server details are surfaced verbatim; everything else maps to a generic
// message or to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	switch {
	case errors.Is(err, ErrAuthorization):
		return MsgSessionExpired
	case errors.Is(err, ErrTransport):
		return MsgTransport
	}
	return fallback
}

// BestEffort is the outcome of an operation that must never fail its
// caller. A non-nil Err has already been logged.
type BestEffort struct {
	Op  string
	Err error
}

// OK reports whether the operation completed without failure.
func (b BestEffort) OK() bool { return b.Err == nil }

// Join folds several outcomes into one, keeping every failure.
func Join(op string, results ...BestEffort) BestEffort {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Op, r.Err))
		}
	}
	return BestEffort{Op: op, Err: errors.Join(errs...)}
}
