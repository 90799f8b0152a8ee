package handler

import (
	"errors"
	"net/http"

	"github.com/ecoruta/portal/internal/core/domain"
)

// HTTPStatus maps an error of the client stack to the portal status code.
// Unknown errors are 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOperationInFlight), errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownResource):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Message is the user-facing text for err.
func Message(err error) string {
	switch {
	case errors.Is(err, domain.ErrOperationInFlight):
		return "Ya hay una operación de sesión en curso"
	case errors.Is(err, domain.ErrSuperseded):
		return "La operación fue cancelada por un cierre de sesión"
	case errors.Is(err, domain.ErrUnknownResource):
		return "Recurso desconocido"
	}
	return domain.UserMessage(err, MsgInternal)
}
