// Package handlers contains the JSON route handlers of the Wash&Go ERP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"washngo/services"
)

// errorBody is the uniform error envelope returned by every handler.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Error writes a JSON error response.
func Error(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, errorBody{Error: message})
}

// ValidationError writes a 400 with a per-field message map.
func ValidationError(e *core.RequestEvent, fields map[string]string) error {
	return e.JSON(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
}

// BusinessError maps the services sentinel errors to HTTP statuses: missing
// references are 404, invalid state is 409, validation shortfalls are 422.
func BusinessError(e *core.RequestEvent, err error) error {
	switch {
	case errors.Is(err, services.ErrServiceNotFound),
		errors.Is(err, services.ErrClientNotFound):
		return Error(e, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrKindTransition):
		return Error(e, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrCompanyRequired),
		errors.Is(err, services.ErrCompanyIncomplete),
		errors.Is(err, services.ErrClientIncomplete),
		errors.Is(err, services.ErrNoBillableItems):
		return Error(e, http.StatusUnprocessableEntity, err.Error())
	default:
		return Error(e, http.StatusInternalServerError, "une erreur interne est survenue")
	}
}
