package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/statement"
)

// errBadRequest marks malformed input: unparsable dates, bodies or layouts.
var errBadRequest = errors.New("bad request")

// statusFor maps an error to the response status: 400 for malformed input,
// 422 for invalid data, 503 for timeouts and 500 otherwise.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, statement.ErrUnknownLayout):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, statement.ErrInvalidTransaction),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyID),
		errors.Is(err, core.ErrZeroDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and answers with a JSON error. Server faults hide
// their detail from the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	logger := log.FromContext(r.Context())
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldOperation, op, log.FieldError, err, log.FieldStatusCode, status)
		msg = http.StatusText(status)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", log.FieldOperation, op, log.FieldError, err, log.FieldStatusCode, status)
	}
	ErrorResponse(status, msg).Write(w)
}

// sanitizeInput removes control characters except tab and newlines, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
