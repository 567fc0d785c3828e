package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/pkg/enums"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/pagination"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, apperr.New(apperr.CodeValidation, "query parameter out of range").
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryUUID returns nil when the parameter is absent.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.New(apperr.CodeValidation, "query parameter must be a uuid").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParseQueryStatus returns nil when the parameter is absent.
func ParseQueryStatus(r *http.Request, key string) (*enums.ReservationStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseReservationStatus(raw)
	if err != nil {
		return nil, apperr.New(apperr.CodeValidation, "unknown reservation status").
			WithDetails(map[string]any{"field": key, "value": raw})
	}
	return &status, nil
}

// ParseQueryCursor validates a pagination cursor and returns its canonical
// encoding, so a malformed cursor is rejected before any remote call. An
// absent parameter returns the empty string (first page).
func ParseQueryCursor(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return "", apperr.New(apperr.CodeValidation, "invalid pagination cursor").
			WithDetails(map[string]any{"field": key})
	}
	return pagination.EncodeCursor(*cursor), nil
}

// ParsePathUUID parses a chi url parameter already extracted by the caller.
func ParsePathUUID(raw, field string) (uuid.UUID, error) {
	value, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.CodeValidation, "path parameter must be a uuid").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
