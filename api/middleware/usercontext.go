package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/api/responses"
	"github.com/lbricard/stockdesk-backend/internal/permissions"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
)

const (
	userIDHeader      = "X-User-Id"
	permissionsHeader = "X-Permissions"
)

// UserContext resolves the authenticated caller from the headers set by the
// fronting gateway. Authentication itself happens upstream; this service
// only consumes its result. Unknown permission codes are ignored, so an
// empty or absent header yields a gate that denies everything.
func UserContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(userIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, apperr.New(apperr.CodeForbidden, "missing user identity"))
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, apperr.New(apperr.CodeValidation, "invalid user identifier"))
				return
			}

			gate := permissions.ParseGate(r.Header.Get(permissionsHeader))

			ctx := WithUserID(r.Context(), userID)
			ctx = WithGate(ctx, gate)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
