package controllers

import (
	"net/http"

	"github.com/lbricard/stockdesk-backend/api/responses"
	"github.com/lbricard/stockdesk-backend/internal/reference"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
)

// ReferenceGet returns the current reference snapshot for the pickers.
func ReferenceGet(svc *reference.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "reference service unavailable"))
			return
		}

		snap := svc.Snapshot()
		responses.WriteSuccess(w, map[string]any{
			"products":   snap.Products(),
			"warehouses": snap.Warehouses(),
			"projects":   snap.Projects(),
			"loadedAt":   snap.LoadedAt(),
		})
	}
}

// ReferenceRefresh re-pulls the reference data. A failed load keeps the
// previous snapshot and reports the failure.
func ReferenceRefresh(svc *reference.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "reference service unavailable"))
			return
		}

		if err := svc.Load(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		snap := svc.Snapshot()
		responses.WriteSuccessNotice(w, map[string]any{"loadedAt": snap.LoadedAt()}, "référentiel rechargé")
	}
}
