package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lbricard/stockdesk-backend/api/responses"
	"github.com/lbricard/stockdesk-backend/api/validators"
	"github.com/lbricard/stockdesk-backend/internal/listing"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/pagination"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

// ListingGroups fetches one page of grouped reservations. Filters and
// paging are forwarded to the reservation server; nothing is sorted or
// filtered locally.
func ListingGroups(svc *listing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "listing service unavailable"))
			return
		}

		status, err := validators.ParseQueryStatus(r, "status")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		projectID, err := validators.ParseQueryUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		productID, err := validators.ParseQueryUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUUID(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor, err := validators.ParseQueryCursor(r, "cursor")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.List(ctx, remote.ListFilters{
			Status:    status,
			ProjectID: projectID,
			ProductID: productID,
			UserID:    userID,
		}, pagination.Params{
			Limit:  limit,
			Cursor: cursor,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ListingToggle flips a group's expansion and returns the re-projected
// cached page without a network call.
func ListingToggle(svc *listing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "listing service unavailable"))
			return
		}

		groupID, err := validators.ParsePathUUID(chi.URLParam(r, "groupId"), "groupId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Toggle(groupID))
	}
}
