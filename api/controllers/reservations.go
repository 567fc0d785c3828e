package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/api/middleware"
	"github.com/lbricard/stockdesk-backend/api/responses"
	"github.com/lbricard/stockdesk-backend/api/validators"
	"github.com/lbricard/stockdesk-backend/internal/reservations"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/patch"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

type itemUpdatePayload struct {
	GroupID   string                 `json:"groupId" validate:"required,uuid"`
	Quantity  patch.Field[int]       `json:"quantity"`
	ProjectID patch.Field[uuid.UUID] `json:"projectId"`
	ExpiresAt patch.Field[time.Time] `json:"expiresAt"`
	Notes     patch.Field[string]    `json:"notes"`
}

type groupItemQuantityPayload struct {
	ReservationID string `json:"reservationId" validate:"required,uuid"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
}

type groupUpdatePayload struct {
	ProjectID patch.Field[uuid.UUID]     `json:"projectId"`
	ExpiresAt patch.Field[time.Time]     `json:"expiresAt"`
	Notes     patch.Field[string]        `json:"notes"`
	Items     []groupItemQuantityPayload `json:"items" validate:"omitempty,dive"`
}

type releasePayload struct {
	GroupID string `json:"groupId" validate:"required,uuid"`
	ItemID  string `json:"itemId" validate:"omitempty,uuid"`
}

func actorFrom(r *http.Request) reservations.Actor {
	ctx := r.Context()
	return reservations.Actor{
		ID:   middleware.UserIDFromContext(ctx),
		Gate: middleware.GateFromContext(ctx),
	}
}

// ReservationsSubmit turns the staged cart into one grouped reservation.
func ReservationsSubmit(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "reservation service unavailable"))
			return
		}

		group, err := svc.Submit(ctx, actorFrom(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notice := countNotice(group.TotalItems, "produit réservé", "produit(s) réservé(s)")
		responses.WriteSuccessNotice(w, group, notice)
	}
}

// ReservationItemUpdate applies a diff-only partial update to one item. The
// diff is computed against the group's current server-side view, so
// untouched fields are never resent.
func ReservationItemUpdate(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "reservation service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload itemUpdatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		groupID, _ := uuid.Parse(payload.GroupID)

		group, err := svc.GetGroup(ctx, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.UpdateItem(ctx, actorFrom(r), *group, itemID, reservations.ItemPatch{
			Quantity:  payload.Quantity,
			ProjectID: payload.ProjectID,
			ExpiresAt: payload.ExpiresAt,
			Notes:     payload.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !result.Changed {
			responses.WriteSuccessNotice(w, result.Group, "aucune modification")
			return
		}
		responses.WriteSuccessNotice(w, result.Group, "1 réservation mise à jour")
	}
}

// ReservationGroupUpdate applies a diff-only partial update to a group's
// shared fields, optionally with per-item quantity overrides.
func ReservationGroupUpdate(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "reservation service unavailable"))
			return
		}

		groupID, err := validators.ParsePathUUID(chi.URLParam(r, "groupId"), "groupId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload groupUpdatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		group, err := svc.GetGroup(ctx, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		edit := reservations.GroupPatch{
			ProjectID: payload.ProjectID,
			ExpiresAt: payload.ExpiresAt,
			Notes:     payload.Notes,
		}
		if len(payload.Items) > 0 {
			edit.ItemQuantities = make(map[uuid.UUID]int, len(payload.Items))
			for _, item := range payload.Items {
				id, parseErr := uuid.Parse(item.ReservationID)
				if parseErr != nil {
					responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeValidation, "invalid reservation id"))
					return
				}
				edit.ItemQuantities[id] = item.Quantity
			}
		}

		result, err := svc.UpdateGroup(ctx, actorFrom(r), *group, edit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !result.Changed {
			responses.WriteSuccessNotice(w, result.Group, "aucune modification")
			return
		}
		notice := countNotice(result.Group.TotalItems, "réservation mise à jour", "réservation(s) mise(s) à jour")
		responses.WriteSuccessNotice(w, result.Group, notice)
	}
}

// ReservationRelease releases one item or, when no item id is given, every
// still-reserved member of the group.
func ReservationRelease(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "reservation service unavailable"))
			return
		}

		var payload releasePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		groupID, _ := uuid.Parse(payload.GroupID)

		group, err := svc.GetGroup(ctx, groupID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var released []remote.ReservationItem
		if payload.ItemID != "" {
			itemID, parseErr := uuid.Parse(payload.ItemID)
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeValidation, "invalid item id"))
				return
			}
			items, relErr := svc.ReleaseItem(ctx, actorFrom(r), *group, itemID)
			if relErr != nil {
				responses.WriteError(ctx, logg, w, relErr)
				return
			}
			released = items
		} else {
			items, relErr := svc.ReleaseGroup(ctx, actorFrom(r), *group)
			if relErr != nil {
				responses.WriteError(ctx, logg, w, relErr)
				return
			}
			released = items
		}

		notice := countNotice(len(released), "réservation libérée", "réservation(s) libérée(s)")
		responses.WriteSuccessNotice(w, map[string]any{"released": released}, notice)
	}
}
