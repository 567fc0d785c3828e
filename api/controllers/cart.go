package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/api/middleware"
	"github.com/lbricard/stockdesk-backend/api/responses"
	"github.com/lbricard/stockdesk-backend/api/validators"
	"github.com/lbricard/stockdesk-backend/internal/cart"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/patch"
)

type addCartLinePayload struct {
	ProductID   string `json:"productId" validate:"required,uuid"`
	WarehouseID string `json:"warehouseId" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

type updateQuantityPayload struct {
	Delta int `json:"delta" validate:"required"`
}

type cartFieldsPayload struct {
	ProjectID patch.Field[uuid.UUID] `json:"projectId"`
	ExpiresAt patch.Field[time.Time] `json:"expiresAt"`
	Notes     patch.Field[string]    `json:"notes"`
}

// CartGet returns the caller's staged cart, empty when nothing is staged.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "cart service unavailable"))
			return
		}

		record, err := svc.Get(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CartAddLine stages one product/warehouse line, merging duplicates.
func CartAddLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartLinePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, _ := uuid.Parse(payload.ProductID)
		warehouseID, _ := uuid.Parse(payload.WarehouseID)
		record, err := svc.AddLine(ctx, middleware.UserIDFromContext(ctx), cart.AddLineInput{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    payload.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessNotice(w, record, "1 ligne ajoutée au panier")
	}
}

// CartUpdateQuantity applies a delta to one staged line.
func CartUpdateQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "cart service unavailable"))
			return
		}

		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "lineId"), "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateQuantityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.UpdateQuantity(ctx, middleware.UserIDFromContext(ctx), lineID, payload.Delta)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessNotice(w, record, "quantité mise à jour")
	}
}

// CartRemoveLine drops one staged line.
func CartRemoveLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "cart service unavailable"))
			return
		}

		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "lineId"), "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.RemoveLine(ctx, middleware.UserIDFromContext(ctx), lineID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessNotice(w, record, "1 ligne retirée du panier")
	}
}

// CartSetFields stages the shared group fields. An explicit null clears a
// field; an absent key leaves it untouched.
func CartSetFields(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "cart service unavailable"))
			return
		}

		var payload cartFieldsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := cart.PendingGroupInput{
			ClearProjectID: payload.ProjectID.Cleared(),
			ClearExpiresAt: payload.ExpiresAt.Cleared(),
			ClearNotes:     payload.Notes.Cleared(),
		}
		if v, ok := payload.ProjectID.Value(); ok {
			input.ProjectID = &v
		}
		if v, ok := payload.ExpiresAt.Value(); ok {
			input.ExpiresAt = &v
		}
		if v, ok := payload.Notes.Value(); ok {
			input.Notes = &v
		}

		record, err := svc.SetPendingGroupFields(ctx, middleware.UserIDFromContext(ctx), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CartClear empties the cart and its durable store.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, apperr.New(apperr.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(ctx, middleware.UserIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessNotice(w, map[string]any{"cleared": true}, "panier vidé")
	}
}

func countNotice(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
