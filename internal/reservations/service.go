package reservations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/internal/cart"
	"github.com/lbricard/stockdesk-backend/internal/permissions"
	"github.com/lbricard/stockdesk-backend/pkg/db/models"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/metrics"
	"github.com/lbricard/stockdesk-backend/pkg/patch"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

// ReservationAPI is the slice of the remote client the lifecycle needs.
type ReservationAPI interface {
	CreateGroup(ctx context.Context, req remote.CreateGroupRequest) (*remote.ReservationGroup, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, diff patch.Payload) (*remote.ReservationItem, error)
	UpdateGroup(ctx context.Context, groupID uuid.UUID, diff patch.Payload) (*remote.ReservationGroup, error)
	Release(ctx context.Context, itemIDs []uuid.UUID) ([]remote.ReservationItem, error)
	GetGroup(ctx context.Context, groupID uuid.UUID) (*remote.ReservationGroup, error)
}

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	ID   uuid.UUID
	Gate permissions.Gate
}

// UpdateResult carries the refreshed group after an edit. Changed is false
// when the diff was empty and no network call was made.
type UpdateResult struct {
	Group   *remote.ReservationGroup
	Changed bool
}

// Service drives the reservation group lifecycle against the remote server.
type Service interface {
	Submit(ctx context.Context, actor Actor) (*remote.ReservationGroup, error)
	UpdateItem(ctx context.Context, actor Actor, group remote.ReservationGroup, itemID uuid.UUID, edit ItemPatch) (*UpdateResult, error)
	UpdateGroup(ctx context.Context, actor Actor, group remote.ReservationGroup, edit GroupPatch) (*UpdateResult, error)
	ReleaseItem(ctx context.Context, actor Actor, group remote.ReservationGroup, itemID uuid.UUID) ([]remote.ReservationItem, error)
	ReleaseGroup(ctx context.Context, actor Actor, group remote.ReservationGroup) ([]remote.ReservationItem, error)
	GetGroup(ctx context.Context, groupID uuid.UUID) (*remote.ReservationGroup, error)
}

type service struct {
	carts       cart.Service
	api         ReservationAPI
	guard       *SubmitGuard
	metrics     *metrics.ReservationMetrics
	logg        *logger.Logger
	notesMaxLen int
}

// NewService wires the lifecycle service.
func NewService(carts cart.Service, api ReservationAPI, guard *SubmitGuard, m *metrics.ReservationMetrics, logg *logger.Logger, notesMaxLen int) (Service, error) {
	if carts == nil {
		return nil, apperr.New(apperr.CodeInternal, "cart service is required")
	}
	if api == nil {
		return nil, apperr.New(apperr.CodeInternal, "reservation api client is required")
	}
	if guard == nil {
		return nil, apperr.New(apperr.CodeInternal, "submit guard is required")
	}
	if logg == nil {
		return nil, apperr.New(apperr.CodeInternal, "logger is required")
	}
	if notesMaxLen <= 0 {
		notesMaxLen = 250
	}
	return &service{carts: carts, api: api, guard: guard, metrics: m, logg: logg, notesMaxLen: notesMaxLen}, nil
}

func (s *service) Submit(ctx context.Context, actor Actor) (*remote.ReservationGroup, error) {
	if !actor.Gate.CanPerform(permissions.ActionCreate) {
		return nil, apperr.New(apperr.CodeForbidden, "missing permission to create reservations")
	}

	record, err := s.carts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(record.Lines) == 0 {
		return nil, apperr.New(apperr.CodeValidation, "the cart is empty")
	}
	if record.Notes != nil && len(*record.Notes) > s.notesMaxLen {
		return nil, apperr.New(apperr.CodeValidation, "notes exceed the maximum length").
			WithDetails(map[string]any{"maxLength": s.notesMaxLen})
	}

	lease, err := s.guard.Acquire(ctx, actor.ID, submitFingerprint(actor.ID, record))
	if err != nil {
		s.metrics.IncOperation("submit", metrics.OutcomeFailure)
		return nil, err
	}

	req := remote.CreateGroupRequest{
		Lines:     make([]remote.CreateLine, 0, len(record.Lines)),
		ProjectID: record.ProjectID,
		ExpiresAt: record.ExpiresAt,
		Notes:     record.Notes,
	}
	for _, line := range record.Lines {
		req.Lines = append(req.Lines, remote.CreateLine{
			ProductID:   line.ProductID,
			WarehouseID: line.WarehouseID,
			Quantity:    line.Quantity,
		})
	}

	group, err := s.api.CreateGroup(ctx, req)
	if err != nil {
		// The cart is kept intact so the user can adjust and retry.
		lease.Abort(ctx)
		s.metrics.IncOperation("submit", metrics.OutcomeFailure)
		return nil, err
	}
	lease.Commit()

	if err := s.carts.Clear(ctx, actor.ID); err != nil {
		s.logg.Error(ctx, "cart clear after successful submission failed", err)
	}
	s.metrics.IncOperation("submit", metrics.OutcomeSuccess)
	s.logg.Info(s.logg.WithGroupID(ctx, group.GroupID.String()), "reservation group created")
	return group, nil
}

func (s *service) UpdateItem(ctx context.Context, actor Actor, group remote.ReservationGroup, itemID uuid.UUID, edit ItemPatch) (*UpdateResult, error) {
	if err := s.authorizeMutation(actor, group); err != nil {
		return nil, err
	}
	original := findItem(group, itemID)
	if original == nil {
		return nil, apperr.New(apperr.CodeNotFound, "reservation item not found in group")
	}
	if !original.Status.CanRelease() {
		return nil, apperr.New(apperr.CodeStateConflict, "only reserved items can be edited").
			WithDetails(map[string]any{"status": original.Status})
	}
	if quantity, ok := edit.Quantity.Value(); ok && quantity < 1 {
		return nil, apperr.New(apperr.CodeValidation, "quantity must be at least 1")
	}
	if notes, ok := edit.Notes.Value(); ok && len(notes) > s.notesMaxLen {
		return nil, apperr.New(apperr.CodeValidation, "notes exceed the maximum length").
			WithDetails(map[string]any{"maxLength": s.notesMaxLen})
	}

	diff := edit.Diff(*original)
	if diff.Empty() {
		s.metrics.IncOperation("update_item", metrics.OutcomeNoop)
		return &UpdateResult{Group: &group, Changed: false}, nil
	}

	if _, err := s.api.UpdateItem(ctx, itemID, diff); err != nil {
		s.metrics.IncOperation("update_item", metrics.OutcomeFailure)
		return nil, err
	}
	refreshed, err := s.api.GetGroup(ctx, group.GroupID)
	if err != nil {
		s.metrics.IncOperation("update_item", metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncOperation("update_item", metrics.OutcomeSuccess)
	return &UpdateResult{Group: refreshed, Changed: true}, nil
}

func (s *service) UpdateGroup(ctx context.Context, actor Actor, group remote.ReservationGroup, edit GroupPatch) (*UpdateResult, error) {
	if err := s.authorizeMutation(actor, group); err != nil {
		return nil, err
	}
	if !group.Active() {
		return nil, apperr.New(apperr.CodeStateConflict, "the group has no reserved items left")
	}
	if notes, ok := edit.Notes.Value(); ok && len(notes) > s.notesMaxLen {
		return nil, apperr.New(apperr.CodeValidation, "notes exceed the maximum length").
			WithDetails(map[string]any{"maxLength": s.notesMaxLen})
	}
	for id, quantity := range edit.ItemQuantities {
		item := findItem(group, id)
		if item == nil {
			return nil, apperr.New(apperr.CodeNotFound, "reservation item not found in group").
				WithDetails(map[string]any{"reservationId": id})
		}
		if !item.Status.CanRelease() {
			return nil, apperr.New(apperr.CodeStateConflict, "only reserved items can be edited").
				WithDetails(map[string]any{"reservationId": id, "status": item.Status})
		}
		if quantity < 1 {
			return nil, apperr.New(apperr.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"reservationId": id})
		}
	}

	diff := edit.Diff(group)
	if diff.Empty() {
		s.metrics.IncOperation("update_group", metrics.OutcomeNoop)
		return &UpdateResult{Group: &group, Changed: false}, nil
	}

	if _, err := s.api.UpdateGroup(ctx, group.GroupID, diff); err != nil {
		s.metrics.IncOperation("update_group", metrics.OutcomeFailure)
		return nil, err
	}
	refreshed, err := s.api.GetGroup(ctx, group.GroupID)
	if err != nil {
		s.metrics.IncOperation("update_group", metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncOperation("update_group", metrics.OutcomeSuccess)
	return &UpdateResult{Group: refreshed, Changed: true}, nil
}

func (s *service) ReleaseItem(ctx context.Context, actor Actor, group remote.ReservationGroup, itemID uuid.UUID) ([]remote.ReservationItem, error) {
	if err := s.authorizeRelease(actor, group); err != nil {
		return nil, err
	}
	item := findItem(group, itemID)
	if item == nil {
		return nil, apperr.New(apperr.CodeNotFound, "reservation item not found in group")
	}
	if !item.Status.CanRelease() {
		return nil, apperr.New(apperr.CodeStateConflict, "only reserved items can be released").
			WithDetails(map[string]any{"status": item.Status})
	}
	released, err := s.api.Release(ctx, []uuid.UUID{itemID})
	if err != nil {
		s.metrics.IncOperation("release_item", metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncOperation("release_item", metrics.OutcomeSuccess)
	return released, nil
}

func (s *service) ReleaseGroup(ctx context.Context, actor Actor, group remote.ReservationGroup) ([]remote.ReservationItem, error) {
	if err := s.authorizeRelease(actor, group); err != nil {
		return nil, err
	}
	if !group.CanReleaseAll() {
		return nil, apperr.New(apperr.CodeStateConflict, "the group can no longer be released as a whole")
	}
	released, err := s.api.Release(ctx, group.ReservedItemIDs())
	if err != nil {
		s.metrics.IncOperation("release_group", metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncOperation("release_group", metrics.OutcomeSuccess)
	s.logg.Info(s.logg.WithGroupID(ctx, group.GroupID.String()), "reservation group released")
	return released, nil
}

func (s *service) GetGroup(ctx context.Context, groupID uuid.UUID) (*remote.ReservationGroup, error) {
	return s.api.GetGroup(ctx, groupID)
}

// authorizeMutation lets owners edit their own groups; touching someone
// else's requires the manage permission. Groups without a user summary are
// treated as the caller's own, matching what the server exposes to
// non-managers.
func (s *service) authorizeMutation(actor Actor, group remote.ReservationGroup) error {
	if group.User != nil && group.User.ID != actor.ID {
		if !actor.Gate.CanPerform(permissions.ActionManage) {
			return apperr.New(apperr.CodeForbidden, "missing permission to manage other users' reservations")
		}
	}
	return nil
}

func (s *service) authorizeRelease(actor Actor, group remote.ReservationGroup) error {
	if !actor.Gate.CanPerform(permissions.ActionRelease) {
		return apperr.New(apperr.CodeForbidden, "missing permission to release reservations")
	}
	return s.authorizeMutation(actor, group)
}

func findItem(group remote.ReservationGroup, itemID uuid.UUID) *remote.ReservationItem {
	for i := range group.Items {
		if group.Items[i].ID == itemID {
			return &group.Items[i]
		}
	}
	return nil
}

// submitFingerprint hashes the cart contents so an identical double fire
// maps to the same guard key regardless of line order.
func submitFingerprint(ownerID uuid.UUID, record *models.CartRecord) string {
	parts := make([]string, 0, len(record.Lines)+4)
	parts = append(parts, ownerID.String())
	if record.ProjectID != nil {
		parts = append(parts, "project="+record.ProjectID.String())
	}
	if record.ExpiresAt != nil {
		parts = append(parts, "expires="+record.ExpiresAt.UTC().Format(time.RFC3339))
	}
	if record.Notes != nil {
		parts = append(parts, "notes="+*record.Notes)
	}
	lines := make([]string, 0, len(record.Lines))
	for _, line := range record.Lines {
		lines = append(lines, fmt.Sprintf("%s|%s|%d", line.ProductID, line.WarehouseID, line.Quantity))
	}
	sort.Strings(lines)
	parts = append(parts, lines...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}
