package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/internal/reservations"
	"github.com/lbricard/stockdesk-backend/pkg/enums"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

type stubReservationService struct {
	group    *remote.ReservationGroup
	result   *reservations.UpdateResult
	released []remote.ReservationItem
	err      error

	releaseGroupCalls int
}

func (s *stubReservationService) Submit(context.Context, reservations.Actor) (*remote.ReservationGroup, error) {
	return s.group, s.err
}

func (s *stubReservationService) UpdateItem(_ context.Context, _ reservations.Actor, _ remote.ReservationGroup, _ uuid.UUID, _ reservations.ItemPatch) (*reservations.UpdateResult, error) {
	return s.result, s.err
}

func (s *stubReservationService) UpdateGroup(_ context.Context, _ reservations.Actor, _ remote.ReservationGroup, _ reservations.GroupPatch) (*reservations.UpdateResult, error) {
	return s.result, s.err
}

func (s *stubReservationService) ReleaseItem(_ context.Context, _ reservations.Actor, _ remote.ReservationGroup, _ uuid.UUID) ([]remote.ReservationItem, error) {
	return s.released, s.err
}

func (s *stubReservationService) ReleaseGroup(context.Context, reservations.Actor, remote.ReservationGroup) ([]remote.ReservationItem, error) {
	s.releaseGroupCalls++
	return s.released, s.err
}

func (s *stubReservationService) GetGroup(context.Context, uuid.UUID) (*remote.ReservationGroup, error) {
	if s.group == nil {
		return nil, apperr.New(apperr.CodeNotFound, "reservation group not found")
	}
	return s.group, nil
}

func sampleGroup(items int) *remote.ReservationGroup {
	group := &remote.ReservationGroup{GroupID: uuid.New(), TotalItems: items}
	for i := 0; i < items; i++ {
		group.Items = append(group.Items, remote.ReservationItem{
			ID:      uuid.New(),
			GroupID: group.GroupID,
			Status:  enums.ReservationStatusReserved,
		})
	}
	return group
}

func decodeNotice(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Notice string `json:"notice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Notice
}

func TestReservationsSubmitNoticeCountsItems(t *testing.T) {
	svc := &stubReservationService{group: sampleGroup(3)}
	handler := ReservationsSubmit(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/reservations", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if notice := decodeNotice(t, resp); notice != "3 produit(s) réservé(s)" {
		t.Fatalf("unexpected notice: %q", notice)
	}
}

func TestReservationsSubmitSurfacesEmptyCart(t *testing.T) {
	svc := &stubReservationService{err: apperr.New(apperr.CodeValidation, "the cart is empty")}
	handler := ReservationsSubmit(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/reservations", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(apperr.CodeValidation) || envelope.Error.Message != "the cart is empty" {
		t.Fatalf("unexpected error envelope: %+v", envelope.Error)
	}
}

func TestReservationItemUpdateNoChange(t *testing.T) {
	group := sampleGroup(1)
	svc := &stubReservationService{
		group:  group,
		result: &reservations.UpdateResult{Group: group, Changed: false},
	}
	handler := ReservationItemUpdate(svc, nil)

	body := `{"groupId":"` + group.GroupID.String() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/reservations/items/"+group.Items[0].ID.String(), body)
	req = withChiParam(req, "itemId", group.Items[0].ID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if notice := decodeNotice(t, resp); notice != "aucune modification" {
		t.Fatalf("unexpected notice: %q", notice)
	}
}

func TestReservationItemUpdateUnknownGroup(t *testing.T) {
	handler := ReservationItemUpdate(&stubReservationService{}, nil)

	body := `{"groupId":"` + uuid.NewString() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/reservations/items/"+uuid.NewString(), body)
	req = withChiParam(req, "itemId", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestReservationReleaseGroupNotice(t *testing.T) {
	group := sampleGroup(2)
	svc := &stubReservationService{group: group, released: group.Items}
	handler := ReservationRelease(svc, nil)

	body := `{"groupId":"` + group.GroupID.String() + `"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/reservations/release", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if notice := decodeNotice(t, resp); notice != "2 réservation(s) libérée(s)" {
		t.Fatalf("unexpected notice: %q", notice)
	}
	if svc.releaseGroupCalls != 1 {
		t.Fatalf("expected the whole group to be released, calls=%d", svc.releaseGroupCalls)
	}
}

func TestReservationReleaseSingleItemNotice(t *testing.T) {
	group := sampleGroup(2)
	svc := &stubReservationService{group: group, released: group.Items[:1]}
	handler := ReservationRelease(svc, nil)

	body := `{"groupId":"` + group.GroupID.String() + `","itemId":"` + group.Items[0].ID.String() + `"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/reservations/release", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if notice := decodeNotice(t, resp); notice != "1 réservation libérée" {
		t.Fatalf("unexpected notice: %q", notice)
	}
	if svc.releaseGroupCalls != 0 {
		t.Fatalf("single item release must not release the whole group")
	}
}

func TestReservationReleaseStateConflict(t *testing.T) {
	group := sampleGroup(1)
	group.Items[0].Status = enums.ReservationStatusFulfilled
	svc := &stubReservationService{
		group: group,
		err:   apperr.New(apperr.CodeStateConflict, "only reserved items can be released"),
	}
	handler := ReservationRelease(svc, nil)

	body := `{"groupId":"` + group.GroupID.String() + `"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/reservations/release", body))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func withChiParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
