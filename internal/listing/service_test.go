package listing

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/pkg/enums"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/pagination"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

type fakeLister struct {
	page    *remote.GroupPage
	err     error
	calls   []remote.ListFilters
	paging  []pagination.Params
}

func (f *fakeLister) ListGroups(_ context.Context, filters remote.ListFilters, page pagination.Params) (*remote.GroupPage, error) {
	f.calls = append(f.calls, filters)
	f.paging = append(f.paging, page)
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func item(status enums.ReservationStatus, quantity int) remote.ReservationItem {
	return remote.ReservationItem{
		ID:       uuid.New(),
		Product:  remote.ProductSummary{ID: uuid.New(), Name: "Vis M8"},
		Quantity: quantity,
		Status:   status,
	}
}

func TestProjectRendersStatusAndReleaseFlags(t *testing.T) {
	reserved := item(enums.ReservationStatusReserved, 5)
	fulfilled := item(enums.ReservationStatusFulfilled, 2)
	group := remote.ReservationGroup{
		GroupID:    uuid.New(),
		Items:      []remote.ReservationItem{reserved, fulfilled},
		TotalItems: 2,
	}

	expand := NewExpandState()
	expand.Toggle(group.GroupID)
	rows := Project([]remote.ReservationGroup{group}, expand)

	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	row := rows[0]
	if !row.Active {
		t.Fatalf("a group with a reserved member must be active")
	}
	if row.CanReleaseAll {
		t.Fatalf("a mixed group must not offer release-all")
	}
	if row.ReservedCount != 1 {
		t.Fatalf("expected one reserved member, got %d", row.ReservedCount)
	}
	if len(row.Items) != 2 {
		t.Fatalf("expected expanded items, got %d", len(row.Items))
	}
	if !row.Items[0].CanRelease || row.Items[1].CanRelease {
		t.Fatalf("only the reserved item can be released")
	}
}

func TestProjectSingleItemGroupIsAlwaysExpanded(t *testing.T) {
	group := remote.ReservationGroup{
		GroupID:    uuid.New(),
		Items:      []remote.ReservationItem{item(enums.ReservationStatusReserved, 1)},
		TotalItems: 1,
	}

	rows := Project([]remote.ReservationGroup{group}, NewExpandState())
	if !rows[0].Expanded || len(rows[0].Items) != 1 {
		t.Fatalf("single-item groups have nothing to collapse, got %+v", rows[0])
	}
}

func TestProjectRendersLegacyRowsWithoutWarehouse(t *testing.T) {
	legacy := item(enums.ReservationStatusReserved, 1)
	legacy.Warehouse = nil
	tracked := item(enums.ReservationStatusReserved, 1)
	tracked.Warehouse = &remote.WarehouseSummary{ID: uuid.New(), Name: "Entrepôt Nord"}
	group := remote.ReservationGroup{
		GroupID:    uuid.New(),
		Items:      []remote.ReservationItem{legacy, tracked},
		TotalItems: 2,
	}

	expand := NewExpandState()
	expand.Toggle(group.GroupID)
	rows := Project([]remote.ReservationGroup{group}, expand)

	if rows[0].Items[0].WarehouseName != "" {
		t.Fatalf("legacy row must render without a warehouse")
	}
	if rows[0].Items[1].WarehouseName != "Entrepôt Nord" {
		t.Fatalf("tracked row must carry its warehouse name")
	}
}

func TestListForwardsFiltersAndRemembersThem(t *testing.T) {
	status := enums.ReservationStatusReserved
	project := uuid.New()
	lister := &fakeLister{page: &remote.GroupPage{NextCursor: "abc"}}
	svc, err := NewService(lister, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	filters := remote.ListFilters{Status: &status, ProjectID: &project}
	page, err := svc.List(context.Background(), filters, pagination.Params{Limit: 50})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.NextCursor != "abc" {
		t.Fatalf("expected cursor forwarded, got %q", page.NextCursor)
	}

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(lister.calls) != 2 {
		t.Fatalf("expected two fetches, got %d", len(lister.calls))
	}
	if lister.calls[1].Status == nil || *lister.calls[1].Status != status {
		t.Fatalf("refresh must replay the last filters, got %+v", lister.calls[1])
	}
	if lister.paging[1].Limit != 50 {
		t.Fatalf("refresh must replay the last paging, got %+v", lister.paging[1])
	}
}

func TestTogglePrunedAfterNewPage(t *testing.T) {
	stale := uuid.New()
	kept := remote.ReservationGroup{
		GroupID:    uuid.New(),
		Items:      []remote.ReservationItem{item(enums.ReservationStatusReserved, 1), item(enums.ReservationStatusReserved, 2)},
		TotalItems: 2,
	}
	lister := &fakeLister{page: &remote.GroupPage{Groups: []remote.ReservationGroup{kept}}}
	svc, err := NewService(lister, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	svc.expand.Toggle(stale)
	if _, err := svc.List(context.Background(), remote.ListFilters{}, pagination.Params{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if svc.expand.IsOpen(stale) {
		t.Fatalf("state for groups off the page must be pruned")
	}

	page := svc.Toggle(kept.GroupID)
	if !page.Rows[0].Expanded || len(page.Rows[0].Items) != 2 {
		t.Fatalf("toggle must re-project the cached page expanded, got %+v", page.Rows[0])
	}
}

func TestListWithNewFiltersStartsCollapsed(t *testing.T) {
	group := remote.ReservationGroup{
		GroupID:    uuid.New(),
		Items:      []remote.ReservationItem{item(enums.ReservationStatusReserved, 1), item(enums.ReservationStatusReserved, 2)},
		TotalItems: 2,
	}
	lister := &fakeLister{page: &remote.GroupPage{Groups: []remote.ReservationGroup{group}}}
	svc, err := NewService(lister, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.List(context.Background(), remote.ListFilters{}, pagination.Params{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	svc.Toggle(group.GroupID)

	status := enums.ReservationStatusReserved
	page, err := svc.List(context.Background(), remote.ListFilters{Status: &status}, pagination.Params{})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if page.Rows[0].Expanded {
		t.Fatalf("a new search must render collapsed, got %+v", page.Rows[0])
	}

	if _, err := svc.List(context.Background(), remote.ListFilters{Status: &status}, pagination.Params{}); err != nil {
		t.Fatalf("repeat list: %v", err)
	}
	svc.Toggle(group.GroupID)
	repeat, err := svc.List(context.Background(), remote.ListFilters{Status: &status}, pagination.Params{})
	if err != nil {
		t.Fatalf("same-filter list: %v", err)
	}
	if !repeat.Rows[0].Expanded {
		t.Fatalf("refetching the same view must keep the expansion, got %+v", repeat.Rows[0])
	}
}
