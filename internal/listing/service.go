package listing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/pagination"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

// GroupLister is the slice of the remote client the listing needs.
type GroupLister interface {
	ListGroups(ctx context.Context, filters remote.ListFilters, page pagination.Params) (*remote.GroupPage, error)
}

// Page is one rendered page of grouped reservations.
type Page struct {
	Rows       []GroupRow `json:"rows"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// Service fetches grouped reservations and projects them to rows. It
// remembers the last fetch parameters so a realtime-triggered Refresh
// re-pulls the same view; the next successful fetch is always authoritative.
type Service struct {
	api    GroupLister
	expand *ExpandState
	logg   *logger.Logger

	mu          sync.Mutex
	lastFilters remote.ListFilters
	lastPage    pagination.Params
	lastGroups  []remote.ReservationGroup
}

// NewService wires the listing service.
func NewService(api GroupLister, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, apperr.New(apperr.CodeInternal, "group lister is required")
	}
	if logg == nil {
		return nil, apperr.New(apperr.CodeInternal, "logger is required")
	}
	return &Service{api: api, expand: NewExpandState(), logg: logg}, nil
}

// List fetches one page with the given filters and projects it.
func (s *Service) List(ctx context.Context, filters remote.ListFilters, page pagination.Params) (*Page, error) {
	result, err := s.api.ListGroups(ctx, filters, page)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sameView := filtersEqual(s.lastFilters, filters)
	s.lastFilters = filters
	s.lastPage = page
	s.lastGroups = result.Groups
	s.mu.Unlock()

	if sameView {
		known := make([]uuid.UUID, 0, len(result.Groups))
		for _, group := range result.Groups {
			known = append(known, group.GroupID)
		}
		s.expand.Prune(known)
	} else {
		// A new search starts collapsed.
		s.expand.CollapseAll()
	}

	return &Page{
		Rows:       Project(result.Groups, s.expand),
		NextCursor: result.NextCursor,
	}, nil
}

// Toggle flips a group's expansion and re-projects the cached page. No
// network call is made.
func (s *Service) Toggle(groupID uuid.UUID) *Page {
	s.expand.Toggle(groupID)

	s.mu.Lock()
	groups := s.lastGroups
	s.mu.Unlock()

	return &Page{Rows: Project(groups, s.expand)}
}

func filtersEqual(a, b remote.ListFilters) bool {
	return eqPtr(a.Status, b.Status) &&
		eqPtr(a.ProjectID, b.ProjectID) &&
		eqPtr(a.ProductID, b.ProductID) &&
		eqPtr(a.UserID, b.UserID)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Refresh re-runs the last fetch. Before any List call it falls back to an
// unfiltered first page, so a push event arriving early still warms the view.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	filters := s.lastFilters
	page := s.lastPage
	s.mu.Unlock()

	_, err := s.List(ctx, filters, page)
	if err != nil {
		s.logg.Warn(ctx, "reservation list refresh failed")
		return err
	}
	return nil
}
