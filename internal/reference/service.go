package reference

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/lbricard/stockdesk-backend/pkg/logger"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

type fetcher interface {
	FetchReference(ctx context.Context) (*remote.ReferenceData, error)
}

// Service owns the reference cache. Loads are best-effort: a failed fetch
// logs, keeps the previous snapshot intact and is not fatal to the rest of
// the core.
type Service struct {
	fetcher  fetcher
	logg     *logger.Logger
	snapshot atomic.Pointer[Snapshot]
}

// NewService builds the reference cache around the remote fetcher.
func NewService(f fetcher, logg *logger.Logger) (*Service, error) {
	if f == nil {
		return nil, fmt.Errorf("reference fetcher required")
	}
	svc := &Service{fetcher: f, logg: logg}
	svc.snapshot.Store(NewSnapshot(nil))
	return svc, nil
}

// Load fetches and indexes a fresh snapshot, swapping it in atomically.
// On failure the previous snapshot stays in place.
func (s *Service) Load(ctx context.Context) error {
	data, err := s.fetcher.FetchReference(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "reference load failed, keeping previous snapshot", err)
		}
		return err
	}

	snap := NewSnapshot(data)
	s.snapshot.Store(snap)

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"products":   len(data.Products),
			"warehouses": len(data.Warehouses),
			"projects":   len(data.Projects),
		})
		s.logg.Info(ctx, "reference snapshot loaded")
	}
	return nil
}

// Snapshot returns the current view. Never nil; before the first successful
// load it is the empty snapshot.
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}
