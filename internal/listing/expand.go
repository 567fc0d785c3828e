package listing

import (
	"sync"

	"github.com/google/uuid"
)

// ExpandState tracks which multi-item groups are expanded. Purely a
// rendering concern; it never influences the data itself.
type ExpandState struct {
	mu   sync.Mutex
	open map[uuid.UUID]bool
}

func NewExpandState() *ExpandState {
	return &ExpandState{open: map[uuid.UUID]bool{}}
}

// Toggle flips the group's state and returns the new value.
func (e *ExpandState) Toggle(groupID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[groupID] = !e.open[groupID]
	return e.open[groupID]
}

func (e *ExpandState) IsOpen(groupID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open[groupID]
}

// Prune drops state for groups no longer present in the current page.
func (e *ExpandState) Prune(known []uuid.UUID) {
	keep := make(map[uuid.UUID]struct{}, len(known))
	for _, id := range known {
		keep[id] = struct{}{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.open {
		if _, ok := keep[id]; !ok {
			delete(e.open, id)
		}
	}
}

func (e *ExpandState) CollapseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = map[uuid.UUID]bool{}
}
