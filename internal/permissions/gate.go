package permissions

import "strings"

// Action identifies one guarded reservation operation.
type Action string

const (
	ActionCreate  Action = "reservations.create"
	ActionRelease Action = "reservations.release"
	ActionManage  Action = "reservations.manage"
)

var validActions = []Action{
	ActionCreate,
	ActionRelease,
	ActionManage,
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}

// IsValid reports whether the value is a known Action.
func (a Action) IsValid() bool {
	for _, candidate := range validActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// Gate answers whether the current caller may perform an action. The actual
// role/permission evaluation lives outside this service; the core only ever
// consults the predicate and never attempts a guarded operation when it
// answers false.
type Gate interface {
	CanPerform(action Action) bool
}

// StaticGate is an explicit allow-list gate. Anything not granted is denied.
type StaticGate struct {
	granted map[Action]struct{}
}

// NewStaticGate builds a gate granting exactly the provided actions.
func NewStaticGate(actions ...Action) *StaticGate {
	granted := make(map[Action]struct{}, len(actions))
	for _, action := range actions {
		granted[action] = struct{}{}
	}
	return &StaticGate{granted: granted}
}

// ParseGate builds a gate from a comma-separated list of action codes, the
// format the upstream auth layer forwards. Unknown codes are ignored.
func ParseGate(header string) *StaticGate {
	var actions []Action
	for _, part := range strings.Split(header, ",") {
		action := Action(strings.TrimSpace(part))
		if action.IsValid() {
			actions = append(actions, action)
		}
	}
	return NewStaticGate(actions...)
}

// CanPerform implements Gate.
func (g *StaticGate) CanPerform(action Action) bool {
	if g == nil {
		return false
	}
	_, ok := g.granted[action]
	return ok
}
