package permissions

import "testing"

func TestStaticGateDeniesByDefault(t *testing.T) {
	gate := NewStaticGate()
	for _, action := range validActions {
		if gate.CanPerform(action) {
			t.Fatalf("empty gate must deny %s", action)
		}
	}

	var nilGate *StaticGate
	if nilGate.CanPerform(ActionCreate) {
		t.Fatal("nil gate must deny everything")
	}
}

func TestStaticGateGrantsOnlyListedActions(t *testing.T) {
	gate := NewStaticGate(ActionCreate, ActionRelease)
	if !gate.CanPerform(ActionCreate) {
		t.Fatal("create should be granted")
	}
	if !gate.CanPerform(ActionRelease) {
		t.Fatal("release should be granted")
	}
	if gate.CanPerform(ActionManage) {
		t.Fatal("manage must stay denied")
	}
}

func TestParseGateIgnoresUnknownCodes(t *testing.T) {
	gate := ParseGate(" reservations.create , bogus.action,reservations.manage")
	if !gate.CanPerform(ActionCreate) || !gate.CanPerform(ActionManage) {
		t.Fatal("expected listed actions to be granted")
	}
	if gate.CanPerform(ActionRelease) {
		t.Fatal("release was not listed")
	}
	if gate.CanPerform(Action("bogus.action")) {
		t.Fatal("unknown codes must never be granted")
	}
}
