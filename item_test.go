package skiplock

import (
	"errors"
	"testing"
)

func TestItemLifecycle(t *testing.T) {
	item := NewItem(ID{1}, "Message 0")
	if item.Status != StatusPending || item.Version != 0 {
		t.Fatalf("expected PENDING v0, got %s v%d", item.Status, item.Version)
	}

	claimed, err := item.Claim()
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != StatusClaimed || claimed.Version != 1 {
		t.Fatalf("expected CLAIMED v1, got %s v%d", claimed.Status, claimed.Version)
	}
	if item.Status != StatusPending || item.Version != 0 {
		t.Fatalf("expected original value untouched")
	}

	done, err := claimed.Complete()
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusDone || done.Version != 2 {
		t.Fatalf("expected DONE v2, got %s v%d", done.Status, done.Version)
	}
	if done.Payload != "Message 0" || done.ID != item.ID {
		t.Fatalf("expected identity and payload preserved")
	}
}

func TestItemRejectsInvalidTransitions(t *testing.T) {
	pending := NewItem(ID{1}, "")
	claimed, _ := pending.Claim()
	done, _ := claimed.Complete()

	cases := []struct {
		name string
		fn   func() (Item, error)
	}{
		{"complete pending", pending.Complete},
		{"claim claimed", claimed.Claim},
		{"claim done", done.Claim},
		{"complete done", done.Complete},
		{"skip to done", func() (Item, error) { return pending.Transition(StatusDone) }},
		{"backwards", func() (Item, error) { return claimed.Transition(StatusPending) }},
		{"same status", func() (Item, error) { return pending.Transition(StatusPending) }},
	}
	for _, tc := range cases {
		got, err := tc.fn()
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s: expected invalid transition, got %v", tc.name, err)
		}
		if got.Version > 2 {
			t.Fatalf("%s: version changed on rejected transition", tc.name)
		}
	}
}

func TestItemValidate(t *testing.T) {
	if err := NewItem(ID{1}, "x").Validate(); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}

	claimed, _ := NewItem(ID{1}, "x").Claim()
	invalid := []Item{
		NewItem(ID{}, "x"),
		claimed,
		{ID: ID{1}, Status: StatusPending, Version: 3},
	}
	for _, item := range invalid {
		if err := item.Validate(); !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("expected invalid item for %+v, got %v", item, err)
		}
	}
}

func TestTransitionBatch(t *testing.T) {
	items := pendingItems(3)
	claimed, err := Transition(items, StatusClaimed)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	for i, item := range claimed {
		if item.Status != StatusClaimed || item.Version != items[i].Version+1 {
			t.Fatalf("unexpected item %+v", item)
		}
	}

	if _, err := Transition(append(claimed, items[0]), StatusDone); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for mixed batch, got %v", err)
	}
}

func TestStatusParseAndScan(t *testing.T) {
	for _, status := range Statuses {
		parsed, err := ParseStatus(status.String())
		if err != nil || parsed != status {
			t.Fatalf("parse %s: %v", status, err)
		}

		var scanned Status
		if err := scanned.Scan([]byte(status)); err != nil || scanned != status {
			t.Fatalf("scan %s: %v", status, err)
		}
	}

	if _, err := ParseStatus("SENT"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	var scanned Status
	if err := scanned.Scan(nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status for NULL, got %v", err)
	}
	if _, err := Status("bogus").Value(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status value, got %v", err)
	}
}

func TestErrorsClassification(t *testing.T) {
	consistency := &ConsistencyError{IDs: []ID{{1}, {2}}}
	if !errors.Is(consistency, ErrVersionConflict) {
		t.Fatalf("expected consistency error to match version conflict")
	}
	if got := consistency.Error(); got != "skiplock: could not update items, ids: [01000000-0000-0000-0000-000000000000, 02000000-0000-0000-0000-000000000000]" {
		t.Fatalf("unexpected message %q", got)
	}

	cause := errors.New("i/o timeout")
	transient := &TransientError{Op: "claim", Err: cause}
	if !errors.Is(transient, ErrTransient) || !errors.Is(transient, cause) {
		t.Fatalf("expected transient error to match sentinel and cause")
	}
	if errors.Is(errors.New("other"), ErrTransient) {
		t.Fatalf("unexpected transient match")
	}
}
