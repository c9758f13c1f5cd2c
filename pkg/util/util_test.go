package util

import (
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/timeline"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"":        0,
		"PT1H":    time.Hour,
		"PT30M":   30 * time.Minute,
		"PT1H30M": 90 * time.Minute,
		"PT45S":   45 * time.Second,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		if err != nil {
			t.Errorf("ParseDuration(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDuration(%q): expected %s, got %s", in, want, got)
		}
	}
	for _, bad := range []string{"1h", "P1D", "PT"} {
		if _, err := ParseDuration(bad); err == nil {
			t.Errorf("ParseDuration(%q): expected error", bad)
		}
	}
}

func TestConvertPlanToCalendarEvents(t *testing.T) {
	cat := catalog.Default()
	planner := timeline.NewPlanner(cat)
	start := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)

	active := model.Task{ID: "focus-1", Title: "Write proposal", Importance: 3, Kind: model.KindFocus, Deadline: "2023-01-01T18:00:00Z"}
	filler := model.Task{ID: "chore-1", Title: "File receipts", Importance: 1, Kind: model.KindTrivial, Deadline: "2023-01-02T18:00:00Z"}
	plan := planner.Plan(active, []model.Task{filler})

	slots := LayoutPlan(active, plan, planner, start)
	if len(slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(slots))
	}
	wantEnds := []time.Time{start.Add(45 * time.Minute), start.Add(60 * time.Minute), start.Add(105 * time.Minute)}
	for i, slot := range slots {
		if !slot.End.Equal(wantEnds[i]) {
			t.Errorf("Slot %d: expected end %v, got %v", i, wantEnds[i], slot.End)
		}
	}

	first, err := ConvertSlotToCalendarEvent(active, slots[0], cat)
	if err != nil {
		t.Fatalf("ConvertSlotToCalendarEvent failed: %v", err)
	}
	if first.Summary != "Write proposal · Focus 1 (45m)" {
		t.Errorf("Unexpected summary %q", first.Summary)
	}
	if first.ExtendedProperties == nil || first.ExtendedProperties.Private[SegmentProperty] != "focus-1/0" {
		t.Errorf("Expected segment key focus-1/0, got %+v", first.ExtendedProperties)
	}
	if !strings.Contains(first.Description, "Importance: Critical") {
		t.Errorf("Expected importance label in description, got: %s", first.Description)
	}

	middle, err := ConvertSlotToCalendarEvent(active, slots[1], cat)
	if err != nil {
		t.Fatalf("ConvertSlotToCalendarEvent failed: %v", err)
	}
	if middle.Summary != "Trivial: File receipts" {
		t.Errorf("Unexpected summary %q", middle.Summary)
	}
	if middle.ExtendedProperties.Private[TaskProperty] != "chore-1" {
		t.Errorf("Expected filler task id on trivial event, got %+v", middle.ExtendedProperties.Private)
	}
	if middle.Start.DateTime != "2023-01-01T09:45:00Z" || middle.End.DateTime != "2023-01-01T10:00:00Z" {
		t.Errorf("Unexpected trivial slot %s - %s", middle.Start.DateTime, middle.End.DateTime)
	}
}

func TestEventNeedsUpdate(t *testing.T) {
	cat := catalog.Default()
	planner := timeline.NewPlanner(cat)
	active := model.Task{ID: "s", Title: "Review PR", Importance: 2, Kind: model.KindStandard, Deadline: "2023-01-01T18:00:00Z"}
	plan := planner.Plan(active, nil)
	start := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)

	existing, _ := ConvertSlotToCalendarEvent(active, LayoutPlan(active, plan, planner, start)[0], cat)
	same, _ := ConvertSlotToCalendarEvent(active, LayoutPlan(active, plan, planner, start)[0], cat)
	patch, err := EventNeedsUpdate(existing, same)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch != nil {
		t.Errorf("Expected no patch for identical events, got %+v", patch)
	}

	moved, _ := ConvertSlotToCalendarEvent(active, LayoutPlan(active, plan, planner, start.Add(time.Hour))[0], cat)
	patch, err = EventNeedsUpdate(existing, moved)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch == nil || patch.Start == nil || patch.Start.DateTime != "2023-01-01T10:00:00Z" {
		t.Errorf("Expected time patch, got %+v", patch)
	}
	if patch.Summary != "" {
		t.Errorf("Expected summary to be left out of the patch, got %q", patch.Summary)
	}
}
