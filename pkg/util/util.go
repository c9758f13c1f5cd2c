package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/timeline"
	"google.golang.org/api/calendar/v3"
)

const (
	// SegmentProperty is the private extended property that identifies a plan segment's event.
	SegmentProperty = "gravity_segment"
	// TaskProperty carries the id of the task a segment works on.
	TaskProperty = "gravity_task"
)

// Google Calendar event color ids per segment kind.
var segmentColors = map[timeline.SegmentKind]string{
	timeline.SegmentFocus:   "9", // blueberry
	timeline.SegmentTrivial: "5", // banana
	timeline.SegmentBreak:   "2", // sage
	timeline.SegmentDirect:  "7", // peacock
}

var durationPart = regexp.MustCompile(`(\d+)([HMS])`)

// ParseDuration parses ISO 8601 duration format (PT1H30M) from Taskwarrior JSON export
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO 8601 duration format: %s", s)
	}
	s = s[1:]
	if len(s) == 0 || s[0] != 'T' {
		return 0, fmt.Errorf("invalid ISO 8601 duration (missing T): P%s", s)
	}
	s = s[1:]

	var total time.Duration
	for _, match := range durationPart.FindAllStringSubmatch(s, -1) {
		value, _ := strconv.Atoi(match[1])
		switch match[2] {
		case "H":
			total += time.Duration(value) * time.Hour
		case "M":
			total += time.Duration(value) * time.Minute
		case "S":
			total += time.Duration(value) * time.Second
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("invalid ISO 8601 duration: PT%s", s)
	}
	return total, nil
}

// Slot is a segment placed on the clock.
type Slot struct {
	Key     string
	Segment timeline.Segment
	Start   time.Time
	End     time.Time
}

// SegmentKey identifies segment i of the plan for the task with activeID.
func SegmentKey(activeID string, i int) string {
	return fmt.Sprintf("%s/%d", activeID, i)
}

// LayoutPlan lays the segments end to end starting at start.
func LayoutPlan(active model.Task, plan []timeline.Segment, planner *timeline.Planner, start time.Time) []Slot {
	slots := make([]Slot, 0, len(plan))
	cursor := start
	for i, seg := range plan {
		end := cursor.Add(planner.Duration(seg))
		slots = append(slots, Slot{Key: SegmentKey(active.ID, i), Segment: seg, Start: cursor, End: end})
		cursor = end
	}
	return slots
}

// ConvertSlotToCalendarEvent builds the calendar event for one placed segment of active's plan.
func ConvertSlotToCalendarEvent(active model.Task, slot Slot, cat *catalog.Catalog) (*calendar.Event, error) {
	if !slot.End.After(slot.Start) {
		return nil, fmt.Errorf("segment %s has no duration", slot.Key)
	}

	seg := slot.Segment
	subject := active
	summary := seg.Label()
	switch seg.Kind {
	case timeline.SegmentFocus:
		summary = fmt.Sprintf("%s · %s", active.Title, seg.Label())
	case timeline.SegmentTrivial, timeline.SegmentDirect:
		if seg.Task != nil {
			subject = *seg.Task
		}
	}

	var desc strings.Builder
	if seg.Kind != timeline.SegmentBreak {
		label := ""
		if w, err := cat.Importance(subject.Importance); err == nil {
			label = w.Label
		}
		desc.WriteString(fmt.Sprintf("Task: %s\n", subject.Title))
		desc.WriteString(fmt.Sprintf("Importance: %s\n", label))
		desc.WriteString(fmt.Sprintf("Kind: %s (%dm nominal)\n", subject.Kind, cat.Estimate(subject.Kind)))
		desc.WriteString(fmt.Sprintf("Deadline: %s\n", subject.Deadline))
		desc.WriteString(fmt.Sprintf("ID: %s\n", subject.ID))
	} else {
		desc.WriteString(fmt.Sprintf("Recovery between the halves of %s\n", active.Title))
	}

	return &calendar.Event{
		Summary:     summary,
		Description: desc.String(),
		ColorId:     segmentColors[seg.Kind],
		Start: &calendar.EventDateTime{
			DateTime: slot.Start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: slot.End.UTC().Format(time.RFC3339),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				SegmentProperty: slot.Key,
				TaskProperty:    subject.ID,
			},
		},
	}, nil
}

// EventNeedsUpdate returns a patch holding the fields of target that differ from existing,
// or nil when the calendar already matches.
func EventNeedsUpdate(existing *calendar.Event, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	if existing.Start == nil || existing.End == nil {
		patch.Start = target.Start
		patch.End = target.End
		return patch, nil
	}
	existingStart, err := time.Parse(time.RFC3339, existing.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStart, err := time.Parse(time.RFC3339, target.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEnd, err := time.Parse(time.RFC3339, existing.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEnd, err := time.Parse(time.RFC3339, target.End.DateTime)
	if err != nil {
		return nil, err
	}
	if !existingStart.Equal(targetStart) || !existingEnd.Equal(targetEnd) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}
