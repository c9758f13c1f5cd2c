package timeline

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
)

const (
	// BreakMinutes is the recovery interval between focus halves when no trivial task fills the gap.
	BreakMinutes = 10

	// FocusKind is split into two halves around a filler.
	FocusKind = model.KindFocus
	// FillerKind is the kind offered between focus halves.
	FillerKind = model.KindTrivial
)

// SegmentKind tags the variant carried by a Segment.
type SegmentKind string

const (
	SegmentFocus   SegmentKind = "focus"
	SegmentTrivial SegmentKind = "trivial"
	SegmentBreak   SegmentKind = "break"
	SegmentDirect  SegmentKind = "direct"
)

// Segment is one step of an execution plan.
//
//	focus:   Part, Minutes
//	trivial: Task (the embedded filler)
//	break:   Minutes
//	direct:  Task (the active task, executed in one go)
type Segment struct {
	Kind    SegmentKind `json:"kind"`
	Part    int         `json:"part,omitempty"`
	Minutes int         `json:"minutes,omitempty"`
	Task    *model.Task `json:"task,omitempty"`
}

// Label renders the segment for humans.
func (s Segment) Label() string {
	switch s.Kind {
	case SegmentFocus:
		return fmt.Sprintf("Focus %d (%dm)", s.Part, s.Minutes)
	case SegmentBreak:
		return fmt.Sprintf("Break (%dm)", s.Minutes)
	case SegmentTrivial:
		if s.Task != nil {
			return "Trivial: " + s.Task.Title
		}
	case SegmentDirect:
		if s.Task != nil {
			return s.Task.Title
		}
	}
	return string(s.Kind)
}

// Planner expands the active task into a sequence of segments.
type Planner struct {
	catalog *catalog.Catalog
}

func NewPlanner(c *catalog.Catalog) *Planner {
	return &Planner{catalog: c}
}

// Plan builds the execution plan for active. queue must be the remaining tasks
// in descending score order; it is scanned as given and left untouched.
func (p *Planner) Plan(active model.Task, queue []model.Task) []Segment {
	if active.Kind != FocusKind {
		task := active
		return []Segment{{Kind: SegmentDirect, Task: &task}}
	}

	half := p.catalog.Estimate(FocusKind) / 2

	middle := Segment{Kind: SegmentBreak, Minutes: BreakMinutes}
	for i := range queue {
		if queue[i].Kind == FillerKind {
			filler := queue[i]
			middle = Segment{Kind: SegmentTrivial, Task: &filler}
			break
		}
	}

	return []Segment{
		{Kind: SegmentFocus, Part: 1, Minutes: half},
		middle,
		{Kind: SegmentFocus, Part: 2, Minutes: half},
	}
}

// Duration is the wall time a segment occupies.
func (p *Planner) Duration(s Segment) time.Duration {
	switch s.Kind {
	case SegmentFocus, SegmentBreak:
		return time.Duration(s.Minutes) * time.Minute
	case SegmentTrivial, SegmentDirect:
		if s.Task != nil {
			return time.Duration(p.catalog.Estimate(s.Task.Kind)) * time.Minute
		}
	}
	return 0
}
