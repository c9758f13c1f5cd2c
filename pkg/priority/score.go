package priority

import (
	"math"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
)

// SaturationHours is the floor applied to the time remaining. Anything due
// sooner than this, including overdue tasks, scores as if it were due in
// exactly this many hours.
const SaturationHours = 0.5

// Scorer converts a task and a reference instant into a comparable urgency score.
type Scorer struct {
	catalog *catalog.Catalog
}

func NewScorer(c *catalog.Catalog) *Scorer {
	return &Scorer{catalog: c}
}

// UrgencyPressure is the gravity term: the reciprocal of the hours remaining,
// clamped at SaturationHours.
func UrgencyPressure(hoursRemaining float64) float64 {
	return 1 / math.Max(hoursRemaining, SaturationHours)
}

// Score returns the priority of task at now. Higher is more urgent; the value
// only has meaning relative to other scores. A zero now means the wall clock.
func (s *Scorer) Score(task model.Task, now time.Time) (float64, error) {
	if now.IsZero() {
		now = time.Now()
	}

	weight, err := s.catalog.Importance(task.Importance)
	if err != nil {
		return 0, err
	}
	unit, err := s.catalog.Labor(task.Kind)
	if err != nil {
		return 0, err
	}
	due, err := task.Due()
	if err != nil {
		return 0, err
	}

	hoursRemaining := due.Sub(now).Hours()
	return weight.UrgencyFactor * UrgencyPressure(hoursRemaining) / unit.ComplexityWeight, nil
}
