package ranking

import (
	"sort"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/priority"
	"github.com/harrisonrobin/gravity/pkg/timeline"
)

// Ranked pairs a pending task with its score at the ranking instant.
type Ranked struct {
	Task  model.Task `json:"task"`
	Score float64    `json:"score"`
}

// Diagnostic reports a task that could not be scored and was left out of the ranking.
type Diagnostic struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Result is the outcome of one ranking pass.
type Result struct {
	At      time.Time          `json:"at"`
	Active  *Ranked            `json:"active,omitempty"`
	Queue   []Ranked           `json:"queue"`
	Plan    []timeline.Segment `json:"plan"`
	Skipped []Diagnostic       `json:"skipped,omitempty"`
}

// Driver ranks a task collection and plans its head.
type Driver struct {
	scorer  *priority.Scorer
	planner *timeline.Planner
}

func NewDriver(c *catalog.Catalog) *Driver {
	return &Driver{
		scorer:  priority.NewScorer(c),
		planner: timeline.NewPlanner(c),
	}
}

// Rank scores every non-completed task at now, orders them by descending
// score and plans the winner. Tasks that fail to score are skipped and
// reported in Result.Skipped. tasks is not modified.
func (d *Driver) Rank(tasks []model.Task, now time.Time) Result {
	res := Result{
		At:    now,
		Queue: []Ranked{},
		Plan:  []timeline.Segment{},
	}

	var ranked []Ranked
	for _, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		score, err := d.scorer.Score(t, now)
		if err != nil {
			res.Skipped = append(res.Skipped, Diagnostic{TaskID: t.ID, Reason: err.Error(), Err: err})
			continue
		}
		ranked = append(ranked, Ranked{Task: t, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) == 0 {
		return res
	}

	active := ranked[0]
	res.Active = &active
	res.Queue = ranked[1:]

	queue := make([]model.Task, len(res.Queue))
	for i, r := range res.Queue {
		queue[i] = r.Task
	}
	res.Plan = d.planner.Plan(active.Task, queue)
	return res
}
