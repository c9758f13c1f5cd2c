package taskwarrior

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/util"
)

// UrgentTag lifts a task to the top importance tier.
const UrgentTag = "urgent"

// Importance maps taskwarrior priority onto an importance tier.
func (t Task) Importance() model.Importance {
	if t.HasTag(UrgentTag) {
		return model.ImportanceAbsolute
	}
	switch strings.ToUpper(t.Priority) {
	case "H":
		return model.ImportanceCritical
	case "M":
		return model.ImportanceRelevant
	default:
		return model.ImportanceMinor
	}
}

// Kind is taken from a tag naming a kind, else from the estimate, else STANDARD.
func (t Task) Kind(cat *catalog.Catalog) model.Kind {
	for _, tag := range t.Tags {
		if k, err := model.ParseKind(tag); err == nil {
			return k
		}
	}
	est, err := util.ParseDuration(t.Est)
	if err != nil || est <= 0 {
		return model.KindStandard
	}
	return cat.KindForMinutes(int(est.Minutes()))
}

// ToTasks converts exported tasks, skipping deleted, recurring-template and undated ones.
func ToTasks(in []Task, cat *catalog.Catalog) ([]model.Task, []string) {
	var out []model.Task
	var skipped []string
	for _, t := range in {
		task, err := t.ToTask(cat)
		if err != nil {
			skipped = append(skipped, err.Error())
			continue
		}
		out = append(out, task)
	}
	return out, skipped
}

func (t Task) ToTask(cat *catalog.Catalog) (model.Task, error) {
	if t.UUID == "" {
		return model.Task{}, fmt.Errorf("task %q has no uuid", t.Description)
	}
	switch t.Status {
	case DELETED, RECURRING:
		return model.Task{}, fmt.Errorf("task %s is %s", t.UUID, t.Status)
	}
	if t.Due == nil || t.Due.IsZero() {
		return model.Task{}, fmt.Errorf("task %s has no due date", t.UUID)
	}

	task := model.Task{
		ID:         t.UUID,
		Title:      t.Description,
		Importance: t.Importance(),
		Kind:       t.Kind(cat),
		Deadline:   model.FormatDeadline(t.Due.Time),
		Status:     model.StatusActive,
	}
	if t.Status == COMPLETED {
		task.Status = model.StatusCompleted
	}
	if t.Entry != nil {
		task.CreatedAt = t.Entry.Time
	}
	return task, nil
}
