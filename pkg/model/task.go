package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDeadline is returned when a task's deadline does not parse to an instant.
var ErrMalformedDeadline = errors.New("malformed deadline")

// Kind is the labor category of a task.
type Kind string

const (
	KindTrivial  Kind = "TRIVIAL"
	KindStandard Kind = "STANDARD"
	KindFocus    Kind = "FOCUS"
	KindEpic     Kind = "EPIC"
)

// Kinds returns the closed set of kinds, smallest first.
func Kinds() []Kind {
	return []Kind{KindTrivial, KindStandard, KindFocus, KindEpic}
}

func (k Kind) Valid() bool {
	switch k {
	case KindTrivial, KindStandard, KindFocus, KindEpic:
		return true
	}
	return false
}

// ParseKind accepts any casing of a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown task kind %q", s)
	}
	return k, nil
}

// Importance is the tier 1..4 of a task.
type Importance int

const (
	ImportanceMinor    Importance = 1
	ImportanceRelevant Importance = 2
	ImportanceCritical Importance = 3
	ImportanceAbsolute Importance = 4
)

// Importances returns the closed set of tiers, lowest first.
func Importances() []Importance {
	return []Importance{ImportanceMinor, ImportanceRelevant, ImportanceCritical, ImportanceAbsolute}
}

func (i Importance) Valid() bool {
	return i >= ImportanceMinor && i <= ImportanceAbsolute
}

// UnmarshalJSON accepts the tier as a number or as a quoted number ("3").
func (i *Importance) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*i = Importance(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("importance must be a number, got %s", b)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("importance must be a number, got %q", s)
	}
	*i = Importance(n)
	return nil
}

// Status is the lifecycle state of a task. It only ever moves from active to completed.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

// Task is the only persisted entity.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Importance Importance `json:"importance"`
	Kind       Kind       `json:"type"`
	// Deadline is kept in its stored form and parsed when the task is scored,
	// so one corrupt record cannot prevent the collection from loading.
	Deadline  string    `json:"deadline"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// FormatDeadline renders an instant in the canonical stored form.
func FormatDeadline(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Due parses the stored deadline.
func (t Task) Due() (time.Time, error) {
	if strings.TrimSpace(t.Deadline) == "" {
		return time.Time{}, fmt.Errorf("%w: task %s has no deadline", ErrMalformedDeadline, t.ID)
	}
	due, err := time.Parse(time.RFC3339, t.Deadline)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: task %s: %q", ErrMalformedDeadline, t.ID, t.Deadline)
	}
	return due, nil
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Complete marks the task completed. Completing a completed task is a no-op.
func (t *Task) Complete() {
	t.Status = StatusCompleted
}
