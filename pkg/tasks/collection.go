package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/ranking"
	"github.com/harrisonrobin/gravity/pkg/store"
)

var (
	ErrNotFound  = errors.New("task not found")
	ErrAmbiguous = errors.New("task id prefix is ambiguous")
)

// Draft is what a caller supplies to create a task.
type Draft struct {
	Title      string
	Importance model.Importance
	Kind       model.Kind
	Deadline   time.Time
}

// Collection owns the task list between the store and the ranking driver.
// Store failures never escape: a failed load yields an empty collection and
// a failed save is logged and dropped. When the stored data was corrupt the
// collection keeps what decoded but stops saving, so the file is not
// overwritten with a partial list.
type Collection struct {
	mu       sync.Mutex
	tasks    []model.Task
	dropped  []ranking.Diagnostic
	readOnly bool
	store    store.Store
	catalog  *catalog.Catalog
	driver   *ranking.Driver

	now   func() time.Time
	newID func() string
}

type Option func(*Collection)

// WithClock replaces the wall clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) { c.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(c *Collection) { c.newID = newID }
}

func New(st store.Store, cat *catalog.Catalog, opts ...Option) *Collection {
	c := &Collection{
		store:   st,
		catalog: cat,
		driver:  ranking.NewDriver(cat),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collection) Catalog() *catalog.Catalog { return c.catalog }

// Load replaces the in-memory collection with what the store holds.
func (c *Collection) Load(ctx context.Context) {
	tasks, err := c.store.Load(ctx)

	var dropped []ranking.Diagnostic
	readOnly := false
	var decErr *store.DecodeError
	switch {
	case err == nil:
	case errors.As(err, &decErr):
		for _, r := range decErr.Records {
			id := r.ID
			if id == "" {
				id = fmt.Sprintf("record %d", r.Index)
			}
			dropped = append(dropped, ranking.Diagnostic{TaskID: id, Reason: "undecodable: " + r.Err.Error(), Err: r.Err})
		}
		log.Printf("Warning: %v; saving is disabled until the stored data is repaired", err)
		readOnly = true
	case errors.Is(err, store.ErrCorrupt):
		log.Printf("Warning: %v; starting empty with saving disabled", err)
		tasks = nil
		readOnly = true
	default:
		log.Printf("Warning: could not load tasks, starting empty: %v", err)
		tasks = nil
	}

	c.mu.Lock()
	c.tasks = tasks
	c.dropped = dropped
	c.readOnly = readOnly
	c.mu.Unlock()
}

// ReadOnly reports whether saving was disabled because the stored data was corrupt.
func (c *Collection) ReadOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readOnly
}

// Tasks returns a copy of the collection.
func (c *Collection) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Task(nil), c.tasks...)
}

// Rank runs the ranking driver over the current collection. Records that
// could not be decoded at load are reported alongside the tasks that failed to score.
func (c *Collection) Rank(now time.Time) ranking.Result {
	c.mu.Lock()
	tasks := append([]model.Task(nil), c.tasks...)
	dropped := append([]ranking.Diagnostic(nil), c.dropped...)
	c.mu.Unlock()

	res := c.driver.Rank(tasks, now)
	res.Skipped = append(dropped, res.Skipped...)
	return res
}

// Add validates and stores a new task.
func (c *Collection) Add(ctx context.Context, d Draft) (model.Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.Task{}, errors.New("task title is required")
	}
	if d.Deadline.IsZero() {
		return model.Task{}, fmt.Errorf("%w: deadline is required", model.ErrMalformedDeadline)
	}
	task := model.Task{
		ID:         c.newID(),
		Title:      title,
		Importance: d.Importance,
		Kind:       d.Kind,
		Deadline:   model.FormatDeadline(d.Deadline),
		Status:     model.StatusActive,
		CreatedAt:  c.now().UTC(),
	}
	if err := c.catalog.Validate(task); err != nil {
		return model.Task{}, err
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	snapshot := append([]model.Task(nil), c.tasks...)
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	return task, nil
}

// Complete marks the task with the given id, or unique id prefix, completed.
// Completing an already completed task changes nothing.
func (c *Collection) Complete(ctx context.Context, id string) (model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Task{}, ErrNotFound
	}

	c.mu.Lock()
	idx, err := c.find(id)
	if err != nil {
		c.mu.Unlock()
		return model.Task{}, err
	}
	if c.tasks[idx].IsCompleted() {
		task := c.tasks[idx]
		c.mu.Unlock()
		return task, nil
	}
	c.tasks[idx].Complete()
	task := c.tasks[idx]
	snapshot := append([]model.Task(nil), c.tasks...)
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	return task, nil
}

// Import appends tasks whose ids are not yet present and returns how many were added.
func (c *Collection) Import(ctx context.Context, incoming []model.Task) int {
	c.mu.Lock()
	seen := make(map[string]struct{}, len(c.tasks))
	for _, t := range c.tasks {
		seen[t.ID] = struct{}{}
	}
	added := 0
	for _, t := range incoming {
		if t.ID == "" {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		if t.Status == "" {
			t.Status = model.StatusActive
		}
		if !t.Status.Valid() || !t.Importance.Valid() || !t.Kind.Valid() {
			log.Printf("Warning: not importing %s: invalid status, importance or type", t.ID)
			continue
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = c.now().UTC()
		}
		seen[t.ID] = struct{}{}
		c.tasks = append(c.tasks, t)
		added++
	}
	snapshot := append([]model.Task(nil), c.tasks...)
	c.mu.Unlock()

	if added > 0 {
		c.persist(ctx, snapshot)
	}
	return added
}

// find must be called with mu held. An exact id wins over any prefix match.
func (c *Collection) find(id string) (int, error) {
	for i, t := range c.tasks {
		if t.ID == id {
			return i, nil
		}
	}
	match := -1
	for i, t := range c.tasks {
		if strings.HasPrefix(t.ID, id) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguous, id)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

func (c *Collection) persist(ctx context.Context, snapshot []model.Task) {
	if c.ReadOnly() {
		log.Printf("Warning: not saving tasks: stored data was corrupt at load")
		return
	}
	if err := c.store.Save(ctx, snapshot); err != nil {
		log.Printf("Warning: could not save tasks: %v", err)
	}
}
