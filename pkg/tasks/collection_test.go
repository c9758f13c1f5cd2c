package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/store"
)

var now = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

type failingStore struct{}

func (failingStore) Load(context.Context) ([]model.Task, error) {
	return nil, errors.New("storage unavailable")
}
func (failingStore) Save(context.Context, []model.Task) error { return errors.New("storage unavailable") }
func (failingStore) Close() error                             { return nil }

func newCollection(t *testing.T, st store.Store) *Collection {
	t.Helper()
	n := 0
	return New(st, catalog.Default(),
		WithClock(func() time.Time { return now }),
		WithIDs(func() string { n++; return fmt.Sprintf("id-%02d", n) }),
	)
}

func TestAddPersistsAndRanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	c := newCollection(t, store.NewFileStore(path))
	ctx := context.Background()
	c.Load(ctx)

	focus, err := c.Add(ctx, Draft{Title: "Draft chapter", Importance: 3, Kind: model.KindFocus, Deadline: now.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if focus.ID != "id-01" || focus.Status != model.StatusActive || !focus.CreatedAt.Equal(now) {
		t.Errorf("Unexpected task: %+v", focus)
	}
	if _, err := c.Add(ctx, Draft{Title: "Water plants", Importance: 1, Kind: model.KindTrivial, Deadline: now.Add(30 * time.Hour)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	reloaded := newCollection(t, store.NewFileStore(path))
	reloaded.Load(ctx)
	if got := len(reloaded.Tasks()); got != 2 {
		t.Fatalf("Expected 2 persisted tasks, got %d", got)
	}

	res := reloaded.Rank(now)
	if res.Active == nil || res.Active.Task.ID != "id-01" {
		t.Fatalf("Expected id-01 active, got %+v", res.Active)
	}
	if len(res.Plan) != 3 || res.Plan[1].Task == nil || res.Plan[1].Task.ID != "id-02" {
		t.Errorf("Expected sandwich around id-02, got %+v", res.Plan)
	}
}

func TestAddValidatesCatalogKeys(t *testing.T) {
	c := newCollection(t, store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json")))
	ctx := context.Background()

	if _, err := c.Add(ctx, Draft{Title: "x", Importance: 9, Kind: model.KindFocus, Deadline: now}); !errors.Is(err, catalog.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
	if _, err := c.Add(ctx, Draft{Title: "x", Importance: 1, Kind: "HUGE", Deadline: now}); !errors.Is(err, catalog.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
	if _, err := c.Add(ctx, Draft{Title: "  ", Importance: 1, Kind: model.KindFocus, Deadline: now}); err == nil {
		t.Errorf("Expected error for empty title")
	}
	if _, err := c.Add(ctx, Draft{Title: "x", Importance: 1, Kind: model.KindFocus}); !errors.Is(err, model.ErrMalformedDeadline) {
		t.Errorf("Expected ErrMalformedDeadline, got %v", err)
	}
	if len(c.Tasks()) != 0 {
		t.Errorf("Rejected drafts must not be stored")
	}
}

func TestComplete(t *testing.T) {
	c := newCollection(t, store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json")))
	ctx := context.Background()
	task, _ := c.Add(ctx, Draft{Title: "Ship it", Importance: 2, Kind: model.KindStandard, Deadline: now.Add(time.Hour)})

	done, err := c.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !done.IsCompleted() {
		t.Errorf("Expected completed task, got %+v", done)
	}
	if _, err := c.Complete(ctx, task.ID); err != nil {
		t.Errorf("Completing twice should be a no-op, got %v", err)
	}

	res := c.Rank(now)
	if res.Active != nil || len(res.Plan) != 0 {
		t.Errorf("Expected nothing left to do, got %+v", res)
	}
}

func TestCompleteByPrefix(t *testing.T) {
	c := newCollection(t, store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json")))
	ctx := context.Background()
	c.Import(ctx, []model.Task{
		{ID: "abc123", Title: "a", Importance: 1, Kind: model.KindTrivial, Deadline: model.FormatDeadline(now)},
		{ID: "abd456", Title: "b", Importance: 1, Kind: model.KindTrivial, Deadline: model.FormatDeadline(now)},
	})

	if _, err := c.Complete(ctx, "ab"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("Expected ErrAmbiguous, got %v", err)
	}
	if _, err := c.Complete(ctx, "zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	task, err := c.Complete(ctx, "abd")
	if err != nil || task.ID != "abd456" {
		t.Errorf("Expected abd456 completed, got %+v (%v)", task, err)
	}
}

func TestImportSkipsKnownIDs(t *testing.T) {
	c := newCollection(t, store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json")))
	ctx := context.Background()
	batch := []model.Task{
		{ID: "tw-1", Title: "a", Importance: 1, Kind: model.KindTrivial, Deadline: model.FormatDeadline(now)},
		{ID: "", Title: "no id"},
	}

	if n := c.Import(ctx, batch); n != 1 {
		t.Errorf("Expected 1 imported, got %d", n)
	}
	if n := c.Import(ctx, batch); n != 0 {
		t.Errorf("Expected re-import to add nothing, got %d", n)
	}
	got := c.Tasks()
	if got[0].Status != model.StatusActive || !got[0].CreatedAt.Equal(now) {
		t.Errorf("Expected imported task defaults to be filled in, got %+v", got[0])
	}
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	c := newCollection(t, failingStore{})
	ctx := context.Background()
	c.Load(ctx)
	if len(c.Tasks()) != 0 {
		t.Fatalf("Expected empty collection after failed load")
	}
	if _, err := c.Add(ctx, Draft{Title: "Still works", Importance: 2, Kind: model.KindEpic, Deadline: now.Add(time.Hour)}); err != nil {
		t.Fatalf("Add should not surface save failures: %v", err)
	}
	if res := c.Rank(now); res.Active == nil {
		t.Errorf("Expected the in-memory task to rank")
	}
}

func TestCorruptRecordDoesNotWipeStoredTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	stored := `[
  {"id":"keep-1","title":"Thesis","importance":"3","type":"FOCUS","deadline":"2024-05-06T16:00:00Z","status":"active"},
  {"id":"bad-1","title":"Broken","importance":1,"type":"TRIVIAL","deadline":"2024-05-07T16:00:00Z","status":"active","createdAt":""}
]`
	if err := os.WriteFile(path, []byte(stored), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	c := newCollection(t, store.NewFileStore(path))
	ctx := context.Background()
	c.Load(ctx)

	if got := c.Tasks(); len(got) != 1 || got[0].ID != "keep-1" || got[0].Importance != model.ImportanceCritical {
		t.Fatalf("Expected the decodable task to load, got %+v", got)
	}
	if !c.ReadOnly() {
		t.Errorf("Expected saving to be disabled after a corrupt load")
	}

	res := c.Rank(now)
	if res.Active == nil || res.Active.Task.ID != "keep-1" {
		t.Errorf("Expected keep-1 to rank, got %+v", res.Active)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].TaskID != "bad-1" {
		t.Errorf("Expected bad-1 reported as skipped, got %+v", res.Skipped)
	}

	if _, err := c.Add(ctx, Draft{Title: "new", Importance: 1, Kind: model.KindTrivial, Deadline: now.Add(time.Hour)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(c.Tasks()) != 2 {
		t.Errorf("Expected the new task in memory")
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(after) != stored {
		t.Errorf("Stored file must be left untouched, got:\n%s", after)
	}
}

func TestUnreadableFileIsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{half written"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	c := newCollection(t, store.NewFileStore(path))
	ctx := context.Background()
	c.Load(ctx)
	if len(c.Tasks()) != 0 || !c.ReadOnly() {
		t.Fatalf("Expected empty read-only collection, got %d tasks, readOnly=%v", len(c.Tasks()), c.ReadOnly())
	}
	c.Add(ctx, Draft{Title: "new", Importance: 1, Kind: model.KindTrivial, Deadline: now.Add(time.Hour)})
	after, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(after), "{half written") {
		t.Errorf("Stored file must be left untouched, got %q", after)
	}
}

func TestMissingFileStillSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	c := newCollection(t, store.NewFileStore(path))
	ctx := context.Background()
	c.Load(ctx)
	if c.ReadOnly() {
		t.Fatalf("A missing file must not disable saving")
	}
	c.Add(ctx, Draft{Title: "first", Importance: 1, Kind: model.KindTrivial, Deadline: now.Add(time.Hour)})
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected the store file to be written: %v", err)
	}
}

func TestCompleteExactIDBeatsPrefixes(t *testing.T) {
	c := newCollection(t, store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json")))
	ctx := context.Background()
	due := model.FormatDeadline(now.Add(time.Hour))
	c.Import(ctx, []model.Task{
		{ID: "ab1", Title: "one", Importance: 1, Kind: model.KindTrivial, Deadline: due},
		{ID: "ab2", Title: "two", Importance: 1, Kind: model.KindTrivial, Deadline: due},
		{ID: "ab", Title: "exact", Importance: 1, Kind: model.KindTrivial, Deadline: due},
	})

	task, err := c.Complete(ctx, "ab")
	if err != nil || task.ID != "ab" {
		t.Fatalf("Expected exact id ab completed, got %+v (%v)", task, err)
	}
	for _, got := range c.Tasks() {
		if got.ID != "ab" && got.IsCompleted() {
			t.Errorf("Only ab should be completed, %s is too", got.ID)
		}
	}
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	c := newCollection(t, store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json")))
	due := model.FormatDeadline(now.Add(time.Hour))
	n := c.Import(context.Background(), []model.Task{
		{ID: "ok", Title: "ok", Importance: 2, Kind: model.KindStandard, Deadline: due},
		{ID: "tier", Title: "x", Importance: 7, Kind: model.KindStandard, Deadline: due},
		{ID: "status", Title: "x", Importance: 2, Kind: model.KindStandard, Deadline: due, Status: "archived"},
		{ID: "kind", Title: "x", Importance: 2, Kind: "HUGE", Deadline: due},
	})
	if n != 1 {
		t.Errorf("Expected only the valid record imported, got %d", n)
	}
	if got := c.Tasks(); len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("Unexpected collection %+v", got)
	}
}
