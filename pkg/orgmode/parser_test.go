package orgmode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/gravity/pkg/model"
)

const sample = `#+TITLE: Work
* TODO [#A] Finish grant application :focus:
  DEADLINE: <2024-04-10 Wed 17:00>
  :PROPERTIES:
  :ID:       3f1c2a9e-0000-4000-8000-000000000001
  :END:
* TODO Renew library card :errand:trivial:
  DEADLINE: <2024-04-12 Fri>
  :PROPERTIES:
  :ID:       3f1c2a9e-0000-4000-8000-000000000002
  :END:
* DONE [#C] Send invoice
  DEADLINE: <2024-04-01 Mon 09:00>
  :PROPERTIES:
  :ID:       3f1c2a9e-0000-4000-8000-000000000003
  :END:
* TODO No deadline here
  :PROPERTIES:
  :ID:       3f1c2a9e-0000-4000-8000-000000000004
  :END:
* Notes
Some text.
`

func TestParse(t *testing.T) {
	tasks, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d: %+v", len(tasks), tasks)
	}

	grant := tasks[0]
	if grant.Title != "Finish grant application" || grant.Kind != model.KindFocus || grant.Importance != model.ImportanceAbsolute {
		t.Errorf("Unexpected grant task: %+v", grant)
	}
	wantDue := time.Date(2024, 4, 10, 17, 0, 0, 0, time.Local)
	if due, err := grant.Due(); err != nil || !due.Equal(wantDue) {
		t.Errorf("Expected due %v, got %v (%v)", wantDue, due, err)
	}

	card := tasks[1]
	if card.Kind != model.KindTrivial || card.Importance != model.ImportanceMinor {
		t.Errorf("Unexpected library card task: %+v", card)
	}

	invoice := tasks[2]
	if invoice.Status != model.StatusCompleted || invoice.Importance != model.ImportanceRelevant || invoice.Kind != model.KindStandard {
		t.Errorf("Unexpected invoice task: %+v", invoice)
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "work.org")
	if err := os.WriteFile(path, []byte(sample), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	tasks, err := ParseFiles([]string{path, path})
	if err != nil {
		t.Fatalf("ParseFiles failed: %v", err)
	}
	if len(tasks) != 6 {
		t.Errorf("Expected 6 tasks from two copies, got %d", len(tasks))
	}
	if _, err := ParseFiles([]string{filepath.Join(dir, "missing.org")}); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
