package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/ranking"
)

func TestPrintReport(t *testing.T) {
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	in := []model.Task{
		{ID: "aaaaaaaa-1111", Title: "Thesis", Importance: 3, Kind: model.KindFocus, Deadline: model.FormatDeadline(now.Add(4 * time.Hour)), Status: model.StatusActive},
		{ID: "bbbbbbbb-2222", Title: "Call bank", Importance: 1, Kind: model.KindTrivial, Deadline: model.FormatDeadline(now.Add(72 * time.Hour)), Status: model.StatusActive},
		{ID: "cccccccc-3333", Title: "Broken", Importance: 1, Kind: model.KindTrivial, Deadline: "soon", Status: model.StatusActive},
	}
	res := ranking.NewDriver(catalog.Default()).Rank(in, now)

	var buf bytes.Buffer
	printReport(&buf, res)
	out := buf.String()

	for _, want := range []string{
		"Active: Thesis",
		"1. Focus 1 (45m)",
		"2. Trivial: Call bank",
		"3. Focus 2 (45m)",
		"Queue:",
		"bbbbbbbb",
		"Skipped:",
		"cccccccc",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, ranking.NewDriver(catalog.Default()).Rank(nil, time.Now()))
	if got := strings.TrimSpace(buf.String()); got != "Nothing pending." {
		t.Errorf("Unexpected empty report %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a.org, ,b.org,")
	if len(got) != 2 || got[0] != "a.org" || got[1] != "b.org" {
		t.Errorf("Unexpected split %v", got)
	}
}
