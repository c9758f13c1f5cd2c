package catalog

import (
	"errors"
	"testing"

	"github.com/harrisonrobin/gravity/pkg/model"
)

func TestEstimate(t *testing.T) {
	c := Default()
	if got := c.Estimate(model.KindFocus); got != 90 {
		t.Errorf("Expected FOCUS estimate 90, got %d", got)
	}
	if got := c.Estimate(model.KindTrivial); got != 15 {
		t.Errorf("Expected TRIVIAL estimate 15, got %d", got)
	}
	if got := c.Estimate("HUGE"); got != 0 {
		t.Errorf("Expected unknown kind estimate 0, got %d", got)
	}
}

func TestLookupsFailOnUnknownKeys(t *testing.T) {
	c := Default()
	if _, err := c.Labor("HUGE"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for unknown kind, got %v", err)
	}
	if _, err := c.Importance(7); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for unknown tier, got %v", err)
	}
	if err := c.Validate(model.Task{Importance: 2, Kind: model.KindEpic}); err != nil {
		t.Errorf("Expected valid task, got %v", err)
	}
}

func TestImportanceWeights(t *testing.T) {
	c := Default()
	want := map[model.Importance]ImportanceWeight{
		1: {Label: "Minor", UrgencyFactor: 1},
		2: {Label: "Relevant", UrgencyFactor: 1.8},
		3: {Label: "Critical", UrgencyFactor: 3.5},
		4: {Label: "Absolute", UrgencyFactor: 6},
	}
	for tier, w := range want {
		got, err := c.Importance(tier)
		if err != nil {
			t.Fatalf("Importance(%d) failed: %v", tier, err)
		}
		if got != w {
			t.Errorf("Tier %d: expected %+v, got %+v", tier, w, got)
		}
	}
}

func TestKindForMinutes(t *testing.T) {
	c := Default()
	cases := []struct {
		minutes int
		want    model.Kind
	}{
		{0, model.KindTrivial},
		{15, model.KindTrivial},
		{16, model.KindStandard},
		{90, model.KindFocus},
		{120, model.KindEpic},
		{600, model.KindEpic},
	}
	for _, tc := range cases {
		if got := c.KindForMinutes(tc.minutes); got != tc.want {
			t.Errorf("KindForMinutes(%d): expected %s, got %s", tc.minutes, tc.want, got)
		}
	}
}

func TestNewRejectsIncompleteTables(t *testing.T) {
	_, err := New(map[model.Kind]LaborUnit{model.KindTrivial: {15, 1}}, nil)
	if err == nil {
		t.Fatalf("Expected error for missing kinds")
	}
}
