package catalog

import (
	"errors"
	"fmt"

	"github.com/harrisonrobin/gravity/pkg/model"
)

// ErrInvalidKey is returned when a task names a kind or tier that is not in the catalog.
var ErrInvalidKey = errors.New("invalid catalog key")

// LaborUnit describes the nominal cost of one task kind.
type LaborUnit struct {
	NominalMinutes   int     `json:"nominal_minutes"`
	ComplexityWeight float64 `json:"complexity_weight"`
}

// ImportanceWeight describes one importance tier.
type ImportanceWeight struct {
	Label         string  `json:"label"`
	UrgencyFactor float64 `json:"urgency_factor"`
}

// Catalog holds the static lookup tables consulted by the scorer and planner.
// It is immutable once built.
type Catalog struct {
	labor      map[model.Kind]LaborUnit
	importance map[model.Importance]ImportanceWeight
}

// Default returns the standard units of labor and importance weights.
func Default() *Catalog {
	c, err := New(
		map[model.Kind]LaborUnit{
			model.KindTrivial:  {NominalMinutes: 15, ComplexityWeight: 1},
			model.KindStandard: {NominalMinutes: 45, ComplexityWeight: 3},
			model.KindFocus:    {NominalMinutes: 90, ComplexityWeight: 6},
			model.KindEpic:     {NominalMinutes: 240, ComplexityWeight: 15},
		},
		map[model.Importance]ImportanceWeight{
			model.ImportanceMinor:    {Label: "Minor", UrgencyFactor: 1},
			model.ImportanceRelevant: {Label: "Relevant", UrgencyFactor: 1.8},
			model.ImportanceCritical: {Label: "Critical", UrgencyFactor: 3.5},
			model.ImportanceAbsolute: {Label: "Absolute", UrgencyFactor: 6},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog. Every kind and every tier must be present with positive values.
func New(labor map[model.Kind]LaborUnit, importance map[model.Importance]ImportanceWeight) (*Catalog, error) {
	c := &Catalog{
		labor:      make(map[model.Kind]LaborUnit, len(labor)),
		importance: make(map[model.Importance]ImportanceWeight, len(importance)),
	}
	for _, kind := range model.Kinds() {
		unit, ok := labor[kind]
		if !ok {
			return nil, fmt.Errorf("catalog: missing labor unit for %s", kind)
		}
		if unit.NominalMinutes <= 0 || unit.ComplexityWeight <= 0 {
			return nil, fmt.Errorf("catalog: labor unit for %s must be positive, got %+v", kind, unit)
		}
		c.labor[kind] = unit
	}
	for _, tier := range model.Importances() {
		w, ok := importance[tier]
		if !ok {
			return nil, fmt.Errorf("catalog: missing importance weight for tier %d", tier)
		}
		if w.UrgencyFactor <= 0 {
			return nil, fmt.Errorf("catalog: urgency factor for tier %d must be positive, got %v", tier, w.UrgencyFactor)
		}
		c.importance[tier] = w
	}
	return c, nil
}

func (c *Catalog) Labor(kind model.Kind) (LaborUnit, error) {
	unit, ok := c.labor[kind]
	if !ok {
		return LaborUnit{}, fmt.Errorf("%w: kind %q", ErrInvalidKey, kind)
	}
	return unit, nil
}

func (c *Catalog) Importance(tier model.Importance) (ImportanceWeight, error) {
	w, ok := c.importance[tier]
	if !ok {
		return ImportanceWeight{}, fmt.Errorf("%w: importance %d", ErrInvalidKey, tier)
	}
	return w, nil
}

// Estimate returns the nominal minutes for a kind, or 0 if the kind is unknown.
func (c *Catalog) Estimate(kind model.Kind) int {
	return c.labor[kind].NominalMinutes
}

// KindForMinutes picks the smallest kind whose nominal duration covers minutes.
// Anything longer than every kind maps to the largest.
func (c *Catalog) KindForMinutes(minutes int) model.Kind {
	kinds := model.Kinds()
	for _, kind := range kinds {
		if minutes <= c.labor[kind].NominalMinutes {
			return kind
		}
	}
	return kinds[len(kinds)-1]
}

// Validate checks that both of a task's catalog keys resolve.
func (c *Catalog) Validate(task model.Task) error {
	if _, err := c.Importance(task.Importance); err != nil {
		return err
	}
	if _, err := c.Labor(task.Kind); err != nil {
		return err
	}
	return nil
}
