package kpi

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/faults"
)

// Definition describes one KPI: its identity, the framework weight published
// for it, and the fields its formula reads.
type Definition struct {
	ID        string
	Name      string
	Framework Framework
	Weight    float64
	Formula   string
	Fields    []evidence.FieldID
	Composite bool

	compute func(*terms)
}

// Definitions returns the KPI table for a framework.
func Definitions(f Framework) ([]Definition, error) {
	switch f {
	case AICTE:
		return aicteDefinitions(), nil
	case NBA:
		return nbaDefinitions(), nil
	case NAAC:
		return naacDefinitions(), nil
	case NIRF:
		return nirfDefinitions(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFramework, f)
}

// Lookup finds a single KPI definition.
func Lookup(f Framework, kpiID string) (Definition, bool) {
	defs, err := Definitions(f)
	if err != nil {
		return Definition{}, false
	}
	for _, d := range defs {
		if d.ID == kpiID {
			return d, true
		}
	}
	return Definition{}, false
}

// RequiredFields is the union of fields read by a framework's formulas, in
// first-use order.
func RequiredFields(f Framework) ([]evidence.FieldID, error) {
	defs, err := Definitions(f)
	if err != nil {
		return nil, err
	}

	var fields []evidence.FieldID
	for _, d := range defs {
		for _, field := range d.Fields {
			if !slices.Contains(fields, field) {
				fields = append(fields, field)
			}
		}
	}
	return fields, nil
}

// Evaluate runs one formula against an evidence map. A result without
// consulted evidence never carries a value.
func Evaluate(def Definition, m evidence.Map) Result {
	g := evidence.NewGate(m)
	t := &terms{g: g, ok: true}
	def.compute(t)

	r := Result{
		KPIID:        def.ID,
		Name:         def.Name,
		Framework:    def.Framework,
		Formula:      def.Formula,
		Parameters:   t.parts,
		EvidenceRefs: g.Refs(),
		Missing:      g.Missing(),
	}
	if r.Parameters == nil {
		r.Parameters = []Contribution{}
	}
	if r.EvidenceRefs == nil {
		r.EvidenceRefs = []string{}
	}

	if !t.ok || len(r.EvidenceRefs) == 0 {
		r.Value = None()
		r.Fault = unscored(def, r.Missing, t.reason)
		return r
	}

	var total float64
	for _, p := range t.parts {
		total += p.Contribution
	}
	r.Value = Some(clamp(round2(total), 0, 100))
	return r
}

// Compute evaluates every KPI of a framework.
func Compute(f Framework, m evidence.Map) (map[string]Result, error) {
	defs, err := Definitions(f)
	if err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(defs))
	for _, d := range defs {
		results[d.ID] = Evaluate(d, m)
	}
	return results, nil
}

// Overall is the arithmetic mean of the non-null KPI values, rounded to two
// decimals. It is None when no KPI has a value.
func Overall(results map[string]Result) Score {
	var sum float64
	n := 0
	for _, r := range results {
		if v, ok := r.Value.Get(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return None()
	}
	return Some(round2(sum / float64(n)))
}

func unscored(def Definition, missing []evidence.FieldID, reason string) *faults.Error {
	ctx := map[string]any{"kpi_id": def.ID}
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		ctx["missing_fields"] = names
		if reason == "" {
			reason = "required evidence missing: " + strings.Join(names, ", ")
		}
	}
	if reason == "" {
		reason = "no evidence consulted"
	}
	return faults.New(faults.KindMissingEvidence, reason, ctx)
}

// terms accumulates a formula's weighted parameters. Any required lookup that
// fails marks the whole evaluation as unscored.
type terms struct {
	g      *evidence.Gate
	parts  []Contribution
	ok     bool
	reason string
}

func (t *terms) number(f evidence.FieldID) float64 {
	v, ok := t.g.Number(f)
	if !ok {
		t.ok = false
	}
	return v
}

func (t *terms) narrative(f evidence.FieldID) evidence.Value {
	v, ok := t.g.Narrative(f)
	if !ok {
		t.ok = false
	}
	return v
}

func (t *terms) undefined(format string, args ...any) {
	t.ok = false
	if t.reason == "" {
		t.reason = fmt.Sprintf(format, args...)
	}
}

func (t *terms) add(name string, raw any, normalized, weight float64) {
	n := round2(clamp(normalized, 0, 100))
	t.parts = append(t.parts, Contribution{
		Parameter:    name,
		RawValue:     raw,
		Normalized:   n,
		Weight:       weight,
		Contribution: round2(n * weight),
	})
}

// absent records a composite sub-component with no evidence. It contributes
// zero and is flagged so an explanation can say so.
func (t *terms) absent(name string, weight float64) {
	t.parts = append(t.parts, Contribution{
		Parameter: name,
		Weight:    weight,
		Absent:    true,
	})
}

// skipped records a composite sub-component whose field was not consulted
// because the base it is normalized against is unusable.
func (t *terms) skipped(name string, weight float64, base evidence.FieldID) {
	t.parts = append(t.parts, Contribution{
		Parameter:   name,
		Weight:      weight,
		Absent:      true,
		MissingBase: base,
	})
}

// FSRCurve maps a student-faculty ratio onto [0,100]: full marks up to 15,
// falling 8 points per unit to 60 at 20, then 3 points per unit to 0.
func FSRCurve(ratio float64) float64 {
	switch {
	case ratio <= 15:
		return 100
	case ratio <= 20:
		return 100 - 8*(ratio-15)
	default:
		return math.Max(0, 60-3*(ratio-20))
	}
}

// SteppedFSR is the banded ratio score used by outcome-based rubrics.
func SteppedFSR(ratio float64) float64 {
	switch {
	case ratio <= 15:
		return 100
	case ratio <= 20:
		return 80
	case ratio <= 25:
		return 60
	default:
		return math.Max(0, 60-(ratio-25)*2)
	}
}

// narrativeRule scores qualitative evidence: full marks when the narrative
// is substantive, half marks for a token mention.
type narrativeRule struct {
	items int
	chars int
}

var (
	// at least three listed items, or a paragraph
	ruleObjectives = narrativeRule{items: 3, chars: 100}
	// any listed item, or a paragraph
	ruleProcess = narrativeRule{items: 1, chars: 100}
	// any listed item; prose alone earns half
	ruleCriterion = narrativeRule{items: 1, chars: -1}
)

func (r narrativeRule) score(v evidence.Value) float64 {
	if items, ok := v.Items(); ok {
		if len(items) >= r.items {
			return 100
		}
		return 50
	}
	if text, ok := v.Text(); ok && r.chars >= 0 && len([]rune(text)) > r.chars {
		return 100
	}
	return 50
}

// per scales a count against the value that earns full marks.
func per(v, full float64) float64 {
	return clamp(v/full*100, 0, 100)
}

func percent(part, whole float64) float64 {
	return part / whole * 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// placement resolves the placement percentage. A reported rate is used as is;
// otherwise it is derived from the placed and eligible counts.
func (t *terms) placement() float64 {
	if t.g.Has(evidence.PlacementRate) {
		return t.number(evidence.PlacementRate)
	}

	placed := t.number(evidence.StudentsPlaced)
	eligible, ok := t.g.Number(evidence.StudentsEligible)
	if !ok {
		t.ok = false
		return 0
	}
	if eligible <= 0 {
		t.undefined("students_eligible must be positive")
		return 0
	}
	return percent(placed, eligible)
}

// positive requires a numeric field that can serve as a denominator.
func (t *terms) positive(f evidence.FieldID) float64 {
	v, ok := t.g.Number(f)
	if !ok {
		t.ok = false
		return 0
	}
	if v <= 0 {
		t.undefined("%s must be positive", f)
	}
	return v
}
