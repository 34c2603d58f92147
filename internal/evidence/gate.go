package evidence

import "fmt"

// Gate is the single path by which a formula reads evidence. It never
// substitutes a default: a missing field is reported to the caller and
// remembered, and every consulted record id is attached for traceability.
//
// A Gate serves one KPI evaluation and is not safe for concurrent use.
type Gate struct {
	m       Map
	refs    []string
	seen    map[string]bool
	missing []FieldID
}

// NewGate creates a gate over an evidence map.
func NewGate(m Map) *Gate {
	return &Gate{
		m:    m,
		seen: make(map[string]bool),
	}
}

// Require returns the first record's value for the field. The second result
// is false when the field has no evidence.
func (g *Gate) Require(f FieldID) (Value, bool) {
	records := g.m.fields[f]
	if len(records) == 0 {
		g.markMissing(f)
		return Value{}, false
	}

	rec := records[0]
	if !g.seen[rec.id] {
		g.seen[rec.id] = true
		g.refs = append(g.refs, rec.id)
	}
	return rec.value, true
}

// Has peeks for evidence without consulting it. Formulas with an alternative
// input use it to pick a branch before requiring anything.
func (g *Gate) Has(f FieldID) bool {
	return g.m.Has(f)
}

// Number requires a numeric field.
func (g *Gate) Number(f FieldID) (float64, bool) {
	mustKind(f, KindNumber)
	v, ok := g.Require(f)
	if !ok {
		return 0, false
	}
	n, _ := v.Number()
	return n, true
}

// Narrative requires a text-or-list field.
func (g *Gate) Narrative(f FieldID) (Value, bool) {
	mustKind(f, KindNarrative)
	return g.Require(f)
}

// Flag requires a boolean field.
func (g *Gate) Flag(f FieldID) (bool, bool) {
	mustKind(f, KindFlag)
	v, ok := g.Require(f)
	if !ok {
		return false, false
	}
	b, _ := v.Flag()
	return b, true
}

// Refs returns the consulted record ids in lookup order.
func (g *Gate) Refs() []string {
	out := make([]string, len(g.refs))
	copy(out, g.refs)
	return out
}

// Missing returns the fields that were required but absent.
func (g *Gate) Missing() []FieldID {
	out := make([]FieldID, len(g.missing))
	copy(out, g.missing)
	return out
}

func (g *Gate) markMissing(f FieldID) {
	for _, m := range g.missing {
		if m == f {
			return
		}
	}
	g.missing = append(g.missing, f)
}

func mustKind(f FieldID, want Kind) {
	if got := f.Kind(); got != want {
		panic(fmt.Sprintf("evidence: field %s is %s, not %s", f, got, want))
	}
}
