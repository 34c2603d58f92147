package kpi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Score is an optional KPI value. The zero value is None: a missing value can
// never be read as 0 without an explicit Get.
type Score struct {
	value float64
	ok    bool
}

// Some wraps a computed value.
func Some(v float64) Score {
	return Score{value: v, ok: true}
}

// None is the absent value.
func None() Score {
	return Score{}
}

// Get returns the value and whether it is present.
func (s Score) Get() (float64, bool) {
	return s.value, s.ok
}

// IsNone reports whether the score is absent.
func (s Score) IsNone() bool {
	return !s.ok
}

// Ptr returns the value as a nullable pointer for storage drivers.
func (s Score) Ptr() *float64 {
	if !s.ok {
		return nil
	}
	v := s.value
	return &v
}

// FromPtr converts a nullable column value into a Score.
func FromPtr(p *float64) Score {
	if p == nil {
		return None()
	}
	return Some(*p)
}

func (s Score) String() string {
	if !s.ok {
		return "insufficient data"
	}
	return strconv.FormatFloat(s.value, 'f', 2, 64)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.ok {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
