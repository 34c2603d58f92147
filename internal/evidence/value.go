package evidence

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

var placeholders = []string{"N/A", "TBD", "TODO", "PLACEHOLDER", "DUMMY", "TEST"}

// errPlaceholder marks a raw value that carries no evidence.
var errPlaceholder = errors.New("placeholder value")

// Value is a typed evidence value. Exactly one form is populated, chosen by
// the field's Kind; narrative fields hold either text or a list of items.
type Value struct {
	kind  Kind
	num   float64
	text  string
	items []string
	flag  bool
}

// NumberValue creates a numeric value.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// TextValue creates a narrative value in text form.
func TextValue(s string) Value {
	return Value{kind: KindNarrative, text: s}
}

// ListValue creates a narrative value in list form.
func ListValue(items ...string) Value {
	return Value{kind: KindNarrative, items: slices.Clone(items)}
}

// FlagValue creates a boolean value.
func FlagValue(b bool) Value {
	return Value{kind: KindFlag, flag: b}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Number returns the numeric form.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the text form of a narrative value.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindNarrative && v.items == nil
}

// Items returns the list form of a narrative value.
func (v Value) Items() ([]string, bool) {
	if v.kind != KindNarrative || v.items == nil {
		return nil, false
	}
	return slices.Clone(v.items), true
}

// Flag returns the boolean form.
func (v Value) Flag() (bool, bool) {
	return v.flag, v.kind == KindFlag
}

// Raw returns the value in the shape it would take in a JSON document.
func (v Value) Raw() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindFlag:
		return v.flag
	case KindNarrative:
		if v.items != nil {
			return slices.Clone(v.items)
		}
		return v.text
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindFlag:
		return strconv.FormatBool(v.flag)
	case KindNarrative:
		if v.items != nil {
			return strings.Join(v.items, "; ")
		}
		return v.text
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// parseValue coerces a decoded JSON or YAML value into the field's kind.
// errPlaceholder signals a value that is not evidence at all.
func parseValue(kind Kind, raw any) (Value, error) {
	if raw == nil {
		return Value{}, errPlaceholder
	}
	if s, ok := raw.(string); ok && isPlaceholder(s) {
		return Value{}, errPlaceholder
	}

	switch kind {
	case KindNumber:
		n, err := parseNumber(raw)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	case KindNarrative:
		return parseNarrative(raw)
	case KindFlag:
		b, err := parseFlag(raw)
		if err != nil {
			return Value{}, err
		}
		return FlagValue(b), nil
	}
	return Value{}, fmt.Errorf("unsupported kind %q", kind)
}

func isPlaceholder(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, p := range placeholders {
		if strings.EqualFold(s, p) {
			return true
		}
	}
	return false
}

func parseNumber(raw any) (float64, error) {
	var n float64

	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		n = f
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("number is not finite")
	}
	return n, nil
}

func parseNarrative(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return TextValue(strings.TrimSpace(v)), nil
	case []any:
		items := make([]string, 0, len(v))
		for i, item := range v {
			s, err := scalarString(item)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			if !isPlaceholder(s) {
				items = append(items, s)
			}
		}
		if len(items) == 0 {
			return Value{}, errPlaceholder
		}
		return ListValue(items...), nil
	case []string:
		return parseNarrative(toAnySlice(v))
	case map[string]any:
		if len(v) == 0 {
			return Value{}, errPlaceholder
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		items := make([]string, 0, len(keys))
		for _, k := range keys {
			s, err := scalarString(v[k])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			items = append(items, k+": "+s)
		}
		return ListValue(items...), nil
	}
	return Value{}, fmt.Errorf("expected text or list, got %T", raw)
}

func parseFlag(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "available", "1":
			return true, nil
		case "false", "no", "n", "unavailable", "0":
			return false, nil
		}
		return false, fmt.Errorf("invalid flag %q", v)
	}
	return false, fmt.Errorf("expected flag, got %T", raw)
}

func scalarString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64, float32, int, int64, uint64, bool, json.Number:
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("expected scalar, got %T", raw)
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
