package content

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Dates are stored as nanoseconds since the Unix epoch, which bounds the
// range a front-matter date may take.
var (
	minDate = time.Unix(0, math.MinInt64).UTC()
	maxDate = time.Unix(0, math.MaxInt64).UTC()
)

var (
	errNotInteger = errors.New("not an integer")
	errOutOfRange = errors.New("out of range")
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// fields reads typed values out of a raw front-matter mapping. Type
// mismatches are recorded on the collector and leave the target untouched.
type fields struct {
	raw    map[string]any
	prefix string
	issues *issueCollector
}

func (f fields) name(key string) string {
	if f.prefix == "" {
		return key
	}
	return f.prefix + "." + key
}

// lookup returns the value for key; null values count as absent.
func (f fields) lookup(key string) (any, bool) {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (f fields) present(key string) bool {
	_, ok := f.lookup(key)
	return ok
}

func (f fields) str(key string) *string {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		f.issues.mismatch(f.name(key), "string", v)
		return nil
	}
	return &s
}

func (f fields) boolean(key string) *bool {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		f.issues.mismatch(f.name(key), "boolean", v)
		return nil
	}
	return &b
}

func (f fields) datetime(key string) *time.Time {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case *time.Time:
		if d == nil {
			return nil
		}
		t = *d
	case string:
		parsed, ok := parseDate(d)
		if !ok {
			f.issues.add(f.name(key), TypeMismatch, fmt.Sprintf("expected date, received unparseable string %q", d))
			return nil
		}
		t = parsed
	default:
		f.issues.mismatch(f.name(key), "date", v)
		return nil
	}
	if t.Before(minDate) || t.After(maxDate) {
		f.issues.add(f.name(key), ConstraintViolation,
			fmt.Sprintf("must be between %s and %s", minDate.Format("2006-01-02"), maxDate.Format("2006-01-02")))
		return nil
	}
	return &t
}

func (f fields) stringList(key string) ([]string, bool) {
	v, ok := f.lookup(key)
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), true
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				f.issues.mismatch(fmt.Sprintf("%s.%d", f.name(key), i), "string", item)
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		f.issues.mismatch(f.name(key), "array of strings", v)
		return nil, false
	}
}

func (f fields) integer(key string) *int {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	n, err := toInt(v)
	switch {
	case errors.Is(err, errOutOfRange):
		f.issues.add(f.name(key), ConstraintViolation, fmt.Sprintf("must be between %d and %d", math.MinInt, math.MaxInt))
		return nil
	case err != nil:
		f.issues.mismatch(f.name(key), "integer", v)
		return nil
	}
	return &n
}

func (f fields) object(key string) (fields, bool) {
	v, ok := f.lookup(key)
	if !ok {
		return fields{}, false
	}
	m, ok := asMap(v)
	if !ok {
		f.issues.mismatch(f.name(key), "object", v)
		return fields{}, false
	}
	return fields{raw: m, prefix: f.name(key), issues: f.issues}, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// asMap accepts both map[string]any (TOML, JSON) and map[any]any (YAML).
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// toInt converts any integral number that fits in an int.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, errOutOfRange
		}
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint:
		if n > math.MaxInt {
			return 0, errOutOfRange
		}
		return int(n), nil
	case uint32:
		if uint64(n) > math.MaxInt {
			return 0, errOutOfRange
		}
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, errOutOfRange
		}
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	default:
		return 0, errNotInteger
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	// -MinInt is a power of two, so the upper bound is exact as a float.
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, errOutOfRange
	}
	return int(f), nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case time.Time:
		return "date"
	case []any, []string:
		return "array"
	case map[string]any, map[any]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
