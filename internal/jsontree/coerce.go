package jsontree

import (
	"strconv"
	"strings"
)

// The upstream has used several key spellings for the same field over the
// years. Lookups therefore take an ordered alias list and return the first
// key that is present; parse failures coerce to the zero value rather than
// erroring, since a single malformed field must never abort a whole payload.

// Int returns the first alias present in obj coerced to int, or 0.
func Int(obj map[string]any, aliases ...string) int {
	for _, key := range aliases {
		if v, ok := obj[key]; ok {
			return toInt(v)
		}
	}
	return 0
}

// String returns the first alias present in obj coerced to a trimmed string.
func String(obj map[string]any, aliases ...string) string {
	for _, key := range aliases {
		if v, ok := obj[key]; ok {
			if s := toString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// Bool returns the first alias present in obj coerced to bool. The feed
// encodes booleans as true/"true"/"T"/1 depending on the endpoint.
func Bool(obj map[string]any, aliases ...string) bool {
	for _, key := range aliases {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case bool:
			return val
		case string:
			s := strings.ToLower(strings.TrimSpace(val))
			return s == "true" || s == "t" || s == "y" || s == "1"
		case float64:
			return val != 0
		}
	}
	return false
}

// Has reports whether any alias is present in obj, regardless of value.
func Has(obj map[string]any, aliases ...string) bool {
	for _, key := range aliases {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

// Minutes parses a playing-time value that may arrive as "MM:SS", "MM", or a
// bare number, returning fractional minutes.
func Minutes(obj map[string]any, aliases ...string) float64 {
	for _, key := range aliases {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			return val
		case string:
			s := strings.TrimSpace(val)
			if s == "" {
				return 0
			}
			if mm, ss, found := strings.Cut(s, ":"); found {
				m, err1 := strconv.Atoi(strings.TrimSpace(mm))
				sec, err2 := strconv.Atoi(strings.TrimSpace(ss))
				if err1 != nil || err2 != nil {
					return 0
				}
				return float64(m) + float64(sec)/60
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0
			}
			return f
		}
	}
	return 0
}

func toInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		s := strings.TrimSpace(val)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		// Some endpoints report counting stats as "12.0".
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
