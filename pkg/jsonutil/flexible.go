package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleString converts a json.RawMessage to a string, handling cases where
// LLMs return numbers or booleans instead of strings. Returns empty string for null/empty.
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Try string first
	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	// Try number
	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	// Try boolean
	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Fallback: return raw string representation
	return string(raw)
}

// FlexibleInt converts a json.RawMessage to an int, handling LLMs that return
// numbers as quoted strings ("5") or as floats (5.0). Returns 0 when the
// value is absent or not a number in any recognizable form.
func FlexibleInt(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return int(numVal)
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(strVal)); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64); err == nil {
			return int(f)
		}
	}

	return 0
}

// FlexibleStringSlice converts a json.RawMessage to a []string. A bare string
// becomes a single-element slice; array elements that are not strings are
// converted with FlexibleString. Returns nil for null/empty.
func FlexibleStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := FlexibleString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	if s := FlexibleString(raw); s != "" {
		return []string{s}
	}
	return nil
}
