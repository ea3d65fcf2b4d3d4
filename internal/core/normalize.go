package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	camelWordPattern  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelLowerPattern = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	multiUnderscore   = regexp.MustCompile(`_{2,}`)
)

// NormalizeKey converts a field name to snake_case.
//
//	ThreatOfNewEntrants      -> threat_of_new_entrants
//	"Threat of New Entrants" -> threat_of_new_entrants
//	feedback-loops           -> feedback_loops
//
// NormalizeKey(NormalizeKey(k)) == NormalizeKey(k) for every k.
func NormalizeKey(key string) string {
	s := strings.TrimSpace(key)
	s = camelWordPattern.ReplaceAllString(s, "${1}_${2}")
	s = camelLowerPattern.ReplaceAllString(s, "${1}_${2}")
	s = nonWordPattern.ReplaceAllString(s, "_")
	s = strings.ToLower(s)
	s = multiUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NormalizeRecord normalizes every key at every depth and canonicalizes
// values to string, []any or map[string]any. When two source keys
// normalize to the same name the one that sorts first wins.
func NormalizeRecord(m map[string]any) Record {
	return Record(normalizeMap(m))
}

func normalizeMap(m map[string]any) map[string]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	for _, k := range keys {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		if _, taken := out[nk]; taken {
			continue
		}
		out[nk] = normalizeValue(m[k])
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any:
		return normalizeMap(val)
	case Record:
		return normalizeMap(val)
	case map[any]any:
		converted := make(map[string]any, len(val))
		for k, inner := range val {
			converted[fmt.Sprint(k)] = inner
		}
		return normalizeMap(converted)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = normalizeValue(item)
		}
		return items
	case []string:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = item
		}
		return items
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ValueText flattens a record value into a single line of text.
func ValueText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := ValueText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+ValueText(val[k]))
		}
		return strings.Join(parts, "; ")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
