package model

import (
	"regexp"

	"github.com/google/uuid"
)

// uuidShape matches canonical 8-4-4-4-12 uuid text, any case, any version.
var uuidShape = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsUUIDText reports whether s is uuid-shaped text.
func IsUUIDText(s string) bool {
	return uuidShape.MatchString(s)
}

// RewriteUUIDs deep-copies value with every uuid-shaped string replaced by a
// fresh lowercase v4 uuid. Map keys and string values are rewritten alike,
// and one original text always maps to one replacement, so cross-references
// inside the value stay aligned. The returned map records old to new.
// Containers are rebuilt; every other value is shared as-is, which keeps
// numbers at their original types.
func RewriteUUIDs(value any) (any, map[string]string) {
	mapping := make(map[string]string)
	collectUUIDText(value, mapping)
	for old := range mapping {
		mapping[old] = uuid.New().String()
	}
	return rewriteValue(value, mapping), mapping
}

func collectUUIDText(value any, into map[string]string) {
	switch t := value.(type) {
	case string:
		if IsUUIDText(t) {
			into[t] = ""
		}
	case Data:
		for k, v := range t {
			if IsUUIDText(k) {
				into[k] = ""
			}
			collectUUIDText(v, into)
		}
	case map[string]any:
		collectUUIDText(Data(t), into)
	case []any:
		for _, v := range t {
			collectUUIDText(v, into)
		}
	}
}

func rewriteValue(value any, mapping map[string]string) any {
	switch t := value.(type) {
	case string:
		if repl, ok := mapping[t]; ok {
			return repl
		}
		return t
	case Data:
		out := make(Data, len(t))
		for k, v := range t {
			key := k
			if repl, ok := mapping[k]; ok {
				key = repl
			}
			out[key] = rewriteValue(v, mapping)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			key := k
			if repl, ok := mapping[k]; ok {
				key = repl
			}
			out[key] = rewriteValue(v, mapping)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = rewriteValue(v, mapping)
		}
		return out
	}
	return value
}
