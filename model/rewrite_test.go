package model

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// === Unit Tests: IsUUIDText ===

func TestIsUUIDText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"lowercase v4", "9b2edb85-c1a5-44fd-bd8c-041d97b5f79e", true},
		{"uppercase", "9B2EDB85-C1A5-44FD-BD8C-041D97B5F79E", true},
		{"non-v4 version nibble", "c232ab00-9414-11ec-b3c8-9f6bdeced846", true},
		{"missing hyphens", "9b2edb85c1a544fdbd8c041d97b5f79e", false},
		{"too short", "9b2edb85-c1a5-44fd-bd8c", false},
		{"trailing garbage", "9b2edb85-c1a5-44fd-bd8c-041d97b5f79e!", false},
		{"braced", "{9b2edb85-c1a5-44fd-bd8c-041d97b5f79e}", false},
		{"not hex", "zzzzzzzz-c1a5-44fd-bd8c-041d97b5f79e", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsUUIDText(tt.text))
		})
	}
}

// === Unit Tests: RewriteUUIDs ===

func TestRewriteUUIDs_RewritesKeysAndValues(t *testing.T) {
	oldID := uuid.New().String()
	doc := Data{
		"uuid": oldID,
		oldID:  "keyed entry",
		"refs": []any{oldID, "plain"},
	}

	out, mapping := RewriteUUIDs(doc)
	bag := out.(Data)

	fresh := mapping[oldID]
	require.NotEmpty(t, fresh)
	require.NotEqual(t, oldID, fresh)
	require.True(t, IsUUIDText(fresh))

	require.Equal(t, fresh, bag["uuid"])
	require.Equal(t, "keyed entry", bag[fresh])
	require.Equal(t, []any{fresh, "plain"}, bag["refs"])
	_, oldKeyRemains := bag[oldID]
	require.False(t, oldKeyRemains)
}

func TestRewriteUUIDs_SharedTextSharesReplacement(t *testing.T) {
	shared := uuid.New().String()
	other := uuid.New().String()
	doc := Data{
		"left":  map[string]any{"uuid": shared},
		"right": map[string]any{"uuid": shared},
		"lone":  other,
	}

	out, mapping := RewriteUUIDs(doc)
	bag := out.(Data)

	left := bag["left"].(map[string]any)["uuid"]
	right := bag["right"].(map[string]any)["uuid"]
	require.Equal(t, left, right)
	require.NotEqual(t, left, bag["lone"])
	require.Len(t, mapping, 2)
}

func TestRewriteUUIDs_MatchesAnyCase(t *testing.T) {
	upper := strings.ToUpper(uuid.New().String())
	doc := Data{"ref": upper}

	out, mapping := RewriteUUIDs(doc)
	require.NotEqual(t, upper, out.(Data)["ref"])
	require.Contains(t, mapping, upper)
}

func TestRewriteUUIDs_LeavesOtherTextAlone(t *testing.T) {
	doc := Data{"label": "not-a-uuid", "short": "9b2edb85"}

	out, mapping := RewriteUUIDs(doc)
	require.Empty(t, mapping)
	require.Equal(t, doc, out)
}

func TestRewriteUUIDs_PreservesNumericTypes(t *testing.T) {
	doc := Data{"uuid": uuid.New().String(), "count": 7, "ratio": 2.5}

	out, _ := RewriteUUIDs(doc)
	bag := out.(Data)

	require.Equal(t, 7, bag["count"], "ints stay ints")
	require.Equal(t, 2.5, bag["ratio"])
}

func TestRewriteUUIDs_OutputIsADeepCopy(t *testing.T) {
	doc := Data{"nested": map[string]any{"uuid": uuid.New().String(), "n": 1.0}}

	out, _ := RewriteUUIDs(doc)
	out.(Data)["nested"].(map[string]any)["n"] = 9.0

	require.Equal(t, 1.0, doc["nested"].(map[string]any)["n"])
}

func TestRewriteUUIDs_BareValues(t *testing.T) {
	id := uuid.New().String()

	out, mapping := RewriteUUIDs(id)
	require.Equal(t, mapping[id], out)

	out, mapping = RewriteUUIDs(42)
	require.Equal(t, 42, out)
	require.Empty(t, mapping)
}

// === Property-Based Tests ===

func TestRewriteUUIDs_PropertyBased(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numIDs := rapid.IntRange(1, 6).Draw(t, "numIDs")
		pool := make([]string, numIDs)
		for i := range pool {
			pool[i] = uuid.New().String()
		}

		doc := randomBag(t, pool, 3)
		out, mapping := RewriteUUIDs(doc)

		// every replacement is fresh, uuid-shaped and distinct from its original
		seen := make(map[string]bool)
		for old, repl := range mapping {
			if !IsUUIDText(repl) {
				t.Fatalf("replacement %q is not uuid-shaped", repl)
			}
			if old == repl {
				t.Fatalf("uuid %q was not replaced", old)
			}
			if seen[repl] {
				t.Fatalf("replacement %q assigned twice", repl)
			}
			seen[repl] = true
		}

		// no original uuid text survives anywhere in the output
		if containsOldText(out, mapping) {
			t.Fatalf("rewritten document still contains an original uuid")
		}

		// the document is value-equal modulo the mapping
		if !equalModulo(doc, out, mapping) {
			t.Fatalf("rewritten document does not mirror the original structure")
		}
	})
}

// randomBag generates a nested bag whose strings sometimes come from pool.
func randomBag(t *rapid.T, pool []string, depth int) Data {
	n := rapid.IntRange(1, 4).Draw(t, "keys")
	bag := Data{}
	for i := 0; i < n; i++ {
		key := rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "key")
		if rapid.Bool().Draw(t, "uuidKey") {
			key = pool[rapid.IntRange(0, len(pool)-1).Draw(t, "keyIdx")]
		}
		bag[key] = randomValue(t, pool, depth)
	}
	return bag
}

func randomValue(t *rapid.T, pool []string, depth int) any {
	choice := rapid.IntRange(0, 5).Draw(t, "choice")
	switch {
	case choice == 0 && depth > 0:
		return randomBag(t, pool, depth-1)
	case choice == 1 && depth > 0:
		n := rapid.IntRange(0, 3).Draw(t, "len")
		out := make([]any, n)
		for i := range out {
			out[i] = randomValue(t, pool, depth-1)
		}
		return out
	case choice == 2:
		return pool[rapid.IntRange(0, len(pool)-1).Draw(t, "poolIdx")]
	case choice == 3:
		return rapid.IntRange(-100, 100).Draw(t, "num")
	case choice == 4:
		return rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "str")
	default:
		return rapid.Bool().Draw(t, "flag")
	}
}

// containsOldText reports whether any key of mapping still occurs in value.
func containsOldText(value any, mapping map[string]string) bool {
	switch t := value.(type) {
	case string:
		_, hit := mapping[t]
		return hit
	case Data:
		for k, v := range t {
			if _, hit := mapping[k]; hit {
				return true
			}
			if containsOldText(v, mapping) {
				return true
			}
		}
	case map[string]any:
		return containsOldText(Data(t), mapping)
	case []any:
		for _, v := range t {
			if containsOldText(v, mapping) {
				return true
			}
		}
	}
	return false
}

// equalModulo reports whether b mirrors a with every mapped string replaced.
func equalModulo(a, b any, mapping map[string]string) bool {
	switch ta := a.(type) {
	case string:
		expect := ta
		if repl, ok := mapping[ta]; ok {
			expect = repl
		}
		sb, ok := b.(string)
		return ok && sb == expect
	case Data:
		tb, ok := b.(Data)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, v := range ta {
			key := k
			if repl, ok := mapping[k]; ok {
				key = repl
			}
			bv, present := tb[key]
			if !present || !equalModulo(v, bv, mapping) {
				return false
			}
		}
		return true
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, v := range ta {
			key := k
			if repl, ok := mapping[k]; ok {
				key = repl
			}
			bv, present := tb[key]
			if !present || !equalModulo(v, bv, mapping) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i, v := range ta {
			if !equalModulo(v, tb[i], mapping) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
