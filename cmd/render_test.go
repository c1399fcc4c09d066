package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/nacre/internal/testutil"
	"github.com/zjrosen/nacre/model"
	"github.com/zjrosen/nacre/registry"
)

// newTestRegistry returns a registry materializing generic models.
func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.BuilderFunc(model.Generic))
	require.NoError(t, err)
	t.Cleanup(reg.Dispose)
	return reg
}

// childNode returns the child of n carrying label.
func childNode(t *testing.T, n *graphNode, label string) *graphNode {
	t.Helper()
	for _, c := range n.children {
		if c.label == label {
			return c.node
		}
	}
	t.Fatalf("no child labeled %q", label)
	return nil
}

// ============================================================================
// Materialization
// ============================================================================

// TestMaterializeGraph_CountsModelsAndSharedRefs walks a scene whose two
// rectangles share one material uuid: five bags resolve to four instances.
func TestMaterializeGraph_CountsModelsAndSharedRefs(t *testing.T) {
	reg := newTestRegistry(t)

	root, stats, err := materializeGraph(reg, testutil.SharedMaterialScene())
	require.NoError(t, err)

	require.Equal(t, 5, stats.Materialized)
	require.Equal(t, 4, stats.Models)
	require.Equal(t, 1, stats.SharedRefs)
	require.Equal(t, 4, reg.Len())
	require.Equal(t, testutil.IdentityScene, root.entity.ModelIdentity())
}

func TestMaterializeGraph_SharedReferenceResolvesToSameInstance(t *testing.T) {
	reg := newTestRegistry(t)

	root, _, err := materializeGraph(reg, testutil.SharedMaterialScene())
	require.NoError(t, err)

	require.Len(t, root.children, 2)
	first := childNode(t, root.children[0].node, "material")
	second := childNode(t, root.children[1].node, "material")

	require.Same(t, first.entity, second.entity)
	require.False(t, first.shared, "first reference renders in full")
	require.True(t, second.shared, "later references collapse to a marker")
}

func TestMaterializeGraph_RootWithoutIdentityFails(t *testing.T) {
	reg := newTestRegistry(t)

	_, _, err := materializeGraph(reg, model.Data{
		model.PropUUID: "9b2f06e6-3f21-4f4a-9a6d-5b7c01d9a2f4",
		"name":         "anonymous",
	})
	require.ErrorIs(t, err, model.ErrNoIdentity)
}

func TestAsModelBag(t *testing.T) {
	bag, ok := asModelBag(model.Data{model.PropIdentity: "shape.Rect"})
	require.True(t, ok)
	require.Equal(t, "shape.Rect", bag[model.PropIdentity])

	_, ok = asModelBag(map[string]any{model.PropIdentity: "shape.Rect"})
	require.True(t, ok, "plain maps qualify too")

	_, ok = asModelBag(model.Data{"name": "no identity"})
	require.False(t, ok)

	_, ok = asModelBag("scalar")
	require.False(t, ok)
}

// ============================================================================
// Rendering
// ============================================================================

func TestRenderGraph_PrintsTreeWithSharedMarker(t *testing.T) {
	reg := newTestRegistry(t)
	root, stats, err := materializeGraph(reg, testutil.SharedMaterialScene())
	require.NoError(t, err)

	var buf bytes.Buffer
	renderGraph(&buf, root)
	renderStats(&buf, stats)
	out := buf.String()

	require.Contains(t, out, testutil.IdentityScene)
	require.Contains(t, out, testutil.IdentityRect)
	require.Contains(t, out, testutil.IdentityMaterial)
	require.Contains(t, out, testutil.UUIDMaterial)
	require.Contains(t, out, "└── ")
	require.Equal(t, 1, strings.Count(out, "(shared)"),
		"only the second material reference carries the marker")
	require.Contains(t, out, "4 models (1 shared references) from 5 bags")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string quoted", "brass", `"brass"`},
		{"whole float compact", 3.0, "3"},
		{"fraction kept", 4.5, "4.5"},
		{"bool", true, "true"},
		{"nil renders as null", nil, "null"},
		{"list compact", []any{1.0, 2.0}, "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

func TestClipValue_TruncatesLongValues(t *testing.T) {
	require.Equal(t, "short", clipValue("short"))

	clipped := clipValue(strings.Repeat("x", 100))
	require.LessOrEqual(t, runewidth.StringWidth(clipped), maxValueWidth)
	require.True(t, strings.HasSuffix(clipped, "…"))
}
