package factory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/nacre/internal/testutil"
	"github.com/zjrosen/nacre/model"
)

func shapeFactory(t *testing.T, opts ...Option) *Factory {
	t.Helper()
	f, err := New(Map(testutil.Constructors()), opts...)
	require.NoError(t, err)
	return f
}

// === Construction ===

func TestNew_RequiresALookup(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilLookup)

	// An empty table is a usable lookup; every identity just misses.
	f, err := New(Map(nil))
	require.NoError(t, err)
	require.False(t, f.IsKnown(testutil.IdentityRect))
}

func TestLookupFunc_AdaptsAFunction(t *testing.T) {
	calls := 0
	f, err := New(LookupFunc(func(identity string) (model.Constructor, bool) {
		calls++
		if identity == testutil.IdentityRect {
			return testutil.RectDescriptor().Construct, true
		}
		return nil, false
	}))
	require.NoError(t, err)

	require.True(t, f.IsKnown(testutil.IdentityRect))
	require.False(t, f.IsKnown("unknown.Thing"))
	require.Equal(t, 2, calls)
}

// === Identity extraction ===

func TestFactory_IdentityOf(t *testing.T) {
	f := shapeFactory(t)

	_, err := f.IdentityOf(nil)
	require.ErrorIs(t, err, ErrNilData)

	identity, err := f.IdentityOf(model.Data{})
	require.NoError(t, err)
	require.Empty(t, identity)

	identity, err = f.IdentityOf(model.Data{model.PropIdentity: 42})
	require.NoError(t, err)
	require.Empty(t, identity, "non-string tags are unusable, not errors")

	identity, err = f.IdentityOf(model.Data{model.PropIdentity: testutil.IdentityRect})
	require.NoError(t, err)
	require.Equal(t, testutil.IdentityRect, identity)
}

func TestFactory_IdentityOf_CustomAttribute(t *testing.T) {
	f := shapeFactory(t, WithIdentityAttribute("kind"))

	identity, err := f.IdentityOf(model.Data{"kind": testutil.IdentityCircle})
	require.NoError(t, err)
	require.Equal(t, testutil.IdentityCircle, identity)

	identity, err = f.IdentityOf(model.Data{model.PropIdentity: testutil.IdentityRect})
	require.NoError(t, err)
	require.Empty(t, identity, "default attribute is ignored")
}

func TestFactory_IdentityOf_CustomFunc(t *testing.T) {
	f := shapeFactory(t, WithIdentityFunc(func(d model.Data) (string, bool) {
		s, ok := d["type"].(string)
		if !ok {
			return "", false
		}
		return "shape." + strings.ToUpper(s[:1]) + s[1:], true
	}))

	identity, err := f.IdentityOf(model.Data{"type": "rect"})
	require.NoError(t, err)
	require.Equal(t, testutil.IdentityRect, identity)

	identity, err = f.IdentityOf(model.Data{model.PropIdentity: testutil.IdentityRect})
	require.NoError(t, err)
	require.Empty(t, identity, "func replaces attribute extraction entirely")
}

func TestFactory_RequireIdentityOf(t *testing.T) {
	f := shapeFactory(t)

	_, err := f.RequireIdentityOf(model.Data{})
	require.ErrorIs(t, err, ErrNoIdentity)

	_, err = f.RequireIdentityOf(nil)
	require.ErrorIs(t, err, ErrNilData)

	identity, err := f.RequireIdentityOf(model.Data{model.PropIdentity: testutil.IdentityRect})
	require.NoError(t, err)
	require.Equal(t, testutil.IdentityRect, identity)
}

func TestFactory_HasIdentityAndIsKnownAreDistinct(t *testing.T) {
	f := shapeFactory(t)

	// A bag can name an identity nobody registered.
	require.True(t, f.HasIdentity(model.Data{model.PropIdentity: "unknown.Thing"}))
	require.False(t, f.IsKnown("unknown.Thing"))

	require.False(t, f.HasIdentity(model.Data{}))
	require.False(t, f.HasIdentity(nil))
	require.True(t, f.IsKnown(testutil.IdentityRect))
}

// === Constructor resolution ===

func TestFactory_Constructor(t *testing.T) {
	f := shapeFactory(t)

	ctor, ok := f.Constructor(testutil.IdentityRect)
	require.True(t, ok)
	require.NotNil(t, ctor)

	_, ok = f.Constructor("unknown.Thing")
	require.False(t, ok)
}

func TestFactory_RequireConstructor_UnknownIdentity(t *testing.T) {
	f := shapeFactory(t)

	_, err := f.RequireConstructor("unknown.Thing")
	var unknown *UnknownIdentityError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "unknown.Thing", unknown.Identity)
	require.EqualError(t, err, `unknown identity "unknown.Thing"`)
}

// === Instantiation ===

func TestFactory_NewInstance_ReturnsConcreteType(t *testing.T) {
	f := shapeFactory(t)

	entity, err := f.NewInstance(testutil.IdentityRect, model.Data{"width": 3.0})
	require.NoError(t, err)

	rect, ok := entity.(*testutil.Rect)
	require.True(t, ok)
	require.Equal(t, 3.0, rect.Width())
	require.Equal(t, 1.0, rect.Height(), "descriptor default applies")

	_, err = f.NewInstance("unknown.Thing", nil)
	var unknown *UnknownIdentityError
	require.ErrorAs(t, err, &unknown)
}

func TestFactory_NewInstance_PropagatesConstructorError(t *testing.T) {
	f := shapeFactory(t)

	_, err := f.NewInstance(testutil.IdentityRect, model.Data{"width": -3.0})
	require.ErrorContains(t, err, "construct shape.Rect")
	require.ErrorContains(t, err, "width must not be negative")
}

func TestFactory_NewInstance_GuardsNilEntity(t *testing.T) {
	f, err := New(Map{"broken.Thing": func(model.Data) (model.Entity, error) {
		return nil, nil
	}})
	require.NoError(t, err)

	_, err = f.NewInstance("broken.Thing", nil)
	require.ErrorContains(t, err, "returned no entity")
}

func TestFactory_NewInstanceFor(t *testing.T) {
	f := shapeFactory(t)

	entity, err := f.NewInstanceFor(model.Data{
		model.PropIdentity: testutil.IdentityCircle,
		"radius":           2.5,
	})
	require.NoError(t, err)
	circle, ok := entity.(*testutil.Circle)
	require.True(t, ok)
	require.Equal(t, 2.5, circle.Radius())

	_, err = f.NewInstanceFor(model.Data{"radius": 2.5})
	require.ErrorIs(t, err, ErrNoIdentity)

	_, err = f.NewInstanceFor(nil)
	require.ErrorIs(t, err, ErrNilData)
}
