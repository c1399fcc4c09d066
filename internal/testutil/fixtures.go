// Package testutil provides shape fixtures and scene-document builders
// shared by package tests.
package testutil

import (
	"errors"

	"github.com/zjrosen/nacre/model"
)

// Identity tags for the standard fixtures.
const (
	IdentityRect     = "shape.Rect"
	IdentityCircle   = "shape.Circle"
	IdentityMaterial = "shape.Material"
	IdentityScene    = "scene.Scene"
)

// Rect is a rectangle entity over a property bag.
type Rect struct {
	*model.Model
}

// Width returns the rectangle width.
func (r *Rect) Width() float64 { return r.GetFloat("width") }

// Height returns the rectangle height.
func (r *Rect) Height() float64 { return r.GetFloat("height") }

// Area returns width times height.
func (r *Rect) Area() float64 { return r.Width() * r.Height() }

// RectDescriptor declares the rectangle type: unit defaults, non-negative
// dimensions, concrete type preserved through Copy.
func RectDescriptor() model.Descriptor {
	desc := model.Descriptor{
		Identity: IdentityRect,
		Defaults: func() model.Data {
			return model.Data{"width": 1.0, "height": 1.0}
		},
		Validate: func(d model.Data) error {
			if w, ok := d["width"].(float64); ok && w < 0 {
				return errors.New("width must not be negative")
			}
			if h, ok := d["height"].(float64); ok && h < 0 {
				return errors.New("height must not be negative")
			}
			return nil
		},
	}
	desc.Construct = func(data model.Data) (model.Entity, error) {
		m, err := model.New(desc, data)
		if err != nil {
			return nil, err
		}
		return &Rect{Model: m}, nil
	}
	return desc
}

// NewRect constructs a rectangle from data.
func NewRect(data model.Data) (*Rect, error) {
	e, err := RectDescriptor().Construct(data)
	if err != nil {
		return nil, err
	}
	return e.(*Rect), nil
}

// Circle is a circle entity over a property bag.
type Circle struct {
	*model.Model
}

// Radius returns the circle radius.
func (c *Circle) Radius() float64 { return c.GetFloat("radius") }

// CircleDescriptor declares the circle type.
func CircleDescriptor() model.Descriptor {
	desc := model.Descriptor{
		Identity: IdentityCircle,
		Defaults: func() model.Data {
			return model.Data{"radius": 1.0}
		},
		Validate: func(d model.Data) error {
			if r, ok := d["radius"].(float64); ok && r < 0 {
				return errors.New("radius must not be negative")
			}
			return nil
		},
	}
	desc.Construct = func(data model.Data) (model.Entity, error) {
		m, err := model.New(desc, data)
		if err != nil {
			return nil, err
		}
		return &Circle{Model: m}, nil
	}
	return desc
}

// NewCircle constructs a circle from data.
func NewCircle(data model.Data) (*Circle, error) {
	e, err := CircleDescriptor().Construct(data)
	if err != nil {
		return nil, err
	}
	return e.(*Circle), nil
}

// Material is a minimal nested entity shapes reference by uuid.
type Material struct {
	*model.Model
}

// Name returns the material name.
func (m *Material) Name() string { return m.GetString("name") }

// MaterialDescriptor declares the material type.
func MaterialDescriptor() model.Descriptor {
	desc := model.Descriptor{Identity: IdentityMaterial}
	desc.Construct = func(data model.Data) (model.Entity, error) {
		m, err := model.New(desc, data)
		if err != nil {
			return nil, err
		}
		return &Material{Model: m}, nil
	}
	return desc
}

// Scene is a container entity holding a list of shape bags.
type Scene struct {
	*model.Model
}

// Name returns the scene name.
func (s *Scene) Name() string { return s.GetString("name") }

// Shapes returns the nested shape bags in document order.
func (s *Scene) Shapes() []model.Data {
	raw, _ := s.Get("shapes").([]any)
	out := make([]model.Data, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case model.Data:
			out = append(out, t)
		case map[string]any:
			out = append(out, model.Data(t))
		}
	}
	return out
}

// SceneDescriptor declares the scene container type.
func SceneDescriptor() model.Descriptor {
	desc := model.Descriptor{
		Identity: IdentityScene,
		Defaults: func() model.Data {
			return model.Data{"name": "untitled", "shapes": []any{}}
		},
	}
	desc.Construct = func(data model.Data) (model.Entity, error) {
		m, err := model.New(desc, data)
		if err != nil {
			return nil, err
		}
		return &Scene{Model: m}, nil
	}
	return desc
}

// NewScene constructs a scene from data.
func NewScene(data model.Data) (*Scene, error) {
	e, err := SceneDescriptor().Construct(data)
	if err != nil {
		return nil, err
	}
	return e.(*Scene), nil
}

// Constructors returns the identity table for the standard fixtures.
func Constructors() map[string]model.Constructor {
	return map[string]model.Constructor{
		IdentityRect:     RectDescriptor().Construct,
		IdentityCircle:   CircleDescriptor().Construct,
		IdentityMaterial: MaterialDescriptor().Construct,
		IdentityScene:    SceneDescriptor().Construct,
	}
}
