package testutil

import "github.com/zjrosen/nacre/model"

// shapeData holds all data for a shape bag to be assembled.
type shapeData struct {
	identity string
	uuid     string
	label    string
	width    *float64
	height   *float64
	radius   *float64
	material model.Data
	extra    model.Data
}

// defaultShape returns a shapeData with sensible defaults.
func defaultShape(identity, uuid string) shapeData {
	return shapeData{
		identity: identity,
		uuid:     uuid,
		label:    uuid, // Default label is the uuid
	}
}

// bag assembles the shape property bag.
func (s shapeData) bag() model.Data {
	bag := model.Data{
		model.PropIdentity: s.identity,
		model.PropUUID:     s.uuid,
		"label":            s.label,
	}
	if s.width != nil {
		bag["width"] = *s.width
	}
	if s.height != nil {
		bag["height"] = *s.height
	}
	if s.radius != nil {
		bag["radius"] = *s.radius
	}
	if s.material != nil {
		bag["material"] = s.material
	}
	for k, v := range s.extra {
		bag[k] = v
	}
	return bag
}

// ShapeOption configures a shape during builder setup.
type ShapeOption func(*shapeData)

// Label sets the shape label.
func Label(label string) ShapeOption {
	return func(s *shapeData) { s.label = label }
}

// Size sets the rectangle dimensions.
func Size(width, height float64) ShapeOption {
	return func(s *shapeData) {
		s.width = &width
		s.height = &height
	}
}

// Radius sets the circle radius.
func Radius(r float64) ShapeOption {
	return func(s *shapeData) { s.radius = &r }
}

// MaterialRef attaches a material sub-bag carrying its own uuid. Shapes
// given the same material uuid share one reference target.
func MaterialRef(uuid, name string) ShapeOption {
	return func(s *shapeData) {
		s.material = model.Data{
			model.PropIdentity: IdentityMaterial,
			model.PropUUID:     uuid,
			"name":             name,
		}
	}
}

// Prop sets an arbitrary extra property on the shape bag.
func Prop(key string, value any) ShapeOption {
	return func(s *shapeData) {
		if s.extra == nil {
			s.extra = model.Data{}
		}
		s.extra[key] = value
	}
}
