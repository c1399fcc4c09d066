package testutil

import (
	"github.com/google/uuid"

	"github.com/zjrosen/nacre/model"
)

// Builder accumulates shape bags and assembles a scene document.
type Builder struct {
	doc model.Data
}

// NewBuilder creates a builder seeded with an empty scene.
func NewBuilder() *Builder {
	return &Builder{doc: model.Data{
		model.PropIdentity: IdentityScene,
		model.PropUUID:     uuid.New().String(),
		"name":             "scene",
		"shapes":           []any{},
	}}
}

// WithName sets the scene name.
func (b *Builder) WithName(name string) *Builder {
	b.doc["name"] = name
	return b
}

// WithSceneUUID sets the scene uuid.
func (b *Builder) WithSceneUUID(id string) *Builder {
	b.doc[model.PropUUID] = id
	return b
}

// WithRect adds a rectangle with optional configuration.
func (b *Builder) WithRect(id string, opts ...ShapeOption) *Builder {
	shape := defaultShape(IdentityRect, id)
	for _, opt := range opts {
		opt(&shape)
	}
	return b.appendShape(shape.bag())
}

// WithCircle adds a circle with optional configuration.
func (b *Builder) WithCircle(id string, opts ...ShapeOption) *Builder {
	shape := defaultShape(IdentityCircle, id)
	for _, opt := range opts {
		opt(&shape)
	}
	return b.appendShape(shape.bag())
}

// WithShapeBag adds a pre-assembled shape bag verbatim. Useful for malformed
// bags the option funcs cannot produce.
func (b *Builder) WithShapeBag(bag model.Data) *Builder {
	return b.appendShape(bag)
}

func (b *Builder) appendShape(bag model.Data) *Builder {
	shapes, _ := b.doc["shapes"].([]any)
	b.doc["shapes"] = append(shapes, bag)
	return b
}

// Build returns an independent deep copy of the assembled document, so one
// builder can seed several tests. Shapes appear in insertion order.
func (b *Builder) Build() model.Data {
	return b.doc.Clone()
}
