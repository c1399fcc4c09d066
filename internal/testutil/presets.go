package testutil

import "github.com/zjrosen/nacre/model"

// Fixed uuids used by the presets. Tests assert against these.
const (
	UUIDScene    = "5e0bd414-8a11-4201-8b2e-c6e4a79cf0de"
	UUIDRectA    = "9b2f06e6-3f21-4f4a-9a6d-5b7c01d9a2f4"
	UUIDRectB    = "1c9e7b2a-6d4f-4c3b-8e2a-7f5d9b1c3e6a"
	UUIDCircle   = "d4f8a1b2-7c3e-4d5f-a6b7-c8d9e0f1a2b3"
	UUIDMaterial = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
)

// WithStandardShapes adds two rectangles and a circle under fixed uuids.
func (b *Builder) WithStandardShapes() *Builder {
	return b.
		WithRect(UUIDRectA, Label("left"), Size(3, 4)).
		WithRect(UUIDRectB, Label("right"), Size(5, 6)).
		WithCircle(UUIDCircle, Label("dot"), Radius(2))
}

// WithSharedMaterial adds two rectangles whose material sub-bags carry the
// same uuid. Copying the document must keep the two references identical.
func (b *Builder) WithSharedMaterial() *Builder {
	return b.
		WithRect(UUIDRectA, MaterialRef(UUIDMaterial, "brass")).
		WithRect(UUIDRectB, MaterialRef(UUIDMaterial, "brass"))
}

// StandardScene returns a complete document with the standard shapes.
func StandardScene() model.Data {
	return NewBuilder().WithSceneUUID(UUIDScene).WithName("standard").WithStandardShapes().Build()
}

// SharedMaterialScene returns a complete document whose two sibling shapes
// share one material uuid.
func SharedMaterialScene() model.Data {
	return NewBuilder().WithSceneUUID(UUIDScene).WithName("workshop").WithSharedMaterial().Build()
}
