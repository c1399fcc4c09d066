package tracing

// Span attribute keys for nacre tracing. These constants define the
// semantic conventions for span attributes across the CLI.
const (
	// Document attributes
	AttrDocPath   = "document.path"
	AttrDocFormat = "document.format"

	// Model attributes
	AttrModelIdentity = "model.identity"
	AttrModelUUID     = "model.uuid"

	// Registry attributes
	AttrRegistryLen = "registry.len"
	AttrSharedCount = "registry.shared"

	// Rewrite attributes
	AttrRewriteCount = "rewrite.count"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// Span names for CLI operations.
const (
	SpanLoad        = "document.load"
	SpanMaterialize = "registry.materialize"
	SpanRender      = "inspect.render"
	SpanClone       = "document.clone"
	SpanDiff        = "document.diff"
)

// Event names for span events.
const (
	EventModelMaterialized = "model.materialized"
	EventDocumentWritten   = "document.written"
)
