package render

// RenderOptions carry per-request data that renderers use without mutating
// the page or its schema.
type RenderOptions struct {
	Locale     string
	Translator Translator
	// OnMissing decides what a missing translation renders as. Defaults to
	// the message id, which is the English text.
	OnMissing MissingTranslationHandler
	// Hidden fields are emitted inside the form before the sections, in
	// the order given.
	Hidden []HiddenField
	// Notices are shown above the form.
	Notices []Notice
	// Sections, when set, replace the renderer's own walk over the schema.
	Sections []Section
	// Subset limits which sections and fields are drawn.
	Subset Subset
}
