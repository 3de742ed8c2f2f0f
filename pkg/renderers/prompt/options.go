package prompt

import "github.com/goliatone/go-settings/pkg/validation"

// OutputFormat controls how collected answers are serialized.
type OutputFormat string

const (
	// OutputFormatForm emits the application/x-www-form-urlencoded body a
	// browser would post for the same answers.
	OutputFormatForm OutputFormat = "form"
	// OutputFormatJSON emits option names mapped to strings or string lists.
	OutputFormatJSON OutputFormat = "json"
)

// Option configures the prompt renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithCatalogue resolves field callbacks so invalid answers are asked
// again instead of being rejected on submit.
func WithCatalogue(catalogue *validation.Catalogue) Option {
	return func(r *Renderer) {
		r.catalogue = catalogue
	}
}
