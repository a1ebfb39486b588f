package templating

import "fmt"

// CompilationError represents a template compilation failure.
// This error occurs during engine initialization when a template contains
// malformed tags or unbalanced blocks.
type CompilationError struct {
	// TemplateName is the name of the template that failed to compile
	TemplateName string

	// TemplateSnippet contains the first 200 characters of the template
	TemplateSnippet string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to compile template '%s': %v", e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// RenderError represents a template rendering failure.
// This error occurs when a compiled template fails during execution, either
// from a helper error or a failed barrier.
type RenderError struct {
	// TemplateName is the name of the template that failed to render
	TemplateName string

	// Cause is the underlying rendering error
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render template '%s': %v", e.TemplateName, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// TemplateNotFoundError represents a request for a non-existent template.
type TemplateNotFoundError struct {
	// TemplateName is the name of the requested template
	TemplateName string

	// AvailableTemplates lists all available template names
	AvailableTemplates []string
}

// Error implements the error interface.
func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template '%s' not found", e.TemplateName)
}

// HelperNotFoundError represents a tag referencing a name that is neither a
// registered helper nor a context variable.
type HelperNotFoundError struct {
	// HelperName is the unresolved tag name
	HelperName string
}

// Error implements the error interface.
func (e *HelperNotFoundError) Error() string {
	return fmt.Sprintf("unknown helper or variable '%s'", e.HelperName)
}

// ConfigurationError represents a helper invoked with invalid arguments,
// such as a non-integer iteration count or a missing accumulator name.
// Configuration errors are fatal to the render subtree that raised them.
type ConfigurationError struct {
	// Helper is the name of the misconfigured helper
	Helper string

	// Reason describes what was wrong with the invocation
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("helper '%s': %s", e.Helper, e.Reason)
}

// BarrierError represents an {{#after}} barrier that observed at least one
// failed asynchronous operation in its snapshot. The first failure wins;
// remaining failures are not individually reported.
type BarrierError struct {
	// Waited is the number of operations in the barrier's snapshot
	Waited int

	// Cause is the first failed operation's error
	Cause error
}

// Error implements the error interface.
func (e *BarrierError) Error() string {
	return fmt.Sprintf("barrier failed after waiting on %d operation(s): %v", e.Waited, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *BarrierError) Unwrap() error {
	return e.Cause
}

// Helper functions for creating errors with actionable context

// NewCompilationError creates a CompilationError for a template compilation failure.
func NewCompilationError(templateName, templateContent string, cause error) *CompilationError {
	snippet := templateContent
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}

	return &CompilationError{
		TemplateName:    templateName,
		TemplateSnippet: snippet,
		Cause:           cause,
	}
}

// NewRenderError creates a RenderError for a template rendering failure.
func NewRenderError(templateName string, cause error) *RenderError {
	return &RenderError{
		TemplateName: templateName,
		Cause:        cause,
	}
}

// NewTemplateNotFoundError creates a TemplateNotFoundError with the list of available templates.
func NewTemplateNotFoundError(templateName string, availableTemplates []string) *TemplateNotFoundError {
	return &TemplateNotFoundError{
		TemplateName:       templateName,
		AvailableTemplates: availableTemplates,
	}
}

// NewHelperNotFoundError creates a HelperNotFoundError for an unresolvable tag name.
func NewHelperNotFoundError(helperName string) *HelperNotFoundError {
	return &HelperNotFoundError{HelperName: helperName}
}

// NewConfigurationError creates a ConfigurationError for an invalid helper invocation.
func NewConfigurationError(helper, reason string) *ConfigurationError {
	return &ConfigurationError{Helper: helper, Reason: reason}
}

// NewBarrierError creates a BarrierError wrapping the first failed operation.
func NewBarrierError(waited int, cause error) *BarrierError {
	return &BarrierError{Waited: waited, Cause: cause}
}
