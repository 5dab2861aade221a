// Package core provides the session contract, locators, and error model shared
// by the translator-runner packages.
package core

// Attachment represents an artifact captured during a run
type Attachment struct {
	Name        string `json:"name"`        // Checkpoint name: 02_language_ob, error_home, ...
	ContentType string `json:"contentType"` // MIME type: image/png, application/json
	Path        string `json:"path"`        // File path relative to the run directory
}

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeJSON = "application/json"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(name, path string) Attachment {
	return Attachment{
		Name:        name,
		ContentType: ContentTypePNG,
		Path:        path,
	}
}
