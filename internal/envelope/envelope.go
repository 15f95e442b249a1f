// Package envelope defines the result wrapper returned for every tool call.
package envelope

import "errors"

// Kind is the type of a content item.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ErrEmpty is returned by Validate when a result has no content.
var ErrEmpty = errors.New("envelope has no content")

// Item is one content entry. Text items set Text; image items set Data
// (base64) and MIMEType.
type Item struct {
	Type     Kind   `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

// Result is the response envelope for one call.
type Result struct {
	Content           []Item `json:"content"`
	StructuredContent any    `json:"structuredContent,omitempty"`
}

// Mirror is the structuredContent shape of text tools.
type Mirror struct {
	Content []Item `json:"content"`
}

// Text returns a single text item result with its structured mirror.
func Text(s string) Result {
	items := []Item{{Type: KindText, Text: s}}
	return Result{Content: items, StructuredContent: Mirror{Content: items}}
}

// Image returns a single image item result. data must already be base64.
func Image(data, mimeType string) Result {
	return Result{Content: []Item{{Type: KindImage, Data: data, MIMEType: mimeType}}}
}

// ErrorText renders err as a text result without a structured mirror.
func ErrorText(err error) Result {
	return Result{Content: []Item{{Type: KindText, Text: "Error: " + err.Error()}}}
}

// WithMirror sets the structured mirror when none is present.
func (r Result) WithMirror() Result {
	if r.StructuredContent == nil {
		r.StructuredContent = Mirror{Content: r.Content}
	}
	return r
}

// Validate checks that the result has content and every item is a known kind.
func (r Result) Validate() error {
	if len(r.Content) == 0 {
		return ErrEmpty
	}
	for _, it := range r.Content {
		switch it.Type {
		case KindText:
		case KindImage:
			if it.Data == "" || it.MIMEType == "" {
				return errors.New("image item without data or mime type")
			}
		default:
			return errors.New("unknown content type " + string(it.Type))
		}
	}
	return nil
}
