package document

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// DefaultTitle is substituted when a document has no title.
const DefaultTitle = "Untitled"

// Document is the raw ingestion input (immutable value object).
type Document struct {
	id      string
	title   string
	content string
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title: optional, defaults to "Untitled".
// Content: non-empty after trimming, max 160KB.
func New(id, title, content string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}

	return Document{id: id, title: title, content: content}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, title, content string) Document {
	return Document{id: id, title: title, content: content}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Title returns the document title.
func (d Document) Title() string { return d.title }

// Content returns the document text content.
func (d Document) Content() string { return d.content }
