// Package ingest turns layout-extraction output into figure records ready for
// embedding.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Document is one ingest JSON file: a source document and the figures found
// in it.
type Document struct {
	Name  string `json:"name"`
	UID   string `json:"uid"`
	Items []Item `json:"imgs"`
}

// Item is one figure of a document.
type Item struct {
	Name             string    `json:"name"`
	Page             int       `json:"page"`
	Coordinate       []float64 `json:"coordinate"`
	FigureTitle      string    `json:"figure_title"`
	SurroundingTexts []string  `json:"surrounding_texts"`
}

// Source locates one document on disk.
type Source struct {
	// MetadataPath is the ingest JSON file.
	MetadataPath string `json:"metadata_path"`

	// ImagesDir holds the figure images named after each item.
	ImagesDir string `json:"images_dir"`

	// DocName overrides the document name found in the JSON.
	DocName string `json:"doc_name,omitempty"`
}

// uidNamespace scopes the name-based uids generated for documents without one.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/papercomputeco/figsearch"))

// LoadDocument parses the ingest JSON at path.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidDocument, path, err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidDocument, path, err)
	}
	return doc, nil
}

// ResolvedUID returns the document uid, or a deterministic name-based uid
// when the document has none.
func (d *Document) ResolvedUID() string {
	if d.UID != "" {
		return d.UID
	}
	return uuid.NewSHA1(uidNamespace, []byte(d.Name)).String()
}
