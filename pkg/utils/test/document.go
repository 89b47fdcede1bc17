package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/papercomputeco/figsearch/pkg/ingest"
)

// WriteDocument writes doc as metadata.json under dir, plus a small image
// file for every item name listed in images. It returns the source to ingest.
func WriteDocument(dir string, doc ingest.Document, images ...string) (ingest.Source, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ingest.Source{}, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return ingest.Source{}, err
	}
	path := filepath.Join(dir, "metadata.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ingest.Source{}, err
	}
	for _, name := range images {
		img := ingest.ImagePath(dir, name)
		if err := os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"+name), 0o644); err != nil {
			return ingest.Source{}, err
		}
	}
	return ingest.Source{MetadataPath: path, ImagesDir: dir}, nil
}
