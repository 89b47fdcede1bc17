package embeddings

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// Image is the raw content of one figure image.
type Image struct {
	Name string
	Data []byte
	MIME string
}

// LoadImage reads the image at path and sniffs its content type.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("reading image %s: %w", path, err)
	}
	return Image{
		Name: filepath.Base(path),
		Data: data,
		MIME: http.DetectContentType(data),
	}, nil
}

// DataURI encodes the image as a base64 data URI.
func (i Image) DataURI() string {
	mime := i.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}
