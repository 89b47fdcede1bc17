package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/store"
	"github.com/papercomputeco/figsearch/pkg/textnorm"
)

const (
	DefaultSurroundingCount = 3
	DefaultChunkSize        = 20
	DefaultChunkOverlap     = 4
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Skip describes a figure that produced no record.
type Skip struct {
	DocName   string `json:"doc_name"`
	ImageName string `json:"image_name"`
	Path      string `json:"path"`
	Reason    string `json:"reason"`
}

// Result is the output of building one document.
type Result struct {
	DocName string
	UID     string
	Records []store.Metadata
	Skipped []Skip
}

// Builder converts documents into figure records.
type Builder struct {
	surroundingCount int
	chunkSize        int
	chunkOverlap     int
	dropGarbled      bool
	garbled          textnorm.GarbledOptions
	logger           *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithSurroundingCount sets how many surrounding texts are kept per figure.
func WithSurroundingCount(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.surroundingCount = n
		}
	}
}

// WithChunkSize sets the chunk window in characters.
func WithChunkSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// WithChunkOverlap sets how many characters consecutive chunks share.
func WithChunkOverlap(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.chunkOverlap = n
		}
	}
}

// WithDropGarbled drops surrounding texts that look garbled.
func WithDropGarbled(drop bool, opts textnorm.GarbledOptions) Option {
	return func(b *Builder) {
		b.dropGarbled = drop
		b.garbled = opts
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder with the default surrounding count and chunk
// geometry.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		surroundingCount: DefaultSurroundingCount,
		chunkSize:        DefaultChunkSize,
		chunkOverlap:     DefaultChunkOverlap,
		logger:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildSource loads and builds the document at src.
func (b *Builder) BuildSource(src Source) (*Result, error) {
	doc, err := LoadDocument(src.MetadataPath)
	if err != nil {
		return nil, err
	}
	if src.DocName != "" {
		doc.Name = src.DocName
	}
	return b.Build(doc, src.ImagesDir), nil
}

// Build emits one record per item whose image exists under imagesDir, in item
// order. Items without an image are reported in Result.Skipped.
func (b *Builder) Build(doc *Document, imagesDir string) *Result {
	res := &Result{
		DocName: doc.Name,
		UID:     doc.ResolvedUID(),
		Records: []store.Metadata{},
		Skipped: []Skip{},
	}

	for _, it := range doc.Items {
		path := ImagePath(imagesDir, it.Name)
		if !isFile(path) {
			skip := Skip{
				DocName:   doc.Name,
				ImageName: it.Name,
				Path:      path,
				Reason:    ErrMissingResource.Error(),
			}
			res.Skipped = append(res.Skipped, skip)
			b.logger.Warn("skipping figure", "doc", doc.Name, "image", it.Name, "path", path, "error", ErrMissingResource)
			continue
		}

		texts := b.surroundingTexts(it.SurroundingTexts)
		chunks := []string{}
		for _, t := range texts {
			chunks = append(chunks, textnorm.Chunk(t, b.chunkSize, b.chunkOverlap)...)
		}

		res.Records = append(res.Records, store.Metadata{
			DocName:     doc.Name,
			UID:         res.UID,
			Page:        it.Page,
			ImageName:   it.Name,
			ImagePath:   path,
			Coordinate:  append([]float64(nil), it.Coordinate...),
			FigureTitle: textnorm.Normalize(it.FigureTitle),
			SurTextList: texts,
			SurChunks:   chunks,
		})
	}

	b.logger.Debug("document built",
		"doc", doc.Name,
		"records", len(res.Records),
		"skipped", len(res.Skipped),
	)
	return res
}

// surroundingTexts normalizes raw, drops empty (and optionally garbled)
// entries, then keeps the first surroundingCount.
func (b *Builder) surroundingTexts(raw []string) []string {
	out := []string{}
	for _, t := range raw {
		if len(out) == b.surroundingCount {
			break
		}
		n := textnorm.Normalize(t)
		if n == "" {
			continue
		}
		if b.dropGarbled && textnorm.IsGarbled(n, b.garbled) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ImagePath resolves the image file of a figure: <dir>/<name>.png, or
// <dir>/<name> when name already carries an image extension. A name like
// "fig.png" still resolves to <dir>/fig.png.png when only that file exists.
func ImagePath(dir, name string) string {
	withPNG := filepath.Join(dir, fmt.Sprintf("%s.png", name))
	if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
		return withPNG
	}
	direct := filepath.Join(dir, name)
	if !isFile(direct) && isFile(withPNG) {
		return withPNG
	}
	return direct
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
