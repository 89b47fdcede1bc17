package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/papercomputeco/figsearch/pkg/vector"
)

// Files of a persisted store directory.
const (
	TitleIndexFile       = "title.idx"
	SurroundingIndexFile = "sur.idx"
	ImageIndexFile       = "img.idx"
	VectorsFile          = "vectors.bin"
	MetadataFile         = "meta.json"
	ConfigFile           = "config.json"
)

// ModelMismatch records a channel whose stored encoder differs from the one
// requested at load time.
type ModelMismatch struct {
	Channel   string `json:"channel"`
	Stored    string `json:"stored"`
	Requested string `json:"requested"`
}

// LoadReport describes a loaded store.
type LoadReport struct {
	Records    int             `json:"records"`
	TextDim    int             `json:"text_dim"`
	ImageDim   int             `json:"image_dim"`
	Models     Models          `json:"models"`
	Mismatches []ModelMismatch `json:"mismatches"`
}

// Exists reports whether path holds a persisted store.
func Exists(path string) bool {
	_ = restoreInterrupted(path)
	_, err := os.Stat(filepath.Join(path, ConfigFile))
	return err == nil
}

// Save writes the store to the directory at path. Files are staged in a
// temporary sibling directory and published by rename, so readers of path
// see either the previous store or the new one.
func (s *Store) Save(path string, models Models) error {
	files, err := s.snapshot(models)
	if err != nil {
		return err
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating store parent directory: %w", err)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmp)
		}
	}()

	for _, name := range fileOrder {
		if err := writeFileSync(filepath.Join(tmp, name), files[name]); err != nil {
			return err
		}
	}
	if err := syncDir(tmp); err != nil {
		return err
	}

	aside := tmp + ".old"
	hadPrevious := false
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, aside); err != nil {
			return fmt.Errorf("moving previous store aside: %w", err)
		}
		hadPrevious = true
	}

	if err := os.Rename(tmp, path); err != nil {
		if hadPrevious {
			_ = os.Rename(aside, path)
		}
		return fmt.Errorf("publishing store: %w", err)
	}
	committed = true
	_ = syncDir(parent)

	if hadPrevious {
		if err := os.RemoveAll(aside); err != nil {
			s.logger.Warn("could not remove previous store", "path", aside, "error", err)
		}
	}

	s.logger.Info("store saved", "path", path, "records", s.Len())
	return nil
}

// restoreInterrupted repairs a Save that stopped between moving the old
// store aside and renaming the staged one into place. With nothing at path,
// a staged sibling whose ".old" twin exists is complete and is published;
// without it the ".old" store goes back.
func restoreInterrupted(path string) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	pattern := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*.old")
	asides, err := filepath.Glob(pattern)
	if err != nil || len(asides) == 0 {
		return nil
	}
	slices.Sort(asides)
	aside := asides[len(asides)-1]
	staged := strings.TrimSuffix(aside, ".old")

	if _, err := os.Stat(filepath.Join(staged, ConfigFile)); err == nil {
		if err := os.Rename(staged, path); err != nil {
			return fmt.Errorf("restoring interrupted save: %w", err)
		}
		return os.RemoveAll(aside)
	}
	if err := os.Rename(aside, path); err != nil {
		return fmt.Errorf("restoring interrupted save: %w", err)
	}
	return nil
}

var fileOrder = []string{
	TitleIndexFile,
	SurroundingIndexFile,
	ImageIndexFile,
	VectorsFile,
	MetadataFile,
	ConfigFile,
}

// snapshot serializes every file under the read lock.
func (s *Store) snapshot(models Models) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.built() {
		return nil, ErrNotBuilt
	}

	files := make(map[string][]byte, len(fileOrder))
	for name, idx := range map[string]interface {
		MarshalBinary() ([]byte, error)
	}{
		TitleIndexFile:       s.title,
		SurroundingIndexFile: s.sur,
		ImageIndexFile:       s.image,
	} {
		b, err := idx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		files[name] = b
	}

	files[VectorsFile] = encodeVectors(&rawVectors{
		n:            len(s.meta),
		textDim:      s.textDim,
		imageDim:     s.imageDim,
		m:            len(s.chunkTexts),
		titles:       s.titleVecs,
		images:       s.imageVecs,
		chunkOffsets: s.chunkOffsets,
		chunkVecs:    s.chunkVecs,
		chunkTexts:   s.chunkTexts,
	})

	meta, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing metadata: %w", err)
	}
	files[MetadataFile] = meta

	cfg, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing model config: %w", err)
	}
	files[ConfigFile] = cfg

	return files, nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func syncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	return nil
}

// Load reads a store saved by Save. Missing files, undecodable content and
// row counts that disagree fail with ErrStoreCorrupt. Encoder names that
// differ from requested are reported, not rejected; an empty requested name
// is not compared.
func Load(path string, requested Models, opts ...Option) (*Store, *LoadReport, error) {
	s := New(opts...)

	if err := restoreInterrupted(path); err != nil {
		return nil, nil, err
	}

	read := func(name string) ([]byte, error) {
		b, err := os.ReadFile(filepath.Join(path, name))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: missing %s", ErrStoreCorrupt, name)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return b, nil
	}

	cfgBytes, err := read(ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	var stored Models
	if err := json.Unmarshal(cfgBytes, &stored); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding %s: %v", ErrStoreCorrupt, ConfigFile, err)
	}

	metaBytes, err := read(MetadataFile)
	if err != nil {
		return nil, nil, err
	}
	var meta []Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding %s: %v", ErrStoreCorrupt, MetadataFile, err)
	}

	vecBytes, err := read(VectorsFile)
	if err != nil {
		return nil, nil, err
	}
	raw, err := decodeVectors(vecBytes)
	if err != nil {
		return nil, nil, err
	}
	if raw.textDim <= 0 || raw.imageDim <= 0 {
		return nil, nil, fmt.Errorf("%w: non-positive widths text %d image %d", ErrStoreCorrupt, raw.textDim, raw.imageDim)
	}
	if len(meta) != raw.n {
		return nil, nil, fmt.Errorf("%w: %d metadata entries, %d vector rows", ErrStoreCorrupt, len(meta), raw.n)
	}
	for i, m := range meta {
		texts := raw.chunkTexts[raw.chunkOffsets[i]:raw.chunkOffsets[i+1]]
		if !slices.Equal(m.SurChunks, texts) {
			return nil, nil, fmt.Errorf("%w: record %d chunk texts disagree with %s", ErrStoreCorrupt, i, VectorsFile)
		}
	}

	title, err := loadIndex(s, path, TitleIndexFile, raw.textDim, raw.n)
	if err != nil {
		return nil, nil, err
	}
	sur, err := loadIndex(s, path, SurroundingIndexFile, raw.textDim, raw.n)
	if err != nil {
		return nil, nil, err
	}
	img, err := loadIndex(s, path, ImageIndexFile, raw.imageDim, raw.n)
	if err != nil {
		return nil, nil, err
	}

	s.textDim, s.imageDim = raw.textDim, raw.imageDim
	s.title, s.sur, s.image = title, sur, img
	s.titleVecs = raw.titles
	s.imageVecs = raw.images
	s.chunkOffsets = raw.chunkOffsets
	s.chunkVecs = raw.chunkVecs
	s.chunkTexts = raw.chunkTexts
	s.meta = meta

	report := &LoadReport{
		Records:    raw.n,
		TextDim:    raw.textDim,
		ImageDim:   raw.imageDim,
		Models:     stored,
		Mismatches: []ModelMismatch{},
	}
	if requested.TextModel != "" && requested.TextModel != stored.TextModel {
		report.Mismatches = append(report.Mismatches, ModelMismatch{
			Channel: "text", Stored: stored.TextModel, Requested: requested.TextModel,
		})
	}
	if requested.ImageModel != "" && requested.ImageModel != stored.ImageModel {
		report.Mismatches = append(report.Mismatches, ModelMismatch{
			Channel: "image", Stored: stored.ImageModel, Requested: requested.ImageModel,
		})
	}
	for _, mm := range report.Mismatches {
		s.logger.Warn("stored encoder differs from configured encoder",
			"channel", mm.Channel,
			"stored", mm.Stored,
			"requested", mm.Requested,
		)
	}

	s.logger.Info("store loaded", "path", path, "records", raw.n, "text_dim", raw.textDim, "image_dim", raw.imageDim)
	return s, report, nil
}

func loadIndex(s *Store, dir, name string, dim, n int) (vector.Index, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: missing %s", ErrStoreCorrupt, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	idx := s.newIndex(dim)
	if err := idx.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrStoreCorrupt, name, err)
	}
	if idx.Dim() != dim || idx.Len() != n {
		return nil, fmt.Errorf("%w: %s holds %d rows of width %d, expected %d of width %d",
			ErrStoreCorrupt, name, idx.Len(), idx.Dim(), n, dim)
	}
	return idx, nil
}
