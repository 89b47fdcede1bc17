// Package store keeps the figure records and their embeddings: three
// append-only nearest-neighbor indices (title, pooled surrounding text, image)
// plus the raw vectors retained for exact rescoring.
//
// Every structure is index-aligned by RecordID. Surrounding-text chunks are
// ragged, so they live in flat storage addressed by per-record offsets.
package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/vector"
	"github.com/papercomputeco/figsearch/pkg/vector/flat"
)

// Store is the multi-channel vector store. It is safe for concurrent use:
// appends take the write lock for the whole batch, reads share the read lock.
type Store struct {
	mu sync.RWMutex

	newIndex vector.Factory
	logger   *slog.Logger

	textDim  int
	imageDim int

	title vector.Index
	sur   vector.Index
	image vector.Index

	titleVecs []float32
	imageVecs []float32

	// chunkVecs and chunkTexts are flat; record i owns rows
	// chunkOffsets[i] to chunkOffsets[i+1].
	chunkVecs    []float32
	chunkTexts   []string
	chunkOffsets []int

	meta []Metadata
}

// Option configures a Store.
type Option func(*Store)

// WithIndexFactory sets the index implementation used for the three channels.
func WithIndexFactory(f vector.Factory) Option {
	return func(s *Store) {
		if f != nil {
			s.newIndex = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty, unbuilt store.
func New(opts ...Option) *Store {
	s := &Store{
		newIndex:     flat.Factory,
		logger:       logger.Nop(),
		chunkOffsets: []int{0},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meta)
}

// Built reports whether the store dimensions have been fixed.
func (s *Store) Built() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built()
}

func (s *Store) built() bool {
	return s.title != nil
}

// Dimensions returns the text and image vector widths, zero when unbuilt.
func (s *Store) Dimensions() (textDim, imageDim int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.textDim, s.imageDim
}

// EnsureDimensions fixes the store widths on first use. Later calls must
// repeat the same widths.
func (s *Store) EnsureDimensions(textDim, imageDim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureDimensions(textDim, imageDim)
}

func (s *Store) ensureDimensions(textDim, imageDim int) error {
	if textDim <= 0 || imageDim <= 0 {
		return fmt.Errorf("%w: widths must be positive, got text %d image %d", ErrDimensionMismatch, textDim, imageDim)
	}

	if !s.built() {
		s.textDim, s.imageDim = textDim, imageDim
		s.title = s.newIndex(textDim)
		s.sur = s.newIndex(textDim)
		s.image = s.newIndex(imageDim)
		s.logger.Debug("store dimensions fixed", "text_dim", textDim, "image_dim", imageDim)
		return nil
	}

	if textDim != s.textDim {
		return fmt.Errorf("%w: text width %d, store text width %d", ErrDimensionMismatch, textDim, s.textDim)
	}
	if imageDim != s.imageDim {
		return fmt.Errorf("%w: image width %d, store image width %d", ErrDimensionMismatch, imageDim, s.imageDim)
	}
	return nil
}

// Append adds a batch to every index and raw array. New ids start at the
// current record count and follow batch order; the first id is returned.
// A rejected batch leaves the store unchanged.
func (s *Store) Append(b *Batch) (RecordID, error) {
	textDim, imageDim, err := validateBatch(b)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	first := RecordID(len(s.meta))
	if b.Len() == 0 {
		return first, nil
	}

	wasBuilt := s.built()
	if err := s.ensureDimensions(textDim, imageDim); err != nil {
		return 0, err
	}

	pooled := make([][]float32, b.Len())
	for i, chunks := range b.ChunkVectors {
		pooled[i] = Pool(chunks, textDim)
	}

	if err := s.addToIndices(b.TitleVectors, pooled, b.ImageVectors); err != nil {
		s.rollback(wasBuilt)
		return 0, err
	}

	for i, rec := range b.Records {
		s.titleVecs = append(s.titleVecs, b.TitleVectors[i]...)
		s.imageVecs = append(s.imageVecs, b.ImageVectors[i]...)
		for _, cv := range b.ChunkVectors[i] {
			s.chunkVecs = append(s.chunkVecs, cv...)
		}
		s.chunkTexts = append(s.chunkTexts, rec.SurChunks...)
		s.chunkOffsets = append(s.chunkOffsets, len(s.chunkTexts))
		s.meta = append(s.meta, rec.Clone())
	}

	s.logger.Debug("batch appended",
		"first_id", int(first),
		"records", b.Len(),
		"total", len(s.meta),
	)
	return first, nil
}

func (s *Store) addToIndices(titles, pooled, images [][]float32) error {
	if err := s.title.Add(titles); err != nil {
		return fmt.Errorf("adding title vectors: %w", err)
	}
	if err := s.sur.Add(pooled); err != nil {
		return fmt.Errorf("adding surrounding vectors: %w", err)
	}
	if err := s.image.Add(images); err != nil {
		return fmt.Errorf("adding image vectors: %w", err)
	}
	return nil
}

// rollback restores the indices to the raw arrays after a failed append.
// Raw arrays are only written once every index accepted the batch, so they
// still describe the pre-append state.
func (s *Store) rollback(wasBuilt bool) {
	if !wasBuilt {
		s.title, s.sur, s.image = nil, nil, nil
		s.textDim, s.imageDim = 0, 0
		return
	}

	n := len(s.meta)
	titles := make([][]float32, n)
	pooled := make([][]float32, n)
	images := make([][]float32, n)
	for i := range n {
		id := RecordID(i)
		titles[i] = s.titleVector(id)
		pooled[i] = Pool(s.chunkVectors(id), s.textDim)
		images[i] = s.imageVector(id)
	}

	s.title = s.newIndex(s.textDim)
	s.sur = s.newIndex(s.textDim)
	s.image = s.newIndex(s.imageDim)
	if err := s.addToIndices(titles, pooled, images); err != nil {
		s.logger.Error("rebuilding indices after failed append", "error", err)
	}
}

// validateBatch checks slice alignment and that every row of a channel shares
// one width. It returns the text and image widths.
func validateBatch(b *Batch) (int, int, error) {
	if b == nil {
		return 0, 0, fmt.Errorf("%w: nil batch", ErrInvalidBatch)
	}
	n := b.Len()
	if len(b.TitleVectors) != n || len(b.ImageVectors) != n || len(b.ChunkVectors) != n {
		return 0, 0, fmt.Errorf("%w: %d records, %d title, %d chunk and %d image entries",
			ErrInvalidBatch, n, len(b.TitleVectors), len(b.ChunkVectors), len(b.ImageVectors))
	}
	if n == 0 {
		return 0, 0, nil
	}

	textDim := len(b.TitleVectors[0])
	imageDim := len(b.ImageVectors[0])
	for i := range n {
		if w := len(b.TitleVectors[i]); w != textDim {
			return 0, 0, fmt.Errorf("%w: title vector %d has width %d, expected %d", ErrDimensionMismatch, i, w, textDim)
		}
		if w := len(b.ImageVectors[i]); w != imageDim {
			return 0, 0, fmt.Errorf("%w: image vector %d has width %d, expected %d", ErrDimensionMismatch, i, w, imageDim)
		}
		if len(b.ChunkVectors[i]) != len(b.Records[i].SurChunks) {
			return 0, 0, fmt.Errorf("%w: record %d has %d chunk texts and %d chunk vectors",
				ErrInvalidBatch, i, len(b.Records[i].SurChunks), len(b.ChunkVectors[i]))
		}
		for j, cv := range b.ChunkVectors[i] {
			if len(cv) != textDim {
				return 0, 0, fmt.Errorf("%w: chunk vector %d of record %d has width %d, expected %d",
					ErrDimensionMismatch, j, i, len(cv), textDim)
			}
		}
	}
	return textDim, imageDim, nil
}

// Pool returns the mean of chunks, or the zero vector of width dim when there
// are none. Pooled vectors serve recall only.
func Pool(chunks [][]float32, dim int) []float32 {
	out := make([]float32, dim)
	if len(chunks) == 0 {
		return out
	}
	sums := make([]float64, dim)
	for _, c := range chunks {
		for j, v := range c {
			sums[j] += float64(v)
		}
	}
	for j := range out {
		out[j] = float32(sums[j] / float64(len(chunks)))
	}
	return out
}

// Recall returns up to k record ids from one channel ordered by inner product
// with query.
func (s *Store) Recall(query []float32, ch Channel, k int) ([]RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recall(query, ch, k)
}

func (s *Store) recall(query []float32, ch Channel, k int) ([]RecordID, error) {
	if !s.built() {
		return nil, ErrNotBuilt
	}
	if k <= 0 {
		return []RecordID{}, nil
	}

	var idx vector.Index
	switch ch {
	case ChannelTitle:
		idx = s.title
	case ChannelSurrounding:
		idx = s.sur
	case ChannelImage:
		idx = s.image
	default:
		return nil, fmt.Errorf("unknown channel %s", ch)
	}

	positions, _, err := idx.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("recalling %s channel: %w", ch, err)
	}
	ids := make([]RecordID, len(positions))
	for i, p := range positions {
		ids[i] = RecordID(p)
	}
	return ids, nil
}

// Metadata returns a copy of the metadata of record id.
func (s *Store) Metadata(id RecordID) (Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid(id) {
		return Metadata{}, fmt.Errorf("%w: %d", ErrUnknownRecord, int(id))
	}
	return s.meta[id].Clone(), nil
}

func (s *Store) valid(id RecordID) bool {
	return id >= 0 && int(id) < len(s.meta)
}

func (s *Store) titleVector(id RecordID) []float32 {
	return s.titleVecs[int(id)*s.textDim : (int(id)+1)*s.textDim]
}

func (s *Store) imageVector(id RecordID) []float32 {
	return s.imageVecs[int(id)*s.imageDim : (int(id)+1)*s.imageDim]
}

func (s *Store) chunkVectors(id RecordID) [][]float32 {
	start, end := s.chunkOffsets[id], s.chunkOffsets[id+1]
	rows := make([][]float32, 0, end-start)
	for r := start; r < end; r++ {
		rows = append(rows, s.chunkVecs[r*s.textDim:(r+1)*s.textDim])
	}
	return rows
}

// Read runs fn with a Reader while holding the read lock, so everything fn
// observes belongs to one consistent snapshot. It fails with ErrNotBuilt
// before the first append.
func (s *Store) Read(fn func(r Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.built() {
		return ErrNotBuilt
	}
	return fn(Reader{s: s})
}

// Reader is a read-only view of a store, valid only inside Store.Read.
// Returned slices alias store memory and must not be modified.
type Reader struct {
	s *Store
}

// Len returns the number of records.
func (r Reader) Len() int {
	return len(r.s.meta)
}

// Recall is Store.Recall without taking the lock again.
func (r Reader) Recall(query []float32, ch Channel, k int) ([]RecordID, error) {
	return r.s.recall(query, ch, k)
}

// TitleVector returns the raw title vector of id.
func (r Reader) TitleVector(id RecordID) []float32 {
	return r.s.titleVector(id)
}

// ImageVector returns the raw image vector of id.
func (r Reader) ImageVector(id RecordID) []float32 {
	return r.s.imageVector(id)
}

// Chunks returns the raw chunk vectors of id and their texts. Both are empty
// for a record without surrounding text.
func (r Reader) Chunks(id RecordID) ([][]float32, []string) {
	start, end := r.s.chunkOffsets[id], r.s.chunkOffsets[id+1]
	return r.s.chunkVectors(id), r.s.chunkTexts[start:end]
}

// Metadata returns a copy of the metadata of id.
func (r Reader) Metadata(id RecordID) Metadata {
	return r.s.meta[id].Clone()
}
