package store

import "fmt"

// RecordID identifies a figure record. Ids are assigned in append order
// starting at zero and join every per-record structure in the store.
type RecordID int

// Channel is one of the three independent similarity signals.
type Channel int

const (
	// ChannelTitle scores the figure title.
	ChannelTitle Channel = iota

	// ChannelSurrounding scores the text found near the figure.
	ChannelSurrounding

	// ChannelImage scores the image content.
	ChannelImage
)

func (c Channel) String() string {
	switch c {
	case ChannelTitle:
		return "title"
	case ChannelSurrounding:
		return "surrounding"
	case ChannelImage:
		return "image"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Metadata describes one ingested figure.
type Metadata struct {
	DocName     string    `json:"doc_name"`
	UID         string    `json:"uid"`
	Page        int       `json:"page"`
	ImageName   string    `json:"image_name"`
	ImagePath   string    `json:"image_path"`
	Coordinate  []float64 `json:"coordinate"`
	FigureTitle string    `json:"figure_title"`
	SurTextList []string  `json:"sur_text_list"`

	// SurChunks are the surrounding-text chunks, in the same order as the
	// record's chunk vectors.
	SurChunks []string `json:"sur_chunks_used"`
}

// Clone returns a deep copy of m.
func (m Metadata) Clone() Metadata {
	c := m
	c.Coordinate = append([]float64(nil), m.Coordinate...)
	c.SurTextList = append([]string{}, m.SurTextList...)
	c.SurChunks = append([]string{}, m.SurChunks...)
	return c
}

// Models names the encoders whose vectors a store holds.
type Models struct {
	TextModel  string `json:"text_model_name"`
	ImageModel string `json:"image_model_name"`
}

// Batch is the unit of ingestion: one entry per record in every slice.
type Batch struct {
	Records []Metadata

	// TitleVectors holds one title embedding per record.
	TitleVectors [][]float32

	// ChunkVectors holds, per record, one embedding per entry of
	// Records[i].SurChunks. A record without chunks has an empty entry.
	ChunkVectors [][][]float32

	// ImageVectors holds one image embedding per record.
	ImageVectors [][]float32
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	return len(b.Records)
}
