package retriever

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
	"github.com/papercomputeco/figsearch/pkg/eventstream"
	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/store"
)

// IngestReport summarizes one ingestion.
type IngestReport struct {
	Documents int            `json:"documents"`
	Records   int            `json:"records"`
	FirstID   store.RecordID `json:"first_id"`
	Skipped   []ingest.Skip  `json:"skipped"`

	// Sources breaks the ingestion down per input, in input order.
	Sources []SourceReport `json:"sources"`
}

// SourceReport is the share of one input in an ingestion. FirstID is where
// its records start.
type SourceReport struct {
	MetadataPath string         `json:"metadata_path"`
	DocName      string         `json:"doc_name"`
	UID          string         `json:"uid"`
	FirstID      store.RecordID `json:"first_id"`
	Records      int            `json:"records"`
	Skipped      int            `json:"skipped"`
}

// Ingest builds records for every source, embeds them and appends them to the
// store as one batch. Any failure, including cancellation before the append,
// leaves the store unchanged. Sources that resolve no figure are reported
// without touching the store.
func (e *Engine) Ingest(ctx context.Context, sources ...ingest.Source) (*IngestReport, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	report := &IngestReport{
		Documents: len(sources),
		FirstID:   store.RecordID(e.store.Len()),
		Skipped:   []ingest.Skip{},
		Sources:   make([]SourceReport, 0, len(sources)),
	}

	built := make([]*ingest.Result, 0, len(sources))
	var records []store.Metadata
	for _, src := range sources {
		res, err := e.builder.BuildSource(src)
		if err != nil {
			return nil, err
		}
		built = append(built, res)
		records = append(records, res.Records...)
		report.Skipped = append(report.Skipped, res.Skipped...)
		report.Sources = append(report.Sources, SourceReport{
			MetadataPath: src.MetadataPath,
			DocName:      res.DocName,
			UID:          res.UID,
			FirstID:      report.FirstID,
			Records:      len(res.Records),
			Skipped:      len(res.Skipped),
		})
	}

	if len(records) == 0 {
		e.logger.Info("nothing to ingest", "documents", len(sources), "skipped", len(report.Skipped))
		return report, nil
	}

	batch, err := e.embed(ctx, records)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	first, err := e.store.Append(batch)
	if err != nil {
		return nil, fmt.Errorf("appending batch: %w", err)
	}
	report.FirstID = first
	report.Records = len(records)
	next := first
	for i := range report.Sources {
		report.Sources[i].FirstID = next
		next += store.RecordID(report.Sources[i].Records)
	}

	e.logger.Info("ingested documents",
		"documents", len(sources),
		"records", report.Records,
		"first_id", int(first),
		"skipped", len(report.Skipped),
	)

	e.publish(context.WithoutCancel(ctx), built, first)
	return report, nil
}

// embed encodes titles, flattened chunks and images concurrently and
// assembles the batch. Encoders are not called for empty streams.
func (e *Engine) embed(ctx context.Context, records []store.Metadata) (*store.Batch, error) {
	titles := make([]string, len(records))
	var chunks []string
	for i, r := range records {
		titles[i] = r.FigureTitle
		chunks = append(chunks, r.SurChunks...)
	}

	images := make([]embeddings.Image, len(records))
	for i, r := range records {
		img, err := embeddings.LoadImage(r.ImagePath)
		if err != nil {
			return nil, err
		}
		images[i] = img
	}

	var titleVecs, chunkVecs, imageVecs [][]float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := embeddings.EmbedBatched(gctx, titles, e.titleBatch, e.text.EmbedTexts)
		if err != nil {
			return fmt.Errorf("embedding titles: %w", err)
		}
		titleVecs = v
		return nil
	})
	if len(chunks) > 0 {
		g.Go(func() error {
			v, err := embeddings.EmbedBatched(gctx, chunks, e.chunkBatch, e.text.EmbedTexts)
			if err != nil {
				return fmt.Errorf("embedding surrounding chunks: %w", err)
			}
			chunkVecs = v
			return nil
		})
	}
	g.Go(func() error {
		v, err := embeddings.EmbedBatched(gctx, images, e.imageBatch, e.image.EmbedImages)
		if err != nil {
			return fmt.Errorf("embedding images: %w", err)
		}
		imageVecs = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &store.Batch{
		Records:      records,
		TitleVectors: titleVecs,
		ChunkVectors: make([][][]float32, len(records)),
		ImageVectors: imageVecs,
	}
	next := 0
	for i, r := range records {
		n := len(r.SurChunks)
		batch.ChunkVectors[i] = chunkVecs[next : next+n]
		next += n
	}
	return batch, nil
}

// publish emits one event per document that contributed records. Failures are
// logged; the ingestion is already committed.
func (e *Engine) publish(ctx context.Context, built []*ingest.Result, first store.RecordID) {
	next := int(first)
	for _, res := range built {
		if len(res.Records) == 0 {
			continue
		}
		event := eventstream.NewDocumentIngestedEvent(
			eventstream.DocumentMeta{Name: res.DocName, UID: res.UID},
			next, len(res.Records), len(res.Skipped),
		)
		next += len(res.Records)

		if err := e.publisher.PublishIngested(ctx, event); err != nil {
			e.logger.Warn("publishing ingestion event failed",
				"doc", res.DocName,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}
}
