package retriever

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/figsearch/pkg/store"
	"github.com/papercomputeco/figsearch/pkg/vector"
)

// Result is one ranked figure.
type Result struct {
	ID     store.RecordID `json:"id"`
	Score  float64        `json:"score"`
	SText  float64        `json:"s_text"`
	STitle float64        `json:"s_title"`
	SSur   float64        `json:"s_sur"`
	SImg   float64        `json:"s_img"`

	// BestSurChunk is the chunk that produced SSur, nil for a figure without
	// surrounding text.
	BestSurChunk *string `json:"best_sur_chunk"`

	store.Metadata
}

// Search ranks figures for query. Candidates are the union of the top KEach
// ids recalled from the title, surrounding-text and image channels; each is
// rescored exactly against its raw vectors and the fused score decides the
// order. Ties go to the lower record id.
func (e *Engine) Search(ctx context.Context, query string, params Params) ([]Result, error) {
	p, err := params.Validate()
	if err != nil {
		return nil, err
	}
	if !e.store.Built() {
		return nil, store.ErrNotBuilt
	}
	if p.TopK == 0 || p.KEach == 0 {
		return []Result{}, nil
	}

	qText, qImage, err := e.encodeQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []Result
	err = e.store.Read(func(r store.Reader) error {
		candidates, err := recallUnion(r, qText, qImage, p.KEach)
		if err != nil {
			return err
		}
		results = make([]Result, 0, len(candidates))
		for _, id := range candidates {
			results = append(results, rerank(r, id, qText, qImage, p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].ID < results[b].ID
	})
	if len(results) > p.TopK {
		results = results[:p.TopK]
	}

	e.logger.Debug("search finished",
		"query", query,
		"results", len(results),
		"top_k", p.TopK,
		"k_each", p.KEach,
	)
	return results, nil
}

// encodeQuery embeds query once in text space and once in image space.
func (e *Engine) encodeQuery(ctx context.Context, query string) ([]float32, []float32, error) {
	var qText, qImage []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.text.EmbedTexts(gctx, []string{query})
		if err != nil {
			return fmt.Errorf("encoding text query: %w", err)
		}
		if len(v) != 1 {
			return fmt.Errorf("encoding text query: got %d vectors", len(v))
		}
		qText = v[0]
		return nil
	})
	g.Go(func() error {
		v, err := e.image.EmbedTexts(gctx, []string{query})
		if err != nil {
			return fmt.Errorf("encoding image query: %w", err)
		}
		if len(v) != 1 {
			return fmt.Errorf("encoding image query: got %d vectors", len(v))
		}
		qImage = v[0]
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return qText, qImage, nil
}

// recallUnion merges the per-channel recalls in first-seen order.
func recallUnion(r store.Reader, qText, qImage []float32, k int) ([]store.RecordID, error) {
	seen := make(map[store.RecordID]struct{})
	var union []store.RecordID

	for _, q := range []struct {
		vec []float32
		ch  store.Channel
	}{
		{qText, store.ChannelTitle},
		{qText, store.ChannelSurrounding},
		{qImage, store.ChannelImage},
	} {
		ids, err := r.Recall(q.vec, q.ch, k)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	return union, nil
}

// rerank scores one candidate against its raw vectors. The surrounding score
// is the best single chunk, never the pooled vector.
func rerank(r store.Reader, id store.RecordID, qText, qImage []float32, p Params) Result {
	res := Result{
		ID:       id,
		STitle:   vector.Dot(qText, r.TitleVector(id)),
		SImg:     vector.Dot(qImage, r.ImageVector(id)),
		Metadata: r.Metadata(id),
	}

	vecs, texts := r.Chunks(id)
	for i, cv := range vecs {
		s := vector.Dot(qText, cv)
		if res.BestSurChunk == nil || s > res.SSur {
			res.SSur = s
			chunk := texts[i]
			res.BestSurChunk = &chunk
		}
	}

	res.SText = p.BetaTitle*res.STitle + p.BetaSur*res.SSur
	res.Score = p.Alpha*res.SText + (1-p.Alpha)*res.SImg
	return res
}
