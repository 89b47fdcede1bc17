package testutils

import "github.com/papercomputeco/figsearch/pkg/ingest"

// PaperDocument is a two-figure document whose titles share words with
// natural queries, for end-to-end runs with the hashing encoders. Write it
// with WriteDocument(dir, PaperDocument(), PaperImages...).
func PaperDocument() ingest.Document {
	return ingest.Document{
		Name: "paper",
		Items: []ingest.Item{
			{Name: "fig1", Page: 3, FigureTitle: "loss curve of the model", SurroundingTexts: []string{"training loss falls"}},
			{Name: "fig2", Page: 5, FigureTitle: "architecture diagram", SurroundingTexts: []string{"encoder and decoder"}},
		},
	}
}

// PaperImages names the images PaperDocument refers to.
var PaperImages = []string{"fig1", "fig2"}
