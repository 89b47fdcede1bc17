package testutils

import "github.com/papercomputeco/figsearch/pkg/ingest"

// AnimalEncoders maps the AnimalDocument texts and images onto two axes: cat
// along x and dog along y, in both spaces.
func AnimalEncoders() (*MockEmbedder, *MockEmbedder) {
	text := NewMockEmbedder("text-mock", []float32{0, 0})
	text.Texts["a cat"] = []float32{1, 0}
	text.Texts["a dog"] = []float32{0, 1}
	text.Texts["the cat sleeps"] = []float32{1, 0}
	text.Texts["the dog runs"] = []float32{0, 1}
	text.Texts["cat"] = []float32{1, 0}
	text.Texts["dog"] = []float32{0, 1}

	image := NewMockEmbedder("image-mock", []float32{0, 0})
	image.Images["cat.png"] = []float32{1, 0}
	image.Images["dog.png"] = []float32{0, 1}
	image.Texts["cat"] = []float32{1, 0}
	image.Texts["dog"] = []float32{0, 1}
	return text, image
}

// AnimalDocument is a two-figure document: a cat on page 1, a dog on page 2.
// Write it with WriteDocument(dir, AnimalDocument(), "cat", "dog").
func AnimalDocument() ingest.Document {
	return ingest.Document{
		Name: "animals",
		UID:  "uid-animals",
		Items: []ingest.Item{
			{Name: "cat", Page: 1, FigureTitle: "a cat", SurroundingTexts: []string{"the cat sleeps"}},
			{Name: "dog", Page: 2, FigureTitle: "a dog", SurroundingTexts: []string{"the dog runs"}},
		},
	}
}
