// Package eventstream defines the transport-neutral events emitted after the
// figure store commits an ingestion.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentIngested is emitted after a document's figures are appended.
	EventTypeDocumentIngested = "figsearch.document.ingested"
)

// DocumentIngestedEvent is a transport-neutral event payload for one ingested document.
type DocumentIngestedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Document      DocumentMeta `json:"document"`

	// FirstID is the record id of the document's first figure.
	FirstID int `json:"first_id"`
	Records int `json:"records"`
	Skipped int `json:"skipped"`
}

// DocumentMeta identifies the ingested document.
type DocumentMeta struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
}

// NewDocumentIngestedEvent stamps a fresh event id and emission time.
func NewDocumentIngestedEvent(doc DocumentMeta, firstID, records, skipped int) *DocumentIngestedEvent {
	return &DocumentIngestedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeDocumentIngested,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Document:      doc,
		FirstID:       firstID,
		Records:       records,
		Skipped:       skipped,
	}
}
