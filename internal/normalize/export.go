package normalize

import (
	"encoding/json"
	"time"

	"mindsync/internal/model"
)

// ExportFormat names the canonical export schema written by Export.
const ExportFormat = "mindsync_custom"

// exportDocument is the stable canonical JSON schema. Events use the generic
// schema's field names so an exported document feeds straight back into
// Parse.
type exportDocument struct {
	Events   []model.Event  `json:"events"`
	Metadata exportMetadata `json:"metadata"`
}

type exportMetadata struct {
	TotalEvents int    `json:"total_events"`
	ExportedAt  string `json:"exported_at"`
	Format      string `json:"format"`
}

// Export serializes events into the canonical JSON document:
// {"events": [...], "metadata": {"total_events", "exported_at", "format"}}.
func Export(events []model.Event) ([]byte, error) {
	doc := exportDocument{
		Events: events,
		Metadata: exportMetadata{
			TotalEvents: len(events),
			ExportedAt:  time.Now().Format(time.RFC3339),
			Format:      ExportFormat,
		},
	}
	if doc.Events == nil {
		doc.Events = []model.Event{}
	}
	return json.MarshalIndent(doc, "", "  ")
}
