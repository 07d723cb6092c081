package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Document is the JSON rendering of a Report served by the status endpoint
// and forwarded to sinks.
type Document struct {
	Status   string           `json:"status"`
	Duration float64          `json:"duration"`
	Details  []DetailDocument `json:"details"`
}

// DetailDocument is the JSON rendering of one Entry.
type DetailDocument struct {
	Service     string         `json:"service"`
	Status      string         `json:"status"`
	Description string         `json:"description"`
	Exception   string         `json:"exception"`
	Data        map[string]any `json:"data,omitempty"`
}

// NewDocument renders a report. Duration is in milliseconds.
// Only the error text of a failed probe is exposed. Data that cannot be
// encoded as JSON (a NaN ratio, a channel) is dropped from its entry so
// the rest of the document still renders.
func NewDocument(report Report) Document {
	doc := Document{
		Status:   report.Status.String(),
		Duration: milliseconds(report.Duration),
		Details:  make([]DetailDocument, 0, len(report.Entries)),
	}
	for _, e := range report.Entries {
		detail := DetailDocument{
			Service:     e.Name,
			Status:      e.Outcome.Status.String(),
			Description: e.Outcome.Description,
			Data:        encodableData(e.Outcome.Data),
		}
		if e.Outcome.Err != nil {
			detail.Exception = e.Outcome.Err.Error()
		}
		doc.Details = append(doc.Details, detail)
	}
	return doc
}

func encodableData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	if _, err := json.Marshal(data); err != nil {
		return nil
	}
	return data
}

// HTTPStatusCode maps a status to a response code.
// Degraded still answers 200: the service runs but needs attention.
func HTTPStatusCode(s Status) int {
	switch s {
	case StatusHealthy, StatusDegraded:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
