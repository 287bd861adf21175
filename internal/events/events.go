package events

import (
	"encoding/json"
	"time"
)

// Event is the envelope pushed to SSE subscribers.
type Event struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

func makeEvent(typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	b, _ := json.Marshal(Event{Type: typ, At: time.Now().UTC(), Data: raw})
	return string(b)
}

// JobUpserted announces a job row written by a crawl.
func JobUpserted(jobID string, wasNew bool) string {
	return makeEvent("job_upserted", map[string]any{"job_id": jobID, "new": wasNew})
}

// SessionFinished announces a crawl session closing, completed or failed.
func SessionFinished(sessionID, status string, jobsFound, jobsNew int) string {
	return makeEvent("session_finished", map[string]any{
		"session_id": sessionID,
		"status":     status,
		"jobs_found": jobsFound,
		"jobs_new":   jobsNew,
	})
}

// ApplicationUpdated announces a tracker state change.
func ApplicationUpdated(applicationID, status string) string {
	return makeEvent("application_updated", map[string]any{
		"application_id": applicationID,
		"status":         status,
	})
}
