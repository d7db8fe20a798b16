package types

import "time"

// RenderRequest asks the service to generate one video. Arrives over the HTTP
// API or the Kafka topic.
type RenderRequest struct {
	JobID       string `json:"job_id"`
	Philosopher string `json:"philosopher,omitempty"`
	Category    string `json:"category,omitempty"`
	Upload      bool   `json:"upload"`
}

// RenderResult describes a finished generation run.
type RenderResult struct {
	JobID      string    `json:"job_id,omitempty"`
	QuoteID    int       `json:"quote_id"`
	AuthorName string    `json:"author_name"`
	Category   string    `json:"category"`
	QuoteText  string    `json:"quote_text"`
	VideoPath  string    `json:"video_path"`
	ThumbPath  string    `json:"thumbnail_path,omitempty"`
	Duration   float64   `json:"duration_seconds"`
	UploadID   string    `json:"upload_id,omitempty"`
	ArchiveKey string    `json:"archive_key,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// RenderState is the service-side state machine for a render job.
type RenderState string

const (
	StateIdle       RenderState = "idle"
	StateSelecting  RenderState = "selecting"
	StateNarrating  RenderState = "narrating"
	StateAcquiring  RenderState = "acquiring"
	StateComposing  RenderState = "composing"
	StateUploading  RenderState = "uploading"
	StateComplete   RenderState = "complete"
	StateError      RenderState = "error"
)

// LogEntry is a single timestamped line in the service's status ring.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// StatusResponse is the JSON body for GET /api/status.
type StatusResponse struct {
	State      RenderState   `json:"state"`
	JobID      string        `json:"job_id,omitempty"`
	Logs       []LogEntry    `json:"logs"`
	LastResult *RenderResult `json:"last_result,omitempty"`
	Error      string        `json:"error,omitempty"`
}
