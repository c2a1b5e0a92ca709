package registry

import (
	"time"

	"github.com/google/uuid"
)

// Status is the document lifecycle state. A document is created as
// StatusUploading and settles in exactly one of the terminal-ish states;
// StatusIngestFailed is retryable back into StatusIngesting.
type Status string

const (
	StatusUploading    Status = "uploading"     // save in flight
	StatusSaveFailed   Status = "save_failed"   // save failed, terminal for this attempt
	StatusSaved        Status = "saved"         // on disk, not yet indexed
	StatusIngesting    Status = "ingesting"     // indexing in flight
	StatusReady        Status = "ready"         // indexed, available for retrieval
	StatusIngestFailed Status = "ingest_failed" // indexing failed, retryable
)

var transitions = map[Status][]Status{
	StatusUploading:    {StatusSaved, StatusSaveFailed},
	StatusSaveFailed:   {},
	StatusSaved:        {StatusIngesting},
	StatusIngesting:    {StatusReady, StatusIngestFailed},
	StatusReady:        {},
	StatusIngestFailed: {StatusIngesting},
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle step.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Viewable reports whether the document can be opened in the viewer.
// Save failures and in-flight uploads are not selectable; a failed
// ingestion still is.
func (s Status) Viewable() bool {
	return s != StatusUploading && s != StatusSaveFailed
}

// Document is one registry entry. StatusReason carries the save or
// ingestion failure message when the status is a failed one.
type Document struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Size         int64     `json:"size"`
	Pages        int       `json:"pages,omitempty"`
	Status       Status    `json:"status"`
	StatusReason string    `json:"status_reason,omitempty"`
}
