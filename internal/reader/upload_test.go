package reader

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pdf-reader/internal/docstore"
	"pdf-reader/internal/queue"
	"pdf-reader/internal/registry"
	"pdf-reader/internal/scripts"
)

func TestUploadValidation(t *testing.T) {
	c, _ := newTestController(Options{MaxUploadSize: 1 << 20})

	outcome := c.Upload(context.Background(), []UploadFile{
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
		{Name: "big.pdf", ContentType: "application/pdf", Data: make([]byte, 2<<20)},
	})

	if len(outcome.Accepted) != 0 {
		t.Errorf("expected no accepted files, got %d", len(outcome.Accepted))
	}
	if len(outcome.Rejected) != 2 {
		t.Fatalf("expected 2 rejections, got %d", len(outcome.Rejected))
	}
	if !strings.Contains(outcome.Rejected[0], "only PDF files are allowed") {
		t.Errorf("unexpected rejection message: %q", outcome.Rejected[0])
	}
	if !strings.Contains(outcome.Rejected[1], "file size must be less than 1 MB") {
		t.Errorf("unexpected rejection message: %q", outcome.Rejected[1])
	}
	if c.reg.Len() != 0 {
		t.Error("rejected files must not enter the registry")
	}
}

func TestUploadMixedBatch(t *testing.T) {
	c, m := newTestController(Options{MaxUploadSize: 1 << 20})

	m.store.On("Save", mock.Anything, "good.pdf", mock.Anything).
		Return(docstore.SavedFile{Path: "/docs/good.pdf", Size: 9, Pages: 3}, nil).Once()
	m.store.On("AbsolutePath", "good.pdf").Return("/docs/good.pdf", nil).Once()
	m.queue.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()

	outcome := c.Upload(context.Background(), []UploadFile{
		{Name: "bad.txt", ContentType: "text/plain", Data: []byte("x")},
		{Name: "good.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
	})

	if len(outcome.Rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(outcome.Rejected))
	}
	if len(outcome.Accepted) != 1 {
		t.Fatalf("a rejected sibling must not block valid files; got %d accepted", len(outcome.Accepted))
	}
	doc := outcome.Accepted[0]
	if doc.Status != registry.StatusIngesting {
		t.Errorf("expected accepted document handed to ingestion, got status %s", doc.Status)
	}
	if doc.Pages != 3 || doc.Size != 9 {
		t.Errorf("expected saved size and page count, got size=%d pages=%d", doc.Size, doc.Pages)
	}
	m.store.AssertExpectations(t)
	m.queue.AssertExpectations(t)
}

func TestUploadSaveFailure(t *testing.T) {
	c, m := newTestController(Options{MaxUploadSize: 1 << 20})
	m.store.On("Save", mock.Anything, "a.pdf", mock.Anything).
		Return(docstore.SavedFile{}, errors.New("disk full")).Once()

	outcome := c.Upload(context.Background(), []UploadFile{
		{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
	})

	if len(outcome.Accepted) != 0 {
		t.Errorf("a save failure must not be reported as accepted")
	}
	docs := c.Documents()
	if len(docs) != 1 {
		t.Fatalf("expected the failed document in the registry, got %d entries", len(docs))
	}
	if docs[0].Status != registry.StatusSaveFailed {
		t.Errorf("expected status %s, got %s", registry.StatusSaveFailed, docs[0].Status)
	}
	if docs[0].StatusReason != "disk full" {
		t.Errorf("expected save error as reason, got %q", docs[0].StatusReason)
	}
	m.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestRequestIngestionUnknownDocument(t *testing.T) {
	c, _ := newTestController(Options{})
	if err := c.RequestIngestion(context.Background(), uuid.New()); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestIngestionQueueUnavailable(t *testing.T) {
	c, m := newTestController(Options{})
	id := addDoc(c, "a.pdf", registry.StatusSaved)
	m.store.On("AbsolutePath", "a.pdf").Return("/docs/a.pdf", nil).Once()
	m.queue.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	if err := c.RequestIngestion(context.Background(), id); err == nil {
		t.Fatal("expected an error when the queue is unavailable")
	}
	doc, _ := c.reg.Get(id)
	if doc.Status != registry.StatusIngestFailed {
		t.Errorf("expected status %s, got %s", registry.StatusIngestFailed, doc.Status)
	}
	if doc.StatusReason != "ingestion queue unavailable" {
		t.Errorf("unexpected reason %q", doc.StatusReason)
	}
	// Enqueue is retried before giving up.
	if calls := len(m.queue.Calls); calls != 3 {
		t.Errorf("expected 3 enqueue attempts, got %d", calls)
	}
}

func TestRequestIngestionRetryAfterFailure(t *testing.T) {
	c, m := newTestController(Options{})
	id := addDoc(c, "a.pdf", registry.StatusIngestFailed)
	m.store.On("AbsolutePath", "a.pdf").Return("/docs/a.pdf", nil).Once()
	m.queue.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()

	if err := c.RequestIngestion(context.Background(), id); err != nil {
		t.Fatalf("a failed ingestion must be retryable: %v", err)
	}
	doc, _ := c.reg.Get(id)
	if doc.Status != registry.StatusIngesting {
		t.Errorf("expected status %s, got %s", registry.StatusIngesting, doc.Status)
	}
	if doc.StatusReason != "" {
		t.Errorf("expected stale failure reason cleared, got %q", doc.StatusReason)
	}
}

func TestHandleIngestTask(t *testing.T) {
	tests := []struct {
		name       string
		ingestErr  error
		wantStatus registry.Status
		wantReason string
	}{
		{"success", nil, registry.StatusReady, ""},
		{"backend failure", errors.New("no API key"), registry.StatusIngestFailed, "no API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newTestController(Options{})
			id := addDoc(c, "a.pdf", registry.StatusIngesting)
			m.ingest.On("Ingest", mock.Anything, []string{"/docs/a.pdf"}).
				Return(scripts.IngestReport{Success: tt.ingestErr == nil, ChunkCount: 4}, tt.ingestErr).Once()

			payload, _ := json.Marshal(ingestPayload{DocumentID: id, Path: "/docs/a.pdf"})
			err := c.HandleIngestTask(context.Background(), queue.Task{Type: queue.TaskTypeIngest, Payload: payload})
			// Backend failures settle the document and wait for a user
			// retry; the queue must not redeliver.
			if err != nil {
				t.Fatalf("handler must not report backend failures to the queue: %v", err)
			}

			doc, _ := c.reg.Get(id)
			if doc.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, doc.Status)
			}
			if doc.StatusReason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, doc.StatusReason)
			}
		})
	}
}

func TestHandleIngestTaskDocumentRemoved(t *testing.T) {
	c, m := newTestController(Options{})
	m.ingest.On("Ingest", mock.Anything, mock.Anything).
		Return(scripts.IngestReport{Success: true}, nil).Once()

	payload, _ := json.Marshal(ingestPayload{DocumentID: uuid.New(), Path: "/docs/gone.pdf"})
	if err := c.HandleIngestTask(context.Background(), queue.Task{Type: queue.TaskTypeIngest, Payload: payload}); err != nil {
		t.Fatalf("a concurrently removed document is not a handler failure: %v", err)
	}
}

func TestHandleIngestTaskBadPayload(t *testing.T) {
	c, _ := newTestController(Options{})
	err := c.HandleIngestTask(context.Background(), queue.Task{Type: queue.TaskTypeIngest, Payload: []byte("not json")})
	if err == nil {
		t.Fatal("expected an error for an undecodable payload")
	}
}
