package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pdf-reader/internal/queue"
	"pdf-reader/internal/registry"
)

// UploadFile is one file submitted in an upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadOutcome reports a batch: accepted documents (already in the
// registry) and one rejection message per invalid file. Invalid files
// never enter the registry.
type UploadOutcome struct {
	Accepted []registry.Document `json:"accepted"`
	Rejected []string            `json:"rejected,omitempty"`
}

type ingestPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Path       string    `json:"path"`
}

// Upload runs the per-file pipeline sequentially: validate, register,
// save, synthetic progress, then hand off to ingestion. Save failures
// mark the document and move on; ingestion settles asynchronously and
// never blocks the next file's save.
func (c *Controller) Upload(ctx context.Context, files []UploadFile) UploadOutcome {
	var outcome UploadOutcome
	var valid []UploadFile
	for _, f := range files {
		if msg := c.validateUpload(f); msg != "" {
			outcome.Rejected = append(outcome.Rejected, fmt.Sprintf("%s: %s", f.Name, msg))
			continue
		}
		valid = append(valid, f)
	}

	for _, f := range valid {
		doc := registry.Document{
			ID:         uuid.New(),
			Name:       f.Name,
			URL:        documentURL(f.Name),
			UploadedAt: time.Now(),
			Size:       int64(len(f.Data)),
			Status:     registry.StatusUploading,
		}
		c.reg.Add(doc)

		saved, err := c.caps.Store.Save(ctx, f.Name, f.Data)
		if err != nil {
			c.log.Error("failed to save document", "name", f.Name, "err", err)
			c.setStatus(doc.ID, registry.StatusSaveFailed, err.Error())
			continue
		}
		c.reg.Update(doc.ID, func(d *registry.Document) {
			d.Size = saved.Size
			d.Pages = saved.Pages
		})

		c.emitProgress(doc.ID)
		c.setStatus(doc.ID, registry.StatusSaved, "")

		if err := c.RequestIngestion(ctx, doc.ID); err != nil {
			c.log.Error("failed to start ingestion", "name", f.Name, "err", err)
		}
		if doc, ok := c.reg.Get(doc.ID); ok {
			outcome.Accepted = append(outcome.Accepted, doc)
		}
	}
	return outcome
}

func (c *Controller) validateUpload(f UploadFile) string {
	if f.ContentType != "application/pdf" {
		return "only PDF files are allowed"
	}
	if int64(len(f.Data)) > c.opts.MaxUploadSize {
		return fmt.Sprintf("file size must be less than %d MB", c.opts.MaxUploadSize>>20)
	}
	return ""
}

// emitProgress steps synthetic upload progress monotonically to 100. It
// is a UI signal only; with a zero tick it degrades to an immediate 100.
func (c *Controller) emitProgress(id uuid.UUID) {
	for p := 25; p <= 100; p += 25 {
		if c.opts.ProgressTick > 0 {
			time.Sleep(c.opts.ProgressTick)
		}
		c.mu.Lock()
		c.progress[id] = p
		c.mu.Unlock()
	}
	c.mu.Lock()
	delete(c.progress, id)
	c.mu.Unlock()
}

// RequestIngestion moves the document into StatusIngesting and enqueues
// the indexing task. Legal from StatusSaved and, as a retry, from
// StatusIngestFailed; every retry is a fresh, independent call with no
// attempt limit.
func (c *Controller) RequestIngestion(ctx context.Context, id uuid.UUID) error {
	doc, ok := c.reg.Get(id)
	if !ok {
		return registry.ErrNotFound
	}
	path, err := c.caps.Store.AbsolutePath(doc.Name)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", doc.Name, err)
	}
	if err := c.setStatus(id, registry.StatusIngesting, ""); err != nil {
		return err
	}

	body, err := json.Marshal(ingestPayload{DocumentID: id, Path: path})
	if err != nil {
		c.setStatus(id, registry.StatusIngestFailed, "internal error")
		return err
	}
	task := queue.Task{Type: queue.TaskTypeIngest, Payload: body}
	if err := queue.EnqueueWithRetry(ctx, c.caps.Queue, task, 3, 200*time.Millisecond); err != nil {
		c.setStatus(id, registry.StatusIngestFailed, "ingestion queue unavailable")
		return fmt.Errorf("enqueue ingest task: %w", err)
	}
	return nil
}

// HandleIngestTask is the queue worker handler: it runs the indexing
// backend and settles the document by id. Backend failures settle as
// StatusIngestFailed and wait for an explicit user retry rather than
// queue redelivery, so the handler reports success to the queue either
// way.
func (c *Controller) HandleIngestTask(ctx context.Context, task queue.Task) error {
	var payload ingestPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode ingest payload: %w", err)
	}

	report, err := c.caps.Ingester.Ingest(ctx, []string{payload.Path})

	if _, ok := c.reg.Get(payload.DocumentID); !ok {
		c.log.Info("document removed during ingestion", "id", payload.DocumentID)
		return nil
	}
	if err != nil {
		reason := err.Error()
		if reason == "" {
			reason = "ingestion failed"
		}
		c.setStatus(payload.DocumentID, registry.StatusIngestFailed, reason)
		return nil
	}
	c.log.Info("document ingested", "id", payload.DocumentID, "chunks", report.ChunkCount)
	c.setStatus(payload.DocumentID, registry.StatusReady, "")
	return nil
}

// setStatus applies a lifecycle transition, logging (not propagating)
// concurrent-deletion no-ops and flagging illegal transitions.
func (c *Controller) setStatus(id uuid.UUID, status registry.Status, reason string) error {
	err := c.reg.SetStatus(id, status, reason)
	switch {
	case err == nil:
		return nil
	case err == registry.ErrNotFound:
		c.log.Debug("status update for removed document", "id", id, "status", status)
		return nil
	default:
		c.log.Error("illegal document transition", "id", id, "status", status, "err", err)
		return err
	}
}
