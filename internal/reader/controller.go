// Package reader implements the document/session state machine behind the
// PDF reading UI: the document registry lifecycle, the selection-analysis
// orchestration, citation navigation, and podcast playback state. All
// substantive document understanding happens in external collaborators;
// this package owns the transitions, ordering and staleness rules between
// them.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdf-reader/internal/cache"
	"pdf-reader/internal/docstore"
	"pdf-reader/internal/queue"
	"pdf-reader/internal/registry"
	"pdf-reader/internal/scripts"
	"pdf-reader/internal/viewer"
)

var (
	ErrNoActiveDocument = errors.New("no document selected")
	ErrNoPodcast        = errors.New("no podcast loaded")
	ErrNotViewable      = errors.New("document cannot be opened")
)

// Capabilities are the external collaborators injected into the
// controller.
type Capabilities struct {
	Store     docstore.Store
	Queue     queue.Queue
	Cache     cache.Cache
	Viewer    viewer.Adapter
	Audio     viewer.Transport
	Ingester  scripts.Ingester
	Querier   scripts.Querier
	Insighter scripts.Insighter
	Podcaster scripts.PodcastGenerator
}

// Options tune controller behaviour. Zero values get sensible defaults.
type Options struct {
	MaxUploadSize int64
	MaxSources    int
	SettleDelay   time.Duration
	ProgressTick  time.Duration
	PodcastVoice  string
	CacheTTL      time.Duration
}

func (o *Options) withDefaults() {
	if o.MaxUploadSize <= 0 {
		o.MaxUploadSize = 50 << 20
	}
	if o.MaxSources <= 0 {
		o.MaxSources = 5
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 2 * time.Second
	}
	if o.PodcastVoice == "" {
		o.PodcastVoice = "F"
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
}

// Controller owns the reader session state. Its mutex guards the active
// document pointer, the selection session, playback and upload progress;
// the registry carries its own lock. Handlers re-read state after every
// external call instead of trusting captured snapshots.
type Controller struct {
	log  *slog.Logger
	reg  *registry.Registry
	caps Capabilities
	opts Options

	mu        sync.Mutex
	active    uuid.UUID
	session   *session
	nextToken uint64
	playing   bool
	progress  map[uuid.UUID]int

	background sync.WaitGroup
}

func New(log *slog.Logger, caps Capabilities, opts Options) *Controller {
	opts.withDefaults()
	return &Controller{
		log:      log,
		reg:      registry.New(),
		caps:     caps,
		opts:     opts,
		progress: make(map[uuid.UUID]int),
	}
}

// Registry exposes the document registry for read access.
func (c *Controller) Registry() *registry.Registry { return c.reg }

// Documents returns the registry contents in insertion order.
func (c *Controller) Documents() []registry.Document { return c.reg.List() }

// ActiveDocument returns the currently open document, if any.
func (c *Controller) ActiveDocument() (registry.Document, bool) {
	c.mu.Lock()
	id := c.active
	c.mu.Unlock()
	if id == uuid.Nil {
		return registry.Document{}, false
	}
	return c.reg.Get(id)
}

// LoadDocuments populates the registry from the document store. Ids are
// derived from name and modification time so they are stable for the
// session.
func (c *Controller) LoadDocuments(ctx context.Context) error {
	files, err := c.caps.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	for _, f := range files {
		c.reg.Add(registry.Document{
			ID:         loadedDocumentID(f),
			Name:       f.Name,
			URL:        documentURL(f.Name),
			UploadedAt: f.Modified,
			Size:       f.Size,
			Status:     registry.StatusSaved,
		})
	}
	c.log.Info("loaded existing documents", "count", len(files))
	return nil
}

// Select makes the document the active one and clears all selection and
// playback state, invalidating any in-flight analyses.
func (c *Controller) Select(id uuid.UUID) error {
	doc, ok := c.reg.Get(id)
	if !ok {
		return registry.ErrNotFound
	}
	if !doc.Status.Viewable() {
		return ErrNotViewable
	}
	c.mu.Lock()
	c.active = id
	c.clearSessionLocked()
	c.mu.Unlock()
	return nil
}

// Remove deletes the document: best-effort removal of the backing file,
// then the registry entry. Removing the active document clears the active
// pointer and all session state.
func (c *Controller) Remove(ctx context.Context, id uuid.UUID) error {
	doc, ok := c.reg.Get(id)
	if !ok {
		return nil // already gone
	}
	if err := c.caps.Store.Delete(ctx, doc.Name); err != nil {
		c.log.Warn("failed to delete backing file", "name", doc.Name, "err", err)
	}
	c.reg.Remove(id)
	c.mu.Lock()
	if c.active == id {
		c.active = uuid.Nil
		c.clearSessionLocked()
	}
	delete(c.progress, id)
	c.mu.Unlock()
	return nil
}

// Progress reports synthetic upload progress per document id.
func (c *Controller) Progress() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.progress))
	for id, p := range c.progress {
		out[id.String()] = p
	}
	return out
}

// Wait blocks until in-flight analyses and deferred navigations finish.
// Used on shutdown and by tests.
func (c *Controller) Wait() {
	c.background.Wait()
}

// clearSessionLocked drops the selection session and resets playback.
// In-flight analyses keyed to the dropped session discard their results
// on arrival. Callers hold c.mu.
func (c *Controller) clearSessionLocked() {
	c.session = nil
	c.playing = false
}

func documentURL(name string) string {
	return "/api/documents/" + url.PathEscape(name)
}

// loadedDocumentID derives a session-stable id for a document discovered
// in storage.
func loadedDocumentID(f docstore.FileInfo) uuid.UUID {
	seed := fmt.Sprintf("%s|%d", f.Name, f.Modified.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed))
}
