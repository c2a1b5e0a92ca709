package reader

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"pdf-reader/internal/cache"
	"pdf-reader/internal/scripts"
	"pdf-reader/internal/viewer"
)

// session is one selection-analysis cycle. The token is the staleness
// guard: results are applied only while the session holding the same
// token is still current, so a superseded session's late arrivals are
// dropped no matter which document they belonged to.
type session struct {
	token      uint64
	documentID uuid.UUID
	text       string

	insights        *scripts.Insights
	insightsPending bool
	related         *Related
	relatedPending  bool
	podcast         *scripts.Podcast
	podcastPending  bool
}

// Related is the retrieval slot: the answer plus the displayed sources,
// truncated to the configured maximum with the full count preserved.
type Related struct {
	Answer       string           `json:"answer"`
	Sources      []scripts.Source `json:"sources"`
	TotalSources int              `json:"total_sources"`
}

// SessionView is a read-only snapshot for the HTTP layer.
type SessionView struct {
	DocumentID      uuid.UUID         `json:"document_id"`
	Text            string            `json:"text"`
	Insights        *scripts.Insights `json:"insights,omitempty"`
	InsightsPending bool              `json:"insights_pending"`
	Related         *Related          `json:"related,omitempty"`
	RelatedPending  bool              `json:"related_pending"`
	Podcast         *scripts.Podcast  `json:"podcast,omitempty"`
	PodcastPending  bool              `json:"podcast_pending"`
	Playing         bool              `json:"playing"`
}

// Session returns a snapshot of the current selection session.
func (c *Controller) Session() (SessionView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return SessionView{}, false
	}
	s := c.session
	return SessionView{
		DocumentID:      s.documentID,
		Text:            s.text,
		Insights:        s.insights,
		InsightsPending: s.insightsPending,
		Related:         s.related,
		RelatedPending:  s.relatedPending,
		Podcast:         s.podcast,
		PodcastPending:  s.podcastPending,
		Playing:         c.playing,
	}, true
}

// Analyze captures the viewer's current selection and starts a new
// selection session: three independent analyses launched concurrently,
// each writing only its own slot. A new session supersedes any running
// one; superseded results are discarded at write time.
func (c *Controller) Analyze(ctx context.Context) error {
	c.mu.Lock()
	if c.active == uuid.Nil {
		c.mu.Unlock()
		return ErrNoActiveDocument
	}
	c.mu.Unlock()

	text, err := c.caps.Viewer.SelectedText(ctx)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return viewer.ErrNoSelection
	}

	c.mu.Lock()
	// The active document may have changed while fetching the selection;
	// the session binds to whatever is active now.
	if c.active == uuid.Nil {
		c.mu.Unlock()
		return ErrNoActiveDocument
	}
	c.nextToken++
	token := c.nextToken
	c.session = &session{
		token:           token,
		documentID:      c.active,
		text:            text,
		insightsPending: true,
		relatedPending:  true,
		podcastPending:  true,
	}
	c.playing = false
	c.mu.Unlock()

	// The analyses outlive the triggering request.
	bg := context.WithoutCancel(ctx)
	c.background.Add(3)
	go c.runInsights(bg, token, text)
	go c.runRelated(bg, token, text)
	go c.runPodcast(bg, token, text)
	return nil
}

// sessionAliveLocked reports whether results for token may still be
// applied. Callers hold c.mu.
func (c *Controller) sessionAliveLocked(token uint64) bool {
	return c.session != nil && c.session.token == token
}

func (c *Controller) runInsights(ctx context.Context, token uint64, text string) {
	defer c.background.Done()
	res, err := c.caps.Insighter.Insights(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sessionAliveLocked(token) {
		c.log.Debug("discarding stale insights result")
		return
	}
	c.session.insightsPending = false
	if err != nil {
		c.log.Warn("insights analysis failed", "err", err)
		return
	}
	c.session.insights = &res
}

func (c *Controller) runRelated(ctx context.Context, token uint64, text string) {
	defer c.background.Done()

	key := cache.Key(text)
	result, err := c.lookupOrQuery(ctx, key, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sessionAliveLocked(token) {
		c.log.Debug("discarding stale retrieval result")
		return
	}
	c.session.relatedPending = false
	if err != nil {
		c.log.Warn("retrieval analysis failed", "err", err)
		return
	}
	c.session.related = c.truncateSources(result)
}

func (c *Controller) lookupOrQuery(ctx context.Context, key, text string) (scripts.QueryResult, error) {
	if cached, err := c.caps.Cache.GetQuery(ctx, key); err == nil && cached != nil {
		c.log.Debug("retrieval cache hit")
		return *cached, nil
	} else if err != nil {
		c.log.Warn("retrieval cache lookup failed", "err", err)
	}
	result, err := c.caps.Querier.Query(ctx, text)
	if err != nil {
		return scripts.QueryResult{}, err
	}
	if err := c.caps.Cache.SetQuery(ctx, key, &result, c.opts.CacheTTL); err != nil {
		c.log.Warn("failed to cache retrieval result", "err", err)
	}
	return result, nil
}

// truncateSources keeps the first MaxSources sources for display while
// preserving the reported total, so the UI can label "N of M".
func (c *Controller) truncateSources(result scripts.QueryResult) *Related {
	total := len(result.Sources)
	sources := result.Sources
	if total > c.opts.MaxSources {
		sources = sources[:c.opts.MaxSources]
	}
	return &Related{Answer: result.Answer, Sources: sources, TotalSources: total}
}

func (c *Controller) runPodcast(ctx context.Context, token uint64, text string) {
	defer c.background.Done()
	res, err := c.caps.Podcaster.Generate(ctx, text, c.opts.PodcastVoice)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sessionAliveLocked(token) {
		c.log.Debug("discarding stale podcast result")
		return
	}
	c.session.podcastPending = false
	if err != nil {
		c.log.Warn("podcast generation failed", "err", err)
		return
	}
	c.session.podcast = &res
	// A fresh podcast always starts paused.
	c.playing = false
}
