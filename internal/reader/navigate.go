package reader

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// OpenCitation resolves a retrieved citation back to a registry document
// and navigates the viewer to it. An unresolvable file name is a logged
// no-op. A jump within the active document happens immediately; a jump
// into a different document switches first and defers the page jump by
// the settling delay, because the viewer offers no readiness event. The
// deferred jump is dropped if the document is no longer the active one
// when the delay elapses.
func (c *Controller) OpenCitation(ctx context.Context, fileName, pageNumber string) error {
	doc, ok := c.reg.FindByName(fileName)
	if !ok {
		c.log.Info("no matching document for citation", "file", fileName)
		return nil
	}
	page, hasPage := parsePage(pageNumber)

	c.mu.Lock()
	sameDoc := c.active == doc.ID
	c.mu.Unlock()

	if sameDoc {
		if hasPage {
			c.jumpToPage(ctx, page)
		}
		return nil
	}

	if err := c.Select(doc.ID); err != nil {
		c.log.Warn("citation target not selectable", "file", doc.Name, "err", err)
		return nil
	}
	if !hasPage {
		return nil
	}

	bg := context.WithoutCancel(ctx)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		time.Sleep(c.opts.SettleDelay)
		c.mu.Lock()
		still := c.active == doc.ID
		c.mu.Unlock()
		if !still {
			c.log.Debug("deferred page jump dropped; document no longer active", "file", doc.Name)
			return
		}
		c.jumpToPage(bg, page)
	}()
	return nil
}

// jumpToPage issues the viewer call; failure is logged, never surfaced.
func (c *Controller) jumpToPage(ctx context.Context, page int) {
	ok, err := c.caps.Viewer.GoToPage(ctx, page)
	if err != nil {
		c.log.Warn("page jump failed", "page", page, "err", err)
		return
	}
	if !ok {
		c.log.Warn("viewer declined page jump", "page", page)
	}
}

// parsePage accepts the page field as reported by the retrieval backend;
// it is not always numeric ("Unknown") and occasionally fractional.
func parsePage(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}
