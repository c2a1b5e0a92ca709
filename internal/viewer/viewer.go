// Package viewer models the embedded PDF widget as an injected
// capability. The widget itself runs in the browser; the Bridge relays
// capability calls to it as commands and waits for posted results.
package viewer

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the widget did not answer within the deadline.
	ErrUnavailable = errors.New("viewer unavailable")
	// ErrNoSelection means the widget reported no selected text.
	ErrNoSelection = errors.New("no text selected")
)

// Adapter is the widget's capability surface used by the reader core.
// Both operations are asynchronous and fallible with no latency bound.
type Adapter interface {
	// SelectedText returns the currently selected text, trimmed by the
	// caller. ErrNoSelection when nothing is selected.
	SelectedText(ctx context.Context) (string, error)
	// GoToPage navigates the viewer to the 1-based page. The returned
	// bool is the widget's own success report.
	GoToPage(ctx context.Context, page int) (bool, error)
}

// Transport is the external audio element capability for podcast
// playback.
type Transport interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	// Seek positions playback; callers clamp to [0, duration].
	Seek(ctx context.Context, position float64) error
	// Duration reports the loaded artifact's length in seconds.
	Duration(ctx context.Context) (float64, error)
}
