package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Command kinds understood by the browser side of the bridge.
const (
	KindGetSelection  = "get-selection"
	KindGoToPage      = "go-to-page"
	KindAudioPlay     = "audio-play"
	KindAudioPause    = "audio-pause"
	KindAudioSeek     = "audio-seek"
	KindAudioDuration = "audio-duration"
)

// Command is one capability call queued for the widget.
type Command struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"kind"`
	Page     int       `json:"page,omitempty"`
	Position float64   `json:"position,omitempty"`
}

// Result is the widget's answer to a Command.
type Result struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Text  string    `json:"text,omitempty"`
	Value float64   `json:"value,omitempty"`
	Error string    `json:"error,omitempty"`
}

// Bridge implements Adapter and Transport over a command queue the
// browser long-polls. Each call blocks until the widget posts its result
// or the timeout fires; there is no readiness signal, only answers.
type Bridge struct {
	log     *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]chan Result
	queue   chan Command
}

func NewBridge(log *slog.Logger, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Bridge{
		log:     log,
		timeout: timeout,
		pending: make(map[uuid.UUID]chan Result),
		queue:   make(chan Command, 16),
	}
}

// NextCommand blocks until a command is queued or ctx ends; the HTTP
// layer exposes it as a long poll.
func (b *Bridge) NextCommand(ctx context.Context) (Command, bool) {
	select {
	case cmd := <-b.queue:
		return cmd, true
	case <-ctx.Done():
		return Command{}, false
	}
}

// Resolve delivers a posted result to its waiting call. Unknown ids are
// dropped: the call already timed out.
func (b *Bridge) Resolve(res Result) bool {
	b.mu.Lock()
	ch, ok := b.pending[res.ID]
	delete(b.pending, res.ID)
	b.mu.Unlock()
	if !ok {
		b.log.Debug("dropping result for unknown command", "id", res.ID)
		return false
	}
	ch <- res
	return true
}

func (b *Bridge) call(ctx context.Context, cmd Command) (Result, error) {
	cmd.ID = uuid.New()
	ch := make(chan Result, 1)
	b.mu.Lock()
	b.pending[cmd.ID] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, cmd.ID)
		b.mu.Unlock()
	}()

	select {
	case b.queue <- cmd:
	default:
		return Result{}, fmt.Errorf("%w: command queue full", ErrUnavailable)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res, nil
	case <-timer.C:
		return Result{}, ErrUnavailable
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (b *Bridge) SelectedText(ctx context.Context) (string, error) {
	res, err := b.call(ctx, Command{Kind: KindGetSelection})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", resultError(res, "get selection failed")
	}
	if res.Text == "" {
		return "", ErrNoSelection
	}
	return res.Text, nil
}

func (b *Bridge) GoToPage(ctx context.Context, page int) (bool, error) {
	res, err := b.call(ctx, Command{Kind: KindGoToPage, Page: page})
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

func (b *Bridge) Play(ctx context.Context) error {
	return b.transportCall(ctx, Command{Kind: KindAudioPlay}, "play failed")
}

func (b *Bridge) Pause(ctx context.Context) error {
	return b.transportCall(ctx, Command{Kind: KindAudioPause}, "pause failed")
}

func (b *Bridge) Seek(ctx context.Context, position float64) error {
	return b.transportCall(ctx, Command{Kind: KindAudioSeek, Position: position}, "seek failed")
}

func (b *Bridge) Duration(ctx context.Context) (float64, error) {
	res, err := b.call(ctx, Command{Kind: KindAudioDuration})
	if err != nil {
		return 0, err
	}
	if !res.OK {
		return 0, resultError(res, "duration unavailable")
	}
	return res.Value, nil
}

func (b *Bridge) transportCall(ctx context.Context, cmd Command, fallback string) error {
	res, err := b.call(ctx, cmd)
	if err != nil {
		return err
	}
	if !res.OK {
		return resultError(res, fallback)
	}
	return nil
}

func resultError(res Result, fallback string) error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return errors.New(fallback)
}
