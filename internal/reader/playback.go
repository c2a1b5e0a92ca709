package reader

import "context"

// TogglePlayback flips podcast playback against the audio transport and
// returns the new playing state. Requires a podcast in the current
// session; playback always resets to paused when the session or podcast
// changes.
func (c *Controller) TogglePlayback(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.session == nil || c.session.podcast == nil {
		c.mu.Unlock()
		return false, ErrNoPodcast
	}
	token := c.session.token
	playing := c.playing
	c.mu.Unlock()

	var err error
	if playing {
		err = c.caps.Audio.Pause(ctx)
	} else {
		err = c.caps.Audio.Play(ctx)
	}
	if err != nil {
		return playing, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The session may have been invalidated while the transport call was
	// in flight; in that case playback state was already reset.
	if !c.sessionAliveLocked(token) {
		return false, nil
	}
	c.playing = !playing
	return c.playing, nil
}

// SeekPodcast clamps the requested position to [0, duration] and issues
// a direct transport seek. Returns the effective position.
func (c *Controller) SeekPodcast(ctx context.Context, position float64) (float64, error) {
	c.mu.Lock()
	hasPodcast := c.session != nil && c.session.podcast != nil
	c.mu.Unlock()
	if !hasPodcast {
		return 0, ErrNoPodcast
	}

	duration, err := c.caps.Audio.Duration(ctx)
	if err != nil {
		return 0, err
	}
	if position < 0 {
		position = 0
	}
	if position > duration {
		position = duration
	}
	if err := c.caps.Audio.Seek(ctx, position); err != nil {
		return 0, err
	}
	return position, nil
}
