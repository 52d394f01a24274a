package program

import (
	"context"
	"time"

	"github.com/cherypallysaisurya/robotwalk/robot/engine"
)

// Playback replays an already-finalized move log at a fixed cadence,
// invoking fn for each record. It runs on its own goroutine purely for
// rendering pace: the records are copied up front and live engine state is
// never touched, so a playback can run while the caller keeps working.
// A zero delay uses the configured playback delay.
//
// The returned channel closes when the replay finishes or the context is
// canceled.
func (p *Program) Playback(ctx context.Context, delay time.Duration, fn func(engine.MoveRecord)) <-chan struct{} {
	if delay <= 0 {
		delay = p.cfg.PlaybackDelay
	}
	records := p.MoveLog()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, rec := range records {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			fn(rec)
		}
	}()
	return done
}
