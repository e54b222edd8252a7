package services

import (
	"context"
	"time"
)

// TickInterval is the wall-clock period of the game tick.
const TickInterval = time.Second

// RunClock drives the engine tick once per second until the context is
// cancelled. The tick count starts at one and never resets; day and night
// are derived from it modulo the 180 second cycle.
func (e *Engine) RunClock(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	count := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count++
			e.Tick(count)
		}
	}
}
