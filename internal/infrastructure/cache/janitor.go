package cache

import (
	"log/slog"
	"time"
)

// startJanitor runs Sweep on every tick until Close is called.
func (c *lruCache) startJanitor(interval time.Duration) {
	c.done = make(chan struct{})
	ticker := c.clock.Ticker(interval)

	go func() {
		defer close(c.done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					c.logger.Debug("cache sweep removed expired entries",
						slog.Int("removed", removed),
						slog.Int("size", c.Stats().Size),
					)
				}
			case <-c.stop:
				return
			}
		}
	}()
}
