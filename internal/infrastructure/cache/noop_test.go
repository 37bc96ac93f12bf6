package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_DisabledIsPassThrough(t *testing.T) {
	c := New(Config{Enabled: false, TTL: time.Minute, MaxSize: 10})
	defer c.Close()

	c.Put(key("A"), transcriptOf("a"))

	_, ok := c.Get(key("A"))
	require.False(t, ok)

	c.Remove(key("A"))
	require.Equal(t, 0, c.Clear())
	require.Equal(t, 0, c.Sweep())

	stats := c.Stats()
	require.False(t, stats.Enabled)
	require.Zero(t, stats.Size)
	require.Zero(t, stats.Capacity)
	require.Zero(t, stats.TTL)
	require.Zero(t, stats.Hits)
	require.Zero(t, stats.Misses)
}
