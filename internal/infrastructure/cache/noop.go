package cache

import "github.com/hszk-dev/ytproxy/internal/domain/model"

// noopCache is used when caching is disabled: every Get misses and nothing is stored.
type noopCache struct{}

func (noopCache) Get(Key) (model.Transcript, bool) { return nil, false }

func (noopCache) Put(Key, model.Transcript) {}

func (noopCache) Remove(Key) {}

func (noopCache) Clear() int { return 0 }

func (noopCache) Sweep() int { return 0 }

func (noopCache) Stats() Stats { return Stats{} }

func (noopCache) Close() error { return nil }

// Compile-time verification that both implementations satisfy TranscriptCache.
var (
	_ TranscriptCache = (*lruCache)(nil)
	_ TranscriptCache = noopCache{}
)
