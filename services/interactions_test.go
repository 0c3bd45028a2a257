package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memCounts ist ein Zähler-Cache im Speicher für Tests ohne Redis.
type memCounts struct {
	entries map[string]articleCounts
	gets    int
	sets    int
	dels    int
}

func newMemCounts() *memCounts {
	return &memCounts{entries: make(map[string]articleCounts)}
}

func (m *memCounts) GetCounts(ctx context.Context, articleID string) (articleCounts, bool) {
	m.gets++
	c, ok := m.entries[articleID]
	return c, ok
}

func (m *memCounts) SetCounts(ctx context.Context, articleID string, c articleCounts) {
	m.sets++
	m.entries[articleID] = c
}

func (m *memCounts) DelCounts(ctx context.Context, articleID string) {
	m.dels++
	delete(m.entries, articleID)
}

func TestCountsServedFromCacheHit(t *testing.T) {
	cache := newMemCounts()
	cache.entries["a1"] = articleCounts{Likes: 12, Comments: 4}

	// DB bleibt nil: ein Cache-Treffer darf die Datenbank nie anfassen.
	s := &InteractionService{DB: nil, Cache: cache, Logger: zap.NewNop()}

	likes, comments, err := s.Counts(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 12, likes)
	assert.Equal(t, 4, comments)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 0, cache.sets)
}

func TestInvalidateCountsDropsCacheEntry(t *testing.T) {
	cache := newMemCounts()
	cache.entries["a1"] = articleCounts{Likes: 3, Comments: 1}

	s := &InteractionService{Cache: cache, Logger: zap.NewNop()}
	s.invalidateCounts(context.Background(), "a1")

	assert.Equal(t, 1, cache.dels)
	_, ok := cache.entries["a1"]
	assert.False(t, ok)

	// Ohne Cache ist die Invalidierung ein No-op.
	s.Cache = nil
	s.invalidateCounts(context.Background(), "a1")
}

func TestNewInteractionServiceWithoutRedisHasNoCache(t *testing.T) {
	s := NewInteractionService(nil, nil, zap.NewNop(), 0)
	assert.Nil(t, s.Cache)
}

func TestCountsKeyFormat(t *testing.T) {
	assert.Equal(t, "article:a1:counts", countsKey("a1"))
}
