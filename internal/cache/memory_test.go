package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProfiles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := defense.ProfileKey{TeamID: 1610612747, Season: "2025-26"}

	_, ok, err := m.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	profile := domain.DefenseProfile{Guard: 0.4, Forward: 0.35, Center: 0.3, Overall: 0.37, Source: domain.SourceAggregated, GamesUsed: 10}
	require.NoError(t, m.PutProfile(ctx, key, profile))

	got, ok, err := m.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, profile, got)

	_, ok, _ = m.GetProfile(ctx, defense.ProfileKey{TeamID: key.TeamID, Season: "2024-25"})
	assert.False(t, ok, "season is part of the key")

	require.NoError(t, m.DeleteProfile(ctx, key))
	_, ok, _ = m.GetProfile(ctx, key)
	assert.False(t, ok)
}

func TestMemoryInstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemory(), NewMemory()
	require.NoError(t, a.PutPosition(ctx, 7, domain.Center))

	_, ok, _ := b.GetPosition(ctx, 7)
	assert.False(t, ok)

	g, ok, _ := a.GetPosition(ctx, 7)
	assert.True(t, ok)
	assert.Equal(t, domain.Center, g)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = m.PutPosition(ctx, id, domain.Forward)
			_, _, _ = m.GetPosition(ctx, id)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		g, ok, _ := m.GetPosition(ctx, i)
		assert.True(t, ok)
		assert.Equal(t, domain.Forward, g)
	}
}
