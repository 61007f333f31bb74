package cache

import (
	"context"
	"testing"

	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Ping(context.Background()))
	return r, mr
}

func TestRedisProfiles(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	key := defense.ProfileKey{TeamID: 1610612747, Season: "2025-26"}

	_, ok, err := r.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	profile := domain.DefenseProfile{Guard: 0.41, Forward: 0.35, Center: 0.30, Overall: 0.37, Source: domain.SourceAggregated, GamesUsed: 10}
	require.NoError(t, r.PutProfile(ctx, key, profile))
	assert.True(t, mr.Exists("threes:defense:1610612747_2025-26"))
	assert.Zero(t, mr.TTL("threes:defense:1610612747_2025-26"), "profiles carry no expiry")

	got, ok, err := r.GetProfile(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, profile, got)

	_, ok, err = r.GetProfile(ctx, defense.ProfileKey{TeamID: key.TeamID, Season: "2024-25"})
	require.NoError(t, err)
	assert.False(t, ok, "season is part of the key")

	profile.Guard = 0.39
	require.NoError(t, r.PutProfile(ctx, key, profile))
	got, _, err = r.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0.39, got.Guard)

	require.NoError(t, r.DeleteProfile(ctx, key))
	_, ok, err = r.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("threes:defense:1610612747_2025-26"))
}

func TestRedisPositions(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	_, ok, err := r.GetPosition(ctx, 2544)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.PutPosition(ctx, 2544, domain.Forward))
	require.NoError(t, r.PutPosition(ctx, 201939, domain.Guard))
	require.NoError(t, r.PutPosition(ctx, 2544, domain.Center))
	assert.Equal(t, string(domain.Center), mr.HGet("threes:positions", "2544"))

	g, ok, err := r.GetPosition(ctx, 2544)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Center, g)

	g, ok, err = r.GetPosition(ctx, 201939)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Guard, g)
}

func TestRedisErrors(t *testing.T) {
	ctx := context.Background()
	key := defense.ProfileKey{TeamID: 1610612747, Season: "2025-26"}

	tests := []struct {
		name  string
		setup func(t *testing.T, mr *miniredis.Miniredis)
	}{
		{"corrupt profile", func(t *testing.T, mr *miniredis.Miniredis) {
			require.NoError(t, mr.Set("threes:defense:1610612747_2025-26", "{not json"))
		}},
		{"server down", func(_ *testing.T, mr *miniredis.Miniredis) {
			mr.Close()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mr := newTestRedis(t)
			tt.setup(t, mr)
			_, ok, err := r.GetProfile(ctx, key)
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis("not-a-redis-url")
	assert.Error(t, err)
}
