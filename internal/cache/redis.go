package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	profileKeyPrefix = "threes:defense:"
	positionHashKey  = "threes:positions"
)

// Redis shares defense profiles and player positions between processes.
// Keys carry no TTL; invalidation is explicit.
type Redis struct {
	client *redis.Client
}

func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type storedProfile struct {
	Guard     float64              `json:"guard"`
	Forward   float64              `json:"forward"`
	Center    float64              `json:"center"`
	Overall   float64              `json:"overall"`
	Source    domain.ProfileSource `json:"source"`
	GamesUsed int                  `json:"games_used"`
}

func (r *Redis) GetProfile(ctx context.Context, key defense.ProfileKey) (domain.DefenseProfile, bool, error) {
	raw, err := r.client.Get(ctx, profileKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DefenseProfile{}, false, nil
	}
	if err != nil {
		return domain.DefenseProfile{}, false, fmt.Errorf("failed to read defense profile: %w", err)
	}

	var p storedProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.DefenseProfile{}, false, fmt.Errorf("failed to decode defense profile: %w", err)
	}
	return domain.DefenseProfile{
		Guard:     p.Guard,
		Forward:   p.Forward,
		Center:    p.Center,
		Overall:   p.Overall,
		Source:    p.Source,
		GamesUsed: p.GamesUsed,
	}, true, nil
}

func (r *Redis) PutProfile(ctx context.Context, key defense.ProfileKey, profile domain.DefenseProfile) error {
	raw, err := json.Marshal(storedProfile{
		Guard:     profile.Guard,
		Forward:   profile.Forward,
		Center:    profile.Center,
		Overall:   profile.Overall,
		Source:    profile.Source,
		GamesUsed: profile.GamesUsed,
	})
	if err != nil {
		return fmt.Errorf("failed to encode defense profile: %w", err)
	}
	return r.client.Set(ctx, profileKeyPrefix+key.String(), raw, 0).Err()
}

func (r *Redis) DeleteProfile(ctx context.Context, key defense.ProfileKey) error {
	return r.client.Del(ctx, profileKeyPrefix+key.String()).Err()
}

func (r *Redis) GetPosition(ctx context.Context, playerID int) (domain.PositionGroup, bool, error) {
	v, err := r.client.HGet(ctx, positionHashKey, strconv.Itoa(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read player position: %w", err)
	}
	return domain.PositionGroup(v), true, nil
}

func (r *Redis) PutPosition(ctx context.Context, playerID int, group domain.PositionGroup) error {
	return r.client.HSet(ctx, positionHashKey, strconv.Itoa(playerID), string(group)).Err()
}
