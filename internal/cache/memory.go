// Package cache holds the in-process and Redis implementations of the defense stores.
package cache

import (
	"context"
	"sync"

	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/domain"
)

// Memory is a session-scoped store for defense profiles and player positions.
// Each instance is independent; nothing is shared through package state.
type Memory struct {
	mu        sync.RWMutex
	profiles  map[defense.ProfileKey]domain.DefenseProfile
	positions map[int]domain.PositionGroup
}

func NewMemory() *Memory {
	return &Memory{
		profiles:  make(map[defense.ProfileKey]domain.DefenseProfile),
		positions: make(map[int]domain.PositionGroup),
	}
}

func (m *Memory) GetProfile(_ context.Context, key defense.ProfileKey) (domain.DefenseProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[key]
	return p, ok, nil
}

func (m *Memory) PutProfile(_ context.Context, key defense.ProfileKey, profile domain.DefenseProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[key] = profile
	return nil
}

func (m *Memory) DeleteProfile(_ context.Context, key defense.ProfileKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, key)
	return nil
}

func (m *Memory) GetPosition(_ context.Context, playerID int) (domain.PositionGroup, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.positions[playerID]
	return g, ok, nil
}

func (m *Memory) PutPosition(_ context.Context, playerID int, group domain.PositionGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[playerID] = group
	return nil
}
