// Package roster tracks which players are currently connected to the game
// server.
package roster

import (
	"context"
	"slices"
	"sync"
)

// Roster lists the players currently online.
type Roster interface {
	Online(ctx context.Context) ([]string, error)
}

// Memory is an in-process Roster fed by the presence endpoint.
type Memory struct {
	mu      sync.RWMutex
	players map[string]struct{}
}

var _ Roster = (*Memory)(nil)

// NewMemory returns an empty roster.
func NewMemory() *Memory {
	return &Memory{players: make(map[string]struct{})}
}

// Join marks player as online.
func (m *Memory) Join(player string) {
	m.mu.Lock()
	m.players[player] = struct{}{}
	m.mu.Unlock()
}

// Leave marks player as offline.
func (m *Memory) Leave(player string) {
	m.mu.Lock()
	delete(m.players, player)
	m.mu.Unlock()
}

// Reset replaces the whole roster with players.
func (m *Memory) Reset(players []string) {
	next := make(map[string]struct{}, len(players))
	for _, p := range players {
		next[p] = struct{}{}
	}

	m.mu.Lock()
	m.players = next
	m.mu.Unlock()
}

// Len returns the number of online players.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Online returns the online players sorted by name.
func (m *Memory) Online(_ context.Context) ([]string, error) {
	m.mu.RLock()
	players := make([]string, 0, len(m.players))
	for p := range m.players {
		players = append(players, p)
	}
	m.mu.RUnlock()

	slices.Sort(players)
	return players, nil
}
