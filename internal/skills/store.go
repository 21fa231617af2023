package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Store is the persistence boundary for skills.
// The search engine treats it as read-only; writes arrive from outside
// and are observed through OnWrite callbacks.
type Store interface {
	// All returns a snapshot of every skill.
	All(ctx context.Context) ([]Skill, error)

	// Get returns the skill with the given id, if present.
	Get(ctx context.Context, id string) (Skill, bool, error)

	// OnWrite registers a callback invoked after any create, update, or
	// delete. Callbacks must be fast; slow work belongs in the caller.
	OnWrite(fn func())
}

// MemoryStore is a map-backed Store with write notification.
// It normalizes skills at the boundary: quality scores are clamped,
// trust tiers are forced into the closed set, and per-skill UpdatedAt
// never moves backwards.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Skill
	hooks  []func()
	hookMu sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Skill)}
}

// LoadSkillsFile reads a JSON array of skills from disk into a new store.
func LoadSkillsFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skills file: %w", err)
	}

	var list []Skill
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse skills file %s: %w", path, err)
	}

	store := NewMemoryStore()
	for _, skill := range list {
		store.put(skill)
	}
	return store, nil
}

// All returns skills sorted by id for deterministic iteration.
func (m *MemoryStore) All(ctx context.Context) ([]Skill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]Skill, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns the skill with the given id.
func (m *MemoryStore) Get(ctx context.Context, id string) (Skill, bool, error) {
	if err := ctx.Err(); err != nil {
		return Skill{}, false, err
	}

	m.mu.RLock()
	s, ok := m.byID[id]
	m.mu.RUnlock()
	return s, ok, nil
}

// Put creates or updates a skill and fires write hooks.
func (m *MemoryStore) Put(skill Skill) error {
	if skill.ID == "" {
		return fmt.Errorf("skill id must not be empty")
	}
	m.put(skill)
	m.notify()
	return nil
}

func (m *MemoryStore) put(skill Skill) {
	skill.Normalize()

	m.mu.Lock()
	if prev, ok := m.byID[skill.ID]; ok && skill.UpdatedAt.Before(prev.UpdatedAt) {
		// UpdatedAt is monotonically non-decreasing per skill.
		skill.UpdatedAt = prev.UpdatedAt
	}
	if skill.UpdatedAt.IsZero() {
		skill.UpdatedAt = time.Now()
	}
	m.byID[skill.ID] = skill
	m.mu.Unlock()
}

// ReplaceAll swaps the entire contents of the store and fires write
// hooks once. Used when the backing skills file is reloaded from disk.
func (m *MemoryStore) ReplaceAll(list []Skill) {
	next := make(map[string]Skill, len(list))
	for _, skill := range list {
		skill.Normalize()
		if skill.UpdatedAt.IsZero() {
			skill.UpdatedAt = time.Now()
		}
		next[skill.ID] = skill
	}

	m.mu.Lock()
	m.byID = next
	m.mu.Unlock()

	m.notify()
}

// Delete removes a skill and fires write hooks. Deleting an absent id is
// a no-op and does not notify.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	_, existed := m.byID[id]
	delete(m.byID, id)
	m.mu.Unlock()

	if existed {
		m.notify()
	}
}

// Len returns the number of stored skills.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// OnWrite registers a write callback.
func (m *MemoryStore) OnWrite(fn func()) {
	m.hookMu.Lock()
	m.hooks = append(m.hooks, fn)
	m.hookMu.Unlock()
}

func (m *MemoryStore) notify() {
	m.hookMu.Lock()
	hooks := make([]func(), len(m.hooks))
	copy(hooks, m.hooks)
	m.hookMu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
