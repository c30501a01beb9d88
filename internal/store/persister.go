package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benvon/daily-agent/internal/models"
)

// Persister loads and saves the whole application state.
// Save overwrites every collection; the last writer wins.
type Persister interface {
	// Load returns the stored state, or a fresh default state when nothing is stored yet
	Load(ctx context.Context) (*models.State, error)

	// Save overwrites the stored state
	Save(ctx context.Context, state *models.State) error

	// Close releases any connection held by the backend
	Close() error
}

// encodeState serializes each collection of state under its logical name
func encodeState(state *models.State) (map[string][]byte, error) {
	values := map[string]any{
		models.StateKeyTasks:        state.Tasks,
		models.StateKeySettings:     state.Settings,
		models.StateKeyConversation: state.Conversation,
		models.StateKeyPatterns:     state.Patterns,
		models.StateKeyUsage:        state.Usage,
	}

	out := make(map[string][]byte, len(values))
	for name, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// decodeState rebuilds a state from stored collections. Missing collections keep their defaults.
func decodeState(collections map[string][]byte) (*models.State, error) {
	state := models.NewState()
	targets := map[string]any{
		models.StateKeyTasks:        &state.Tasks,
		models.StateKeySettings:     &state.Settings,
		models.StateKeyConversation: &state.Conversation,
		models.StateKeyPatterns:     &state.Patterns,
		models.StateKeyUsage:        &state.Usage,
	}

	for name, target := range targets {
		data, ok := collections[name]
		if !ok || len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
	}

	state.Normalize()
	return state, nil
}

// MemoryPersister keeps the serialized state in memory
type MemoryPersister struct {
	mu          sync.Mutex
	collections map[string][]byte
	saves       int
}

// NewMemoryPersister creates an empty in-memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{collections: make(map[string][]byte)}
}

// Load implements Persister
func (p *MemoryPersister) Load(ctx context.Context) (*models.State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return decodeState(p.collections)
}

// Save implements Persister
func (p *MemoryPersister) Save(ctx context.Context, state *models.State) error {
	collections, err := encodeState(state)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collections = collections
	p.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// Close implements Persister
func (p *MemoryPersister) Close() error {
	return nil
}
