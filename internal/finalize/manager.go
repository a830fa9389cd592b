package finalize

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// ActionFunc is a post-removal step such as an orphan cleanup pass
type ActionFunc func(ctx context.Context) error

// Result records how one action ended
type Result struct {
	Name string
	Err  error
}

type action struct {
	name string
	fn   ActionFunc
}

// Manager queues actions that must run once after all removals.
// Actions are keyed by name; the first registration wins.
type Manager struct {
	actions []action
	names   map[string]bool
	mu      sync.Mutex
	logger  *zerolog.Logger
}

// NewManager creates a new finalize manager
func NewManager(logger *zerolog.Logger) *Manager {
	return &Manager{
		names:  make(map[string]bool),
		logger: logger,
	}
}

// Add queues fn under name unless an action with that name is already queued
func (m *Manager) Add(name string, fn ActionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.names[name] {
		return
	}
	m.names[name] = true
	m.actions = append(m.actions, action{name: name, fn: fn})
}

// Pending returns the queued action names in registration order
func (m *Manager) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.actions))
	for i, a := range m.actions {
		names[i] = a.name
	}
	return names
}

// Run executes queued actions in registration order (FIFO) and clears the
// queue. Failures are logged and returned in the results, never propagated.
func (m *Manager) Run(ctx context.Context) []Result {
	m.mu.Lock()
	actions := m.actions
	m.actions = nil
	m.names = make(map[string]bool)
	m.mu.Unlock()

	if len(actions) == 0 {
		return nil
	}

	results := make([]Result, 0, len(actions))
	for _, a := range actions {
		if m.logger != nil {
			m.logger.Debug().Str("action", a.name).Msg("running post-removal action")
		}

		err := a.fn(ctx)
		if err != nil && m.logger != nil {
			m.logger.Warn().Err(err).Str("action", a.name).Msg("post-removal action failed (ignored)")
		}
		results = append(results, Result{Name: a.name, Err: err})
	}

	return results
}
