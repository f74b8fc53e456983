package watcher

import (
	"fmt"
	"log"
	"sync"
)

// Manager owns zero-or-one active watcher per logical folder role (for
// example "transcripts" and "email") and merges their streams. Swapping a
// role's folder tears the old watcher down and starts a new one atomically;
// in-flight processing for already-emitted events is unaffected.
type Manager struct {
	mu     sync.Mutex
	active map[string]*handle
	events chan Event
	errs   chan error
}

type handle struct {
	w   *Watcher
	cfg Config
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{
		active: make(map[string]*handle),
		events: make(chan Event, 64),
		errs:   make(chan error, 8),
	}
}

// Events returns the merged stable-file stream across all roles.
func (m *Manager) Events() <-chan Event { return m.events }

// Errors returns the merged watch-fault stream across all roles.
func (m *Manager) Errors() <-chan error { return m.errs }

// Start begins observing root under the given role.
func (m *Manager) Start(role, root string, cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[role]; ok {
		return fmt.Errorf("role %s already watching", role)
	}
	w, err := Observe(root, cfg)
	if err != nil {
		return fmt.Errorf("observe %s: %w", root, err)
	}
	m.active[role] = &handle{w: w, cfg: cfg}
	go m.pump(w)
	log.Printf("watching %s (%s)", root, role)
	return nil
}

// Reconfigure atomically points a role at a new folder. The old watcher
// stops sourcing events before the new one starts; the event contract is
// otherwise unchanged.
func (m *Manager) Reconfigure(role, newRoot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.active[role]
	if !ok {
		return fmt.Errorf("role %s not watching", role)
	}
	h.w.Close()
	w, err := Observe(newRoot, h.cfg)
	if err != nil {
		delete(m.active, role)
		return fmt.Errorf("observe %s: %w", newRoot, err)
	}
	m.active[role] = &handle{w: w, cfg: h.cfg}
	go m.pump(w)
	log.Printf("rewatching %s (%s)", newRoot, role)
	return nil
}

// Stop ends observation for a role. Unknown roles are a no-op.
func (m *Manager) Stop(role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.active[role]; ok {
		h.w.Close()
		delete(m.active, role)
	}
}

// Close stops every active watcher.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for role, h := range m.active {
		h.w.Close()
		delete(m.active, role)
	}
}

// pump forwards one watcher's streams into the merged channels until that
// watcher is closed.
func (m *Manager) pump(w *Watcher) {
	for {
		select {
		case <-w.Done():
			return
		case ev := <-w.Events():
			select {
			case m.events <- ev:
			case <-w.Done():
				return
			}
		case err := <-w.Errors():
			select {
			case m.errs <- err:
			default:
				log.Printf("watcher fault (queue full): %v", err)
			}
		}
	}
}
