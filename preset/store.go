package preset

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-juno/debug"
	"go-juno/params"
)

// Backend persists the whole table at once.
type Backend interface {
	// Load returns nil, nil when nothing has been stored yet.
	Load(ctx context.Context) (Table, error)
	Save(ctx context.Context, t Table) error
}

// Store is the named preset table. It reads current values from the
// parameter mirror and applies presets through the same controls a user
// edit goes through.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	table    Table
	controls *params.Controls
	now      func() time.Time
}

// Open loads the table once. An empty backend is seeded with the factory
// patches. If loading fails the store still opens with the factory
// patches, and the error is returned wrapped in ErrPersist.
func Open(ctx context.Context, backend Backend, controls *params.Controls) (*Store, error) {
	s := &Store{
		backend:  backend,
		controls: controls,
		now:      func() time.Time { return time.Now().UTC() },
	}

	t, err := backend.Load(ctx)
	if err != nil {
		debug.Warn("preset", "load failed, using factory patches: %v", err)
		s.table = Builtins()
		return s, fmt.Errorf("%w: load: %v", ErrPersist, err)
	}

	if len(t) == 0 {
		s.table = Builtins()
		debug.Log("preset", "seeded %d factory patches", len(s.table))
		return s, s.persist(ctx)
	}

	// Tables written before newer parameters existed get their defaults.
	defaults := params.Defaults()
	for name, r := range t {
		if r.Params == nil {
			r.Params = make(params.Snapshot)
		}
		r.Params.Fill(defaults)
		r.Name = name
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		t[name] = r
	}
	s.table = t
	debug.Log("preset", "loaded %d presets", len(t))
	return s, nil
}

// persist requires s.mu.
func (s *Store) persist(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.table.clone()); err != nil {
		debug.Warn("preset", "persist failed: %v", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Capture reads the full parameter set from the mirror.
func (s *Store) Capture() (params.Snapshot, error) {
	snap := s.controls.Mirror().Snapshot()
	if err := Validate(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save inserts or overwrites name with a copy of snap and persists the
// table. A persist failure is returned but the in-memory save stands.
func (s *Store) Save(ctx context.Context, name string, snap params.Snapshot) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if err := Validate(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.table[name]
	if !ok {
		r = Record{ID: uuid.New(), Name: name}
	}
	r.Builtin = false
	r.UpdatedAt = s.now()
	r.Params = snap.Clone()
	s.table[name] = r
	debug.Log("preset", "saved %q", name)
	return s.persist(ctx)
}

// Load returns a copy of the named preset's parameters.
func (s *Store) Load(name string) (params.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.table[name]
	if !ok {
		return nil, notFound(name)
	}
	return r.Params.Clone(), nil
}

// Get returns a copy of the named record.
func (s *Store) Get(name string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.table[name]
	if !ok {
		return Record{}, notFound(name)
	}
	return r.clone(), nil
}

// Delete removes name and persists the table.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.table[name]; !ok {
		return notFound(name)
	}
	delete(s.table, name)
	debug.Log("preset", "deleted %q", name)
	return s.persist(ctx)
}

// Names lists preset names sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.table))
	for n := range s.table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply sends every parameter of snap in apply order (oscillator, LFO,
// filter, filter envelope, amp envelope, chorus, performance). Nothing is
// sent if snap is incomplete.
func (s *Store) Apply(snap params.Snapshot) error {
	if err := Validate(snap); err != nil {
		return err
	}
	s.controls.Apply(snap)
	return nil
}

// Recall loads and applies the named preset.
func (s *Store) Recall(name string) error {
	snap, err := s.Load(name)
	if err != nil {
		return err
	}
	if err := s.Apply(snap); err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	debug.Log("preset", "recalled %q", name)
	return nil
}
