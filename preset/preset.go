package preset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-juno/params"
)

var (
	ErrInvalidName = errors.New("preset name cannot be empty")
	ErrNotFound    = errors.New("preset not found")
	ErrPersist     = errors.New("preset table not persisted")
)

// ValidationError lists the parameters that keep a snapshot from being a
// complete preset.
type ValidationError struct {
	Missing []params.ID
	Invalid []params.ID
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+joinIDs(e.Missing))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "out of range "+joinIDs(e.Invalid))
	}
	return "incomplete parameter set: " + strings.Join(parts, "; ")
}

func joinIDs(ids []params.ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return strings.Join(names, ", ")
}

// Validate returns a *ValidationError unless s holds every parameter with
// a legal value.
func Validate(s params.Snapshot) error {
	missing, invalid := s.Missing(), s.Invalid()
	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}
	return &ValidationError{Missing: missing, Invalid: invalid}
}

// Record is one stored preset.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Builtin   bool            `json:"builtin,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Params    params.Snapshot `json:"params"`
}

func (r Record) clone() Record {
	r.Params = r.Params.Clone()
	return r
}

// Table is the whole persisted preset collection keyed by name.
type Table map[string]Record

func (t Table) clone() Table {
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v.clone()
	}
	return c
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}
