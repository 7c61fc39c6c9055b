package params

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Tag returns the validator rule enforcing the parameter's range.
func (d Descriptor) Tag() string {
	return fmt.Sprintf("min=%g,max=%g", d.Min, d.Max)
}

// Check reports whether v is a legal engine value for id.
func Check(id ID, v float64) error {
	if !id.Valid() {
		return fmt.Errorf("unknown parameter %d", int(id))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: not a number", id)
	}
	d := descriptors[id]
	if err := validate.Var(v, d.Tag()); err != nil {
		return fmt.Errorf("%s=%g: outside [%g, %g]", id, v, d.Min, d.Max)
	}
	if d.Kind != Float && v != math.Trunc(v) {
		return fmt.Errorf("%s=%g: want a whole number", id, v)
	}
	return nil
}

// Snapshot is a set of parameter values in engine units. Booleans are
// stored as 0 or 1.
type Snapshot map[ID]float64

// Defaults returns a complete snapshot of power-on values.
func Defaults() Snapshot {
	s := make(Snapshot, Count)
	for _, d := range descriptors {
		s[d.ID] = d.Default
	}
	return s
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	c := make(Snapshot, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Missing lists, in apply order, the parameters absent from s.
func (s Snapshot) Missing() []ID {
	var ids []ID
	for id := ID(0); id < Count; id++ {
		if _, ok := s[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Invalid lists, in apply order, the present parameters whose value fails Check.
func (s Snapshot) Invalid() []ID {
	var ids []ID
	for id := ID(0); id < Count; id++ {
		if v, ok := s[id]; ok && Check(id, v) != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Complete reports whether every parameter is present.
func (s Snapshot) Complete() bool {
	return len(s.Missing()) == 0
}

// Ordered returns the parameters present in s in apply order.
func (s Snapshot) Ordered() []ID {
	ids := make([]ID, 0, len(s))
	for id := ID(0); id < Count; id++ {
		if _, ok := s[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Fill copies into s every parameter of from that s lacks.
func (s Snapshot) Fill(from Snapshot) {
	for k, v := range from {
		if _, ok := s[k]; !ok {
			s[k] = v
		}
	}
}

// Equal reports whether both snapshots hold the same keys and values.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the snapshot keyed by parameter name, booleans as JSON booleans.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s))
	for id, v := range s {
		if !id.Valid() {
			continue
		}
		d := descriptors[id]
		if d.Kind == Bool {
			out[d.Name] = v != 0
		} else {
			out[d.Name] = v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a name-keyed object. Unknown names are skipped so
// tables written by newer builds still load.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Snapshot, len(raw))
	for name, msg := range raw {
		id, ok := ByName(name)
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(msg, &f); err == nil {
			out[id] = f
			continue
		}
		var b bool
		if err := json.Unmarshal(msg, &b); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if b {
			out[id] = 1
		} else {
			out[id] = 0
		}
	}
	*s = out
	return nil
}
