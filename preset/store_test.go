package preset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go-juno/params"
)

type memBackend struct {
	table Table
	saves int
	err   error
}

func (m *memBackend) Load(ctx context.Context) (Table, error) {
	if m.table == nil {
		return nil, nil
	}
	return m.table.clone(), nil
}

func (m *memBackend) Save(ctx context.Context, t Table) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.table = t.clone()
	return nil
}

type recordSender struct {
	ids    []params.ID
	values []float64
}

func (r *recordSender) SetParam(id params.ID, v float64) bool {
	r.ids = append(r.ids, id)
	r.values = append(r.values, v)
	return true
}

func openStore(t *testing.T, b Backend) (*Store, *params.Controls, *recordSender) {
	t.Helper()
	out := &recordSender{}
	controls := params.NewControls(params.NewMirror(), out)
	s, err := Open(context.Background(), b, controls)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, controls, out
}

func TestOpenSeedsBuiltins(t *testing.T) {
	b := &memBackend{}
	s, _, _ := openStore(t, b)

	want := []string{"Bass", "Classic Juno", "Init", "Lead", "Pad"}
	got := s.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v", got)
		}
	}
	if b.saves != 1 {
		t.Fatalf("seed persisted %d times", b.saves)
	}
	for _, name := range want {
		snap, _ := s.Load(name)
		if err := Validate(snap); err != nil {
			t.Errorf("builtin %s: %v", name, err)
		}
	}
}

func TestOpenFillsLegacyRecords(t *testing.T) {
	b := &memBackend{table: Table{"Old": {Name: "Old", Params: params.Snapshot{params.SawLevel: 0.9}}}}
	s, _, _ := openStore(t, b)
	snap, err := s.Load("Old")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap[params.SawLevel] != 0.9 || !snap.Complete() {
		t.Fatalf("legacy record not filled: %v", snap)
	}
	if len(s.Names()) != 1 {
		t.Fatal("non-empty table was reseeded")
	}
}

func TestSaveLoadDeepCopy(t *testing.T) {
	s, _, _ := openStore(t, &memBackend{})
	snap := params.Defaults()
	snap[params.SawLevel] = 0.33

	if err := s.Save(context.Background(), "X", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snap[params.SawLevel] = 0.99 // caller's copy must not leak in

	got, err := s.Load("X")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[params.SawLevel] != 0.33 {
		t.Fatalf("stored value changed to %g", got[params.SawLevel])
	}
	got[params.SawLevel] = 0.5
	again, _ := s.Load("X")
	if again[params.SawLevel] != 0.33 {
		t.Fatal("Load returned a live reference")
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	b := &memBackend{}
	s, _, _ := openStore(t, b)
	saves := b.saves

	for _, name := range []string{"", "   ", "\t"} {
		if err := s.Save(context.Background(), name, params.Defaults()); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q) = %v", name, err)
		}
	}

	partial := params.Snapshot{params.SawLevel: 0.5}
	err := s.Save(context.Background(), "Partial", partial)
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Missing) != int(params.Count)-1 {
		t.Fatalf("Save partial = %v", err)
	}

	bad := params.Defaults()
	bad[params.ChorusMode] = 7
	if err := s.Save(context.Background(), "Bad", bad); !errors.As(err, &ve) || len(ve.Invalid) != 1 {
		t.Fatalf("Save out of range = %v", err)
	}
	if b.saves != saves {
		t.Fatal("rejected save persisted")
	}
	if _, err := s.Load("Partial"); !errors.Is(err, ErrNotFound) {
		t.Fatal("partial preset stored")
	}
}

func TestDeleteAbsent(t *testing.T) {
	b := &memBackend{}
	s, _, _ := openStore(t, b)
	before := s.Names()
	if err := s.Delete(context.Background(), "X"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete = %v", err)
	}
	if len(s.Names()) != len(before) {
		t.Fatal("table changed")
	}
	if err := s.Delete(context.Background(), "Pad"); err != nil {
		t.Fatalf("Delete Pad: %v", err)
	}
	if _, ok := b.table["Pad"]; ok {
		t.Fatal("delete not persisted")
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	b := &memBackend{}
	s, _, _ := openStore(t, b)
	b.err = errors.New("disk full")
	err := s.Save(context.Background(), "Y", params.Defaults())
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("Save = %v", err)
	}
	if _, err := s.Load("Y"); err != nil {
		t.Fatal("in-memory save lost")
	}
}

func TestCaptureNeedsFullMirror(t *testing.T) {
	s, controls, _ := openStore(t, &memBackend{})
	var ve *ValidationError
	if _, err := s.Capture(); !errors.As(err, &ve) {
		t.Fatalf("Capture on empty mirror = %v", err)
	}
	controls.Reset()
	snap, err := s.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !snap.Equal(params.Defaults()) {
		t.Fatal("capture differs from mirror")
	}
}

func TestApplyCaptureRoundTrip(t *testing.T) {
	s, controls, _ := openStore(t, &memBackend{})
	controls.Reset()
	controls.Set(params.FilterCutoff, 0.42)
	controls.Set(params.LfoTarget, 3)

	first, err := s.Capture()
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if err := s.Apply(first); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second, _ := s.Capture()
	if !first.Equal(second) {
		t.Fatal("apply(capture()) changed the snapshot")
	}
}

func TestApplyOrderAndIncomplete(t *testing.T) {
	s, _, out := openStore(t, &memBackend{})
	if err := s.Apply(params.Snapshot{params.SawLevel: 1}); err == nil {
		t.Fatal("partial apply accepted")
	}
	if len(out.ids) != 0 {
		t.Fatal("partial apply sent commands")
	}

	if err := s.Recall("Bass"); err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(out.ids) != int(params.Count) {
		t.Fatalf("sent %d commands", len(out.ids))
	}
	for i := 1; i < len(out.ids); i++ {
		if out.ids[i] <= out.ids[i-1] {
			t.Fatalf("command %d (%s) after %s", i, out.ids[i], out.ids[i-1])
		}
	}
	if out.ids[0].Describe().Group != params.GroupOscillator {
		t.Fatal("first command not oscillator")
	}
	if out.ids[len(out.ids)-1].Describe().Group != params.GroupPerformance {
		t.Fatal("last command not performance")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go-juno", "presets.json")
	b := FileBackend{Path: path}
	s, _, _ := openStore(t, b)

	snap := params.Defaults()
	snap[params.DriftEnabled] = 0
	if err := s.Save(context.Background(), "Mine", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, _, _ := openStore(t, b)
	got, err := reopened.Load("Mine")
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if !got.Equal(snap) {
		t.Fatal("round trip changed the preset")
	}
	r, _ := reopened.Get("Bass")
	if !r.Builtin || r.ID.String() == "" {
		t.Fatalf("builtin metadata lost: %+v", r)
	}
}
