package preset_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"go-juno/bridge"
	"go-juno/bridge/bridgetest"
	"go-juno/params"
	"go-juno/preset"
)

type sharedBackend struct {
	table preset.Table
}

func (b *sharedBackend) Load(ctx context.Context) (preset.Table, error) { return b.table, nil }
func (b *sharedBackend) Save(ctx context.Context, t preset.Table) error {
	b.table = t
	return nil
}

// Saving on one store and applying from another must reach every engine
// setter with the saved value, oscillator section first.
func TestBassReachesEngine(t *testing.T) {
	backend := &sharedBackend{}

	editor := params.NewControls(params.NewMirror(), bridge.NewChannel())
	src, err := preset.Open(context.Background(), backend, editor)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	bass, _ := src.Load("Bass")
	bass[params.SawLevel] = 0.8
	bass[params.SubLevel] = 0.6
	bass[params.FilterCutoff] = 0.4
	if err := src.Save(context.Background(), "My Bass", bass); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ch := bridge.NewChannel()
	eng := bridgetest.New()
	d := bridge.NewDispatcher(ch, eng.Constructor(), 48000, 128)
	defer d.Close()
	loop := bridge.NewRenderLoop(d)
	buf := make([]float32, 128)

	ch.Init()
	loop.Process(buf, buf)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		s, err := ch.WaitStatus(ctx)
		if err != nil {
			t.Fatalf("WaitStatus: %v", err)
		}
		if s.Kind == bridge.StatusInitialized {
			break
		}
	}

	player := params.NewControls(params.NewMirror(), ch)
	dst, err := preset.Open(context.Background(), backend, player)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := dst.Recall("My Bass"); err != nil {
		t.Fatalf("Recall: %v", err)
	}
	loop.Process(buf, buf)

	calls := eng.Params()
	if len(calls) != int(params.Count) {
		t.Fatalf("engine got %d setter calls", len(calls))
	}
	for i, c := range calls {
		if c.ID != params.ID(i) {
			t.Fatalf("call %d is %s", i, c.ID)
		}
		want := bass[c.ID]
		if d := params.ID(i).Describe(); d.Kind == params.Float {
			want = float64(float32(want))
		}
		if c.Value != want {
			t.Errorf("%s = %g, want %g", c.ID, c.Value, want)
		}
	}
}

func TestRedisBackend(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	key := "go-juno-test-" + time.Now().Format("150405.000000")
	defer client.Del(ctx, key)
	b := preset.NewRedisBackend(client, key)

	if tbl, err := b.Load(ctx); err != nil || tbl != nil {
		t.Fatalf("Load empty = %v, %v", tbl, err)
	}

	controls := params.NewControls(params.NewMirror(), bridge.NewChannel())
	s, err := preset.Open(ctx, b, controls)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Delete(ctx, "Lead"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	again, err := preset.Open(ctx, b, controls)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(again.Names()) != 4 {
		t.Fatalf("names after reopen = %v", again.Names())
	}
}
