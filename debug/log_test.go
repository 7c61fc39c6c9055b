package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path, "debug"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	Log("router", "selected %s", "Keystation")
	Debugf("engine", "quantum %d", 128)
	for i := 0; i < 4; i++ {
		LogEvery(2, "render", "tick")
	}
	Writer("http").Write([]byte("200 GET /status\n"))
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"selected Keystation", "quantum 128", "count=2", "count=4", "200 GET /status", "router"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "count=1") {
		t.Errorf("LogEvery logged an off-cycle call")
	}
}

func TestLogBeforeEnableIsNoop(t *testing.T) {
	Disable()
	Log("x", "nothing %d", 1)
	if L() == nil {
		t.Fatal("nil logger")
	}
}
