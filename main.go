package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"go-juno/audio"
	"go-juno/bridge"
	"go-juno/config"
	"go-juno/debug"
	"go-juno/engine"
	"go-juno/midi"
	"go-juno/params"
	"go-juno/preset"
	"go-juno/server"
	"go-juno/theme"
	"go-juno/tui"
	"go-juno/voice"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = debug.DefaultPath()
	}
	if err := debug.Enable(logPath, cfg.Log.Level); err != nil {
		fmt.Printf("log: %v\n", err)
	}
	defer debug.Disable()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge and engine
	ch := bridge.NewChannel()
	defer ch.Close()
	dispatcher := bridge.NewDispatcher(ch, engine.New, float64(cfg.Audio.SampleRate), cfg.Audio.Quantum)
	loop := bridge.NewRenderLoop(dispatcher)
	defer loop.Shutdown()

	out, err := openOutput(cfg, loop)
	if err != nil {
		return err
	}
	defer out.Close()

	// MIDI inputs
	scanner := midi.DriverScanner{Timeout: cfg.MIDI.ScanTimeout}
	deviceMgr := midi.NewDeviceManager(scanner, cfg.MIDI.PollInterval)
	tracker := voice.NewTracker(cfg.Voice.DisplayCount)
	router := midi.NewRouter(ch, tracker, deviceMgr)
	defer router.Close()
	router.SetAutoConnect(func(p midi.Port) bool { return cfg.ShouldAutoConnect(p.Name) })
	go router.Watch(ctx, deviceMgr.Events())
	go deviceMgr.Run(ctx)

	// Parameters and presets
	controls := params.NewControls(params.NewMirror(), ch)
	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	store, err := preset.Open(ctx, backend, controls)
	if err != nil {
		debug.Warn("preset", "open: %v", err)
	}

	statuses := make(chan bridge.Status, 8)
	go pumpStatus(ctx, ch, controls, store, cfg.UI.LastPreset, statuses)
	ch.Init()

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.New(server.Deps{
			Engine:   dispatcher,
			Devices:  deviceMgr,
			Router:   router,
			Voices:   tracker,
			Store:    store,
			Controls: controls,
		})
		go func() {
			if err := srv.Listen(cfg.Server.Addr); err != nil {
				debug.Warn("http", "listen: %v", err)
			}
		}()
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()
			srv.Shutdown(sctx)
		}()
	}

	keyboard := midi.NewVirtualKeyboard(router, cfg.Keyboard.Hold)
	router.OnReleaseAll(keyboard.Forget)

	th := theme.New(loadPalette())
	m := tui.NewModel(tui.Deps{
		Controls:   controls,
		Store:      store,
		Router:     router,
		Devices:    deviceMgr,
		Tracker:    tracker,
		Keyboard:   keyboard,
		Engine:     dispatcher,
		Init:       func() { ch.Init() },
		Statuses:   statuses,
		Config:     cfg,
		SaveConfig: (*config.Config).Save,
	}, th)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	router.ReleaseAll()
	return err
}

// openOutput starts the sound card when one is available and falls back
// to a ticker that keeps the engine running without audio.
func openOutput(cfg *config.Config, loop *bridge.RenderLoop) (audio.Output, error) {
	if cfg.Audio.Backend != "headless" && audio.Available() {
		host := audio.NewHost(loop)
		out, err := audio.NewOtoOutput(host, cfg.Audio.SampleRate)
		if err == nil {
			if err := out.Start(); err != nil {
				return nil, err
			}
			debug.Log("audio", "oto output at %d Hz", cfg.Audio.SampleRate)
			return out, nil
		}
		debug.Warn("audio", "oto unavailable: %v", err)
	}
	t := audio.NewTicker(loop)
	if err := t.Start(); err != nil {
		return nil, err
	}
	debug.Log("audio", "headless ticker every %v", t.Period())
	return t, nil
}

func openBackend(cfg *config.Config) (preset.Backend, error) {
	switch cfg.Presets.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Presets.RedisAddr})
		return preset.NewRedisBackend(client, cfg.Presets.RedisKey), nil
	case "", "file":
		path := cfg.Presets.Path
		if path == "" {
			p, err := preset.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return preset.FileBackend{Path: path}, nil
	}
	return nil, fmt.Errorf("unknown preset backend %q", cfg.Presets.Backend)
}

func loadPalette() *theme.Palette {
	dir, err := config.ConfigDir()
	if err != nil {
		return theme.Plasma()
	}
	return theme.LoadOrDefault(filepath.Join(dir, "palette.gpl"))
}

// pumpStatus forwards engine statuses to the UI. Once the engine is built
// the mirror is resent, or the last preset recalled if nothing is set yet.
func pumpStatus(ctx context.Context, ch *bridge.Channel, controls *params.Controls, store *preset.Store, last string, out chan<- bridge.Status) {
	defer close(out)
	for {
		s, err := ch.WaitStatus(ctx)
		if err != nil {
			return
		}
		debug.Log("bridge", "status %s", s)
		if s.Kind == bridge.StatusInitialized {
			switch {
			case controls.Mirror().Snapshot().Complete():
				controls.Sync()
			case last != "" && store.Recall(last) == nil:
			default:
				controls.Reset()
			}
		}
		select {
		case out <- s:
		case <-ctx.Done():
			return
		}
	}
}
