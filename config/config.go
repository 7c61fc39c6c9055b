package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ControllerConfig remembers a MIDI input by port name.
type ControllerConfig struct {
	PortName    string `mapstructure:"port_name"`
	AutoConnect bool   `mapstructure:"auto_connect"`
}

type AudioConfig struct {
	SampleRate int
	Quantum    int
	Backend    string // oto or headless
}

type MIDIConfig struct {
	PollInterval time.Duration
	ScanTimeout  time.Duration
}

type VoiceConfig struct {
	DisplayCount int
}

type KeyboardConfig struct {
	Hold time.Duration
}

type PresetsConfig struct {
	Backend   string // file or redis
	Path      string
	RedisAddr string
	RedisKey  string
}

type ServerConfig struct {
	Enabled bool
	Addr    string
}

type LogConfig struct {
	Level string
	File  string
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastPreset string
	LastDevice string
}

// Config is the main configuration structure
type Config struct {
	Audio       AudioConfig
	MIDI        MIDIConfig
	Controllers []ControllerConfig
	Voice       VoiceConfig
	Keyboard    KeyboardConfig
	Presets     PresetsConfig
	Server      ServerConfig
	Log         LogConfig
	UI          UIConfig
}

const envPrefix = "JUNO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("audio.sample_rate", 48000)
	v.SetDefault("audio.quantum", 128)
	v.SetDefault("audio.backend", "oto")
	v.SetDefault("midi.poll_interval", time.Second)
	v.SetDefault("midi.scan_timeout", 3*time.Second)
	v.SetDefault("voice.display_count", 6)
	v.SetDefault("keyboard.hold", 250*time.Millisecond)
	v.SetDefault("presets.backend", "file")
	v.SetDefault("presets.path", "")
	v.SetDefault("presets.redis_addr", "localhost:6379")
	v.SetDefault("presets.redis_key", "poorHouseJunoPresets")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", ":8765")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("ui.last_preset", "")
	v.SetDefault("ui.last_device", "")
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, _ := decode(v)
	return cfg
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-juno"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads ~/.config/go-juno/config.yaml if present, applies JUNO_*
// environment overrides, and fills the rest with defaults.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		dir = ""
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit config directory. An empty dir reads
// no file.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Audio: AudioConfig{
			SampleRate: v.GetInt("audio.sample_rate"),
			Quantum:    v.GetInt("audio.quantum"),
			Backend:    v.GetString("audio.backend"),
		},
		MIDI: MIDIConfig{
			PollInterval: v.GetDuration("midi.poll_interval"),
			ScanTimeout:  v.GetDuration("midi.scan_timeout"),
		},
		Voice:    VoiceConfig{DisplayCount: v.GetInt("voice.display_count")},
		Keyboard: KeyboardConfig{Hold: v.GetDuration("keyboard.hold")},
		Presets: PresetsConfig{
			Backend:   v.GetString("presets.backend"),
			Path:      v.GetString("presets.path"),
			RedisAddr: v.GetString("presets.redis_addr"),
			RedisKey:  v.GetString("presets.redis_key"),
		},
		Server: ServerConfig{
			Enabled: v.GetBool("server.enabled"),
			Addr:    v.GetString("server.addr"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		UI: UIConfig{
			LastPreset: v.GetString("ui.last_preset"),
			LastDevice: v.GetString("ui.last_device"),
		},
	}
	if err := v.UnmarshalKey("midi.controllers", &cfg.Controllers); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return c.SaveTo(dir)
}

// SaveTo writes config.yaml into dir.
func (c *Config) SaveTo(dir string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("audio.sample_rate", c.Audio.SampleRate)
	v.Set("audio.quantum", c.Audio.Quantum)
	v.Set("audio.backend", c.Audio.Backend)
	v.Set("midi.poll_interval", c.MIDI.PollInterval.String())
	v.Set("midi.scan_timeout", c.MIDI.ScanTimeout.String())
	ctrls := make([]map[string]any, 0, len(c.Controllers))
	for _, ctrl := range c.Controllers {
		ctrls = append(ctrls, map[string]any{
			"port_name":    ctrl.PortName,
			"auto_connect": ctrl.AutoConnect,
		})
	}
	v.Set("midi.controllers", ctrls)
	v.Set("voice.display_count", c.Voice.DisplayCount)
	v.Set("keyboard.hold", c.Keyboard.Hold.String())
	v.Set("presets.backend", c.Presets.Backend)
	v.Set("presets.path", c.Presets.Path)
	v.Set("presets.redis_addr", c.Presets.RedisAddr)
	v.Set("presets.redis_key", c.Presets.RedisKey)
	v.Set("server.enabled", c.Server.Enabled)
	v.Set("server.addr", c.Server.Addr)
	v.Set("log.level", c.Log.Level)
	v.Set("log.file", c.Log.File)
	v.Set("ui.last_preset", c.UI.LastPreset)
	v.Set("ui.last_device", c.UI.LastDevice)

	return v.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}

// ShouldAutoConnect reports whether portName is saved with autoConnect.
func (c *Config) ShouldAutoConnect(portName string) bool {
	ctrl := c.FindController(portName)
	return ctrl != nil && ctrl.AutoConnect
}
