package preset

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the storage key for the preset table.
const DefaultKey = "poorHouseJunoPresets"

// FileBackend keeps the table as one JSON document.
type FileBackend struct {
	Path string
}

// DefaultPath returns ~/.config/go-juno/presets.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-juno", "presets.json"), nil
}

func (b FileBackend) Load(ctx context.Context) (Table, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return t, nil
}

// Save writes to a temp file and renames it over the old table.
func (b FileBackend) Save(ctx context.Context, t Table) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	tmp := b.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, b.Path)
}

// RedisBackend keeps the table as one JSON value under Key.
type RedisBackend struct {
	Client *redis.Client
	Key    string
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = DefaultKey
	}
	return &RedisBackend{Client: client, Key: key}
}

func (b *RedisBackend) Load(ctx context.Context) (Table, error) {
	data, err := b.Client.Get(ctx, b.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return t, nil
}

func (b *RedisBackend) Save(ctx context.Context, t Table) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return b.Client.Set(ctx, b.Key, data, 0).Err()
}
