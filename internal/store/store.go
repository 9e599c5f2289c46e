package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sapientheights/mobile-core/pkg/config"
)

// Well-known keys. Each key holds one JSON blob written wholesale, so
// partial-update races cannot occur; concurrent writers are last-write-wins.
const (
	KeyAuthToken    = "auth_token"
	KeyUserData     = "user_data"
	KeyAcademicData = "academic_data"
)

// ErrKeyNotFound is returned when a key has no stored value.
var ErrKeyNotFound = errors.New("store: key not found")

// Store is the session store capability. Implementations are chosen once
// at startup and injected; callers never branch on the backing platform.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open constructs the store selected by configuration.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreBackendFile:
		return NewFileStore(cfg.Dir)
	case config.StoreBackendSecureFile:
		return NewSecureFileStore(cfg.Dir, cfg.Key)
	case config.StoreBackendRedis:
		return NewRedisStore(cfg.Redis)
	case config.StoreBackendPostgres:
		return NewPostgresStore(cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// GetJSON reads and unmarshals the blob stored under key.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal stored value for %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals the value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
