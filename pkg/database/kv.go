package database

import (
	"context"
	"errors"
	"fmt"
	"quizify_backend/internal/config"
	"strings"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// KVStore is the durable key-value layer the record stores persist whole
// collections into. A missing key is reported as found == false, not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

var ErrInvalidKey = errors.New("invalid storage key")

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// NewKVStore builds the backend selected by cfg.Store.Type. db and rdb are only
// required for the mysql and redis backends.
func NewKVStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (KVStore, error) {
	switch cfg.Store.Type {
	case "memory":
		return NewMemoryKV(), nil
	case "file", "":
		return NewFileKV(cfg.Store.Path)
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis store requires a redis client")
		}
		return NewRedisKV(rdb, cfg.Store.KeyPrefix), nil
	case "mysql":
		if db == nil {
			return nil, errors.New("mysql store requires a database connection")
		}
		return NewGormKV(db), nil
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
}
