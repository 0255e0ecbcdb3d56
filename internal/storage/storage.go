// Package storage is the storefront's durable local key/value storage.
//
// Cart, wishlist, checkout draft and session each own one key and always
// write their whole value, so the only conflict rule is last write wins.
package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/config"
)

// Keys used by the storefront. No key is shared between features.
const (
	KeyCart          = "cart"
	KeyWishlist      = "wishlist"
	KeyCheckoutDraft = "checkoutDraft"
	KeyToken         = "token"
	KeyUser          = "user"
)

// Store is durable key/value storage.
// Get returns *errors.ErrNotFound for a missing key. Subscribers are called
// after every successful Set (with the new value) or Delete (with nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Subscribe(key string, fn func(value []byte)) (cancel func())
}

// Open builds the store selected by configuration
func Open(cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageFile, "":
		return NewFileStore(cfg.StateDir, logger)
	case config.StorageRedis:
		return NewRedisStore(cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// GetJSON reads key and decodes it into v
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &DecodeError{Key: key, Err: err}
	}
	return nil
}

// DecodeError means a key holds data that is not the expected JSON
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is a *DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return stderrors.As(err, &de)
}

// SetJSON encodes v and writes it under key
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// watchers fans key changes out to in-process subscribers
type watchers struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func([]byte)
}

func (w *watchers) subscribe(key string, fn func([]byte)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.subs == nil {
		w.subs = make(map[string]map[int]func([]byte))
	}
	if w.subs[key] == nil {
		w.subs[key] = make(map[int]func([]byte))
	}
	id := w.next
	w.next++
	w.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subs[key], id)
		})
	}
}

func (w *watchers) notify(key string, value []byte) {
	w.mu.Lock()
	fns := make([]func([]byte), 0, len(w.subs[key]))
	for _, fn := range w.subs[key] {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		var cp []byte
		if value != nil {
			cp = append([]byte(nil), value...)
		}
		fn(cp)
	}
}
