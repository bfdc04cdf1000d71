package session

import (
	"context"
	"fmt"

	"github.com/zhouzirui/kannada-chat/backend/internal/config"
)

// Open builds the store selected by cfg.Backend. The returned close func is never nil.
func Open(ctx context.Context, cfg config.SessionConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(cfg.TTL), noop, nil
	case config.BackendSQLite:
		store, err := OpenSQLiteStore(ctx, cfg.DBPath, cfg.TTL)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case config.BackendFilesystem, "":
		store, err := NewFileStore(cfg.Dir, cfg.TTL)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("session: unsupported backend %q", cfg.Backend)
	}
}
