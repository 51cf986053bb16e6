package sessionstore

import (
	"context"
	"fmt"
	"io"

	"github.com/angelmondragon/shopdash/pkg/config"
	"github.com/angelmondragon/shopdash/pkg/db"
	"github.com/angelmondragon/shopdash/pkg/logger"
	pkgredis "github.com/angelmondragon/shopdash/pkg/redis"
)

// Open builds the backend selected by configuration. The returned closer
// releases any connection the backend holds.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Backend, io.Closer, error) {
	profile := cfg.App.Profile
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return NewMemory(), nopCloser{}, nil
	case config.SessionBackendFile:
		backend, err := NewFile(cfg.Session.Path, profile, logg)
		if err != nil {
			return nil, nil, err
		}
		return backend, nopCloser{}, nil
	case config.SessionBackendRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, err
		}
		backend, err := NewRedis(client, profile)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return backend, client, nil
	case config.SessionBackendSQLite:
		conn, err := db.New(ctx, cfg.Session.SQLitePath, logg)
		if err != nil {
			return nil, nil, err
		}
		backend, err := NewSQLite(ctx, conn.DB(), profile)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return backend, conn, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
