package principals

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/videotube/internal/server/config"
	"github.com/redis/go-redis/v9"
)

// Open builds the repository selected by cfg.StorageBackend, wrapped with
// the configured per-call timeout. The returned closer releases the
// underlying connection.
func Open(ctx context.Context, cfg *config.Config) (Repository, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return WithTimeout(NewPostgresRepository(db), cfg.StorageTimeout), db, nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return WithTimeout(NewRedisRepository(rdb, DefaultRedisPrefix), cfg.StorageTimeout), rdb, nil

	case config.StorageMemory:
		return WithTimeout(NewMemoryRepository(), cfg.StorageTimeout), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
