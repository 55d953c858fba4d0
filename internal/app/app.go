package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/migrations"
	"taskboard/internal/repo"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
	store  repo.TaskRepo
	router *gin.Engine
}

// New opens the configured store and optional Redis cache and builds the router.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = store

	opts := []service.Option{service.WithLogger(log)}
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
		a.redis = rdb
		opts = append(opts, service.WithCache(cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())))
	}

	svc := service.NewTaskService(store, opts...)
	a.router = newRouter(cfg, log, svc)
	log.Info("app ready", "store", cfg.Store.Driver, "cache", a.redis != nil)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	return errors.Join(errs...)
}

func (a *App) openStore() (repo.TaskRepo, error) {
	switch a.cfg.Store.Driver {
	case config.DriverFile:
		return repo.NewFileTaskRepo(a.cfg.Store.File)
	case config.DriverPostgres:
		if err := migrations.Up(a.cfg.PG.DSN); err != nil {
			return nil, err
		}
		db, err := newPostgres(a.cfg.PG.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		return repo.NewPGTaskRepo(db), nil
	case config.DriverNeo4j:
		driver, err := newNeo4j(a.cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		return repo.NewNeo4jTaskRepo(driver), nil
	case config.DriverMemory, "":
		return repo.NewMemoryTaskRepo(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newNeo4j(cfg config.Neo4jConfig) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("neo4j connect: %w", err)
	}
	return driver, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}
