package internal

import (
	"context"
	"fmt"
	"net"

	"github.com/2beens/fittrack/internal/cache"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/internal/workouts/storage/psql"
	"github.com/2beens/fittrack/internal/workouts/storage/redisstore"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Backends holds the external connections selected by the config. Both are nil
// when every store runs in memory.
type Backends struct {
	DBPool *pgxpool.Pool
	Redis  *redis.Client

	cfg *config.Config
}

func OpenBackends(ctx context.Context, cfg *config.Config) (_ *Backends, err error) {
	b := &Backends{cfg: cfg}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	if usesPostgres(cfg) {
		if err := b.openPostgres(ctx); err != nil {
			return nil, err
		}
	}
	if usesRedis(cfg) {
		b.openRedis(ctx)
	}
	return b, nil
}

func usesPostgres(cfg *config.Config) bool {
	return cfg.TemplateBackend == config.BackendPostgres || cfg.OverrideBackend == config.BackendPostgres
}

func usesRedis(cfg *config.Config) bool {
	return cfg.OverrideBackend == config.BackendRedis || cfg.WriteRateLimit > 0
}

func (b *Backends) openPostgres(ctx context.Context) error {
	poolParams := db.NewDBPoolParams{
		DBHost:         b.cfg.PostgresHost,
		DBPort:         b.cfg.PostgresPort,
		DBName:         b.cfg.PostgresDBName,
		TracingEnabled: b.cfg.HoneycombEnabled,
	}

	if err := db.Migrate(ctx, poolParams.DSN()); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}

	dbPool, err := db.NewDBPool(ctx, poolParams)
	if err != nil {
		return fmt.Errorf("new db pool: %w", err)
	}
	b.DBPool = dbPool

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}
	return nil
}

func (b *Backends) openRedis(ctx context.Context) {
	b.Redis = redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(b.cfg.RedisHost, b.cfg.RedisPort),
		Password: b.cfg.RedisPassword,
		DB:       0, // use default DB
	})
	if b.cfg.HoneycombEnabled {
		b.Redis.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := b.Redis.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}
}

// Stores builds the template and override stores. With both backends set to memory
// a single MemStore serves as both. metricsManager may be nil.
func (b *Backends) Stores(metricsManager *metrics.Manager) (workouts.TemplateRepository, workouts.OverrideLog, error) {
	var memStore *workouts.MemStore
	mem := func() *workouts.MemStore {
		if memStore == nil {
			memStore = workouts.NewMemStore()
		}
		return memStore
	}

	var templates workouts.TemplateRepository
	switch b.cfg.TemplateBackend {
	case config.BackendMemory:
		templates = mem()
	case config.BackendPostgres:
		templates = psql.NewTemplateRepo(b.DBPool)
	default:
		return nil, nil, fmt.Errorf("unsupported template backend: %s", b.cfg.TemplateBackend)
	}

	if b.cfg.TemplateCacheMB > 0 {
		templates = cache.NewTemplateCache(templates, b.cfg.TemplateCacheMB, b.cfg.TemplateCacheTTLDuration())
	}

	var overrides workouts.OverrideLog
	switch b.cfg.OverrideBackend {
	case config.BackendMemory:
		overrides = mem()
	case config.BackendPostgres:
		overrides = psql.NewOverrideRepo(b.DBPool, metricsManager)
	case config.BackendRedis:
		overrides = redisstore.NewOverrideLog(b.Redis, metricsManager)
	default:
		return nil, nil, fmt.Errorf("unsupported override backend: %s", b.cfg.OverrideBackend)
	}

	log.Infof("stores: templates [%s], overrides [%s]", b.cfg.TemplateBackend, b.cfg.OverrideBackend)
	return templates, overrides, nil
}

func (b *Backends) Close() {
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if b.DBPool != nil {
		log.Debugln("closing db pool ...")
		b.DBPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
}
