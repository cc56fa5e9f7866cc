package commands

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-factor/internal/audit"
	"github.com/wonny/aegis-factor/internal/brain"
	"github.com/wonny/aegis-factor/internal/s0_data"
	"github.com/wonny/aegis-factor/internal/strategyconfig"
	"github.com/wonny/aegis-factor/pkg/config"
	"github.com/wonny/aegis-factor/pkg/database"
	"github.com/wonny/aegis-factor/pkg/httputil"
	"github.com/wonny/aegis-factor/pkg/logger"
	"github.com/wonny/aegis-factor/pkg/redis"
)

const cachePrefix = "aegis-factor"

// pipelineEnv bundles everything a command needs to run the pipeline
type pipelineEnv struct {
	cfg  *config.Config
	log  *logger.Logger
	orch *brain.Orchestrator
	db   *database.DB
	rdb  *redis.Client
}

type pipelineOptions struct {
	exportDir        string
	defaultExportDir bool // fall back to EXPORT_DIR when exportDir is empty
	persist          bool
}

// newEnv loads config with the global flag overrides and builds the logger
func newEnv() (*pipelineEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataPath != "" {
		cfg.DataPath = dataPath
	}
	if strategyPath != "" {
		cfg.StrategyConfig = strategyPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return &pipelineEnv{cfg: cfg, log: logger.New(cfg)}, nil
}

// newPipeline wires the orchestrator on top of newEnv.
// Persistence opens the database and makes sure the result schema exists.
func newPipeline(ctx context.Context, opts pipelineOptions) (*pipelineEnv, error) {
	env, err := newEnv()
	if err != nil {
		return nil, err
	}
	cfg, log := env.cfg, env.log

	strategy, _, err := strategyconfig.LoadOrDefault(cfg.StrategyConfig)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}

	fields := []string{
		strategy.Data.CloseField,
		strategy.Data.EquityField,
		strategy.Data.LiabilitiesField,
		strategy.Data.NetIncomeField,
	}
	var loader s0_data.Loader
	if s0_data.IsRemote(cfg.DataPath) {
		client := httputil.New(cfg.HTTP, log)
		loader = s0_data.NewRemoteLoader(cfg.DataPath, cfg.HTTP.CacheDir, fields, client, log.Stage("S0:Data"))
	} else {
		loader = s0_data.NewLoader(cfg.DataPath, fields, log.Stage("S0:Data"))
	}

	orch, err := brain.NewOrchestrator(strategy, loader, log)
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	env.orch = orch

	dir := opts.exportDir
	if dir == "" && opts.defaultExportDir {
		dir = cfg.ExportDir
	}
	if dir != "" {
		orch.SetExporter(s0_data.NewExporter(dir, log.Stage("S0:Data")))
	}

	if opts.persist {
		if !cfg.Database.Enabled() {
			return nil, fmt.Errorf("--persist requires DATABASE_URL")
		}
		reports, err := env.openReports(ctx)
		if err != nil {
			env.Close()
			return nil, err
		}
		orch.SetStore(reports.store)
	}

	return env, nil
}

// reportStack is the persistence side: Postgres plus the optional Redis cache
type reportStack struct {
	cache *audit.ReportCache
	store *audit.CachingStore
}

// openReports connects Postgres and Redis (when REDIS_URL is set)
func (e *pipelineEnv) openReports(ctx context.Context) (*reportStack, error) {
	db, err := database.New(ctx, e.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	e.db = db

	repo := audit.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	rdb, err := redis.New(ctx, e.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	e.rdb = rdb

	cache := audit.NewReportCache(redis.NewCache(rdb, cachePrefix), repo, e.cfg.Redis.ReportTTL, e.log)
	return &reportStack{
		cache: cache,
		store: audit.NewCachingStore(repo, cache),
	}, nil
}

// Close releases the database pool and Redis client, if any
func (e *pipelineEnv) Close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.rdb != nil {
		e.rdb.Close()
	}
}
