package indexer

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gorilla/mux"
	"github.com/lavanet/jsinfo-indexer/pkg/blockcache"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres/lava"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/block"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/events"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/source"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/stakes"
	"github.com/lavanet/jsinfo-indexer/pkg/logging"
	"github.com/lavanet/jsinfo-indexer/pkg/metrics"
	"github.com/lavanet/jsinfo-indexer/pkg/redis"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// fatalExitDelay is how long a fatal configuration error stays visible before exit.
const fatalExitDelay = 5 * time.Second

const snapshotTimeout = 10 * time.Minute

type App struct {
	Config Config
	Logger *zap.Logger

	DB        *lava.DB
	RPC       *rpc.LavaClient
	Cache     *blockcache.Cache
	Assembler *block.Assembler
	Stakes    *stakes.Builder
	Redis     *redis.Client
	Metrics   *metrics.Metrics

	// Cron runs the periodic full-state stake snapshot.
	Cron   *cron.Cron
	Server *http.Server

	store     blockStore
	assembler blockAssembler
	chain     headReader
	notifier  notifier
	pool      pond.Pool

	ready  atomic.Bool
	jobCtx atomic.Pointer[context.Context]
}

// Initialize wires every component. Configuration errors are fatal: they are
// logged and the process exits after a short delay.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New("indexer")
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		fatal(logger, "Unable to load configuration", err)
	}

	lavaDB, err := lava.New(ctx, logger, cfg.PostgresURL, cfg.ChunkSize, postgres.GetPoolConfigForComponent(component(cfg)))
	if err != nil {
		fatal(logger, "Unable to initialize database", err)
	}

	cache, err := blockcache.New(cfg.Cache, logger)
	if err != nil {
		fatal(logger, "Unable to open block cache", err)
	}

	// RPS: Requests per second, Burst: Burst capacity for short spikes
	rpcOpts := rpc.Opts{RPS: 50, Burst: 100, BreakerFailures: 5, BreakerCooldown: 10 * time.Second}
	client := rpc.NewLavaClient([]string{cfg.RPCURL}, []string{cfg.RESTURL}, rpcOpts)

	m := metrics.New()
	m.RegisterCacheSize(func() float64 { return float64(cache.Size()) })

	dispatcher := events.NewDispatcher(cfg.Attributes, logger, m)
	assembler := block.NewAssembler(source.New(client, cache, logger), dispatcher, logger)

	app := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        lavaDB,
		RPC:       client,
		Cache:     cache,
		Assembler: assembler,
		Stakes:    stakes.NewBuilder(client, 8, logger),
		Metrics:   m,
		store:     lavaDB,
		assembler: assembler,
		chain:     client,
		pool:      pond.NewPool(cfg.Workers, pond.WithQueueSize(cfg.BatchSize)),
	}

	if redis.Configured() {
		rdb, err := redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Redis unavailable, block notifications disabled", zap.Error(err))
		} else {
			app.Redis = rdb
			app.notifier = rdb
		}
	}

	app.SetupServer()
	if err := app.SetupScheduler(ctx, cron.DefaultLogger, cfg.SnapshotCron); err != nil {
		fatal(logger, "Unable to schedule stake snapshot", err)
	}

	return app
}

func component(cfg Config) string {
	if cfg.BackfillLanes > 0 {
		return "backfill"
	}
	return "indexer"
}

func fatal(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err), zap.Duration("exit_in", fatalExitDelay))
	_ = logger.Sync()
	time.Sleep(fatalExitDelay)
	os.Exit(1)
}

// SetupServer sets up the health and metrics server.
func (a *App) SetupServer() {
	r := mux.NewRouter()

	r.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })).Methods("GET")
	r.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if a.Ready(req.Context()) {
			w.WriteHeader(200)
		} else {
			w.WriteHeader(503)
		}
	})).Methods("GET")
	r.Path("/metrics").Handler(a.Metrics.Handler())

	a.Server = &http.Server{Addr: a.Config.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
}

// SetupScheduler sets up the cron scheduler. Jobs run under ctx until Start
// replaces it with the run context.
func (a *App) SetupScheduler(ctx context.Context, logger cron.Logger, cronSpec string) error {
	a.setJobContext(ctx)
	// Seconds field, optional
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	_, err := a.Cron.AddFunc(cronSpec, func() {
		if err := a.snapshotJob(); err != nil {
			a.Logger.Warn("stake snapshot failed", zap.Error(err))
		}
	})
	return err
}

func (a *App) setJobContext(ctx context.Context) { a.jobCtx.Store(&ctx) }

// snapshotJob is one scheduled snapshot, bounded by the run context and by
// snapshotTimeout.
func (a *App) snapshotJob() error {
	ctx := context.Background()
	if p := a.jobCtx.Load(); p != nil {
		ctx = *p
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()
	return a.Snapshot(rctx)
}

// Ready is true once bootstrap finished and the database answers.
func (a *App) Ready(ctx context.Context) bool {
	if !a.ready.Load() || a.DB == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.DB.Ping(ctx) == nil
}

// Start runs until ctx is canceled or the graceful-exit budget is spent.
func (a *App) Start(ctx context.Context) {
	if a.Config.GracefulExit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.GracefulExit)
		defer cancel()
		a.Logger.Info("graceful exit scheduled", zap.Duration("after", a.Config.GracefulExit))
	}
	a.setJobContext(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("health server stopped", zap.Error(err))
		}
	}()

	if err := a.Bootstrap(ctx); err != nil && ctx.Err() == nil {
		a.Logger.Warn("bootstrap snapshot failed, continuing with stored registries", zap.Error(err))
	}
	a.ready.Store(true)
	a.Cron.Start()
	a.Logger.Info("Cron started", zap.String("cronSpec", a.Config.SnapshotCron))

	if a.Config.BackfillLanes > 0 {
		a.RunBackfill(ctx)
	} else {
		a.RunHead(ctx)
	}

	a.Stop()
}

// Stop releases every component.
func (a *App) Stop() {
	a.ready.Store(false)
	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.Server.Shutdown(shutdownCtx)

	a.pool.StopAndWait()
	a.Stakes.Close()
	a.Cache.Close()
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.DB.Close()

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
	_ = a.Logger.Sync()
}
