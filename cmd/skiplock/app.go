package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velmie/skiplock"
	"github.com/velmie/skiplock/cmd/internal/config"
	"github.com/velmie/skiplock/mysql"
	"github.com/velmie/skiplock/postgres"
	"github.com/velmie/skiplock/prom"
)

const metricsShutdownTimeout = 5 * time.Second

// backend hides the transaction type so commands can stay driver-agnostic.
type backend interface {
	inserter() skiplock.Inserter
	newPass(pool *skiplock.Pool, opts ...skiplock.CycleOption) skiplock.Pass
	applySchema(ctx context.Context) error
	close()
}

// app owns process-scoped infrastructure. newApp builds it and shutdown releases it in reverse.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	backend   backend
	pool      *skiplock.Pool
	metrics   skiplock.Metrics
	server    *http.Server
	scheduler *skiplock.Scheduler
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		backend: b,
		pool:    skiplock.NewPool(cfg.Workers),
		metrics: skiplock.NopMetrics{},
	}
	if cfg.MetricsAddr != "" {
		if err := a.serveMetrics(); err != nil {
			a.pool.Close()
			b.close()
			return nil, err
		}
	}

	return a, nil
}

func (a *app) pass(handler skiplock.Handler) skiplock.Pass {
	return a.backend.newPass(a.pool,
		skiplock.WithHandler(handler),
		skiplock.WithClaimLimit(a.cfg.ClaimLimit),
		skiplock.WithLogger(a.logger),
		skiplock.WithMetrics(a.metrics),
		skiplock.WithBacklogInterval(a.cfg.BacklogInterval),
	)
}

func (a *app) serveMetrics() error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := prom.New(reg, prom.WithConstLabels(prometheus.Labels{"driver": a.cfg.Driver}))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	a.metrics = metrics

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	a.server = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("skiplock metrics listening", "addr", a.cfg.MetricsAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("skiplock metrics server failed", "err", err)
		}
	}()

	return nil
}

// shutdown stops the scheduler (waiting for the current pass), joins the workers,
// stops the metrics endpoint and closes the database pool.
func (a *app) shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	a.pool.Close()

	var err error
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
		defer cancel()
		if serr := a.server.Shutdown(shutdownCtx); serr != nil {
			err = fmt.Errorf("metrics shutdown: %w", serr)
		}
	}
	a.backend.close()

	return err
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		b, err := openMySQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.DriverPostgres:
		b, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

func schemaFor(cfg *config.Config) (string, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Schema(cfg.Table)
	case config.DriverPostgres:
		return postgres.Schema(cfg.Table)
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

type mysqlBackend struct {
	db    *sql.DB
	store *mysql.Store
}

func openMySQL(ctx context.Context, cfg *config.Config) (*mysqlBackend, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	db.SetMaxOpenConns(int(cfg.DBMaxConns))
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	store, err := mysql.NewStore(db, mysql.WithTable(cfg.Table))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &mysqlBackend{db: db, store: store}, nil
}

func (b *mysqlBackend) inserter() skiplock.Inserter { return b.store }

func (b *mysqlBackend) newPass(pool *skiplock.Pool, opts ...skiplock.CycleOption) skiplock.Pass {
	return skiplock.NewCycle[*sql.Tx](b.store, pool, opts...)
}

func (b *mysqlBackend) applySchema(ctx context.Context) error {
	ddl, err := mysql.Schema(b.store.Table())
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, ddl)
	return err
}

func (b *mysqlBackend) close() { _ = b.db.Close() }

type postgresBackend struct {
	pool  *pgxpool.Pool
	store *postgres.Store
}

func openPostgres(ctx context.Context, cfg *config.Config) (*postgresBackend, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("database: parse dsn: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = cfg.DBMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	store, err := postgres.NewStore(pool, postgres.WithTable(cfg.Table))
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &postgresBackend{pool: pool, store: store}, nil
}

func (b *postgresBackend) inserter() skiplock.Inserter { return b.store }

func (b *postgresBackend) newPass(pool *skiplock.Pool, opts ...skiplock.CycleOption) skiplock.Pass {
	return skiplock.NewCycle[pgx.Tx](b.store, pool, opts...)
}

func (b *postgresBackend) applySchema(ctx context.Context) error {
	ddl, err := postgres.Schema(b.store.Table())
	if err != nil {
		return err
	}
	_, err = b.pool.Exec(ctx, ddl)
	return err
}

func (b *postgresBackend) close() { b.pool.Close() }
