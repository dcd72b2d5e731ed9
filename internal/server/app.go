// Package server wires the submission server together: storage, ingest and
// submission services, the gRPC endpoint, the dispatch scheduler and the
// Prometheus endpoint. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/filex"
	"github.com/dmitrijs2005/seqsubmit/internal/logging"
	"github.com/dmitrijs2005/seqsubmit/internal/server/config"
	"github.com/dmitrijs2005/seqsubmit/internal/server/dispatch"
	"github.com/dmitrijs2005/seqsubmit/internal/server/ftpx"
	"github.com/dmitrijs2005/seqsubmit/internal/server/metrics"
	"github.com/dmitrijs2005/seqsubmit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/seqsubmit/internal/server/services"

	gs "github.com/dmitrijs2005/seqsubmit/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDB is swapped in tests.
var openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }

type App struct {
	config            *config.Config
	logger            logging.Logger
	closeLog          func() error
	db                *sql.DB
	metrics           *metrics.Prometheus
	uploadService     *services.UploadService
	ingestService     *services.IngestService
	submissionService *services.SubmissionService
	scheduler         *dispatch.Scheduler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, closeLog, err := logging.NewServerLogger(c.LogFile, slog.LevelInfo)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app, err := newApp(ctx, c, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	app.closeLog = closeLog
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, rm, err := openStore(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	stagingDir, err := filex.EnsureDir(c.StagingDir)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("staging dir error: %w", err)
	}
	c.StagingDir = stagingDir

	rec := metrics.NewPrometheus()
	us := services.NewUploadService(c)
	is := services.NewIngestService(db, rm, c, us, logger, rec)
	ss := services.NewSubmissionService(db, rm)

	driver := dispatch.NewDriver(
		ftpx.NewDialer(c.RemoteHost, c.RemoteTimeout),
		dispatch.Credentials{User: c.RemoteUser, Password: c.RemotePassword, RootDir: c.RemoteRootDir},
		logger,
	)
	sched := dispatch.NewScheduler(rm.Submissions(db), driver, c.DispatchInterval, c.ClaimTTL, logger, rec)

	return &App{
		config:            c,
		logger:            logger,
		closeLog:          func() error { return nil },
		db:                db,
		metrics:           rec,
		uploadService:     us,
		ingestService:     is,
		submissionService: ss,
		scheduler:         sched,
	}, nil
}

// openStore returns a nil *sql.DB for the memory:// DSN.
func openStore(dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	if dsn == config.MemoryDSN {
		return nil, repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := openDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	return db, repomanager.NewPostgresRepositoryManager(), nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.uploadService, app.ingestService, app.submissionService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())

	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.scheduler.Run(ctx)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	closeDB(app.db)
	app.logger.Info(context.Background(), "App stopped")
	_ = app.closeLog()
}
