package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/dsg"
	"github.com/aretw0/dsg/internal/config"
	"github.com/aretw0/dsg/pkg/adapters/capture"
	"github.com/aretw0/dsg/pkg/adapters/file"
	httpAdapter "github.com/aretw0/dsg/pkg/adapters/http"
	"github.com/aretw0/dsg/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/dsg/pkg/adapters/redis"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/handler"
	"github.com/aretw0/dsg/pkg/observability"
	"github.com/aretw0/dsg/pkg/ports"
	"github.com/aretw0/dsg/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
)

const (
	shutdownTimeout = 5 * time.Second
	lockWait        = 5 * time.Second
	// The lock is released on exit; the TTL only bounds a crashed holder.
	lockTTL = time.Hour
)

// pipeline is everything wired around one session.
type pipeline struct {
	cfg      config.Config
	logger   *slog.Logger
	session  *dsg.Session
	recorder *handler.Recorder
	dedup    *handler.Dedup
	status   *memory.Status
	streams  *httpAdapter.StreamManager
	registry *prometheus.Registry
	redis    *backend.Client
}

// statusFanout writes every progress record to all writers.
type statusFanout []ports.StatusWriter

func (f statusFanout) WriteStatus(ctx context.Context, p domain.Progress) error {
	var errs []error
	for _, w := range f {
		if err := w.WriteStatus(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// changeLog reports the parts that survived deduplication.
type changeLog struct {
	ports.NopHandler
	logger *slog.Logger
}

func (c changeLog) FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error {
	if !part.Empty() {
		c.logger.Info("part changed", "part", part.Info.ID, "name", part.Info.Name, "digest", part.Digest())
	}
	return nil
}

func newPipeline(cfg config.Config, logger *slog.Logger) (*pipeline, error) {
	p := &pipeline{
		cfg:      cfg,
		logger:   logger,
		recorder: handler.NewRecorder(logger),
		status:   memory.NewStatus(),
		streams:  httpAdapter.NewStreamManager(logger),
		registry: prometheus.NewRegistry(),
	}
	p.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	writers := statusFanout{p.status}
	if cfg.StatusFile != "" {
		writers = append(writers, file.NewStatusFile(cfg.StatusFile))
	}

	var store ports.FingerprintStore = memory.NewStore()
	if cfg.Redis.Addr != "" {
		p.redis = backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
		opts := []redisAdapter.Option{redisAdapter.WithPrefix(cfg.Redis.Prefix), redisAdapter.WithTTL(cfg.Redis.TTL)}
		store = redisAdapter.NewFromClient(p.redis, opts...)
		writers = append(writers, redisAdapter.NewStatusPublisher(p.redis, opts...))
	}
	p.dedup = handler.NewDedup(changeLog{logger: logger}, store, logger)

	metrics := observability.NewMetrics(p.registry)
	session, err := dsg.New(handler.Multi{p.recorder, p.dedup},
		dsg.WithLogger(logger),
		dsg.WithStatusWriter(writers),
		dsg.WithTimeScale(cfg.TimeScale),
		dsg.WithNormalize(cfg.Normalize),
		dsg.WithVRMode(cfg.VRMode),
		dsg.WithLifecycleHooks(observability.Chain(metrics.Hooks(), p.streams.Hooks())),
	)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.session = session
	return p, nil
}

// Close releases the Redis client, if any.
func (p *pipeline) Close() error {
	if p.redis != nil {
		return p.redis.Close()
	}
	return nil
}

// lock takes the Redis connection lock for the configured server when enabled.
func (p *pipeline) lock(ctx context.Context) (ports.UnlockFunc, error) {
	if p.redis == nil || !p.cfg.Redis.Lock {
		return func(context.Context) error { return nil }, nil
	}
	ctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	locker := redisAdapter.NewLocker(p.redis, p.cfg.Redis.Prefix)
	return locker.Lock(ctx, p.cfg.Server, lockTTL)
}

// serveHTTP runs the inspection server until ctx is done.
func (p *pipeline) serveHTTP(ctx context.Context) {
	if p.cfg.HTTPAddr == "" {
		return
	}
	srv := &http.Server{
		Addr: p.cfg.HTTPAddr,
		Handler: httpAdapter.NewHandler(
			httpAdapter.WithStatus(p.status),
			httpAdapter.WithScene(p.recorder),
			httpAdapter.WithStreams(p.streams),
			httpAdapter.WithGatherer(p.registry),
			httpAdapter.WithLogger(p.logger),
		),
	}
	go func() {
		p.logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("HTTP server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn("HTTP server did not stop gracefully", "error", err)
		}
	}()
}

// runOptions selects how a connection is consumed.
type runOptions struct {
	control    domain.ControlRequest
	once       bool
	recordPath string
}

// run opens one connection and consumes it, either for a single update or
// until the server ends the stream.
func (p *pipeline) run(ctx context.Context, connector ports.Connector, opts runOptions) error {
	stream, err := connector.Connect(ctx)
	if err != nil {
		return err
	}
	var rec *capture.Recorder
	if opts.recordPath != "" {
		rec = capture.Record(stream)
		stream = rec
	}

	r := runner.New(p.session, stream, runner.WithLogger(p.logger), runner.WithControl(opts.control))
	if err := r.Start(ctx); err != nil {
		_ = stream.Close()
		return fmt.Errorf("failed to start session: %w", err)
	}

	if opts.once {
		err = r.HandleOneUpdate(ctx)
	} else {
		err = r.Run(ctx)
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if closeErr := r.Close(closeCtx); closeErr != nil {
		p.logger.Warn("session did not close cleanly", "error", closeErr)
	}

	if rec != nil {
		if saveErr := capture.Save(opts.recordPath, rec.Commands()); saveErr != nil {
			return errors.Join(err, saveErr)
		}
		p.logger.Info("capture saved", "path", opts.recordPath, "commands", len(rec.Commands()))
	}
	return err
}
