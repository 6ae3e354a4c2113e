// Package control assembles the ingestion engine from configuration and
// manages its lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"firegate/internal/core/config"
	"firegate/internal/core/domain"
	"firegate/internal/faults"
	"firegate/internal/infra/alert"
	redisclient "firegate/internal/infra/redis"
	"firegate/internal/infra/storage"
	"firegate/internal/infra/storage/memory"
	"firegate/internal/infra/storage/postgres"
	"firegate/internal/ingest"
	"firegate/internal/monitor"
	"firegate/internal/validation"
)

// Engine is the main application struct that manages the ingestion pipeline.
type Engine struct {
	cfg          *config.AppConfig
	validator    *validation.Validator
	monitor      *monitor.Monitor
	router       *faults.Router
	sources      []ingest.Source
	intervals    map[string]time.Duration
	retryQueues  map[string]*redisclient.RetryQueue
	healthServer *monitor.Server

	quarantineRepo storage.QuarantineRepository
	errorRepo      storage.ErrorRepository
	metricsRepo    storage.MetricsRepository

	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewEngine creates a new Engine instance with all dependencies initialized.
func NewEngine(cfg *config.AppConfig) (*Engine, error) {
	// 1. Initialize Storage
	var quarantineRepo storage.QuarantineRepository
	var errorRepo storage.ErrorRepository
	var metricsRepo storage.MetricsRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		quarantineRepo = postgres.NewQuarantineRepo(db)
		errorRepo = postgres.NewErrorRepo(db)
		metricsRepo = postgres.NewMetricsRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		quarantineRepo = memory.NewQuarantineRepo(store)
		errorRepo = memory.NewErrorRepo(store)
		metricsRepo = memory.NewMetricsRepo(store)
		slog.Info("Using Memory storage")
	}

	// 2. Build the rule set
	rules, err := buildRules(cfg.Rules)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		rules = validation.DefaultWildfireRules()
		slog.Info("No rules configured, using default wildfire rule set")
	}
	validator := validation.NewValidator(rules...)

	// 3. Alerting and quality monitoring
	webhook := alert.NewWebhook(cfg.Alert, slog.Default())
	qualityMon := monitor.NewMonitor(cfg.Quality.Threshold, func(b monitor.Breach) {
		webhook.Alert(context.Background(), domain.ErrorRecord{
			ErrorID:   fmt.Sprintf("BREACH_%d", b.Timestamp.Unix()),
			ErrorType: "quality_threshold",
			Message:   fmt.Sprintf("quality score %.1f below threshold %.1f", b.Score, b.Threshold),
			Severity:  domain.SeverityHigh,
			Source:    b.Source,
			Timestamp: b.Timestamp,
		})
	})

	// 4. Fault routing
	router := faults.NewRouter(cfg.Retry, webhook,
		quarantineSink{repo: quarantineRepo},
		errorSink{repo: errorRepo})

	// 5. Ingestion sources
	var sources []ingest.Source
	intervals := make(map[string]time.Duration)
	for _, sc := range cfg.Sources {
		src, err := buildSource(sc)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
		intervals[sc.Name] = sc.Interval
	}

	// 6. Redis retry queues
	var redisClient *redisclient.Client
	retryQueues := make(map[string]*redisclient.RetryQueue)
	if cfg.Redis.URL != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, retry queue disabled", "error", err)
		} else {
			for _, src := range sources {
				retryQueues[src.Name()] = redisclient.NewRetryQueue(redisClient, src.Name())
			}
		}
	}

	// 7. Health server
	healthServer := monitor.NewServer(qualityMon, pendingCounter{
		quarantine: quarantineRepo,
		errors:     errorRepo,
	}, cfg.Server.Port)

	return &Engine{
		cfg:            cfg,
		validator:      validator,
		monitor:        qualityMon,
		router:         router,
		sources:        sources,
		intervals:      intervals,
		retryQueues:    retryQueues,
		healthServer:   healthServer,
		quarantineRepo: quarantineRepo,
		errorRepo:      errorRepo,
		metricsRepo:    metricsRepo,
		db:             db,
		redisClient:    redisClient,
		log:            slog.Default(),
	}, nil
}

// Start starts the engine and all its components.
func (e *Engine) Start(ctx context.Context) error {
	go func() {
		if err := e.healthServer.Start(); err != nil {
			e.log.Error("Health server failed", "error", err)
		}
	}()

	for _, src := range e.sources {
		e.log.Info("Starting ingestion loop", "source", src.Name())
		go e.runSource(ctx, src)
	}

	for name, queue := range e.retryQueues {
		e.log.Info("Starting retry worker", "source", name)
		go e.runRetryWorker(ctx, name, queue)
	}

	return nil
}

// Stop stops the engine.
func (e *Engine) Stop(ctx context.Context) error {
	e.log.Info("Stopping Engine...")

	if e.redisClient != nil {
		if err := e.redisClient.Close(); err != nil {
			e.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Warn("Failed to close database", "error", err)
		}
	}

	return e.healthServer.Stop(ctx)
}

// Validator exposes the configured validator.
func (e *Engine) Validator() *validation.Validator { return e.validator }

// Router exposes the fault router.
func (e *Engine) Router() *faults.Router { return e.router }

// Monitor exposes the quality monitor.
func (e *Engine) Monitor() *monitor.Monitor { return e.monitor }

// runSource pulls batches from one source on its configured interval until
// the source drains or the context is cancelled.
func (e *Engine) runSource(ctx context.Context, src ingest.Source) {
	interval := e.intervals[src.Name()]
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		drained, err := e.ingestOnce(ctx, src)
		if err != nil {
			e.log.Error("Ingestion failed", "source", src.Name(), "error", err)
			e.enqueueRetry(ctx, src.Name(), err)
		}
		if drained {
			e.log.Info("Source drained", "source", src.Name())
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ingestOnce extracts and validates one batch. Extraction faults go through
// the router; drained reports true when the source yielded no records.
func (e *Engine) ingestOnce(ctx context.Context, src ingest.Source) (drained bool, err error) {
	var batch domain.Batch
	op := func(ctx context.Context) error {
		var exErr error
		batch, exErr = src.Extract(ctx)
		if exErr != nil {
			monitor.RetryAttempts.WithLabelValues(src.Name()).Inc()
		}
		return exErr
	}

	outcome, err := e.router.Execute(ctx, op, faults.Occurrence{Source: src.Name()})
	if outcome.Action != "" {
		monitor.FaultsRouted.WithLabelValues(src.Name(), string(outcome.Action)).Inc()
	}
	if err != nil {
		return false, err
	}
	if len(batch) == 0 {
		return true, nil
	}

	e.ProcessBatch(ctx, src.Name(), batch)
	return false, nil
}

// ProcessBatch validates one batch, records its quality, quarantines the
// failing records, and persists the quality metric.
func (e *Engine) ProcessBatch(ctx context.Context, source string, batch domain.Batch) domain.BatchReport {
	report := e.validator.Validate(batch, source)
	e.monitor.Record(report)

	if len(report.QuarantinedRecords) > 0 {
		fault := faults.New(faults.KindDataQuality,
			fmt.Errorf("%d of %d records failed validation", report.FailedRecords, report.TotalRecords))
		outcome, _ := e.router.Route(ctx, fault, nil, faults.Occurrence{
			Source:  source,
			Records: report.QuarantinedRecords,
			Context: map[string]any{"quality_score": report.QualityScore},
		})
		monitor.FaultsRouted.WithLabelValues(source, string(outcome.Action)).Inc()
	}

	if err := e.metricsRepo.Save(ctx, &storage.QualityMetric{
		Source:        source,
		Timestamp:     report.Timestamp,
		QualityScore:  report.QualityScore,
		TotalRecords:  report.TotalRecords,
		FailedRecords: report.FailedRecords,
	}); err != nil {
		e.log.Warn("Failed to persist quality metric", "source", source, "error", err)
	}

	return report
}

// enqueueRetry records a failed ingestion unit for later re-processing.
func (e *Engine) enqueueRetry(ctx context.Context, source string, cause error) {
	queue, ok := e.retryQueues[source]
	if !ok {
		return
	}
	job := &domain.RetryJob{
		ID:        uuid.New().String(),
		Source:    source,
		Error:     cause.Error(),
		Status:    domain.RetryJobPending,
		CreatedAt: time.Now().Unix(),
	}
	if err := queue.Add(ctx, job); err != nil {
		e.log.Warn("Failed to enqueue retry job", "source", source, "error", err)
	}
}

// runRetryWorker drains the source's retry queue, re-attempting extraction
// for each queued job.
func (e *Engine) runRetryWorker(ctx context.Context, source string, queue *redisclient.RetryQueue) {
	src := e.sourceByName(source)
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		job, err := queue.GetNext(ctx)
		if err != nil {
			e.log.Warn("Failed to read retry queue", "source", source, "error", err)
			continue
		}
		if job == nil || src == nil {
			continue
		}

		if job.RetryCount > e.cfg.Retry.MaxRetries {
			e.log.Warn("Retry budget exhausted, dropping job",
				"source", source, "job", job.ID, "retries", job.RetryCount)
			if err := queue.MarkResolved(ctx, job.ID); err != nil {
				e.log.Warn("Failed to drop retry job", "job", job.ID, "error", err)
			}
			continue
		}

		batch, err := src.Extract(ctx)
		if err != nil {
			if err := queue.IncrementRetry(ctx, job.ID); err != nil {
				e.log.Warn("Failed to bump retry count", "job", job.ID, "error", err)
			}
			continue
		}

		if len(batch) > 0 {
			e.ProcessBatch(ctx, source, batch)
		}
		if err := queue.MarkResolved(ctx, job.ID); err != nil {
			e.log.Warn("Failed to resolve retry job", "job", job.ID, "error", err)
		}
		e.log.Info("Retry job resolved", "source", source, "job", job.ID)
	}
}

func (e *Engine) sourceByName(name string) ingest.Source {
	for _, src := range e.sources {
		if src.Name() == name {
			return src
		}
	}
	return nil
}

// buildSource constructs an ingestion source from its config entry.
func buildSource(sc config.SourceConfig) (ingest.Source, error) {
	switch sc.Type {
	case "csv":
		return ingest.NewCSVSource(sc.Name, sc.Path, sc.BatchSize), nil
	case "stream":
		return ingest.NewStreamSource(sc.Name, sc.BatchSize, sc.DefectRate, sc.Seed), nil
	default:
		return nil, fmt.Errorf("unknown source type %q for source %s", sc.Type, sc.Name)
	}
}

// buildRules constructs the rule set from config entries.
func buildRules(rcs []config.RuleConfig) ([]*domain.Rule, error) {
	var rules []*domain.Rule
	for _, rc := range rcs {
		sev := domain.Severity(rc.Severity)
		action := domain.Action(rc.Action)

		var rule *domain.Rule
		var err error
		switch rc.Kind {
		case "not_null":
			rule = domain.NotNull(rc.Name, rc.Column, sev, action)
		case "between":
			rule = domain.Between(rc.Name, rc.Column, rc.Lo, rc.Hi, sev, action)
		case "at_least":
			rule = domain.AtLeast(rc.Name, rc.Column, rc.Min, sev, action)
		case "membership":
			rule = domain.Membership(rc.Name, rc.Column, rc.Allowed, sev, action)
		case "cel":
			rule, err = validation.NewCELRule(rc.Name, "", rc.Expression, sev, action)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", rc.Name, err)
			}
		default:
			return nil, fmt.Errorf("unknown rule kind %q for rule %s", rc.Kind, rc.Name)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// quarantineSink adapts the quarantine repository to the router's sink.
type quarantineSink struct {
	repo storage.QuarantineRepository
}

func (s quarantineSink) Quarantine(ctx context.Context, source string, records domain.Batch, rec domain.ErrorRecord) error {
	return s.repo.Add(ctx, source, records, rec)
}

// errorSink adapts the error repository to the router's sink.
type errorSink struct {
	repo storage.ErrorRepository
}

func (s errorSink) SaveError(ctx context.Context, rec *domain.ErrorRecord) error {
	return s.repo.Save(ctx, rec)
}

// pendingCounter adapts the repositories to the health server.
type pendingCounter struct {
	quarantine storage.QuarantineRepository
	errors     storage.ErrorRepository
}

func (p pendingCounter) QuarantineCount(ctx context.Context, source string) (int, error) {
	return p.quarantine.Count(ctx, source)
}

func (p pendingCounter) UnresolvedErrorCount(ctx context.Context, source string) (int, error) {
	return p.errors.CountUnresolved(ctx, source)
}
