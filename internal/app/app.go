package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/internlog/internlog-backend/internal/adapter/postgres"
	evaluationrepo "github.com/internlog/internlog-backend/internal/adapter/postgres/evaluation"
	internshiprepo "github.com/internlog/internlog-backend/internal/adapter/postgres/internship"
	logbookrepo "github.com/internlog/internlog-backend/internal/adapter/postgres/logbook"
	logentryrepo "github.com/internlog/internlog-backend/internal/adapter/postgres/logentry"
	studentrepo "github.com/internlog/internlog-backend/internal/adapter/postgres/student"
	supervisorrepo "github.com/internlog/internlog-backend/internal/adapter/postgres/supervisor"
	weeklylogrepo "github.com/internlog/internlog-backend/internal/adapter/postgres/weeklylog"
	"github.com/internlog/internlog-backend/internal/auth"
	"github.com/internlog/internlog-backend/internal/config"
	"github.com/internlog/internlog-backend/internal/notify"
	"github.com/internlog/internlog-backend/internal/service/custody"
	"github.com/internlog/internlog-backend/internal/service/evaluation"
	"github.com/internlog/internlog-backend/internal/service/internship"
	"github.com/internlog/internlog-backend/internal/service/logbook"
	"github.com/internlog/internlog-backend/internal/transport/middleware"
	"github.com/internlog/internlog-backend/internal/transport/rest"
)

// accessTokenTTL is used only when tooling generates tokens locally; the
// server itself never issues end-user sessions.
const accessTokenTTL = 15 * time.Minute

// Run is the application entry point. It loads configuration, connects to
// the database, applies migrations, wires the services, and serves HTTP
// until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	tx := postgres.NewTxManager(pool)

	students := studentrepo.New(pool)
	supervisors := supervisorrepo.New(pool)
	internships := internshiprepo.New(pool)
	logbooks := logbookrepo.New(pool)
	weeks := weeklylogrepo.New(pool)
	entries := logentryrepo.New(pool)
	evaluations := evaluationrepo.New(pool)
	categories := evaluationrepo.NewCategoryRepo(pool)
	subfields := evaluationrepo.NewSubfieldRepo(pool)
	templates := evaluationrepo.NewTemplateRepo(pool)

	custodySvc, err := custody.NewService(logger, students, tx, cfg.Custody.MasterKeyBytes())
	if err != nil {
		return fmt.Errorf("custody service: %w", err)
	}

	notifier := notify.NewLogNotifier(logger)

	logbookSvc := logbook.NewService(logger, logbooks, weeks, entries,
		internships, students, supervisors, custodySvc, notifier, tx, nil)
	evaluationSvc := evaluation.NewService(logger, evaluations, categories,
		subfields, templates, internships, supervisors, tx)
	internshipSvc := internship.NewService(logger, internships, students, supervisors)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, accessTokenTTL)

	logbookHandler := rest.NewLogbookHandler(logbookSvc, logger)
	evaluationHandler := rest.NewEvaluationHandler(evaluationSvc, logger)
	custodyHandler := rest.NewCustodyHandler(custodySvc, logger)
	internshipHandler := rest.NewInternshipHandler(internshipSvc, logger)
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("GET /internships", internshipHandler.List)
	mux.HandleFunc("GET /internships/{internshipID}", internshipHandler.Get)

	mux.HandleFunc("POST /internships/{internshipID}/logbook", logbookHandler.GetOrCreate)
	mux.HandleFunc("GET /logbooks/{logbookID}/tree", logbookHandler.Tree)
	mux.HandleFunc("POST /logbooks/{logbookID}/weeks", logbookHandler.CreateWeek)
	mux.HandleFunc("GET /weeks/{weekID}", logbookHandler.GetWeek)
	mux.HandleFunc("POST /weeks/{weekID}/approve", logbookHandler.ApproveWeek)
	mux.HandleFunc("POST /weeks/{weekID}/reject", logbookHandler.RejectWeek)
	mux.HandleFunc("POST /weeks/{weekID}/entries", logbookHandler.CreateEntry)
	mux.HandleFunc("GET /entries/{entryID}", logbookHandler.GetEntry)
	mux.HandleFunc("PATCH /entries/{entryID}", logbookHandler.UpdateEntry)
	mux.HandleFunc("POST /entries/{entryID}/approve", logbookHandler.ApproveEntry)
	mux.HandleFunc("DELETE /entries/{entryID}", logbookHandler.DeleteEntry)

	mux.HandleFunc("POST /evaluations", evaluationHandler.Create)
	mux.HandleFunc("GET /internships/{internshipID}/evaluation", evaluationHandler.Get)
	mux.HandleFunc("GET /evaluation-templates", evaluationHandler.ListTemplates)
	mux.HandleFunc("PATCH /evaluation-subfields/{subfieldID}/score", evaluationHandler.UpdateSubfieldScore)

	mux.HandleFunc("POST /students/{studentID}/keypair", custodyHandler.IssueKeypair)

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		rateLimiter.Limit(cfg.Server.RateLimitPerMin),
		middleware.Auth(jwtManager),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
