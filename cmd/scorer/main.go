package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/paulexconde/complyform/internal/config"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/internal/pkg/logger"
	"github.com/paulexconde/complyform/internal/pkg/workerpool"
	"github.com/paulexconde/complyform/internal/repository"
	"github.com/paulexconde/complyform/internal/services"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", "", "env file to load before the environment (default .env)")
	subjectID := flag.String("subject", "", "score a single subject instead of every subject")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Error while initializing zap logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLogger, *subjectID, os.Stdout); err != nil {
		zapLogger.Fatal("scoring run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger, subjectID string, out io.Writer) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	repos := repository.New(db)
	scoringConfig := services.DefaultScoringConfig()

	sectionIDs := make([]string, 0, len(scoringConfig.Sections))
	for _, s := range scoringConfig.Sections {
		sectionIDs = append(sectionIDs, s.ID)
	}

	questions, err := repos.Questions.Preload(ctx, sectionIDs)
	if err != nil {
		return fmt.Errorf("preload section questions: %w", err)
	}

	engine := services.NewScoringEngine(questions, repos.Answers, scoringConfig, services.WithScoringLogger(zapLogger))

	runID := uuid.NewString()
	runLogger := zapLogger.With(zap.String("run_id", runID))
	runLogger.Info("scoring run started", zap.Int("workers", cfg.Scorer.Workers))

	writer := &reportWriter{enc: json.NewEncoder(out)}
	pool := workerpool.NewWorkerPool(ctx, cfg.Scorer.Workers, cfg.Scorer.QueueSize, runLogger)

	submit := func(id string) error {
		jobLogger := runLogger.With(zap.String("subject_id", id))
		job := workerpool.WithRetry(jobLogger, cfg.Scorer.Retries, cfg.Scorer.RetryDelay, func(ctx context.Context) error {
			report, err := engine.ScoreBreakdown(ctx, id)
			if err != nil {
				return err
			}
			return writer.write(id, report)
		}, func(err error) {
			writer.fail()
		})
		return pool.SubmitWait(ctx, job)
	}

	started := time.Now()
	if subjectID != "" {
		err = submit(subjectID)
	} else {
		err = repos.Subjects.Each(ctx, repository.SubjectsQuery(), nil, cfg.Scorer.PageSize, func(subjects []models.Subject) error {
			for _, s := range subjects {
				if err := submit(s.ID); err != nil {
					return err
				}
			}
			return nil
		})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool.Shutdown(shutdownCtx)

	if err != nil {
		return err
	}

	scored, failed := writer.counts()
	runLogger.Info("scoring run finished",
		zap.Int("scored", scored),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(started)))

	if failed > 0 {
		return fmt.Errorf("%d subjects could not be scored", failed)
	}
	return nil
}

// reportWriter serializes reports from concurrent jobs as JSON lines.
type reportWriter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	scored int
	failed int
}

type scoredSubject struct {
	SubjectID string `json:"subjectId"`
	models.ScoreReport
}

func (w *reportWriter) write(subjectID string, report models.ScoreReport) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(scoredSubject{SubjectID: subjectID, ScoreReport: report}); err != nil {
		return err
	}
	w.scored++
	return nil
}

func (w *reportWriter) fail() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failed++
}

func (w *reportWriter) counts() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scored, w.failed
}
