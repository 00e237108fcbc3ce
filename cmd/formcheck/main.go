package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/paulexconde/complyform/internal/config"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/internal/pkg/logger"
	"github.com/paulexconde/complyform/internal/repository"
	"github.com/paulexconde/complyform/internal/services"
	"go.uber.org/zap"
)

// checkResult is what formcheck prints.
type checkResult struct {
	Visible    []string                `json:"visible"`
	Required   []string                `json:"required"`
	Clear      []string                `json:"clear,omitempty"`
	Submission models.SubmissionResult `json:"submission"`
}

type checkInput struct {
	Structure models.Structure
	Answers   models.Answers
	BasicInfo *models.BasicInfo
	Changed   string
}

func main() {
	structurePath := flag.String("structure", "", "template structure json file")
	answersPath := flag.String("answers", "", "answers json file")
	templateID := flag.String("template", "", "load the structure of this template from DATABASE_URL instead of a file")
	subjectID := flag.String("subject", "", "load the answers of this subject from DATABASE_URL instead of a file")
	basicInfoPath := flag.String("basic-info", "", "optional basic info json file")
	changed := flag.String("changed", "", "question id that just changed, lists answers to clear")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	if (*structurePath == "" && *templateID == "") || (*answersPath == "" && *subjectID == "") {
		flag.Usage()
		os.Exit(2)
	}

	zapLogger, err := logger.New("development", *level)
	if err != nil {
		log.Fatalf("Error while initializing zap logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	input := checkInput{Changed: *changed}
	if *templateID != "" || *subjectID != "" {
		if err := loadFromDatabase(context.Background(), *templateID, *subjectID, &input); err != nil {
			zapLogger.Fatal("failed to load from database", zap.Error(err))
		}
	}
	if *structurePath != "" {
		if err := readJSON(*structurePath, &input.Structure); err != nil {
			zapLogger.Fatal("failed to read structure", zap.Error(err))
		}
	}
	if *answersPath != "" {
		if err := readJSON(*answersPath, &input.Answers); err != nil {
			zapLogger.Fatal("failed to read answers", zap.Error(err))
		}
	}
	if *basicInfoPath != "" {
		input.BasicInfo = &models.BasicInfo{}
		if err := readJSON(*basicInfoPath, input.BasicInfo); err != nil {
			zapLogger.Fatal("failed to read basic info", zap.Error(err))
		}
	}

	result := check(input, zapLogger)
	if err := writeResult(os.Stdout, result); err != nil {
		zapLogger.Fatal("failed to write result", zap.Error(err))
	}

	if !result.Submission.Valid {
		os.Exit(1)
	}
}

func check(input checkInput, zapLogger *zap.Logger) checkResult {
	evaluator := services.NewConditionEvaluator(zapLogger)
	resolver := services.NewVisibilityResolver(evaluator, zapLogger)
	validator := services.NewAnswerValidator(resolver, services.NewBasicInfoValidator(), zapLogger)

	result := checkResult{
		Visible:    resolver.VisibleQuestions(input.Structure, input.Answers),
		Required:   resolver.RequiredQuestions(input.Structure, input.Answers),
		Submission: validator.ValidateForSubmission(input.Structure, input.Answers, input.BasicInfo),
	}
	if input.Changed != "" {
		result.Clear = resolver.AnswersToClear(input.Changed, input.Structure, input.Answers)
	}
	return result
}

// loadFromDatabase fills whichever of structure and answers was asked for by id.
func loadFromDatabase(ctx context.Context, templateID, subjectID string, input *checkInput) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()

	repos := repository.New(db)
	if templateID != "" {
		if input.Structure, err = repos.Templates.Structure(ctx, templateID); err != nil {
			return fmt.Errorf("load template %s: %w", templateID, err)
		}
	}
	if subjectID != "" {
		if input.Answers, err = repos.Answers.SubjectAnswers(ctx, subjectID); err != nil {
			return fmt.Errorf("load answers of %s: %w", subjectID, err)
		}
	}
	return nil
}

func readJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeResult(w io.Writer, result checkResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
