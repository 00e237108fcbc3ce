package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/pkg/fault"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// The maximum score of a section.
const maxSectionScore = 100

// A scored section of the questionnaire.
type ScoredSection struct {
	ID   string
	Name string
}

// A grade band, inclusive at MinScore.
type GradeBand struct {
	MinScore float64
	Label    string
}

// ScoringConfig is the fixed scoring setup. It is copied into the engine and
// never changed afterwards.
type ScoringConfig struct {
	// Weighted equally, in report order.
	Sections []ScoredSection
	// Checked from the highest MinScore down.
	GradeBands []GradeBand
	// Grade given when no band matches.
	FailGrade string
	// Top of the rating scale.
	RatingScale float64
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Sections: []ScoredSection{
			{ID: "A", Name: "Labor"},
			{ID: "B", Name: "Health and Safety"},
			{ID: "C", Name: "Environment"},
			{ID: "D", Name: "Ethics"},
			{ID: "E", Name: "Management System"},
		},
		GradeBands: []GradeBand{
			{MinScore: 90, Label: "excellent"},
			{MinScore: 80, Label: "good"},
			{MinScore: 70, Label: "pass"},
			{MinScore: 60, Label: "needs improvement"},
		},
		FailGrade:   "fail",
		RatingScale: 5,
	}
}

// SectionNames maps section id to display name.
func (c ScoringConfig) SectionNames() map[string]string {
	names := make(map[string]string, len(c.Sections))
	for _, s := range c.Sections {
		names[s.ID] = s.Name
	}
	return names
}

// Provides the flat question rows of a section.
type QuestionSource interface {
	SectionQuestions(ctx context.Context, sectionID string) ([]models.FlatQuestion, error)
}

// Provides the stored answers of a subject.
type AnswerSource interface {
	SubjectAnswers(ctx context.Context, subjectID string) (models.Answers, error)
}

// Computes compliance scores.
//
// Scores are computed over the flat question rows of a section, so
// follow-up questions never count toward a score and visibility is not
// taken into account.
type ScoringEngine interface {
	// Pure scoring of already loaded rows.
	ScoreSection(questions []models.FlatQuestion, answers models.Answers) models.SectionScore
	CalculateSectionScore(ctx context.Context, subjectID, sectionID string) (models.SectionScore, error)
	CalculateTotalScore(ctx context.Context, subjectID string) (models.TotalScore, error)
	Grade(score float64) string
	ScoreBreakdown(ctx context.Context, subjectID string) (models.ScoreReport, error)
}

type scoringEngineImpl struct {
	questions QuestionSource
	answers   AnswerSource
	config    ScoringConfig
	now       func() time.Time
	logger    *zap.Logger
}

type ScoringOption func(*scoringEngineImpl)

// WithClock overrides the clock stamped on score reports.
func WithClock(now func() time.Time) ScoringOption {
	return func(s *scoringEngineImpl) {
		s.now = now
	}
}

func WithScoringLogger(logger *zap.Logger) ScoringOption {
	return func(s *scoringEngineImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Instantiate the `ScoringEngine`.
func NewScoringEngine(questions QuestionSource, answers AnswerSource, config ScoringConfig, opts ...ScoringOption) ScoringEngine {
	cfg := ScoringConfig{
		Sections:    append([]ScoredSection(nil), config.Sections...),
		GradeBands:  append([]GradeBand(nil), config.GradeBands...),
		FailGrade:   config.FailGrade,
		RatingScale: config.RatingScale,
	}
	sort.SliceStable(cfg.GradeBands, func(i, j int) bool {
		return cfg.GradeBands[i].MinScore > cfg.GradeBands[j].MinScore
	})
	if cfg.RatingScale <= 0 {
		cfg.RatingScale = 5
	}

	s := &scoringEngineImpl{
		questions: questions,
		answers:   answers,
		config:    cfg,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scoringEngineImpl) ScoreSection(questions []models.FlatQuestion, answers models.Answers) models.SectionScore {
	result := models.SectionScore{
		MaxScore:   maxSectionScore,
		TotalCount: len(questions),
	}
	if len(questions) == 0 {
		return result
	}

	points := 0.0
	for _, q := range questions {
		value := answers.ValueOf(q.ID)
		if value.IsEmpty() {
			continue
		}
		result.AnsweredCount++
		points += s.points(q.Type, value)
	}

	total := float64(len(questions))
	result.Score = round2(points / total * 100)
	result.CompletionRate = round2(float64(result.AnsweredCount) / total * 100)
	return result
}

func (s *scoringEngineImpl) points(questionType models.QuestionType, value models.Value) float64 {
	switch questionType {
	case models.QuestionBoolean:
		if value.Truthy() {
			return 1
		}
		return 0
	case models.QuestionRating:
		rating, ok := value.Float()
		if !ok {
			return 0
		}
		return rating / s.config.RatingScale
	case models.QuestionNumber:
		n, ok := value.Float()
		if ok && n > 0 {
			return 1
		}
		return 0
	default:
		return 1
	}
}

func (s *scoringEngineImpl) CalculateSectionScore(ctx context.Context, subjectID, sectionID string) (models.SectionScore, error) {
	answers, err := s.loadAnswers(ctx, subjectID)
	if err != nil {
		return models.SectionScore{}, err
	}
	return s.sectionScore(ctx, sectionID, answers)
}

func (s *scoringEngineImpl) sectionScore(ctx context.Context, sectionID string, answers models.Answers) (models.SectionScore, error) {
	questions, err := s.questions.SectionQuestions(ctx, sectionID)
	if err != nil {
		return models.SectionScore{}, fault.NewInternalError("failed to load questions of section "+sectionID, err)
	}
	return s.ScoreSection(questions, answers), nil
}

func (s *scoringEngineImpl) loadAnswers(ctx context.Context, subjectID string) (models.Answers, error) {
	answers, err := s.answers.SubjectAnswers(ctx, subjectID)
	if err != nil {
		return nil, fault.NewInternalError("failed to load answers of subject "+subjectID, err)
	}
	return answers, nil
}

func (s *scoringEngineImpl) CalculateTotalScore(ctx context.Context, subjectID string) (models.TotalScore, error) {
	answers, err := s.loadAnswers(ctx, subjectID)
	if err != nil {
		return models.TotalScore{}, err
	}

	result := models.TotalScore{
		Sections: make(map[string]models.WeightedSectionScore, len(s.config.Sections)),
	}
	if len(s.config.Sections) == 0 {
		result.Grade = s.Grade(0)
		return result, nil
	}

	weight := 1 / float64(len(s.config.Sections))
	total := 0.0
	for _, section := range s.config.Sections {
		score, err := s.sectionScore(ctx, section.ID, answers)
		if err != nil {
			return models.TotalScore{}, err
		}
		result.Sections[section.ID] = models.WeightedSectionScore{SectionScore: score, Weight: weight}
		total += score.Score * weight
	}

	result.TotalScore = round2(total)
	result.Grade = s.Grade(result.TotalScore)

	s.logger.Debug("total score calculated",
		zap.String("subject_id", subjectID),
		zap.Float64("total_score", result.TotalScore),
		zap.String("grade", result.Grade))

	return result, nil
}

func (s *scoringEngineImpl) Grade(score float64) string {
	for _, band := range s.config.GradeBands {
		if score >= band.MinScore {
			return band.Label
		}
	}
	return s.config.FailGrade
}

func (s *scoringEngineImpl) ScoreBreakdown(ctx context.Context, subjectID string) (models.ScoreReport, error) {
	total, err := s.CalculateTotalScore(ctx, subjectID)
	if err != nil {
		return models.ScoreReport{}, err
	}

	names := s.config.SectionNames()
	breakdown := make(map[string]models.SectionBreakdown, len(total.Sections))
	for id, section := range total.Sections {
		name, ok := names[id]
		if !ok {
			name = id
		}
		breakdown[id] = models.SectionBreakdown{
			SectionID:      id,
			SectionName:    name,
			Score:          section.Score,
			MaxScore:       section.MaxScore,
			Weight:         section.Weight,
			AnsweredCount:  section.AnsweredCount,
			TotalCount:     section.TotalCount,
			CompletionRate: section.CompletionRate,
		}
	}

	return models.ScoreReport{
		Breakdown:    breakdown,
		TotalScore:   total.TotalScore,
		Grade:        total.Grade,
		CalculatedAt: s.now().UTC(),
	}, nil
}

// round2 maps non-finite input to 0, decimal panics on it.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
