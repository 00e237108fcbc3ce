package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/internal/pkg/store"
)

const questionsTable = "questions"

// QuestionRepository reads the flat question rows used for scoring. Only top
// level questions are stored as rows; follow-ups live inside the template
// structure.
type QuestionRepository struct {
	datastore store.Datastorer[models.FlatQuestion]
}

func NewQuestionRepository(ds store.Datastorer[models.FlatQuestion]) *QuestionRepository {
	return &QuestionRepository{datastore: ds}
}

func (r *QuestionRepository) SectionQuestions(ctx context.Context, sectionID string) ([]models.FlatQuestion, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE section_id = $1 ORDER BY sort_order",
		strings.Join(store.Columns[models.FlatQuestion](), ", "), r.datastore.Table())
	return r.datastore.Select(ctx, query, sectionID)
}

// QuestionsBySection loads several sections in one round trip.
func (r *QuestionRepository) QuestionsBySection(ctx context.Context, sectionIDs []string) (map[string][]models.FlatQuestion, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE section_id = ANY($1) ORDER BY section_id, sort_order",
		strings.Join(store.Columns[models.FlatQuestion](), ", "), r.datastore.Table())

	rows, err := r.datastore.Select(ctx, query, pq.Array(sectionIDs))
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.FlatQuestion, len(sectionIDs))
	for _, q := range rows {
		out[q.SectionID] = append(out[q.SectionID], q)
	}
	return out, nil
}

// PreloadedQuestions serves section questions from memory. The question rows
// are the same for every subject, so a batch run loads them once.
type PreloadedQuestions map[string][]models.FlatQuestion

func (p PreloadedQuestions) SectionQuestions(_ context.Context, sectionID string) ([]models.FlatQuestion, error) {
	return p[sectionID], nil
}

// Preload fetches the given sections into a PreloadedQuestions.
func (r *QuestionRepository) Preload(ctx context.Context, sectionIDs []string) (PreloadedQuestions, error) {
	bySection, err := r.QuestionsBySection(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}
	return PreloadedQuestions(bySection), nil
}
