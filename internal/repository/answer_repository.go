package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/internal/pkg/store"
)

const answersTable = "answers"

// AnswerRepository reads the stored answers of a subject.
type AnswerRepository struct {
	datastore store.Datastorer[models.AnswerRow]
}

func NewAnswerRepository(ds store.Datastorer[models.AnswerRow]) *AnswerRepository {
	return &AnswerRepository{datastore: ds}
}

func (r *AnswerRepository) SubjectAnswers(ctx context.Context, subjectID string) (models.Answers, error) {
	query := fmt.Sprintf("SELECT question_id, value FROM %s WHERE subject_id = $1", r.datastore.Table())

	rows, err := r.datastore.Select(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}

	return DecodeAnswerRows(rows)
}

// DecodeAnswerRows turns stored jsonb values into answers. A row whose value
// is not valid json is an error, not an empty answer.
func DecodeAnswerRows(rows []models.AnswerRow) (models.Answers, error) {
	answers := make(models.Answers, len(rows))
	for _, row := range rows {
		var value models.Value
		if len(row.Value) > 0 {
			if err := json.Unmarshal(row.Value, &value); err != nil {
				return nil, fmt.Errorf("decode answer %s: %w", row.QuestionID, err)
			}
		}
		answers[row.QuestionID] = models.Answer{Value: value}
	}
	return answers, nil
}
