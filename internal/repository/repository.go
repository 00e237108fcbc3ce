package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/internal/pkg/paginator"
	"github.com/paulexconde/complyform/internal/pkg/store"
)

// Repositories bundles the read side of the questionnaire database.
type Repositories struct {
	Questions *QuestionRepository
	Answers   *AnswerRepository
	Templates *TemplateRepository
	Subjects  paginator.Paginator[models.Subject]
}

func New(db *sqlx.DB) *Repositories {
	return &Repositories{
		Questions: NewQuestionRepository(store.NewDataStore[models.FlatQuestion](db, questionsTable)),
		Answers:   NewAnswerRepository(store.NewDataStore[models.AnswerRow](db, answersTable)),
		Templates: NewTemplateRepository(store.NewDataStore[models.TemplateRow](db, templatesTable)),
		Subjects:  paginator.NewPaginator(store.NewDataStore[models.Subject](db, subjectsTable)),
	}
}
