package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/internal/pkg/store"
)

const (
	templatesTable = "templates"
	subjectsTable  = "subjects"
)

// TemplateRepository loads template structures stored as jsonb.
type TemplateRepository struct {
	datastore store.Datastorer[models.TemplateRow]
}

func NewTemplateRepository(ds store.Datastorer[models.TemplateRow]) *TemplateRepository {
	return &TemplateRepository{datastore: ds}
}

func (r *TemplateRepository) Structure(ctx context.Context, templateID string) (models.Structure, error) {
	query := fmt.Sprintf("SELECT id, structure FROM %s WHERE id = $1", r.datastore.Table())

	row, err := r.datastore.Get(ctx, query, templateID)
	if err != nil {
		return nil, err
	}

	var structure models.Structure
	if err := json.Unmarshal(row.Structure, &structure); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", templateID, err)
	}
	return structure, nil
}

// SubjectsQuery lists every subject in a stable order, for paging.
func SubjectsQuery() string {
	return fmt.Sprintf("SELECT id, name FROM %s ORDER BY id", subjectsTable)
}
