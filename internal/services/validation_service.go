package services

import (
	"fmt"
	"sort"

	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/internal/pkg/validation"
	"go.uber.org/zap"
)

// Checks the supplier identity block sent along with a submission.
type BasicInfoValidator interface {
	// Field name -> message, empty when the info is valid.
	ValidateBasicInfo(info models.BasicInfo) map[string]string
}

// Gates a questionnaire submission.
//
// Failures are returned as data, never as errors, so every problem can be
// shown at once.
type AnswerValidator interface {
	ValidateRequiredFields(structure models.Structure, answers models.Answers) []models.MissingField
	ValidateConditionalLogic(structure models.Structure, answers models.Answers) map[string]string
	ValidateTableAnswer(rows []models.TableRow, cfg models.TableConfig) map[string]string
	// basicInfo is optional, nil skips the basic info check.
	ValidateForSubmission(structure models.Structure, answers models.Answers, basicInfo *models.BasicInfo) models.SubmissionResult
}

type answerValidatorImpl struct {
	resolver  VisibilityResolver
	basicInfo BasicInfoValidator
	logger    *zap.Logger
}

// Instantiate the `AnswerValidator`. basicInfo may be nil.
func NewAnswerValidator(resolver VisibilityResolver, basicInfo BasicInfoValidator, logger *zap.Logger) AnswerValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = NewVisibilityResolver(nil, logger)
	}
	return &answerValidatorImpl{
		resolver:  resolver,
		basicInfo: basicInfo,
		logger:    logger,
	}
}

func (a *answerValidatorImpl) ValidateRequiredFields(structure models.Structure, answers models.Answers) []models.MissingField {
	required := a.resolver.RequiredQuestions(structure, answers)
	texts := questionTexts(structure)

	missing := make([]models.MissingField, 0)
	for _, id := range required {
		if !answers.ValueOf(id).IsEmpty() {
			continue
		}
		missing = append(missing, models.MissingField{QuestionID: id, QuestionText: texts[id]})
	}
	return missing
}

func (a *answerValidatorImpl) ValidateConditionalLogic(structure models.Structure, answers models.Answers) map[string]string {
	errs := make(map[string]string)
	if len(answers) == 0 {
		return errs
	}

	visible := make(map[string]bool)
	for _, id := range a.resolver.VisibleQuestions(structure, answers) {
		visible[id] = true
	}

	// a question is conditional when it gates itself or hangs below a parent
	conditional := make(map[string]bool)
	walkQuestions(structure, func(q models.Question, depth int) bool {
		if depth > 0 || q.HasShowWhen() {
			conditional[q.ID] = true
		}
		return true
	})

	for id := range answers {
		if visible[id] || !conditional[id] {
			continue
		}
		errs[id] = fmt.Sprintf("question %s is hidden by its conditions, its answer should be removed", id)
	}
	return errs
}

func (a *answerValidatorImpl) ValidateTableAnswer(rows []models.TableRow, cfg models.TableConfig) map[string]string {
	errs := make(map[string]string)

	if cfg.MinRows > 0 && len(rows) < cfg.MinRows {
		errs["rows"] = fmt.Sprintf("at least %d rows are required", cfg.MinRows)
	} else if cfg.MaxRows > 0 && len(rows) > cfg.MaxRows {
		errs["rows"] = fmt.Sprintf("at most %d rows are allowed", cfg.MaxRows)
	}

	for i, row := range rows {
		for _, col := range cfg.Columns {
			key := fmt.Sprintf("row_%d_%s", i, col.ID)
			label := col.Label
			if label == "" {
				label = col.ID
			}

			cell := row[col.ID]
			if cell.IsEmpty() {
				if col.Required {
					errs[key] = fmt.Sprintf("row %d: %s is required", i+1, label)
				}
				continue
			}

			if msg, ok := checkCell(col.Type, cell); !ok {
				errs[key] = fmt.Sprintf("row %d: %s %s", i+1, label, msg)
			}
		}
	}

	return errs
}

func checkCell(columnType string, cell models.Value) (string, bool) {
	switch columnType {
	case models.ColumnNumber:
		if _, ok := cell.Float(); !ok {
			return "must be a number", false
		}
	case models.ColumnDate:
		if !validation.IsDate(cell.String()) {
			return "must be a valid date (YYYY-MM-DD)", false
		}
	case models.ColumnEmail:
		if !validation.IsEmail(cell.String()) {
			return "must be a valid email address", false
		}
	}
	return "", true
}

func (a *answerValidatorImpl) ValidateForSubmission(structure models.Structure, answers models.Answers, basicInfo *models.BasicInfo) models.SubmissionResult {
	errs := make(map[string]any)

	if basicInfo != nil && a.basicInfo != nil {
		if infoErrs := a.basicInfo.ValidateBasicInfo(*basicInfo); len(infoErrs) > 0 {
			errs[models.CategoryBasicInfo] = infoErrs
		}
	}

	if missing := a.ValidateRequiredFields(structure, answers); len(missing) > 0 {
		errs[models.CategoryMissingRequired] = missing
	}

	if stale := a.ValidateConditionalLogic(structure, answers); len(stale) > 0 {
		errs[models.CategoryConditionalLogic] = stale
	}

	walkQuestions(structure, func(q models.Question, _ int) bool {
		if q.Type != models.QuestionTable || q.Config.TableConfig == nil {
			return true
		}
		ans, ok := answers[q.ID]
		if !ok {
			return true
		}
		rows, _ := ans.Value.Rows()
		if tableErrs := a.ValidateTableAnswer(rows, *q.Config.TableConfig); len(tableErrs) > 0 {
			errs[models.CategoryTablePrefix+q.ID] = tableErrs
		}
		return true
	})

	if len(errs) > 0 {
		a.logger.Debug("submission rejected", zap.Strings("categories", sortedKeys(errs)))
	}

	return models.SubmissionResult{Valid: len(errs) == 0, Errors: errs}
}

func questionTexts(structure models.Structure) map[string]string {
	texts := make(map[string]string)
	walkQuestions(structure, func(q models.Question, _ int) bool {
		texts[q.ID] = q.Text
		return true
	})
	return texts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type structBasicInfoValidator struct{}

// Instantiate a `BasicInfoValidator` driven by the struct tags on
// models.BasicInfo.
func NewBasicInfoValidator() BasicInfoValidator {
	return &structBasicInfoValidator{}
}

func (s *structBasicInfoValidator) ValidateBasicInfo(info models.BasicInfo) map[string]string {
	err := validation.ValidateStruct(info)
	if err == nil {
		return map[string]string{}
	}
	return validation.FieldErrors(err)
}
