package services

import (
	"slices"

	"github.com/paulexconde/complyform/internal/models"
	"github.com/paulexconde/complyform/pkg/fault"
	"go.uber.org/zap"
)

// Holds the state of a respondent filling out a questionnaire.
//
// Typically what they answered so far when they paused or left it.
type FormSession struct {
	ID        string
	SubjectID string
	Answers   models.Answers
	Submitted bool
}

// What changed after an answer was recorded.
type AnswerOutcome struct {
	// Follow-up answers removed because their branch closed.
	Cleared  []string `json:"cleared"`
	Visible  []string `json:"visible"`
	Required []string `json:"required"`
}

// Handles the answering flow of a questionnaire.
type FormService interface {
	// Records an answer and drops answers of follow-ups it deactivated.
	AnswerQuestion(session *FormSession, questionID string, value models.Value, structure models.Structure) (*AnswerOutcome, error)
	// Validates the session answers and marks it submitted when valid.
	Submit(session *FormSession, structure models.Structure, basicInfo *models.BasicInfo) (models.SubmissionResult, error)
}

type formServiceImpl struct {
	resolver  VisibilityResolver
	validator AnswerValidator
	logger    *zap.Logger
}

// Instantiate the `FormService`.
func NewFormService(resolver VisibilityResolver, validator AnswerValidator, logger *zap.Logger) FormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &formServiceImpl{resolver: resolver, validator: validator, logger: logger}
}

func (s *formServiceImpl) AnswerQuestion(session *FormSession, questionID string, value models.Value, structure models.Structure) (*AnswerOutcome, error) {
	if session.Submitted {
		return nil, fault.NewClientError("form already submitted", fault.ErrAlreadySubmitted)
	}

	if _, _, ok := findQuestion(structure, questionID); !ok {
		return nil, fault.NewQuestionError(questionID, "not part of the template", fault.ErrInvalidQuestion)
	}

	current := session.Answers
	if current == nil {
		current = models.Answers{}
	}

	if !slices.Contains(s.resolver.VisibleQuestions(structure, current), questionID) {
		return nil, fault.NewQuestionError(questionID, "hidden by its conditions", fault.ErrQuestionHidden)
	}

	answers := current.Clone()
	answers[questionID] = models.Answer{Value: value}

	cleared := make([]string, 0)
	for _, id := range s.resolver.AnswersToClear(questionID, structure, answers) {
		if _, ok := answers[id]; !ok {
			continue
		}
		delete(answers, id)
		cleared = append(cleared, id)
	}

	session.Answers = answers

	if len(cleared) > 0 {
		s.logger.Debug("cleared stale follow-up answers",
			zap.String("session_id", session.ID),
			zap.String("question_id", questionID),
			zap.Strings("cleared", cleared))
	}

	return &AnswerOutcome{
		Cleared:  cleared,
		Visible:  s.resolver.VisibleQuestions(structure, answers),
		Required: s.resolver.RequiredQuestions(structure, answers),
	}, nil
}

func (s *formServiceImpl) Submit(session *FormSession, structure models.Structure, basicInfo *models.BasicInfo) (models.SubmissionResult, error) {
	if session.Submitted {
		return models.SubmissionResult{}, fault.NewClientError("form already submitted", fault.ErrAlreadySubmitted)
	}

	result := s.validator.ValidateForSubmission(structure, session.Answers, basicInfo)
	if result.Valid {
		session.Submitted = true
		s.logger.Info("form submitted", zap.String("session_id", session.ID), zap.String("subject_id", session.SubjectID))
	}

	return result, nil
}
