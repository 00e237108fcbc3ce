package services

import (
	"github.com/paulexconde/complyform/internal/models"
	"go.uber.org/zap"
)

// Follow-ups nested deeper than this are treated as hidden. It also stops
// runaway descent on a template that nests a question inside itself.
const maxFollowUpDepth = 16

// Works out which questions a respondent currently sees.
type VisibilityResolver interface {
	// Ids of the visible questions in document order.
	VisibleQuestions(structure models.Structure, answers models.Answers) []string
	// Ids of the visible questions flagged as required, in document order.
	RequiredQuestions(structure models.Structure, answers models.Answers) []string
	// Follow-up ids below the changed question whose branch is no longer
	// active. The caller decides whether to purge them.
	AnswersToClear(changedQuestionID string, structure models.Structure, answers models.Answers) []string
}

type visibilityResolverImpl struct {
	evaluator ConditionEvaluator
	logger    *zap.Logger
}

// Instantiate the `VisibilityResolver`.
func NewVisibilityResolver(evaluator ConditionEvaluator, logger *zap.Logger) VisibilityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if evaluator == nil {
		evaluator = NewConditionEvaluator(logger)
	}
	return &visibilityResolverImpl{evaluator: evaluator, logger: logger}
}

// resolution is the outcome of one walk over the structure.
type resolution struct {
	visible  map[string]bool
	order    []string
	required []string
}

func newResolution() *resolution {
	return &resolution{
		visible:  make(map[string]bool),
		order:    make([]string, 0),
		required: make([]string, 0),
	}
}

func (r *resolution) add(q models.Question) bool {
	if r.visible[q.ID] {
		return false
	}
	r.visible[q.ID] = true
	r.order = append(r.order, q.ID)
	if q.Required {
		r.required = append(r.required, q.ID)
	}
	return true
}

func (v *visibilityResolverImpl) VisibleQuestions(structure models.Structure, answers models.Answers) []string {
	return v.resolve(structure, answers).order
}

func (v *visibilityResolverImpl) RequiredQuestions(structure models.Structure, answers models.Answers) []string {
	return v.resolve(structure, answers).required
}

func (v *visibilityResolverImpl) resolve(structure models.Structure, answers models.Answers) *resolution {
	r := newResolution()
	for _, section := range structure {
		for _, sub := range section.Subsections {
			for _, q := range sub.Questions {
				v.visit(r, nil, q, answers, 0)
			}
		}
	}
	return r
}

// visit marks q visible when its gate passes and expands the follow-ups its
// own answer activates. base, when set, is consulted for showWhen
// dependencies that live outside r.
func (v *visibilityResolverImpl) visit(r, base *resolution, q models.Question, answers models.Answers, depth int) {
	if depth > maxFollowUpDepth {
		v.logger.Debug("follow-up nesting too deep", zap.String("question_id", q.ID), zap.Int("depth", depth))
		return
	}
	if !v.passesShowWhen(r, base, q, answers) {
		return
	}
	if !r.add(q) {
		return
	}
	v.expand(r, base, q, answers, depth)
}

func (v *visibilityResolverImpl) expand(r, base *resolution, q models.Question, answers models.Answers, depth int) {
	own := answers.ValueOf(q.ID)
	for _, rule := range q.FollowUps() {
		if !v.evaluator.Evaluate(rule.Condition, own) {
			continue
		}
		for _, child := range rule.Questions {
			v.visit(r, base, child, answers, depth+1)
		}
	}
}

func (v *visibilityResolverImpl) passesShowWhen(r, base *resolution, q models.Question, answers models.Answers) bool {
	if !q.HasShowWhen() {
		return true
	}

	sw := q.ConditionalLogic.ShowWhen
	if sw.QuestionID == "" || sw.Condition == nil {
		return true
	}

	depVisible := r.visible[sw.QuestionID] || (base != nil && base.visible[sw.QuestionID])
	if !depVisible {
		return false
	}

	return v.evaluator.Evaluate(sw.Condition, answers.ValueOf(sw.QuestionID))
}

func (v *visibilityResolverImpl) AnswersToClear(changedQuestionID string, structure models.Structure, answers models.Answers) []string {
	stale := make([]string, 0)

	changed, depth, ok := findQuestion(structure, changedQuestionID)
	if !ok {
		return stale
	}

	all := make([]string, 0)
	collectFollowUpIDs(changed, depth, &all)
	if len(all) == 0 {
		return stale
	}

	base := v.resolve(structure, answers)
	active := newResolution()
	v.expand(active, base, changed, answers, depth)

	seen := make(map[string]bool, len(all))
	for _, id := range all {
		if active.visible[id] || seen[id] {
			continue
		}
		seen[id] = true
		stale = append(stale, id)
	}

	v.logger.Debug("stale follow-up answers",
		zap.String("question_id", changedQuestionID),
		zap.Strings("clear", stale))

	return stale
}

// collectFollowUpIDs gathers every follow-up below q, sitting at depth,
// regardless of conditions. It stops where visit does.
func collectFollowUpIDs(q models.Question, depth int, out *[]string) {
	if depth >= maxFollowUpDepth {
		return
	}
	for _, rule := range q.FollowUps() {
		for _, child := range rule.Questions {
			*out = append(*out, child.ID)
			collectFollowUpIDs(child, depth+1, out)
		}
	}
}

// findQuestion locates a question anywhere in the structure, follow-ups
// included, along with its nesting depth (0 for top level).
func findQuestion(structure models.Structure, id string) (models.Question, int, bool) {
	var found models.Question
	foundDepth, ok := 0, false
	walkQuestions(structure, func(q models.Question, depth int) bool {
		if q.ID == id {
			found, foundDepth, ok = q, depth, true
			return false
		}
		return true
	})
	return found, foundDepth, ok
}

// walkQuestions visits every question in document order, follow-ups right
// after their parent. fn receives the nesting depth, 0 for top level
// questions, and returns false to stop the walk.
func walkQuestions(structure models.Structure, fn func(q models.Question, depth int) bool) {
	var walk func(q models.Question, depth int) bool
	walk = func(q models.Question, depth int) bool {
		if depth > maxFollowUpDepth {
			return true
		}
		if !fn(q, depth) {
			return false
		}
		for _, rule := range q.FollowUps() {
			for _, child := range rule.Questions {
				if !walk(child, depth+1) {
					return false
				}
			}
		}
		return true
	}

	for _, section := range structure {
		for _, sub := range section.Subsections {
			for _, q := range sub.Questions {
				if !walk(q, 0) {
					return
				}
			}
		}
	}
}
