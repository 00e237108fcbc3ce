package services

import (
	"fmt"
	"testing"

	"github.com/paulexconde/complyform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleQuestions_FollowUpShownWhenTrue(t *testing.T) {
	resolver := newResolver()
	structure := scenarioStructure()

	answers := models.Answers{"A.1.1": {Value: models.Bool(true)}}

	assert.Equal(t, []string{"A.1.1", "A.1.1.1"}, resolver.VisibleQuestions(structure, answers))
	assert.Equal(t, []string{"A.1.1"}, resolver.RequiredQuestions(structure, answers))
}

func TestVisibleQuestions_FollowUpHiddenWhenFalse(t *testing.T) {
	resolver := newResolver()
	structure := scenarioStructure()

	answers := models.Answers{"A.1.1": {Value: models.Bool(false)}}

	assert.Equal(t, []string{"A.1.1"}, resolver.VisibleQuestions(structure, answers))
}

func TestVisibleQuestions_NestedFollowUps(t *testing.T) {
	resolver := newResolver()
	structure := loadStructure(t, laborStructure)

	tests := []struct {
		name     string
		answers  string
		visible  []string
		required []string
	}{
		{
			name:     "nothing answered",
			answers:  `{}`,
			visible:  []string{"A.1.1", "A.1.2", "A.2.1"},
			required: []string{"A.1.1"},
		},
		{
			name:     "subcontract opens first level and showWhen",
			answers:  `{"A.1.2":{"value":"subcontract"}}`,
			visible:  []string{"A.1.1", "A.1.2", "A.1.2.1", "A.1.3", "A.2.1"},
			required: []string{"A.1.1", "A.1.2.1", "A.1.3"},
		},
		{
			name:     "large subcontract count opens second level",
			answers:  `{"A.1.2":{"value":"subcontract"},"A.1.2.1":{"value":12}}`,
			visible:  []string{"A.1.1", "A.1.2", "A.1.2.1", "A.1.2.1.1", "A.1.3", "A.2.1"},
			required: []string{"A.1.1", "A.1.2.1", "A.1.2.1.1", "A.1.3"},
		},
		{
			name:     "stale nested answer stays hidden when parent branch closes",
			answers:  `{"A.1.2":{"value":"inhouse"},"A.1.2.1":{"value":12}}`,
			visible:  []string{"A.1.1", "A.1.2", "A.2.1"},
			required: []string{"A.1.1"},
		},
		{
			name:     "table rows open the contacts table",
			answers:  `{"A.2.1":{"value":[{"site":"Penang","count":120}]}}`,
			visible:  []string{"A.1.1", "A.1.2", "A.2.1", "A.2.1.1"},
			required: []string{"A.1.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := loadAnswers(t, tt.answers)
			assert.Equal(t, tt.visible, resolver.VisibleQuestions(structure, answers))
			assert.Equal(t, tt.required, resolver.RequiredQuestions(structure, answers))
		})
	}
}

func TestVisibleQuestions_Idempotent(t *testing.T) {
	resolver := newResolver()
	structure := loadStructure(t, laborStructure)
	answers := loadAnswers(t, `{"A.1.1":{"value":true},"A.1.2":{"value":"subcontract"},"A.1.2.1":{"value":40}}`)

	first := resolver.VisibleQuestions(structure, answers)
	second := resolver.VisibleQuestions(structure, answers)
	assert.Equal(t, first, second)
}

func TestVisibleQuestions_DoesNotMutateInputs(t *testing.T) {
	resolver := newResolver()
	structure := loadStructure(t, laborStructure)
	answers := loadAnswers(t, `{"A.1.2":{"value":"subcontract"},"A.1.2.1":{"value":3}}`)
	before := answers.Clone()

	resolver.VisibleQuestions(structure, answers)
	resolver.AnswersToClear("A.1.2", structure, answers)

	assert.Equal(t, before, answers)
}

func TestVisibleQuestions_GatedOnHiddenDependency(t *testing.T) {
	resolver := newResolver()

	gated := func(id, dep string) models.Question {
		return models.Question{
			ID: id, Type: models.QuestionText,
			ConditionalLogic: &models.ConditionalLogic{
				ShowWhen: &models.ShowWhen{QuestionID: dep, Condition: cond(models.OpIsNotEmpty, models.Null())},
			},
		}
	}
	structure := models.Structure{{
		ID: "B",
		Subsections: []models.Subsection{{
			ID: "B.1",
			Questions: []models.Question{
				gated("B.1.1", "B.9.9"),
				gated("B.1.2", "B.1.1"),
				gated("B.1.3", "B.1.4"),
				{ID: "B.1.4", Type: models.QuestionText},
			},
		}},
	}}

	// every dependency carries an answer, yet none of the gated questions
	// is shown: B.9.9 does not exist, B.1.1 is hidden and B.1.4 comes later
	answers := models.Answers{
		"B.9.9": {Value: models.Text("x")},
		"B.1.1": {Value: models.Text("x")},
		"B.1.4": {Value: models.Text("x")},
	}

	assert.Equal(t, []string{"B.1.4"}, resolver.VisibleQuestions(structure, answers))
}

func TestVisibleQuestions_MalformedShowWhenIsPermissive(t *testing.T) {
	resolver := newResolver()
	structure := models.Structure{{
		ID: "C",
		Subsections: []models.Subsection{{
			ID: "C.1",
			Questions: []models.Question{
				{ID: "C.1.1", Required: true, ConditionalLogic: &models.ConditionalLogic{ShowWhen: &models.ShowWhen{}}},
				{ID: "C.1.2", ConditionalLogic: &models.ConditionalLogic{}},
			},
		}},
	}}

	assert.Equal(t, []string{"C.1.1", "C.1.2"}, resolver.VisibleQuestions(structure, nil))
	assert.Equal(t, []string{"C.1.1"}, resolver.RequiredQuestions(structure, nil))
}

func TestRequiredQuestions_SubsetOfVisible(t *testing.T) {
	resolver := newResolver()
	structure := loadStructure(t, laborStructure)

	for _, raw := range []string{
		`{}`,
		`{"A.1.1":{"value":true}}`,
		`{"A.1.2":{"value":"subcontract"},"A.1.2.1":{"value":"50"}}`,
		`{"A.1.2":{"value":"inhouse"},"A.1.3":{"value":"x"}}`,
	} {
		answers := loadAnswers(t, raw)
		visible := resolver.VisibleQuestions(structure, answers)
		for _, id := range resolver.RequiredQuestions(structure, answers) {
			assert.Contains(t, visible, id, "answers %s", raw)
		}
	}
}

// chain builds a question whose follow-ups nest depth levels deep, each
// level shown when its parent is answered "yes".
func chain(id string, depth int) models.Question {
	q := models.Question{ID: id, Type: models.QuestionText}
	if depth == 0 {
		return q
	}
	q.ConditionalLogic = &models.ConditionalLogic{
		FollowUpQuestions: []models.FollowUpRule{{
			Condition: cond(models.OpEquals, models.Text("yes")),
			Questions: []models.Question{chain(fmt.Sprintf("%s.1", id), depth-1)},
		}},
	}
	return q
}

func TestVisibleQuestions_DeepNesting(t *testing.T) {
	resolver := newResolver()
	root := chain("D", 10)
	structure := models.Structure{{ID: "D", Subsections: []models.Subsection{{ID: "D.0", Questions: []models.Question{root}}}}}

	answers := models.Answers{}
	id := "D"
	for range 10 {
		answers[id] = models.Answer{Value: models.Text("yes")}
		id += ".1"
	}

	visible := resolver.VisibleQuestions(structure, answers)
	assert.Len(t, visible, 11)
	assert.Equal(t, id, visible[len(visible)-1])
}

func TestVisibleQuestions_DepthGuardStopsSelfNesting(t *testing.T) {
	resolver := newResolver()
	root := chain("E", 40)
	structure := models.Structure{{ID: "E", Subsections: []models.Subsection{{ID: "E.0", Questions: []models.Question{root}}}}}

	answers := models.Answers{}
	id := "E"
	for range 40 {
		answers[id] = models.Answer{Value: models.Text("yes")}
		id += ".1"
	}

	// top level plus maxFollowUpDepth nested levels
	assert.Len(t, resolver.VisibleQuestions(structure, answers), maxFollowUpDepth+1)
}

func TestAnswersToClear(t *testing.T) {
	resolver := newResolver()
	structure := loadStructure(t, laborStructure)

	tests := []struct {
		name     string
		changed  string
		answers  string
		expected []string
	}{
		{
			name:     "closing the branch clears every nested follow-up",
			changed:  "A.1.2",
			answers:  `{"A.1.2":{"value":"inhouse"},"A.1.2.1":{"value":12},"A.1.2.1.1":{"value":"yearly"}}`,
			expected: []string{"A.1.2.1", "A.1.2.1.1"},
		},
		{
			name:     "active branch keeps first level, clears inactive second level",
			changed:  "A.1.2",
			answers:  `{"A.1.2":{"value":"subcontract"},"A.1.2.1":{"value":4}}`,
			expected: []string{"A.1.2.1.1"},
		},
		{
			name:     "fully active branch clears nothing",
			changed:  "A.1.2",
			answers:  `{"A.1.2":{"value":"subcontract"},"A.1.2.1":{"value":40}}`,
			expected: []string{},
		},
		{
			name:     "nested changed question",
			changed:  "A.1.2.1",
			answers:  `{"A.1.2":{"value":"subcontract"},"A.1.2.1":{"value":2}}`,
			expected: []string{"A.1.2.1.1"},
		},
		{
			name:     "question without follow-ups",
			changed:  "A.1.3",
			answers:  `{}`,
			expected: []string{},
		},
		{
			name:     "unknown question",
			changed:  "Z.9",
			answers:  `{}`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.AnswersToClear(tt.changed, structure, loadAnswers(t, tt.answers))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAnswersToClear_NestedChangeHonoursDepthGuard(t *testing.T) {
	resolver := newResolver()
	root := chain("F", 20)
	structure := models.Structure{{ID: "F", Subsections: []models.Subsection{{ID: "F.0", Questions: []models.Question{root}}}}}

	answers := models.Answers{}
	ids := []string{}
	id := "F"
	for range 21 {
		answers[id] = models.Answer{Value: models.Text("yes")}
		ids = append(ids, id)
		id += ".1"
	}
	reachable := resolver.VisibleQuestions(structure, answers)
	require.Len(t, reachable, maxFollowUpDepth+1)

	// closing the branch at depth 10 clears the follow-ups down to the guard
	// and nothing below it
	changed := ids[10]
	answers[changed] = models.Answer{Value: models.Text("no")}

	cleared := resolver.AnswersToClear(changed, structure, answers)
	assert.Equal(t, ids[11:maxFollowUpDepth+1], cleared)
	for _, c := range cleared {
		assert.Contains(t, reachable, c)
	}
}
