package services

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/stretchr/testify/require"
)

// laborStructure is section A of a supplier questionnaire:
//
//	A.1.1 (BOOLEAN, required) -> A.1.1.1 (TEXT) when true
//	A.1.2 (SINGLE_CHOICE)     -> A.1.2.1 (NUMBER, required) when "subcontract"
//	                              -> A.1.2.1.1 (TEXT) when A.1.2.1 > 10
//	A.1.3 (TEXT, required) shown when A.1.2 equals "subcontract"
//	A.2.1 (TABLE)             -> A.2.1.1 (TABLE) when not empty
const laborStructure = `[
  {
    "id": "A", "order": 1, "title": "Labor",
    "subsections": [
      {
        "id": "A.1", "order": 1, "title": "Working hours",
        "questions": [
          {
            "id": "A.1.1", "order": 1, "text": "Do you have a written working hours policy?",
            "type": "BOOLEAN", "required": true,
            "conditionalLogic": {
              "followUpQuestions": [
                {
                  "condition": {"operator": "equals", "value": true},
                  "questions": [
                    {"id": "A.1.1.1", "order": 1, "text": "Describe the policy", "type": "TEXT"}
                  ]
                }
              ]
            }
          },
          {
            "id": "A.1.2", "order": 2, "text": "How is overtime staffed?", "type": "SINGLE_CHOICE",
            "config": {"options": [{"value": "inhouse", "label": "In house"}, {"value": "subcontract", "label": "Subcontracted"}]},
            "conditionalLogic": {
              "followUpQuestions": [
                {
                  "condition": {"operator": "equals", "value": "subcontract"},
                  "questions": [
                    {
                      "id": "A.1.2.1", "order": 1, "text": "How many subcontractors?", "type": "NUMBER", "required": true,
                      "conditionalLogic": {
                        "followUpQuestions": [
                          {
                            "condition": {"operator": "greaterThan", "value": 10},
                            "questions": [
                              {"id": "A.1.2.1.1", "order": 1, "text": "How are they audited?", "type": "TEXT", "required": true}
                            ]
                          }
                        ]
                      }
                    }
                  ]
                }
              ]
            }
          },
          {
            "id": "A.1.3", "order": 3, "text": "Name the main subcontractor", "type": "TEXT", "required": true,
            "conditionalLogic": {
              "showWhen": {"questionId": "A.1.2", "condition": {"operator": "equals", "value": "subcontract"}}
            }
          }
        ]
      },
      {
        "id": "A.2", "order": 2, "title": "Workforce",
        "questions": [
          {
            "id": "A.2.1", "order": 1, "text": "List your production sites", "type": "TABLE",
            "config": {
              "tableConfig": {
                "columns": [
                  {"id": "site", "label": "Site", "type": "text", "required": true},
                  {"id": "count", "label": "Headcount", "type": "number", "required": true}
                ],
                "minRows": 1, "maxRows": 5
              }
            },
            "conditionalLogic": {
              "followUpQuestions": [
                {
                  "condition": {"operator": "isNotEmpty"},
                  "questions": [
                    {
                      "id": "A.2.1.1", "order": 1, "text": "Site contacts", "type": "TABLE",
                      "config": {
                        "tableConfig": {
                          "columns": [{"id": "email", "label": "Email", "type": "email", "required": true}],
                          "minRows": 1
                        }
                      }
                    }
                  ]
                }
              ]
            }
          }
        ]
      }
    ]
  }
]`

func loadStructure(t *testing.T, raw string) models.Structure {
	t.Helper()
	var structure models.Structure
	require.NoError(t, json.Unmarshal([]byte(raw), &structure))
	return structure
}

func loadAnswers(t *testing.T, raw string) models.Answers {
	t.Helper()
	var answers models.Answers
	require.NoError(t, json.Unmarshal([]byte(raw), &answers))
	return answers
}

// scenarioStructure is a single required BOOLEAN with one TEXT follow-up.
func scenarioStructure() models.Structure {
	return models.Structure{
		{
			ID: "A", Title: "Labor",
			Subsections: []models.Subsection{
				{
					ID: "A.1",
					Questions: []models.Question{
						{
							ID: "A.1.1", Text: "Is child labor prohibited by policy?", Type: models.QuestionBoolean, Required: true,
							ConditionalLogic: &models.ConditionalLogic{
								FollowUpQuestions: []models.FollowUpRule{
									{
										Condition: &models.Condition{Operator: models.OpEquals, Value: models.Bool(true)},
										Questions: []models.Question{
											{ID: "A.1.1.1", Text: "Attach the policy reference", Type: models.QuestionText},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func newResolver() VisibilityResolver {
	return NewVisibilityResolver(NewConditionEvaluator(nil), nil)
}
