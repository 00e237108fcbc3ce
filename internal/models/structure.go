package models

// The type of question being asked.
type QuestionType string

const (
	QuestionText         QuestionType = "TEXT"
	QuestionNumber       QuestionType = "NUMBER"
	QuestionDate         QuestionType = "DATE"
	QuestionBoolean      QuestionType = "BOOLEAN"
	QuestionSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionMultiChoice  QuestionType = "MULTI_CHOICE"
	QuestionSelect       QuestionType = "SELECT"
	QuestionFile         QuestionType = "FILE"
	QuestionRating       QuestionType = "RATING"
	QuestionTable        QuestionType = "TABLE"
)

// Comparison operators a condition can use.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpContains           Operator = "contains"
	OpGreaterThan        Operator = "greaterThan"
	OpLessThan           Operator = "lessThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpIsEmpty            Operator = "isEmpty"
	OpIsNotEmpty         Operator = "isNotEmpty"
	// The value holds a boolean expression over `value`.
	OpExpression Operator = "expression"
)

// Table column types that get a format check.
const (
	ColumnText   = "text"
	ColumnNumber = "number"
	ColumnDate   = "date"
	ColumnEmail  = "email"
)

// Structure is the template tree: sections, subsections, then questions.
type Structure []Section

type Section struct {
	ID          string       `json:"id"`
	Order       int          `json:"order"`
	Title       string       `json:"title"`
	Subsections []Subsection `json:"subsections"`
}

type Subsection struct {
	ID        string     `json:"id"`
	Order     int        `json:"order"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID               string            `json:"id"`
	Order            int               `json:"order"`
	Text             string            `json:"text"`
	Type             QuestionType      `json:"type"`
	Required         bool              `json:"required"`
	Config           QuestionConfig    `json:"config"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic,omitempty"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type QuestionConfig struct {
	Options     []Option     `json:"options,omitempty"`
	TableConfig *TableConfig `json:"tableConfig,omitempty"`
}

type TableConfig struct {
	Columns []TableColumn `json:"columns"`
	MinRows int           `json:"minRows"`
	// Zero means no upper bound.
	MaxRows int `json:"maxRows"`
}

type TableColumn struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// ConditionalLogic controls a question's own visibility and the follow-up
// questions it spawns.
type ConditionalLogic struct {
	ShowWhen          *ShowWhen      `json:"showWhen,omitempty"`
	FollowUpQuestions []FollowUpRule `json:"followUpQuestions,omitempty"`
}

// ShowWhen gates the owning question on another question's answer.
type ShowWhen struct {
	QuestionID string     `json:"questionId"`
	Condition  *Condition `json:"condition"`
}

// FollowUpRule reveals Questions when Condition holds for the owning
// question's answer.
type FollowUpRule struct {
	Condition *Condition `json:"condition"`
	Questions []Question `json:"questions"`
}

type Condition struct {
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
}

// HasShowWhen reports whether the question gates itself on another answer.
func (q Question) HasShowWhen() bool {
	return q.ConditionalLogic != nil && q.ConditionalLogic.ShowWhen != nil
}

// FollowUps returns the follow-up rules of the question, if any.
func (q Question) FollowUps() []FollowUpRule {
	if q.ConditionalLogic == nil {
		return nil
	}
	return q.ConditionalLogic.FollowUpQuestions
}
