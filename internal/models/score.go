package models

import "time"

// FlatQuestion is the scoring view of a question: one row per top level
// question of a section. Follow-up questions never appear here.
type FlatQuestion struct {
	ID        string       `db:"id" json:"id"`
	SectionID string       `db:"section_id" json:"sectionId"`
	Text      string       `db:"text" json:"text"`
	Type      QuestionType `db:"question_type" json:"type"`
	Order     int          `db:"sort_order" json:"order"`
}

type SectionScore struct {
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"maxScore"`
	AnsweredCount  int     `json:"answeredCount"`
	TotalCount     int     `json:"totalCount"`
	CompletionRate float64 `json:"completionRate"`
}

type WeightedSectionScore struct {
	SectionScore
	Weight float64 `json:"weight"`
}

type TotalScore struct {
	Sections   map[string]WeightedSectionScore `json:"sections"`
	TotalScore float64                         `json:"totalScore"`
	Grade      string                          `json:"grade"`
}

type SectionBreakdown struct {
	SectionID      string  `json:"sectionId"`
	SectionName    string  `json:"sectionName"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"maxScore"`
	Weight         float64 `json:"weight"`
	AnsweredCount  int     `json:"answeredCount"`
	TotalCount     int     `json:"totalCount"`
	CompletionRate float64 `json:"completionRate"`
}

// ScoreReport is the presentation shape of a subject's score.
type ScoreReport struct {
	Breakdown    map[string]SectionBreakdown `json:"breakdown"`
	TotalScore   float64                     `json:"totalScore"`
	Grade        string                      `json:"grade"`
	CalculatedAt time.Time                   `json:"calculatedAt"`
}

// Subject is an organization whose questionnaire gets scored.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// TemplateRow is a stored questionnaire template.
type TemplateRow struct {
	ID        string `db:"id" json:"id"`
	Structure []byte `db:"structure" json:"structure"` // jsonb
}
