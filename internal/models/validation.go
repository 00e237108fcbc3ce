package models

// Error categories of a submission result.
const (
	CategoryBasicInfo        = "basicInfo"
	CategoryMissingRequired  = "missingRequired"
	CategoryConditionalLogic = "conditionalLogic"
	CategoryTablePrefix      = "table_"
)

// MissingField is a required question without an answer.
type MissingField struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
}

// SubmissionResult aggregates every validation failure of a submission.
// Errors holds []MissingField under missingRequired and map[string]string
// for every other category.
type SubmissionResult struct {
	Valid  bool           `json:"valid"`
	Errors map[string]any `json:"errors"`
}
