package models

// Holds the answer in every question.
type Answer struct {
	Value Value `json:"value"`
}

// Answers maps question id to the current answer.
type Answers map[string]Answer

// ValueOf returns the answer value for the question, null when unanswered.
func (a Answers) ValueOf(questionID string) Value {
	ans, ok := a[questionID]
	if !ok {
		return Null()
	}
	return ans.Value
}

// Clone returns a shallow copy so callers can edit it without touching the
// original map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// AnswerRow is one stored answer as it comes out of the answers table.
type AnswerRow struct {
	QuestionID string `db:"question_id" json:"questionId"`
	Value      []byte `db:"value" json:"value"` // jsonb
}

// BasicInfo is the supplier identity block submitted with a questionnaire.
type BasicInfo struct {
	CompanyName  string `json:"companyName" validate:"required,max=200"`
	ContactName  string `json:"contactName" validate:"required"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
	Phone        string `json:"phone" validate:"omitempty,e164"`
	Country      string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
}
