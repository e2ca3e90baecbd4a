package domain

import (
	"strings"
	"time"
)

// Difficulty is the authoring level of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// NormalizeDifficulty maps anything unknown to Medium.
func NormalizeDifficulty(d Difficulty) Difficulty {
	if d.Valid() {
		return d
	}
	return DifficultyMedium
}

const defaultPointValue = 10

// Question is owned by the grading API; the portal only holds copies fetched
// per request.
type Question struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	CorrectAnswer   string     `json:"correctAnswer"`
	Difficulty      Difficulty `json:"difficulty"`
	PointValue      int        `json:"pointValue"`
	HasReference    bool       `json:"hasReference"`
	SubmissionCount int        `json:"submissionCount"`
	IsActive        bool       `json:"isActive"`
	Tags            []string   `json:"tags"`
	TimeLimit       *int       `json:"timeLimit,omitempty"`
	AllowFileUpload bool       `json:"allowFileUpload"`
	AllowTextAnswer bool       `json:"allowTextAnswer"`
	DueDate         string     `json:"dueDate,omitempty"`
}

// QuestionDraft is the payload used to create a question.
type QuestionDraft struct {
	Text            string     `json:"text"`
	CorrectAnswer   string     `json:"correctAnswer"`
	Difficulty      Difficulty `json:"difficulty"`
	PointValue      int        `json:"pointValue"`
	HasReference    bool       `json:"hasReference"`
	IsActive        bool       `json:"isActive"`
	Tags            []string   `json:"tags"`
	TimeLimit       *int       `json:"timeLimit,omitempty"`
	AllowFileUpload bool       `json:"allowFileUpload"`
	AllowTextAnswer bool       `json:"allowTextAnswer"`
	DueDate         string     `json:"dueDate,omitempty"`
}

// NewQuestionDraft returns a draft with the authoring defaults.
func NewQuestionDraft() QuestionDraft {
	return QuestionDraft{
		Difficulty:      DifficultyMedium,
		PointValue:      defaultPointValue,
		IsActive:        true,
		Tags:            []string{},
		AllowFileUpload: true,
		AllowTextAnswer: true,
	}
}

// Normalize trims text fields, cleans tags and fills the default difficulty.
func (d *QuestionDraft) Normalize() {
	if d.Difficulty == "" {
		d.Difficulty = DifficultyMedium
	}
	d.Tags = NormalizeTags(d.Tags)
}

// Validate enforces the authoring rules checked before the API is called.
func (d QuestionDraft) Validate() error {
	if strings.TrimSpace(d.Text) == "" {
		return NewValidationError("text", "Question text is required.")
	}
	if strings.TrimSpace(d.CorrectAnswer) == "" {
		return NewValidationError("correctAnswer", "Correct answer is required.")
	}
	if !d.Difficulty.Valid() {
		return NewValidationError("difficulty", "Difficulty must be Easy, Medium or Hard.")
	}
	if !d.AllowFileUpload && !d.AllowTextAnswer {
		return NewValidationError("allowTextAnswer", "At least one answer format must be allowed.")
	}
	if d.PointValue < 0 {
		return NewValidationError("pointValue", "Point value cannot be negative.")
	}
	return nil
}

// QuestionPatch is a partial update; nil fields are not sent.
type QuestionPatch struct {
	Text            *string     `json:"text,omitempty"`
	CorrectAnswer   *string     `json:"correctAnswer,omitempty"`
	Difficulty      *Difficulty `json:"difficulty,omitempty"`
	PointValue      *int        `json:"pointValue,omitempty"`
	HasReference    *bool       `json:"hasReference,omitempty"`
	IsActive        *bool       `json:"isActive,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	TimeLimit       *int        `json:"timeLimit,omitempty"`
	AllowFileUpload *bool       `json:"allowFileUpload,omitempty"`
	AllowTextAnswer *bool       `json:"allowTextAnswer,omitempty"`
	DueDate         *string     `json:"dueDate,omitempty"`
}

// Validate checks the fields that are present. A patch naming one answer-format
// flag is checked against the stored question with AllowsAnswerOn.
func (p *QuestionPatch) Validate() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return NewValidationError("text", "Question text is required.")
	}
	if p.CorrectAnswer != nil && strings.TrimSpace(*p.CorrectAnswer) == "" {
		return NewValidationError("correctAnswer", "Correct answer is required.")
	}
	if p.Difficulty != nil && !p.Difficulty.Valid() {
		return NewValidationError("difficulty", "Difficulty must be Easy, Medium or Hard.")
	}
	if p.AllowFileUpload != nil && p.AllowTextAnswer != nil && !*p.AllowFileUpload && !*p.AllowTextAnswer {
		return NewValidationError("allowTextAnswer", "At least one answer format must be allowed.")
	}
	if p.PointValue != nil && *p.PointValue < 0 {
		return NewValidationError("pointValue", "Point value cannot be negative.")
	}
	if p.Tags != nil {
		p.Tags = NormalizeTags(p.Tags)
	}
	return nil
}

// TurnsOffOneFormat reports whether p disables one answer format without
// saying anything about the other. The stored question decides such patches.
func (p *QuestionPatch) TurnsOffOneFormat() bool {
	text, file := p.AllowTextAnswer, p.AllowFileUpload
	return (text != nil && !*text && file == nil) || (file != nil && !*file && text == nil)
}

// AllowsAnswerOn reports whether q accepts at least one answer format once p
// is applied to it.
func (p *QuestionPatch) AllowsAnswerOn(q Question) bool {
	text, file := q.AllowTextAnswer, q.AllowFileUpload
	if p.AllowTextAnswer != nil {
		text = *p.AllowTextAnswer
	}
	if p.AllowFileUpload != nil {
		file = *p.AllowFileUpload
	}
	return text || file
}

// NormalizeTags trims tags, drops empty ones and removes duplicates keeping the
// first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDueDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
