package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ID is an identifier the grading API may encode either as a JSON number or
// as a string. It always marshals as a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Result is a graded record returned by the grading API.
type Result struct {
	ID         ID       `json:"id"`
	StudentID  ID       `json:"student_id"`
	QuestionID ID       `json:"question_id"`
	FilePath   string   `json:"file_path"`
	Score      *float64 `json:"score"`
	Feedback   string   `json:"feedback"`
	Timestamp  string   `json:"timestamp"`
}

// SubmissionType tells how an answer was handed in.
type SubmissionType string

const (
	SubmissionFile SubmissionType = "File"
	SubmissionText SubmissionType = "Text"
)

// SubmissionStatus of a row. The grading API grades synchronously, so every
// row it returns is Graded; the other states exist for the stats counters.
type SubmissionStatus string

const (
	StatusGraded      SubmissionStatus = "Graded"
	StatusUnderReview SubmissionStatus = "Under Review"
	StatusPending     SubmissionStatus = "Pending"
)

// SubmissionRow is the display shape of a Result.
type SubmissionRow struct {
	ID              string           `json:"id"`
	StudentID       string           `json:"studentId"`
	QuestionID      string           `json:"questionId"`
	SubmissionType  SubmissionType   `json:"submissionType"`
	SimilarityScore *float64         `json:"similarityScore"`
	Status          SubmissionStatus `json:"status"`
	SubmittedAt     string           `json:"submittedAt"`
	Feedback        string           `json:"feedback,omitempty"`
}

// NewSubmissionRow reshapes r for display.
func NewSubmissionRow(r Result) SubmissionRow {
	kind := SubmissionText
	if r.FilePath != "" {
		kind = SubmissionFile
	}
	return SubmissionRow{
		ID:              string(r.ID),
		StudentID:       string(r.StudentID),
		QuestionID:      string(r.QuestionID),
		SubmissionType:  kind,
		SimilarityScore: r.Score,
		Status:          StatusGraded,
		SubmittedAt:     r.Timestamp,
		Feedback:        r.Feedback,
	}
}

// SubmissionStats aggregates a list of rows.
type SubmissionStats struct {
	Total        int `json:"total"`
	Graded       int `json:"graded"`
	UnderReview  int `json:"underReview"`
	Pending      int `json:"pending"`
	AverageScore int `json:"averageScore"`
}

// SummarizeSubmissions counts rows by status and averages their scores,
// treating a missing score as zero.
func SummarizeSubmissions(rows []SubmissionRow) SubmissionStats {
	stats := SubmissionStats{Total: len(rows)}
	scores := make([]*float64, 0, len(rows))
	for _, r := range rows {
		switch r.Status {
		case StatusGraded:
			stats.Graded++
		case StatusUnderReview:
			stats.UnderReview++
		case StatusPending:
			stats.Pending++
		}
		scores = append(scores, r.SimilarityScore)
	}
	stats.AverageScore = AverageScore(scores)
	return stats
}

// AverageScore is round(mean(score or 0)); 0 for an empty list.
func AverageScore(scores []*float64) int {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		if s != nil {
			sum += *s
		}
	}
	return int(math.Round(sum / float64(len(scores))))
}

// Percent is round(100*part/whole); 0 when whole is 0.
func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
