package domain

import (
	"math"
	"strings"
	"time"
)

// CompletionStatus of a question from one student's point of view.
type CompletionStatus string

const (
	QuestionCompleted CompletionStatus = "completed"
	QuestionPending   CompletionStatus = "pending"
)

// StudentQuestion is a Question joined with the student's results.
type StudentQuestion struct {
	Question
	Status  CompletionStatus `json:"status"`
	Overdue bool             `json:"overdue"`
}

// BoardStats summarises a student's progress.
type BoardStats struct {
	TotalQuestions     int `json:"totalQuestions"`
	CompletedQuestions int `json:"completedQuestions"`
	AverageScore       int `json:"averageScore"`
	ProgressPercentage int `json:"progressPercentage"`
}

// StudentBoard is the question browsing view of a student.
type StudentBoard struct {
	Questions []StudentQuestion `json:"questions"`
	Stats     BoardStats        `json:"stats"`
}

// BuildStudentBoard joins questions with results by question id. A question
// is completed iff at least one result references it.
func BuildStudentBoard(questions []Question, results []Result, now time.Time) StudentBoard {
	answered := make(map[string]struct{}, len(results))
	scores := make([]*float64, 0, len(results))
	for _, r := range results {
		answered[string(r.QuestionID)] = struct{}{}
		scores = append(scores, r.Score)
	}

	board := StudentBoard{Questions: make([]StudentQuestion, 0, len(questions))}
	completed := 0
	for _, q := range questions {
		sq := StudentQuestion{Question: q, Status: QuestionPending}
		if _, ok := answered[q.ID]; ok {
			sq.Status = QuestionCompleted
			completed++
		}
		if due, ok := ParseDueDate(q.DueDate); ok && sq.Status == QuestionPending {
			sq.Overdue = due.Before(now)
		}
		board.Questions = append(board.Questions, sq)
	}

	board.Stats = BoardStats{
		TotalQuestions:     len(questions),
		CompletedQuestions: completed,
		AverageScore:       AverageScore(scores),
		ProgressPercentage: Percent(completed, len(questions)),
	}
	return board
}

// StatusFilter selects questions by their active flag.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// QuestionFilter is applied client-side after the question list is fetched.
type QuestionFilter struct {
	Search     string
	Difficulty string // "all" or a Difficulty
	Status     StatusFilter
}

// Match reports whether q passes every part of the filter.
func (f QuestionFilter) Match(q Question) bool {
	return f.matchSearch(q) && f.matchDifficulty(q) && f.matchStatus(q)
}

func (f QuestionFilter) matchSearch(q Question) bool {
	term := strings.ToLower(f.Search)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(q.Text), term) || strings.Contains(strings.ToLower(q.ID), term) {
		return true
	}
	for _, tag := range q.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (f QuestionFilter) matchDifficulty(q Question) bool {
	if f.Difficulty == "" || f.Difficulty == "all" {
		return true
	}
	return string(q.Difficulty) == f.Difficulty
}

func (f QuestionFilter) matchStatus(q Question) bool {
	switch f.Status {
	case StatusActive:
		return q.IsActive
	case StatusInactive:
		return !q.IsActive
	default:
		return true
	}
}

// QuestionStats is the teacher's overview of the question bank.
type QuestionStats struct {
	Total            int `json:"total"`
	Active           int `json:"active"`
	TotalSubmissions int `json:"totalSubmissions"`
	AveragePoints    int `json:"averagePoints"`
}

// SummarizeQuestions computes stats over the unfiltered list.
func SummarizeQuestions(questions []Question) QuestionStats {
	stats := QuestionStats{Total: len(questions)}
	points := 0
	for _, q := range questions {
		if q.IsActive {
			stats.Active++
		}
		stats.TotalSubmissions += q.SubmissionCount
		points += q.PointValue
	}
	if len(questions) > 0 {
		stats.AveragePoints = int(math.Round(float64(points) / float64(len(questions))))
	}
	return stats
}

// QuestionBank is the teacher's question management view.
type QuestionBank struct {
	Questions []Question    `json:"questions"`
	Stats     QuestionStats `json:"stats"`
}
