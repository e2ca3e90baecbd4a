package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Question board
// ---------------------------------------------------------------------------

func TestQuestionBoardService_JoinsQuestionsAndResults(t *testing.T) {
	gw := &stubGateway{
		listQuestions: func(context.Context) ([]domain.Question, error) {
			return []domain.Question{
				{ID: "q1", Difficulty: "Easy"},
				{ID: "q2", Difficulty: "Impossible", DueDate: "2020-01-01"},
				{ID: "q3", Difficulty: "Hard", DueDate: "2999-01-01"},
			}, nil
		},
		getResults: func(_ context.Context, userID string, role domain.Role) ([]domain.Result, error) {
			if userID != "2" || role != domain.RoleStudent {
				t.Errorf("unexpected results query %s/%s", userID, role)
			}
			return []domain.Result{
				{QuestionID: "q1", Score: float(80)},
				{QuestionID: "q1", Score: nil},
			}, nil
		},
	}
	svc := NewQuestionBoardService(gw, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	board, err := svc.Board(context.Background(), "2")
	if err != nil {
		t.Fatalf("Board returned error: %v", err)
	}

	if board.Questions[0].Status != domain.QuestionCompleted {
		t.Errorf("expected q1 completed, got %s", board.Questions[0].Status)
	}
	if board.Questions[1].Status != domain.QuestionPending || !board.Questions[1].Overdue {
		t.Errorf("expected q2 pending and overdue, got %+v", board.Questions[1])
	}
	if board.Questions[1].Difficulty != domain.DifficultyMedium {
		t.Errorf("expected unknown difficulty to read Medium, got %s", board.Questions[1].Difficulty)
	}
	if board.Questions[2].Overdue {
		t.Error("expected q3 not overdue")
	}

	want := domain.BoardStats{TotalQuestions: 3, CompletedQuestions: 1, AverageScore: 40, ProgressPercentage: 33}
	if board.Stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, board.Stats)
	}
}

func TestQuestionBoardService_FetchFailure(t *testing.T) {
	remoteErr := &domain.RemoteError{Op: "get_results", Kind: domain.RemoteStatus, Message: "Failed to fetch results"}
	gw := &stubGateway{
		getResults: func(context.Context, string, domain.Role) ([]domain.Result, error) {
			return []domain.Result{}, remoteErr
		},
	}

	_, err := NewQuestionBoardService(gw, zerolog.Nop()).Board(context.Background(), "2")
	if !errors.Is(err, remoteErr) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestQuestionBoardService_EmptyBank(t *testing.T) {
	board, err := NewQuestionBoardService(&stubGateway{}, zerolog.Nop()).Board(context.Background(), "2")
	if err != nil {
		t.Fatalf("Board returned error: %v", err)
	}
	if board.Stats != (domain.BoardStats{}) || board.Questions == nil {
		t.Fatalf("unexpected empty board: %+v", board)
	}
}

// ---------------------------------------------------------------------------
// Question management
// ---------------------------------------------------------------------------

func bankGateway() *stubGateway {
	return &stubGateway{
		listQuestions: func(context.Context) ([]domain.Question, error) {
			return []domain.Question{
				{ID: "q1", Text: "Explain goroutines", Difficulty: "Easy", PointValue: 10, IsActive: true, SubmissionCount: 4, Tags: []string{"concurrency"}},
				{ID: "q2", Text: "Describe interfaces", Difficulty: "Hard", PointValue: 20, IsActive: false, SubmissionCount: 1, Tags: []string{"types"}},
				{ID: "q3", Text: "What is a slice?", Difficulty: "", PointValue: 5, IsActive: true},
			}, nil
		},
	}
}

func TestQuestionService_List_FiltersAndStats(t *testing.T) {
	svc := NewQuestionService(bankGateway(), zerolog.Nop())

	tests := []struct {
		name   string
		filter domain.QuestionFilter
		want   []string
	}{
		{name: "all", filter: domain.QuestionFilter{}, want: []string{"q1", "q2", "q3"}},
		{name: "search text", filter: domain.QuestionFilter{Search: "GOROUTINE"}, want: []string{"q1"}},
		{name: "search tag", filter: domain.QuestionFilter{Search: "typ"}, want: []string{"q2"}},
		{name: "search id", filter: domain.QuestionFilter{Search: "q3"}, want: []string{"q3"}},
		{name: "difficulty", filter: domain.QuestionFilter{Difficulty: "Medium"}, want: []string{"q3"}},
		{name: "inactive", filter: domain.QuestionFilter{Status: domain.StatusInactive}, want: []string{"q2"}},
		{name: "active and easy", filter: domain.QuestionFilter{Status: domain.StatusActive, Difficulty: "Easy"}, want: []string{"q1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank, err := svc.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if len(bank.Questions) != len(tt.want) {
				t.Fatalf("expected %v, got %+v", tt.want, bank.Questions)
			}
			for i, id := range tt.want {
				if bank.Questions[i].ID != id {
					t.Fatalf("expected %v, got %+v", tt.want, bank.Questions)
				}
			}
			want := domain.QuestionStats{Total: 3, Active: 2, TotalSubmissions: 5, AveragePoints: 12}
			if bank.Stats != want {
				t.Fatalf("expected stats over the whole bank %+v, got %+v", want, bank.Stats)
			}
		})
	}
}

func TestQuestionService_Create_ValidatesBeforeCalling(t *testing.T) {
	gw := &stubGateway{}
	svc := NewQuestionService(gw, zerolog.Nop())

	draft := domain.NewQuestionDraft()
	draft.Text = "What is Go?"
	draft.CorrectAnswer = "A language"
	draft.AllowFileUpload = false
	draft.AllowTextAnswer = false

	_, err := svc.Create(context.Background(), draft)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Message != "At least one answer format must be allowed." {
		t.Fatalf("expected answer format validation error, got %v", err)
	}
	if gw.called("create_question") {
		t.Fatal("gateway must not be called on invalid draft")
	}
}

func TestQuestionService_Create_NormalizesTags(t *testing.T) {
	var sent domain.QuestionDraft
	gw := &stubGateway{createQuestion: func(_ context.Context, d domain.QuestionDraft) (*domain.Question, error) {
		sent = d
		return &domain.Question{ID: "q9", Text: d.Text, Tags: d.Tags}, nil
	}}
	svc := NewQuestionService(gw, zerolog.Nop())

	draft := domain.NewQuestionDraft()
	draft.Text = "What is Go?"
	draft.CorrectAnswer = "A language"
	draft.Tags = []string{" go ", "", "go", "basics"}

	q, err := svc.Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if q.ID != "q9" || len(sent.Tags) != 2 || sent.Tags[0] != "go" || sent.Tags[1] != "basics" {
		t.Fatalf("unexpected tags sent: %v", sent.Tags)
	}
}

func TestQuestionService_Delete_RequiresConfirmation(t *testing.T) {
	gw := &stubGateway{}
	svc := NewQuestionService(gw, zerolog.Nop())

	if err := svc.Delete(context.Background(), "q1", false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if gw.called("delete_question") {
		t.Fatal("gateway must not be called without confirmation")
	}
	if err := svc.Delete(context.Background(), "q1", true); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !gw.called("delete_question") {
		t.Fatal("expected gateway delete after confirmation")
	}
}

func TestQuestionService_Update_RejectsBlankText(t *testing.T) {
	gw := &stubGateway{}
	blank := "  "
	_, err := NewQuestionService(gw, zerolog.Nop()).Update(context.Background(), "q1", domain.QuestionPatch{Text: &blank})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.called("update_question") {
		t.Fatal("gateway must not be called on invalid patch")
	}
}

func TestQuestionService_Update_KeepsOneAnswerFormat(t *testing.T) {
	off, on := false, true
	stored := []domain.Question{
		{ID: "q1", AllowTextAnswer: true, AllowFileUpload: false},
		{ID: "q2", AllowTextAnswer: true, AllowFileUpload: true},
	}

	tests := []struct {
		name       string
		id         string
		patch      domain.QuestionPatch
		wantErr    error
		wantUpdate bool
	}{
		{name: "last format turned off", id: "q1", patch: domain.QuestionPatch{AllowTextAnswer: &off}, wantErr: domain.ErrValidation},
		{name: "both formats turned off", id: "q2", patch: domain.QuestionPatch{AllowTextAnswer: &off, AllowFileUpload: &off}, wantErr: domain.ErrValidation},
		{name: "other format still on", id: "q2", patch: domain.QuestionPatch{AllowFileUpload: &off}, wantUpdate: true},
		{name: "swap formats in one patch", id: "q1", patch: domain.QuestionPatch{AllowTextAnswer: &off, AllowFileUpload: &on}, wantUpdate: true},
		{name: "unknown question", id: "q9", patch: domain.QuestionPatch{AllowTextAnswer: &off}, wantErr: domain.ErrQuestionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{
				listQuestions: func(context.Context) ([]domain.Question, error) {
					return append([]domain.Question(nil), stored...), nil
				},
				updateQuestion: func(_ context.Context, id string, _ domain.QuestionPatch) (*domain.Question, error) {
					return &domain.Question{ID: id}, nil
				},
			}

			_, err := NewQuestionService(gw, zerolog.Nop()).Update(context.Background(), tt.id, tt.patch)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Update returned error: %v", err)
			}
			if gw.called("update_question") != tt.wantUpdate {
				t.Fatalf("expected update_question called=%v", tt.wantUpdate)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Submission history
// ---------------------------------------------------------------------------

func TestSubmissionService_ForTeacher(t *testing.T) {
	gw := &stubGateway{getResults: func(_ context.Context, userID string, role domain.Role) ([]domain.Result, error) {
		if userID != "0" || role != domain.RoleTeacher {
			t.Errorf("unexpected query %s/%s", userID, role)
		}
		return []domain.Result{
			{ID: "1", StudentID: "2", QuestionID: "q1", FilePath: "uploads/a.pdf", Score: float(90)},
			{ID: "2", StudentID: "3", QuestionID: "q1", Score: float(71)},
			{ID: "3", StudentID: "4", QuestionID: "q2"},
		}, nil
	}}

	history, err := NewSubmissionService(gw, zerolog.Nop()).ForTeacher(context.Background())
	if err != nil {
		t.Fatalf("ForTeacher returned error: %v", err)
	}
	if history.Submissions[0].SubmissionType != domain.SubmissionFile || history.Submissions[1].SubmissionType != domain.SubmissionText {
		t.Fatalf("unexpected submission types: %+v", history.Submissions)
	}
	for _, row := range history.Submissions {
		if row.Status != domain.StatusGraded {
			t.Fatalf("expected every row graded, got %s", row.Status)
		}
	}
	want := domain.SubmissionStats{Total: 3, Graded: 3, AverageScore: 54}
	if history.Stats != want {
		t.Fatalf("expected %+v, got %+v", want, history.Stats)
	}
}

func TestSubmissionService_ForStudent_Error(t *testing.T) {
	gw := &stubGateway{getResults: func(context.Context, string, domain.Role) ([]domain.Result, error) {
		return []domain.Result{}, &domain.RemoteError{Kind: domain.RemoteNetwork, Message: "Failed to fetch results"}
	}}

	_, err := NewSubmissionService(gw, zerolog.Nop()).ForStudent(context.Background(), "2")
	if _, ok := domain.AsRemoteError(err); !ok {
		t.Fatalf("expected remote error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Grading tools
// ---------------------------------------------------------------------------

func TestGradingService_Evaluate(t *testing.T) {
	gw := &stubGateway{evaluate: func(context.Context, domain.EvaluationRequest) (*domain.Evaluation, error) {
		return &domain.Evaluation{Score: 66.5}, nil
	}}
	svc := NewGradingService(gw, zerolog.Nop())

	if _, err := svc.Evaluate(context.Background(), domain.EvaluationRequest{Question: "q", ModelAnswer: "m"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.called("evaluate_answer") {
		t.Fatal("gateway must not be called with missing fields")
	}

	ev, err := svc.Evaluate(context.Background(), domain.EvaluationRequest{Question: "q", ModelAnswer: "m", StudentAnswer: "s"})
	if err != nil || ev.Score != 66.5 {
		t.Fatalf("unexpected evaluation %+v (%v)", ev, err)
	}
}

func TestGradingService_UploadTeacherGuide_PDFOnly(t *testing.T) {
	gw := &stubGateway{uploadGuide: func(_ context.Context, f domain.FileUpload) (*domain.UploadReceipt, error) {
		return &domain.UploadReceipt{Message: "Uploaded " + f.Filename}, nil
	}}
	svc := NewGradingService(gw, zerolog.Nop())

	_, err := svc.UploadTeacherGuide(context.Background(), domain.FileUpload{Filename: "scan.png", Content: pngContent})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Message != "Please upload a PDF file only." {
		t.Fatalf("expected pdf-only validation error, got %v", err)
	}

	receipt, err := svc.UploadTeacherGuide(context.Background(), domain.FileUpload{Filename: "guide.pdf", Content: pdfContent})
	if err != nil || receipt.Message != "Uploaded guide.pdf" {
		t.Fatalf("unexpected receipt %+v (%v)", receipt, err)
	}
}
