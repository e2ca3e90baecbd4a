package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// StudentHandler serves the student workflow pages. Every route runs behind
// Guard(RoleStudent), so the session user is the student.
type StudentHandler struct {
	board       ports.QuestionBoardService
	answers     ports.AnswerService
	submissions ports.SubmissionService
}

func NewStudentHandler(board ports.QuestionBoardService, answers ports.AnswerService, submissions ports.SubmissionService) *StudentHandler {
	return &StudentHandler{board: board, answers: answers, submissions: submissions}
}

// Questions returns the question board with completion status and progress.
//
// @Summary      Student question board
// @Tags         student
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=studentBoardResponse}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /student/questions [get]
func (h *StudentHandler) Questions(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	board, err := h.board.Board(ctx, user.ID)
	if err != nil {
		return err
	}
	completed, err := h.answers.Completed(ctx, user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, studentBoardResponse{StudentBoard: board, Completed: completed})
}

// ExtractText runs OCR on an uploaded PDF or image so the student can edit
// the text before submitting.
//
// @Summary      Extract answer text from a file
// @Tags         student
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "PDF or image"
// @Success      200   {object}  envelope{data=extractResponse}
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /student/answers/extract [post]
func (h *StudentHandler) ExtractText(c echo.Context) error {
	file, err := requireUpload(c, "file")
	if err != nil {
		return err
	}

	text, err := h.answers.ExtractText(c.Request().Context(), *file)
	if err != nil {
		return err
	}
	notify(c, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Text Extracted",
		Description: "Text was successfully extracted from your file.",
	})
	return respond(c, http.StatusOK, extractResponse{Text: text})
}

// Submit uploads the student's answer as text, a file, or both.
//
// @Summary      Submit an answer
// @Tags         student
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        question_id  formData  string  true   "Question id"
// @Param        text_answer  formData  string  false  "Answer text"
// @Param        file         formData  file    false  "Answer file (PDF or image)"
// @Success      200          {object}  envelope{data=domain.AssignmentReceipt}
// @Failure      422          {object}  map[string]string
// @Failure      502          {object}  map[string]string
// @Router       /student/answers [post]
func (h *StudentHandler) Submit(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	file, err := readUpload(c, "file")
	if err != nil {
		return err
	}

	receipt, err := h.answers.Submit(c.Request().Context(), domain.AssignmentUpload{
		StudentID:  user.ID,
		QuestionID: c.FormValue("question_id"),
		Text:       c.FormValue("text_answer"),
		File:       file,
	})
	if err != nil {
		return err
	}
	notify(c, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Submission Successful",
		Description: "Your answer has been successfully submitted for review.",
	})
	return respond(c, http.StatusOK, receipt)
}

// Submissions lists the student's graded submissions.
//
// @Summary      Student submission history
// @Tags         student
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=ports.SubmissionHistory}
// @Failure      502  {object}  map[string]string
// @Router       /student/submissions [get]
func (h *StudentHandler) Submissions(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	history, err := h.submissions.ForStudent(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, history)
}
