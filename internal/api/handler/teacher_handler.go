package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// TeacherHandler serves question management and grading tools. Every route
// runs behind Guard(RoleTeacher).
type TeacherHandler struct {
	questions   ports.QuestionService
	grading     ports.GradingService
	submissions ports.SubmissionService
}

func NewTeacherHandler(questions ports.QuestionService, grading ports.GradingService, submissions ports.SubmissionService) *TeacherHandler {
	return &TeacherHandler{questions: questions, grading: grading, submissions: submissions}
}

// ListQuestions returns the filtered question bank and stats over all of it.
//
// @Summary      List questions
// @Tags         teacher
// @Produce      json
// @Security     BearerAuth
// @Param        search      query     string  false  "Substring of text, id or tag"
// @Param        difficulty  query     string  false  "all, Easy, Medium or Hard"
// @Param        status      query     string  false  "all, active or inactive"
// @Success      200         {object}  envelope{data=domain.QuestionBank}
// @Failure      502         {object}  map[string]string
// @Router       /teacher/questions [get]
func (h *TeacherHandler) ListQuestions(c echo.Context) error {
	filter := domain.QuestionFilter{
		Search:     c.QueryParam("search"),
		Difficulty: c.QueryParam("difficulty"),
		Status:     domain.StatusFilter(c.QueryParam("status")),
	}
	bank, err := h.questions.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, bank)
}

// CreateQuestion adds a question. Omitted fields take the form defaults.
//
// @Summary      Create question
// @Tags         teacher
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.QuestionDraft  true  "Question"
// @Success      201   {object}  envelope{data=domain.Question}
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /teacher/questions [post]
func (h *TeacherHandler) CreateQuestion(c echo.Context) error {
	draft := domain.NewQuestionDraft()
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	q, err := h.questions.Create(c.Request().Context(), draft)
	if err != nil {
		return err
	}
	notify(c, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Question Created",
		Description: "The question has been successfully created.",
	})
	return respond(c, http.StatusCreated, q)
}

// UpdateQuestion applies a partial update.
//
// @Summary      Update question
// @Tags         teacher
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Question id"
// @Param        body  body      domain.QuestionPatch  true  "Fields to change"
// @Success      200   {object}  envelope{data=domain.Question}
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /teacher/questions/{id} [put]
func (h *TeacherHandler) UpdateQuestion(c echo.Context) error {
	var patch domain.QuestionPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	q, err := h.questions.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	notify(c, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Question Updated",
		Description: "The question has been successfully updated.",
	})
	return respond(c, http.StatusOK, q)
}

// DeleteQuestion removes a question once the caller confirms with
// confirm=true.
//
// @Summary      Delete question
// @Tags         teacher
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Question id"
// @Param        confirm  query     bool    true  "Must be true"
// @Success      200      {object}  envelope
// @Failure      428      {object}  map[string]string
// @Failure      502      {object}  map[string]string
// @Router       /teacher/questions/{id} [delete]
func (h *TeacherHandler) DeleteQuestion(c echo.Context) error {
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))

	if err := h.questions.Delete(c.Request().Context(), c.Param("id"), confirmed); err != nil {
		return err
	}
	notify(c, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Success",
		Description: "Question deleted successfully",
	})
	return respond(c, http.StatusOK, nil)
}

// UploadGuide sends a teacher's reference guide to the grading API.
//
// @Summary      Upload teacher guide
// @Tags         teacher
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "PDF guide"
// @Success      200   {object}  envelope{data=domain.UploadReceipt}
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /teacher/guides [post]
func (h *TeacherHandler) UploadGuide(c echo.Context) error {
	file, err := requireUpload(c, "file")
	if err != nil {
		return err
	}

	receipt, err := h.grading.UploadTeacherGuide(c.Request().Context(), *file)
	if err != nil {
		return err
	}
	notify(c, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Guide Uploaded",
		Description: receipt.Message,
	})
	return respond(c, http.StatusOK, receipt)
}

// Evaluate scores a student answer against a model answer.
//
// @Summary      Evaluate an answer
// @Tags         teacher
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.EvaluationRequest  true  "Question and answers"
// @Success      200   {object}  envelope{data=domain.Evaluation}
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /teacher/evaluate [post]
func (h *TeacherHandler) Evaluate(c echo.Context) error {
	var req domain.EvaluationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	eval, err := h.grading.Evaluate(c.Request().Context(), req)
	if err != nil {
		return err
	}
	notify(c, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Evaluation Complete",
		Description: fmt.Sprintf("Score: %v", eval.Score),
	})
	return respond(c, http.StatusOK, eval)
}

// Submissions lists every student's graded submissions.
//
// @Summary      All submissions
// @Tags         teacher
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=ports.SubmissionHistory}
// @Failure      502  {object}  map[string]string
// @Router       /teacher/submissions [get]
func (h *TeacherHandler) Submissions(c echo.Context) error {
	history, err := h.submissions.ForTeacher(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, history)
}
