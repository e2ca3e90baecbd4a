package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gradeflow/assignment-portal/docs"
	"github.com/gradeflow/assignment-portal/internal/api/handler"
	"github.com/gradeflow/assignment-portal/internal/api/middleware"
	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/pkg/tracing"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	JWTSecret string
	Logger    zerolog.Logger

	Sessions    ports.SessionManager
	Board       ports.QuestionBoardService
	Answers     ports.AnswerService
	Submissions ports.SubmissionService
	Questions   ports.QuestionService
	Grading     ports.GradingService
	Bus         ports.CompletionBus

	HealthChecks []handler.HealthCheck

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(tracing.Middleware())
	e.Use(prometheusMiddleware(d.Registry))
	e.Use(echomiddleware.BodyLimit("25M"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions)
	studentHandler := handler.NewStudentHandler(d.Board, d.Answers, d.Submissions)
	teacherHandler := handler.NewTeacherHandler(d.Questions, d.Grading, d.Submissions)
	eventsHandler := handler.NewEventsHandler(d.Bus, d.Logger)
	healthHandler := handler.NewHealthHandler(d.HealthChecks...)

	auth := middleware.Auth(d.JWTSecret)
	optionalAuth := middleware.OptionalAuth(d.JWTSecret)
	session := middleware.Session(d.Sessions, d.Logger)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login, optionalAuth, session)
	e.POST("/auth/register", authHandler.Register, optionalAuth, session)
	e.POST("/auth/logout", authHandler.Logout, auth, session)
	e.GET("/auth/me", authHandler.Me, auth, session)
	e.PATCH("/auth/profile", authHandler.UpdateProfile, auth, session)
	e.GET("/dashboard", authHandler.Dashboard, auth, session, middleware.Guard())

	// --- Student workflow ---
	student := e.Group("/student", auth, session, middleware.Guard(domain.RoleStudent))
	student.GET("/questions", studentHandler.Questions)
	student.POST("/answers/extract", studentHandler.ExtractText)
	student.POST("/answers", studentHandler.Submit)
	student.GET("/submissions", studentHandler.Submissions)
	student.GET("/events", eventsHandler.Stream)

	// --- Teacher workflow ---
	teacher := e.Group("/teacher", auth, session, middleware.Guard(domain.RoleTeacher))
	teacher.GET("/questions", teacherHandler.ListQuestions)
	teacher.POST("/questions", teacherHandler.CreateQuestion)
	teacher.PUT("/questions/:id", teacherHandler.UpdateQuestion)
	teacher.DELETE("/questions/:id", teacherHandler.DeleteQuestion)
	teacher.POST("/guides", teacherHandler.UploadGuide)
	teacher.POST("/evaluate", teacherHandler.Evaluate)
	teacher.GET("/submissions", teacherHandler.Submissions)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", prometheusHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func prometheusMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	if reg == nil {
		return echoprometheus.NewMiddleware("portal")
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: reg,
	})
}

func prometheusHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
