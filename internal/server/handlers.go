package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/prepwise/prepwise/config"
	"github.com/prepwise/prepwise/internal/quiz"
	"github.com/prepwise/prepwise/internal/report"
	"github.com/prepwise/prepwise/internal/store"
	"github.com/prepwise/prepwise/internal/telemetry"
)

// Handler carries the service dependencies for the /api routes.
// Archive may be nil when Postgres is not configured.
type Handler struct {
	Cfg       *config.Config
	Logger    *log.Logger
	Orch      *report.Orchestrator
	Generator *quiz.Generator
	Sessions  quiz.Store
	Archive   *store.Store
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/quiz", h.startQuiz)
	g.POST("/quiz/:id/answer", h.checkAnswer)
	g.GET("/quiz/:id/results", h.results)
	g.POST("/report", h.generateReport)
	g.GET("/report/:id", h.getReport)
	g.GET("/reports", h.listReports)
}

// questionView is a question as shown to the student: no answer, no solution.
type questionView struct {
	Index    int               `json:"index"`
	Subject  string            `json:"subject"`
	Chapter  string            `json:"chapter"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

type startQuizRequest struct {
	Subjects     []string `json:"subjects"`
	Difficulty   string   `json:"difficulty"`
	NumQuestions int      `json:"num_questions"`
	Timed        bool     `json:"timed"`
}

func (h *Handler) startQuiz(c echo.Context) error {
	var req startQuizRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Subjects) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one subject is required")
	}
	for _, s := range req.Subjects {
		if _, ok := quiz.SubjectAbbrev[s]; !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown subject: "+s)
		}
	}
	if req.Difficulty == "" {
		req.Difficulty = "Medium"
	}
	if req.NumQuestions <= 0 {
		req.NumQuestions = 5
	}
	if req.NumQuestions > h.Cfg.Quiz.MaxQuestions {
		req.NumQuestions = h.Cfg.Quiz.MaxQuestions
	}

	questions := h.Generator.GenerateSet(c.Request().Context(), req.Subjects, req.Difficulty, req.NumQuestions)
	if len(questions) == 0 {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not assemble a quiz")
	}

	sess := &quiz.Session{
		ID:        uuid.NewString(),
		Questions: questions,
		Answers:   make(map[int]quiz.Answer),
		StartedAt: time.Now(),
		Timed:     req.Timed,
	}
	if err := h.Sessions.Save(c.Request().Context(), sess, h.Cfg.Quiz.SessionTTL); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not store quiz session")
	}
	telemetry.QuizzesStarted.Inc()

	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{Index: i, Subject: q.Subject, Chapter: q.Chapter, Question: q.Question, Options: q.Options}
	}
	resp := map[string]any{
		"session_id": sess.ID,
		"questions":  views,
		"timed":      sess.Timed,
	}
	if sess.Timed {
		resp["time_left"] = sess.TimeLeft(h.Cfg.Quiz.SecondsPerQuestion, time.Now())
	}
	return c.JSON(http.StatusOK, resp)
}

type checkAnswerRequest struct {
	QuestionIndex  *int   `json:"question_index"`
	SelectedOption string `json:"selected_option"`
}

func (h *Handler) checkAnswer(c echo.Context) error {
	var req checkAnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.QuestionIndex == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "question_index is required")
	}

	ctx := c.Request().Context()
	sess, err := h.Sessions.Get(ctx, c.Param("id"))
	if err == quiz.ErrSessionNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "session expired or unknown")
	}
	if err != nil {
		return err
	}

	correct, answer, solution, ok := sess.CheckAnswer(*req.QuestionIndex, req.SelectedOption)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid question index")
	}
	if err := h.Sessions.Save(ctx, sess, h.Cfg.Quiz.SessionTTL); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"is_correct":     correct,
		"correct_answer": answer,
		"solution":       solution,
	})
}

func (h *Handler) results(c echo.Context) error {
	ctx := c.Request().Context()
	sess, err := h.Sessions.Get(ctx, c.Param("id"))
	if err == quiz.ErrSessionNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "session expired or unknown")
	}
	if err != nil {
		return err
	}

	perf := quiz.Grade(sess, time.Now())
	// the session is consumed by grading, same as the original flow
	if err := h.Sessions.Delete(ctx, sess.ID); err != nil {
		h.Logger.Printf("deleting session %s: %v", sess.ID, err)
	}
	return c.JSON(http.StatusOK, perf)
}

func (h *Handler) generateReport(c echo.Context) error {
	var perf report.PerformanceReport
	if err := c.Bind(&perf); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report data")
	}

	resp := h.Orch.GenerateReport(c.Request().Context(), perf)

	out := map[string]any{"analysis": resp.Analysis}
	if resp.Degraded {
		out["degraded"] = true
	}
	if h.Archive != nil {
		id, err := h.Archive.SaveReport(c.Request().Context(), perf, resp)
		if err != nil {
			h.Logger.Printf("archiving report: %v", err)
		} else {
			out["report_id"] = id
		}
	}
	// Pipeline failures are data, not HTTP errors: the analysis field then
	// carries the formatted error sentence.
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) getReport(c echo.Context) error {
	if h.Archive == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "report archive not configured")
	}
	saved, err := h.Archive.GetReport(c.Request().Context(), c.Param("id"))
	if err == store.ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) listReports(c echo.Context) error {
	if h.Archive == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "report archive not configured")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	saved, err := h.Archive.ListReports(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if saved == nil {
		saved = []store.SavedReport{}
	}
	return c.JSON(http.StatusOK, saved)
}
