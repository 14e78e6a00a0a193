package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	quiz     *application.QuizService
	sessions *application.SessionService
	trivia   *application.TriviaImporter
	auth     *AdminAuth
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. trivia may be
// nil, in which case the Open Trivia Database endpoints answer 503.
func NewHandler(
	quiz *application.QuizService,
	sessions *application.SessionService,
	trivia *application.TriviaImporter,
	auth *AdminAuth,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		quiz:     quiz,
		sessions: sessions,
		trivia:   trivia,
		auth:     auth,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/leaderboard", h.GetLeaderboard)
	mux.HandleFunc("GET /api/v1/stats", h.GetStatistics)

	mux.HandleFunc("POST /api/v1/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", h.EndSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/username", h.EnterUsername)
	mux.HandleFunc("POST /api/v1/sessions/{id}/start", h.StartQuiz)
	mux.HandleFunc("POST /api/v1/sessions/{id}/answer", h.AnswerQuestion)
	mux.HandleFunc("POST /api/v1/sessions/{id}/next", h.NextQuestion)
	mux.HandleFunc("POST /api/v1/sessions/{id}/finish", h.FinishQuiz)
	mux.HandleFunc("POST /api/v1/sessions/{id}/reset", h.ResetSession)

	mux.HandleFunc("POST /api/v1/admin/login", h.AdminLogin)
	admin := h.auth.requireAdmin
	mux.HandleFunc("POST /api/v1/admin/categories", admin(h.CreateCategory))
	mux.HandleFunc("GET /api/v1/admin/questions", admin(h.ListQuestions))
	mux.HandleFunc("POST /api/v1/admin/questions", admin(h.CreateQuestion))
	mux.HandleFunc("DELETE /api/v1/admin/questions", admin(h.ClearQuestions))
	mux.HandleFunc("PUT /api/v1/admin/questions/{id}", admin(h.UpdateQuestion))
	mux.HandleFunc("DELETE /api/v1/admin/questions/{id}", admin(h.DeleteQuestion))
	mux.HandleFunc("GET /api/v1/admin/export/questions", admin(h.ExportQuestions))
	mux.HandleFunc("GET /api/v1/admin/export/scores", admin(h.ExportScores))
	mux.HandleFunc("POST /api/v1/admin/import/questions", admin(h.ImportQuestions))
	mux.HandleFunc("POST /api/v1/admin/import/scores", admin(h.ImportScores))
	mux.HandleFunc("POST /api/v1/admin/import/opentdb", admin(h.ImportOpenTDB))
	mux.HandleFunc("GET /api/v1/admin/opentdb/categories", admin(h.ListOpenTDBCategories))
}

// NewServeMux creates an http.Handler with all API routes registered and
// wrapped with security header, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	return Wrap(mux, logger)
}

// Wrap applies the standard middleware chain to next.
func Wrap(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = secureHeaders(wrapped)
	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		Time:           time.Now().UTC().Format(time.RFC3339),
		ActiveSessions: h.sessions.Active(),
	})
}

// ListCategories returns every category in alphabetical order.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.quiz.Categories(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list categories")
		return
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetLeaderboard returns the per-user leaderboard, or the per-attempt
// leaderboard of one category when category_id is given.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	categoryID, err := optionalInt64(r.URL.Query().Get("category_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category_id")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
	}

	lb, err := h.quiz.Leaderboard(r.Context(), categoryID, limit)
	if err != nil {
		h.writeServiceError(w, err, "get leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardResponse(lb))
}

// GetStatistics returns question and score statistics.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.quiz.Statistics(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "get statistics")
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsResponse(stats))
}

// CreateSession opens a new quiz session.
func (h *Handler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, toSessionResponse(h.sessions.Create()))
}

// GetSession returns the current view of a session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	h.writeSession(w, sess, err, "get session")
}

// EndSession discards a session.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.PathValue("id")); err != nil {
		h.writeServiceError(w, err, "end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnterUsername sets the player name.
func (h *Handler) EnterUsername(w http.ResponseWriter, r *http.Request) {
	var req UsernameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.sessions.EnterUsername(r.PathValue("id"), req.Username)
	h.writeSession(w, sess, err, "enter username")
}

// StartQuiz starts a quiz for one category or for all of them.
func (h *Handler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.sessions.Start(r.Context(), r.PathValue("id"), req.CategoryID)
	h.writeSession(w, sess, err, "start quiz")
}

// AnswerQuestion grades the answer to the current question.
func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	option, err := model.AnswerFromLetter(req.Answer)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "answer must be A, B, C or D", Field: "answer"})
		return
	}
	sess, err := h.sessions.Answer(r.PathValue("id"), option)
	h.writeSession(w, sess, err, "answer question")
}

// NextQuestion advances to the next question.
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Next(r.PathValue("id"))
	h.writeSession(w, sess, err, "next question")
}

// FinishQuiz completes the quiz and records the score.
func (h *Handler) FinishQuiz(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Finish(r.Context(), r.PathValue("id"))
	h.writeSession(w, sess, err, "finish quiz")
}

// ResetSession abandons the quiz and returns to category selection.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Reset(r.PathValue("id"))
	h.writeSession(w, sess, err, "reset session")
}

func (h *Handler) writeSession(w http.ResponseWriter, sess application.Session, err error, action string) {
	if err != nil {
		h.writeServiceError(w, err, action)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// writeServiceError maps application and store errors to HTTP statuses.
// Anything unrecognized is logged and reported as a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, action string) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, application.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, application.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, driven.ErrQuestionNotFound):
		writeError(w, http.StatusNotFound, "question not found")
	case errors.Is(err, driven.ErrCategoryExists):
		writeError(w, http.StatusConflict, "category already exists")
	case errors.Is(err, application.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrNoQuestions):
		writeError(w, http.StatusConflict, "no questions available for this category")
	default:
		h.logger.Error("request failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
// It writes a 400 and returns false on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func optionalInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
