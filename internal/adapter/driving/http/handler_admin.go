package httphandler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// maxCSVBody caps uploaded CSV files.
const maxCSVBody = 10 << 20

// AdminLogin exchanges the admin password for a bearer token.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, expires, err := h.auth.Login(req.Password)
	switch {
	case errors.Is(err, ErrAdminDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, ErrBadPassword):
		h.logger.Warn("admin login failed", "remote_addr", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		h.writeServiceError(w, err, "admin login")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: formatTime(expires)})
}

// CreateCategory adds a category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.quiz.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.writeServiceError(w, err, "create category")
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

// ListQuestions returns every question with its answer, optionally filtered
// by category_id.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	categoryID, err := optionalInt64(r.URL.Query().Get("category_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category_id")
		return
	}

	questions, err := h.quiz.AllQuestions(r.Context(), categoryID)
	if err != nil {
		h.writeServiceError(w, err, "list questions")
		return
	}

	resp := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, toQuestionResponse(q))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateQuestion adds a question.
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	created, err := h.quiz.AddQuestion(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err, "create question")
		return
	}
	writeJSON(w, http.StatusCreated, toQuestionResponse(created))
}

// UpdateQuestion replaces a question's content.
func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	q, ok := decodeQuestion(w, r)
	if !ok {
		return
	}
	q.ID = id

	updated, err := h.quiz.UpdateQuestion(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err, "update question")
		return
	}
	writeJSON(w, http.StatusOK, toQuestionResponse(updated))
}

// DeleteQuestion removes a question.
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	if err := h.quiz.DeleteQuestion(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "delete question")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearQuestions deletes every question. Scores are kept.
func (h *Handler) ClearQuestions(w http.ResponseWriter, r *http.Request) {
	n, err := h.quiz.ClearQuestions(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "clear questions")
		return
	}
	h.logger.Warn("all questions deleted", "count", n)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// ExportQuestions downloads all questions as CSV.
func (h *Handler) ExportQuestions(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.quiz.ExportQuestionsCSV(r.Context(), &buf); err != nil {
		h.writeServiceError(w, err, "export questions")
		return
	}
	writeCSV(w, "questions", buf.Bytes())
}

// ExportScores downloads all score records as CSV.
func (h *Handler) ExportScores(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.quiz.ExportScoresCSV(r.Context(), &buf); err != nil {
		h.writeServiceError(w, err, "export scores")
		return
	}
	writeCSV(w, "scores", buf.Bytes())
}

// ImportQuestions reads a question CSV from the request body.
func (h *Handler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	result, err := h.quiz.ImportQuestionsCSV(r.Context(), http.MaxBytesReader(w, r.Body, maxCSVBody))
	h.writeImport(w, result, err, "questions")
}

// ImportScores reads a score CSV from the request body.
func (h *Handler) ImportScores(w http.ResponseWriter, r *http.Request) {
	result, err := h.quiz.ImportScoresCSV(r.Context(), http.MaxBytesReader(w, r.Body, maxCSVBody))
	h.writeImport(w, result, err, "scores")
}

// ImportOpenTDB pulls questions from the Open Trivia Database into a category.
func (h *Handler) ImportOpenTDB(w http.ResponseWriter, r *http.Request) {
	if h.trivia == nil {
		writeError(w, http.StatusServiceUnavailable, "trivia import is not configured")
		return
	}

	var req TriviaImportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.trivia.ImportFromOpenTDB(r.Context(), req.CategoryID, model.TriviaQuery{
		Amount:     req.Amount,
		Category:   req.SourceCategory,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		if application.IsValidation(err) || errors.Is(err, application.ErrCategoryNotFound) {
			h.writeServiceError(w, err, "import trivia")
			return
		}
		h.logger.Error("trivia import failed", "error", err)
		writeError(w, http.StatusBadGateway, "trivia source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toImportResponse(result))
}

// ListOpenTDBCategories lists the remote categories usable as source_category.
func (h *Handler) ListOpenTDBCategories(w http.ResponseWriter, r *http.Request) {
	if h.trivia == nil {
		writeError(w, http.StatusServiceUnavailable, "trivia import is not configured")
		return
	}

	categories, err := h.trivia.RemoteCategories(r.Context())
	if err != nil {
		h.logger.Error("listing trivia categories failed", "error", err)
		writeError(w, http.StatusBadGateway, "trivia source unavailable")
		return
	}

	resp := make([]TriviaCategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, TriviaCategoryResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeImport(w http.ResponseWriter, result application.ImportResult, err error, kind string) {
	if err != nil {
		// Structural CSV problems abort the whole import.
		h.logger.Warn("import rejected", "kind", kind, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Info("import finished", "kind", kind, "imported", result.Imported, "rejected", len(result.Errors))
	writeJSON(w, http.StatusOK, toImportResponse(result))
}

func decodeQuestion(w http.ResponseWriter, r *http.Request) (model.Question, bool) {
	var req QuestionRequest
	if !decodeBody(w, r, &req) {
		return model.Question{}, false
	}

	if len(req.Options) != model.OptionCount {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: model.ErrOptionCount.Error(), Field: "options"})
		return model.Question{}, false
	}
	answer, err := model.AnswerFromLetter(req.CorrectAnswer)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "correct_answer must be A, B, C or D", Field: "correct_answer"})
		return model.Question{}, false
	}

	q := model.Question{
		CategoryID:    req.CategoryID,
		Text:          req.Question,
		CorrectAnswer: answer,
		Explanation:   req.Explanation,
	}
	copy(q.Options[:], req.Options)
	return q, true
}

func writeCSV(w http.ResponseWriter, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
