package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/fanquiz/internal/adapter/driving/web"
	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	Time           string `json:"time"`
	ActiveSessions int    `json:"active_sessions"`
}

// CategoryResponse is the JSON representation of a category.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QuestionResponse is the full JSON representation of a question, including
// the answer. It is only served on admin endpoints.
type QuestionResponse struct {
	ID              int64    `json:"id"`
	CategoryID      int64    `json:"category_id"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectAnswer   string   `json:"correct_answer"`
	Explanation     string   `json:"explanation"`
	ExplanationHTML string   `json:"explanation_html"`
}

// QuestionRequest is the body for creating or updating a question.
// CorrectAnswer is an option letter, A to D.
type QuestionRequest struct {
	CategoryID    int64    `json:"category_id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// CategoryRequest is the body for creating a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AttemptResponse is one row of a category leaderboard.
type AttemptResponse struct {
	Rank           int     `json:"rank"`
	Username       string  `json:"username"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
	CompletedAt    string  `json:"completed_at"`
}

// UserRankResponse is one row of the overall leaderboard.
type UserRankResponse struct {
	Rank              int     `json:"rank"`
	Username          string  `json:"username"`
	AveragePercentage float64 `json:"average_percentage"`
	QuizzesTaken      int     `json:"quizzes_taken"`
	LastQuizAt        string  `json:"last_quiz_at"`
}

// LeaderboardResponse carries attempts for a category leaderboard or users
// for the overall one. The unused list is empty, never null.
type LeaderboardResponse struct {
	CategoryID *int64             `json:"category_id"`
	PerUser    bool               `json:"per_user"`
	Attempts   []AttemptResponse  `json:"attempts"`
	Users      []UserRankResponse `json:"users"`
}

// CategoryCountResponse is the question count of one category.
type CategoryCountResponse struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Questions  int    `json:"questions"`
}

// StatisticsResponse is the JSON representation of database statistics.
type StatisticsResponse struct {
	Categories        []CategoryCountResponse `json:"categories"`
	TotalQuestions    int                     `json:"total_questions"`
	TotalScores       int                     `json:"total_scores"`
	UniqueUsers       int                     `json:"unique_users"`
	AveragePercentage float64                 `json:"average_percentage"`
}

// ImportResponse reports the outcome of an import.
type ImportResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// LoginRequest is the admin login body.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries a bearer token for the admin API.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// TriviaImportRequest asks for questions from the Open Trivia Database.
type TriviaImportRequest struct {
	CategoryID     int64  `json:"category_id"`
	Amount         int    `json:"amount"`
	SourceCategory int    `json:"source_category"`
	Difficulty     string `json:"difficulty"`
}

// TriviaCategoryResponse is a category offered by the Open Trivia Database.
type TriviaCategoryResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UsernameRequest sets the player name of a session.
type UsernameRequest struct {
	Username string `json:"username"`
}

// StartRequest starts a quiz. A null or missing category_id starts an
// all-categories quiz.
type StartRequest struct {
	CategoryID *int64 `json:"category_id"`
}

// AnswerRequest answers the current question with an option letter.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// PlayerQuestionResponse is a question as shown to a player: no answer.
type PlayerQuestionResponse struct {
	Number   int      `json:"number"`
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// FeedbackResponse is shown after a question is answered.
type FeedbackResponse struct {
	Selected        string `json:"selected"`
	Correct         bool   `json:"correct"`
	CorrectAnswer   string `json:"correct_answer"`
	Explanation     string `json:"explanation"`
	ExplanationHTML string `json:"explanation_html"`
}

// ResultResponse summarizes a finished quiz.
type ResultResponse struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// SessionResponse is the JSON view of a quiz session. Only the fields that
// apply to the current stage are set.
type SessionResponse struct {
	ID           string                  `json:"id"`
	Stage        string                  `json:"stage"`
	Username     string                  `json:"username,omitempty"`
	CategoryID   *int64                  `json:"category_id,omitempty"`
	CategoryName string                  `json:"category_name,omitempty"`
	Score        *int                    `json:"score,omitempty"`
	Question     *PlayerQuestionResponse `json:"question,omitempty"`
	Feedback     *FeedbackResponse       `json:"feedback,omitempty"`
	IsLast       bool                    `json:"is_last,omitempty"`
	Result       *ResultResponse         `json:"result,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// toCategoryResponse converts a domain Category to its JSON representation.
func toCategoryResponse(c model.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

// toQuestionResponse converts a domain Question to its admin JSON representation.
func toQuestionResponse(q model.Question) QuestionResponse {
	return QuestionResponse{
		ID:              q.ID,
		CategoryID:      q.CategoryID,
		Question:        q.Text,
		Options:         append([]string(nil), q.Options[:]...),
		CorrectAnswer:   model.AnswerLetter(q.CorrectAnswer),
		Explanation:     q.Explanation,
		ExplanationHTML: web.RenderMarkdown(q.Explanation),
	}
}

// toLeaderboardResponse converts a domain Leaderboard, numbering rows from 1.
func toLeaderboardResponse(lb model.Leaderboard) LeaderboardResponse {
	resp := LeaderboardResponse{
		CategoryID: lb.CategoryID,
		PerUser:    lb.PerUser(),
		Attempts:   make([]AttemptResponse, 0, len(lb.Attempts)),
		Users:      make([]UserRankResponse, 0, len(lb.Users)),
	}
	for i, a := range lb.Attempts {
		resp.Attempts = append(resp.Attempts, AttemptResponse{
			Rank:           i + 1,
			Username:       a.Username,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage,
			CompletedAt:    formatTime(a.CompletedAt),
		})
	}
	for i, u := range lb.Users {
		resp.Users = append(resp.Users, UserRankResponse{
			Rank:              i + 1,
			Username:          u.Username,
			AveragePercentage: u.AveragePercentage,
			QuizzesTaken:      u.QuizzesTaken,
			LastQuizAt:        formatTime(u.LastQuizAt),
		})
	}
	return resp
}

// toStatisticsResponse converts domain Statistics to its JSON representation.
func toStatisticsResponse(s model.Statistics) StatisticsResponse {
	resp := StatisticsResponse{
		Categories:        make([]CategoryCountResponse, 0, len(s.Categories)),
		TotalQuestions:    s.TotalQuestions,
		TotalScores:       s.TotalScores,
		UniqueUsers:       s.UniqueUsers,
		AveragePercentage: s.AveragePercentage,
	}
	for _, c := range s.Categories {
		resp.Categories = append(resp.Categories, CategoryCountResponse{CategoryID: c.CategoryID, Name: c.Name, Questions: c.Count})
	}
	return resp
}

// toImportResponse converts an ImportResult. Errors is never null.
func toImportResponse(r application.ImportResult) ImportResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return ImportResponse{Imported: r.Imported, Errors: errs}
}

// toSessionResponse renders the stage-specific view of a session.
func toSessionResponse(s application.Session) SessionResponse {
	resp := SessionResponse{ID: s.ID, Stage: s.State.Stage()}

	switch st := s.State.(type) {
	case application.CategorySelect:
		resp.Username = st.Username

	case application.InProgress:
		q := st.Current()
		score := st.Score
		resp.Username = st.Username
		resp.CategoryID = st.Quiz.CategoryID
		resp.CategoryName = st.Quiz.CategoryName
		resp.Score = &score
		resp.IsLast = st.IsLast()
		resp.Question = &PlayerQuestionResponse{
			Number:   st.Index + 1,
			Total:    st.Quiz.Len(),
			Question: q.Text,
			Options:  append([]string(nil), q.Options[:]...),
		}
		if st.Feedback != nil {
			resp.Feedback = &FeedbackResponse{
				Selected:        model.AnswerLetter(st.Feedback.Selected),
				Correct:         st.Feedback.Correct,
				CorrectAnswer:   model.AnswerLetter(q.CorrectAnswer),
				Explanation:     st.Feedback.Explanation,
				ExplanationHTML: web.RenderMarkdown(st.Feedback.Explanation),
			}
		}

	case application.Completed:
		score := st.Score
		pct := st.Percentage()
		resp.Username = st.Username
		resp.CategoryID = st.Quiz.CategoryID
		resp.CategoryName = st.Quiz.CategoryName
		resp.Score = &score
		resp.Result = &ResultResponse{
			Score:      st.Score,
			Total:      st.Quiz.Len(),
			Percentage: pct,
			Message:    model.PerformanceMessage(pct),
		}
	}

	return resp
}
