// Package web implements the HTML driving adapter using templ components.
// It serves the public, read-only pages: categories, statistics and leaderboards.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/ericfisherdev/fanquiz/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/fanquiz/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/fanquiz/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

const siteTitle = "Stubborn Dreamers Fan Quiz"

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	quiz   *application.QuizService
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(quiz *application.QuizService, logger *slog.Logger) *Handler {
	return &Handler{quiz: quiz, logger: logger, now: time.Now}
}

// Home renders the category list, database statistics and the overall leaderboard.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.quiz.Categories(ctx)
	if err != nil {
		h.fail(w, "list categories", err)
		return
	}
	stats, err := h.quiz.Statistics(ctx)
	if err != nil {
		h.fail(w, "load statistics", err)
		return
	}
	board, err := h.quiz.Leaderboard(ctx, nil, 0)
	if err != nil {
		h.fail(w, "load leaderboard", err)
		return
	}

	h.render(w, r, siteTitle, pages.Home(h.homeViewModel(categories, stats, board)))
}

// CategoryLeaderboard renders the best attempts for one category. Id 0 is
// the mixed "All Categories" board.
func (h *Handler) CategoryLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		http.NotFound(w, r)
		return
	}

	name := model.AllCategoriesName
	if id != model.AllCategoriesID {
		c, err := h.quiz.Category(ctx, id)
		if errors.Is(err, application.ErrCategoryNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			h.fail(w, "load category", err)
			return
		}
		name = c.Name
	}

	board, err := h.quiz.Leaderboard(ctx, &id, 0)
	if err != nil {
		h.fail(w, "load leaderboard", err)
		return
	}

	data := vm.LeaderboardViewModel{CategoryName: name}
	for i, a := range board.Attempts {
		data.Attempts = append(data.Attempts, vm.AttemptViewModel{
			Rank:       i + 1,
			Username:   a.Username,
			Score:      fmt.Sprintf("%d/%d", a.Score, a.TotalQuestions),
			Percentage: formatPercent(a.Percentage),
			Completed:  humanize.RelTime(a.CompletedAt, h.now(), "ago", "from now"),
		})
	}

	h.render(w, r, name+" Leaderboard", pages.Leaderboard(data))
}

func (h *Handler) homeViewModel(categories []model.Category, stats model.Statistics, board model.Leaderboard) vm.HomeViewModel {
	counts := make(map[int64]int, len(stats.Categories))
	for _, c := range stats.Categories {
		counts[c.CategoryID] = c.Count
	}

	data := vm.HomeViewModel{
		Stats: vm.StatsViewModel{
			TotalQuestions:    humanize.Comma(int64(stats.TotalQuestions)),
			TotalScores:       humanize.Comma(int64(stats.TotalScores)),
			UniqueUsers:       humanize.Comma(int64(stats.UniqueUsers)),
			AveragePercentage: formatPercent(stats.AveragePercentage),
		},
	}
	for _, c := range categories {
		data.Categories = append(data.Categories, vm.CategoryCardViewModel{
			Name:            c.Name,
			Description:     c.Description,
			QuestionCount:   counts[c.ID],
			LeaderboardPath: fmt.Sprintf("/leaderboard/%d", c.ID),
		})
	}
	for i, u := range board.Users {
		data.Users = append(data.Users, vm.UserRankViewModel{
			Rank:              i + 1,
			Username:          u.Username,
			AveragePercentage: formatPercent(u.AveragePercentage),
			QuizzesTaken:      u.QuizzesTaken,
			LastQuiz:          humanize.RelTime(u.LastQuizAt, h.now(), "ago", "from now"),
		})
	}
	return data
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("web: "+op, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
