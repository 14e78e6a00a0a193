package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fanquiz/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/fanquiz/internal/adapter/driving/web/viewmodel"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout_WrapsContent(t *testing.T) {
	html := renderString(t, templates.Layout("Quiz & Co", Leaderboard(viewmodel.LeaderboardViewModel{CategoryName: "Quotes"})))

	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "<title>Quiz &amp; Co</title>")
	assert.Contains(t, html, `<link rel="stylesheet" href="/static/style.css">`)
	assert.Contains(t, html, "<main><h2>Quotes leaderboard</h2>")
	assert.Contains(t, html, "</main></body></html>")
}

func TestHome_EscapesAndLinks(t *testing.T) {
	html := renderString(t, Home(viewmodel.HomeViewModel{
		Categories: []viewmodel.CategoryCardViewModel{
			{Name: "Quotes & Dialogues", Description: "Lines", QuestionCount: 3, LeaderboardPath: "/leaderboard/3"},
			{Name: "Odd", LeaderboardPath: "javascript:alert(1)"},
		},
		Users: []viewmodel.UserRankViewModel{
			{Rank: 1, Username: "<script>x</script>", AveragePercentage: "80.0%", QuizzesTaken: 2, LastQuiz: "1 hour ago"},
		},
		Stats: viewmodel.StatsViewModel{TotalQuestions: "1,204"},
	}))

	assert.Contains(t, html, "<h3>Quotes &amp; Dialogues</h3>")
	assert.Contains(t, html, `<p class="muted">3 questions</p><a href="/leaderboard/3">`)
	assert.NotContains(t, html, "javascript:alert")
	assert.Contains(t, html, "&lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "<strong>1,204</strong> <span class=\"muted\">Questions</span>")
	assert.NotContains(t, html, "No scores yet")
}

func TestHome_NoScores(t *testing.T) {
	html := renderString(t, Home(viewmodel.HomeViewModel{}))

	assert.Contains(t, html, "No scores yet. Be the first fan on the board!")
	assert.NotContains(t, html, "<table>")
}

func TestLeaderboard_Rows(t *testing.T) {
	html := renderString(t, Leaderboard(viewmodel.LeaderboardViewModel{
		CategoryName: "All Categories",
		Attempts: []viewmodel.AttemptViewModel{
			{Rank: 1, Username: "bob", Score: "5/5", Percentage: "100.0%", Completed: "now"},
			{Rank: 2, Username: "alice", Score: "4/5", Percentage: "80.0%", Completed: "1 minute ago"},
		},
	}))

	assert.Contains(t, html, "<tr><td>1</td><td>bob</td><td>5/5</td><td>100.0%</td><td>now</td></tr>")
	assert.Contains(t, html, "<tr><td>2</td><td>alice</td><td>4/5</td>")
	assert.NotContains(t, html, "No scores yet")
}
