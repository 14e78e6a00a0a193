// Package viewmodel defines presentation-ready structs for the templ pages.
// View models decouple template rendering from domain model types.
package viewmodel

// CategoryCardViewModel holds one category on the home page.
type CategoryCardViewModel struct {
	Name            string
	Description     string
	QuestionCount   int
	LeaderboardPath string
}

// UserRankViewModel is one row of the overall leaderboard.
type UserRankViewModel struct {
	Rank              int
	Username          string
	AveragePercentage string
	QuizzesTaken      int
	LastQuiz          string // relative, e.g. "3 hours ago"
}

// AttemptViewModel is one row of a category leaderboard.
type AttemptViewModel struct {
	Rank       int
	Username   string
	Score      string // "4/5"
	Percentage string
	Completed  string
}

// StatsViewModel summarizes the database.
type StatsViewModel struct {
	TotalQuestions    string
	TotalScores       string
	UniqueUsers       string
	AveragePercentage string
}

// HomeViewModel holds everything the home page shows.
type HomeViewModel struct {
	Categories []CategoryCardViewModel
	Users      []UserRankViewModel
	Stats      StatsViewModel
}

// LeaderboardViewModel holds a single category leaderboard page.
type LeaderboardViewModel struct {
	CategoryName string
	Attempts     []AttemptViewModel
}
