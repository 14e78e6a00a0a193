package model

import "time"

// AttemptRank is one row of a category leaderboard: a single attempt.
type AttemptRank struct {
	Username       string
	Score          int
	TotalQuestions int
	Percentage     float64
	CompletedAt    time.Time
}

// UserRank is one row of the overall leaderboard: a user's average across all attempts.
type UserRank struct {
	Username          string
	AveragePercentage float64
	QuizzesTaken      int
	LastQuizAt        time.Time
}

// Leaderboard holds exactly one of the two ranking shapes. Attempts is set
// when the leaderboard was requested for a category, Users otherwise.
type Leaderboard struct {
	CategoryID *int64
	Attempts   []AttemptRank
	Users      []UserRank
}

// PerUser reports whether the leaderboard holds per-user averages.
func (l Leaderboard) PerUser() bool {
	return l.CategoryID == nil
}
