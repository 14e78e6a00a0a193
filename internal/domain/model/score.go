package model

import (
	"errors"
	"math"
	"time"
)

// ErrScoreOutOfRange is returned when a score falls outside 0..total or total is not positive.
var ErrScoreOutOfRange = errors.New("score must be between 0 and total questions, and total must be positive")

// ScoreRecord is one completed quiz attempt. CategoryID is AllCategoriesID for
// mixed-category quizzes.
type ScoreRecord struct {
	ID             int64
	Username       string
	CategoryID     int64
	Score          int
	TotalQuestions int
	CompletedAt    time.Time
}

// ValidateScore enforces 0 <= score <= total with total >= 1.
func ValidateScore(score, total int) error {
	if total < 1 || score < 0 || score > total {
		return ErrScoreOutOfRange
	}
	return nil
}

// Percentage returns the attempt's score as a percentage rounded to one decimal.
func (s ScoreRecord) Percentage() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return RoundTenth(float64(s.Score) * 100 / float64(s.TotalQuestions))
}

// RoundTenth rounds to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
