package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ScoreStore = (*ScoreRepo)(nil)

// ScoreRepo is the SQLite implementation of the ScoreStore port interface.
// Score rows are never updated or deleted.
type ScoreRepo struct {
	db *DB
}

// NewScoreRepo creates a new ScoreRepo backed by the given DB.
func NewScoreRepo(db *DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// Insert appends a score record. A zero CompletedAt is stamped with the current time.
func (r *ScoreRepo) Insert(ctx context.Context, rec model.ScoreRecord) (int64, error) {
	const query = `
		INSERT INTO user_scores (username, category_id, score, total_questions, completed_at)
		VALUES (?, ?, ?, ?, ?)`

	completedAt := rec.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		rec.Username, rec.CategoryID, rec.Score, rec.TotalQuestions, formatTime(completedAt))
	if err != nil {
		return 0, fmt.Errorf("insert score for %q: %w", rec.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListAll returns every score record ordered by completion time.
func (r *ScoreRepo) ListAll(ctx context.Context) ([]model.ScoreRecord, error) {
	const query = `
		SELECT id, username, category_id, score, total_questions, completed_at
		FROM user_scores
		ORDER BY completed_at, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		var completedAt string
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.CategoryID, &rec.Score, &rec.TotalQuestions, &completedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		rec.CompletedAt, err = parseTime(completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at for score %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}

	return records, nil
}

// TopAttempts ranks attempts in one category by rounded percentage, earliest first on ties.
func (r *ScoreRepo) TopAttempts(ctx context.Context, categoryID int64, limit int) ([]model.AttemptRank, error) {
	const query = `
		SELECT username, score, total_questions,
		       ROUND(score * 100.0 / total_questions, 1) AS percentage,
		       completed_at
		FROM user_scores
		WHERE category_id = ?
		ORDER BY percentage DESC, completed_at ASC, id ASC
		LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("rank attempts in category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var ranks []model.AttemptRank
	for rows.Next() {
		var a model.AttemptRank
		var completedAt string
		if err := rows.Scan(&a.Username, &a.Score, &a.TotalQuestions, &a.Percentage, &completedAt); err != nil {
			return nil, fmt.Errorf("scan attempt rank: %w", err)
		}
		a.CompletedAt, err = parseTime(completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		ranks = append(ranks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempt ranks: %w", err)
	}

	return ranks, nil
}

// TopUsers ranks usernames by mean percentage over all their attempts. Ties
// go to the user whose latest quiz is older.
func (r *ScoreRepo) TopUsers(ctx context.Context, limit int) ([]model.UserRank, error) {
	const query = `
		SELECT username,
		       AVG(score * 100.0 / total_questions) AS avg_percentage,
		       COUNT(*) AS quizzes_taken,
		       MAX(completed_at) AS last_quiz
		FROM user_scores
		GROUP BY username
		ORDER BY avg_percentage DESC, last_quiz ASC
		LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}
	defer rows.Close()

	var ranks []model.UserRank
	for rows.Next() {
		var u model.UserRank
		var lastQuiz string
		if err := rows.Scan(&u.Username, &u.AveragePercentage, &u.QuizzesTaken, &lastQuiz); err != nil {
			return nil, fmt.Errorf("scan user rank: %w", err)
		}
		u.AveragePercentage = model.RoundTenth(u.AveragePercentage)
		u.LastQuizAt, err = parseTime(lastQuiz)
		if err != nil {
			return nil, fmt.Errorf("parse last_quiz for %q: %w", u.Username, err)
		}
		ranks = append(ranks, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ranks: %w", err)
	}

	return ranks, nil
}

// Summary returns the record count, the distinct username count and the mean
// percentage across all records (0 when there are none).
func (r *ScoreRepo) Summary(ctx context.Context) (model.ScoreSummary, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(DISTINCT username),
		       AVG(score * 100.0 / total_questions)
		FROM user_scores`

	var s model.ScoreSummary
	var avg sql.NullFloat64
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&s.TotalScores, &s.UniqueUsers, &avg); err != nil {
		return model.ScoreSummary{}, fmt.Errorf("summarize scores: %w", err)
	}
	if avg.Valid {
		s.AveragePercentage = model.RoundTenth(avg.Float64)
	}
	return s, nil
}
