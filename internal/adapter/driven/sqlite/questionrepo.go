package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.QuestionStore = (*QuestionRepo)(nil)

// QuestionRepo is the SQLite implementation of the QuestionStore port interface.
// It stores and returns ciphertext only.
type QuestionRepo struct {
	db *DB
}

// NewQuestionRepo creates a new QuestionRepo backed by the given DB.
func NewQuestionRepo(db *DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Insert stores a new question row and returns its id.
func (r *QuestionRepo) Insert(ctx context.Context, q model.EncryptedQuestion) (int64, error) {
	const query = `INSERT INTO questions (category_id, encrypted_data, difficulty) VALUES (?, ?, ?)`

	difficulty := q.Difficulty
	if difficulty == "" {
		difficulty = model.DefaultDifficulty
	}

	result, err := r.db.Writer.ExecContext(ctx, query, q.CategoryID, q.Ciphertext, difficulty)
	if err != nil {
		return 0, fmt.Errorf("insert question in category %d: %w", q.CategoryID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Update overwrites category and ciphertext of an existing question.
func (r *QuestionRepo) Update(ctx context.Context, q model.EncryptedQuestion) error {
	const query = `UPDATE questions SET category_id = ?, encrypted_data = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, q.CategoryID, q.Ciphertext, q.ID)
	if err != nil {
		return fmt.Errorf("update question %d: %w", q.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update question %d: %w", q.ID, driven.ErrQuestionNotFound)
	}
	return nil
}

// Delete removes a question by id.
func (r *QuestionRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM questions WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete question %d: %w", id, driven.ErrQuestionNotFound)
	}
	return nil
}

// Sample returns up to limit random questions of one category.
func (r *QuestionRepo) Sample(ctx context.Context, categoryID int64, limit int) ([]model.EncryptedQuestion, error) {
	const query = `
		SELECT id, category_id, encrypted_data, difficulty, created_at
		FROM questions
		WHERE category_id = ?
		ORDER BY RANDOM()
		LIMIT ?`

	return r.query(ctx, "sample questions", query, categoryID, limit)
}

// List returns all questions ordered by id, optionally restricted to one category.
func (r *QuestionRepo) List(ctx context.Context, categoryID *int64) ([]model.EncryptedQuestion, error) {
	if categoryID != nil {
		const query = `
			SELECT id, category_id, encrypted_data, difficulty, created_at
			FROM questions
			WHERE category_id = ?
			ORDER BY id`
		return r.query(ctx, "list questions", query, *categoryID)
	}

	const query = `
		SELECT id, category_id, encrypted_data, difficulty, created_at
		FROM questions
		ORDER BY id`
	return r.query(ctx, "list questions", query)
}

// DeleteAll removes every question.
func (r *QuestionRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.Writer.ExecContext(ctx, `DELETE FROM questions`)
	if err != nil {
		return 0, fmt.Errorf("delete all questions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return rows, nil
}

func (r *QuestionRepo) query(ctx context.Context, op, query string, args ...any) ([]model.EncryptedQuestion, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var questions []model.EncryptedQuestion
	for rows.Next() {
		var q model.EncryptedQuestion
		var createdAt string
		if err := rows.Scan(&q.ID, &q.CategoryID, &q.Ciphertext, &q.Difficulty, &createdAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	return questions, nil
}
