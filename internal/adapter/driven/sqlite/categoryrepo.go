package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CategoryStore = (*CategoryRepo)(nil)

// CategoryRepo is the SQLite implementation of the CategoryStore port interface.
type CategoryRepo struct {
	db *DB
}

// NewCategoryRepo creates a new CategoryRepo backed by the given DB.
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// ListAll returns all categories ordered by name.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	const query = `SELECT id, name, description, created_at FROM quiz_categories ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// GetByID retrieves a category by id. Returns nil, nil if it does not exist.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	const query = `SELECT id, name, description, created_at FROM quiz_categories WHERE id = ?`

	c, err := scanCategory(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// GetByName retrieves a category by exact name. Returns nil, nil if it does not exist.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*model.Category, error) {
	const query = `SELECT id, name, description, created_at FROM quiz_categories WHERE name = ?`

	c, err := scanCategory(r.db.Reader.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}
	return c, nil
}

// Create inserts a new category. Returns ErrCategoryExists if the name is taken.
func (r *CategoryRepo) Create(ctx context.Context, category model.Category) (model.Category, error) {
	const query = `INSERT INTO quiz_categories (name, description) VALUES (?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query, category.Name, category.Description)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.Category{}, fmt.Errorf("create category %q: %w", category.Name, driven.ErrCategoryExists)
		}
		return model.Category{}, fmt.Errorf("create category %q: %w", category.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Category{}, fmt.Errorf("last insert id: %w", err)
	}

	category.ID = id
	return category, nil
}

// Count returns the number of categories.
func (r *CategoryRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM quiz_categories`

	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}

// SeedDefaults inserts the given categories when the table is empty and
// reports whether it did so.
func (r *CategoryRepo) SeedDefaults(ctx context.Context, defaults []model.Category) (bool, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	for _, c := range defaults {
		if _, err := r.Create(ctx, c); err != nil {
			return false, fmt.Errorf("seed categories: %w", err)
		}
	}
	return true, nil
}

// QuestionCounts returns the number of questions per category, including
// categories without questions, ordered by name.
func (r *CategoryRepo) QuestionCounts(ctx context.Context) ([]model.CategoryQuestionCount, error) {
	const query = `
		SELECT c.id, c.name, COUNT(q.id)
		FROM quiz_categories c
		LEFT JOIN questions q ON q.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count questions per category: %w", err)
	}
	defer rows.Close()

	var counts []model.CategoryQuestionCount
	for rows.Next() {
		var c model.CategoryQuestionCount
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan question count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question counts: %w", err)
	}

	return counts, nil
}

func scanCategory(s scanner) (*model.Category, error) {
	var c model.Category
	var createdAt string

	if err := s.Scan(&c.ID, &c.Name, &c.Description, &createdAt); err != nil {
		return nil, err
	}

	var err error
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &c, nil
}
