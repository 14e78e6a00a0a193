package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// ErrCategoryExists is returned when creating a category whose name is already taken.
var ErrCategoryExists = errors.New("category already exists")

// CategoryStore defines the driven port for quiz category persistence.
type CategoryStore interface {
	// ListAll returns every category ordered alphabetically by name.
	ListAll(ctx context.Context) ([]model.Category, error)

	// GetByID returns nil, nil when no category has the id.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// GetByName returns nil, nil when no category has the name.
	GetByName(ctx context.Context, name string) (*model.Category, error)

	// Create inserts a category and returns it with its assigned id.
	// Returns ErrCategoryExists on a duplicate name.
	Create(ctx context.Context, category model.Category) (model.Category, error)

	// QuestionCounts returns per-category question counts, including empty
	// categories, ordered by category name.
	QuestionCounts(ctx context.Context) ([]model.CategoryQuestionCount, error)
}
