package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// ErrQuestionNotFound is returned when updating or deleting a question id that does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// QuestionStore defines the driven port for encrypted question rows. It never
// sees plaintext; sealing happens in the application layer.
type QuestionStore interface {
	// Insert stores a new row and returns its id.
	Insert(ctx context.Context, q model.EncryptedQuestion) (int64, error)

	// Update overwrites the category and ciphertext of an existing row.
	Update(ctx context.Context, q model.EncryptedQuestion) error

	// Delete removes a row by id.
	Delete(ctx context.Context, id int64) error

	// Sample returns up to limit rows of the category in random order.
	Sample(ctx context.Context, categoryID int64, limit int) ([]model.EncryptedQuestion, error)

	// List returns all rows ordered by id, filtered to one category when categoryID is non-nil.
	List(ctx context.Context, categoryID *int64) ([]model.EncryptedQuestion, error)

	// DeleteAll removes every question row and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}
