package driven

import (
	"context"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// TriviaSource fetches ready-made multiple-choice questions from a remote bank.
type TriviaSource interface {
	FetchQuestions(ctx context.Context, query model.TriviaQuery) ([]model.TriviaQuestion, error)
	Categories(ctx context.Context) ([]model.TriviaCategory, error)
}
