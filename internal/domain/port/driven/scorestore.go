package driven

import (
	"context"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// ScoreStore defines the driven port for the append-only score log.
type ScoreStore interface {
	// Insert appends a score record and returns its id.
	Insert(ctx context.Context, rec model.ScoreRecord) (int64, error)

	// ListAll returns every record ordered by completion time.
	ListAll(ctx context.Context) ([]model.ScoreRecord, error)

	// TopAttempts ranks the individual attempts recorded for categoryID by
	// percentage descending, earliest completion first on ties.
	TopAttempts(ctx context.Context, categoryID int64, limit int) ([]model.AttemptRank, error)

	// TopUsers ranks usernames by their average percentage across all attempts.
	TopUsers(ctx context.Context, limit int) ([]model.UserRank, error)

	// Summary aggregates record count, distinct usernames and mean percentage.
	Summary(ctx context.Context) (model.ScoreSummary, error)
}
