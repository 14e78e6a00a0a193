package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// MaxTriviaImport caps how many questions one remote import may request.
const MaxTriviaImport = 50

// TriviaImporter pulls multiple-choice questions from a remote bank and stores
// them through the QuizService, so they are encrypted like any other question.
type TriviaImporter struct {
	quiz   *QuizService
	source driven.TriviaSource
}

// NewTriviaImporter creates a TriviaImporter.
func NewTriviaImporter(quiz *QuizService, source driven.TriviaSource) *TriviaImporter {
	return &TriviaImporter{quiz: quiz, source: source}
}

// ImportFromOpenTDB fetches questions matching query and adds them to
// categoryID. Query.Amount is required; the remote category and difficulty are
// optional filters. Questions that are not four-option multiple choice, or fail
// validation, are reported in the result and skipped.
func (ti *TriviaImporter) ImportFromOpenTDB(ctx context.Context, categoryID int64, query model.TriviaQuery) (ImportResult, error) {
	var result ImportResult

	if query.Amount < 1 || query.Amount > MaxTriviaImport {
		return result, invalid("amount", fmt.Sprintf("must be between 1 and %d", MaxTriviaImport))
	}
	query.Difficulty = strings.ToLower(strings.TrimSpace(query.Difficulty))
	switch query.Difficulty {
	case "", "easy", "medium", "hard":
	default:
		return result, invalid("difficulty", "must be easy, medium or hard")
	}
	if _, err := ti.quiz.Category(ctx, categoryID); err != nil {
		return result, err
	}

	fetched, err := ti.source.FetchQuestions(ctx, query)
	if err != nil {
		return result, fmt.Errorf("fetch trivia questions: %w", err)
	}

	for i, tq := range fetched {
		n := i + 1

		q, err := ti.buildQuestion(categoryID, tq)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Question %d: %v", n, err))
			continue
		}

		difficulty := strings.ToLower(strings.TrimSpace(tq.Difficulty))
		if difficulty == "" {
			difficulty = model.DefaultDifficulty
		}
		if _, err := ti.quiz.addQuestion(ctx, q, difficulty); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Question %d: %v", n, err))
			continue
		}
		result.Imported++
	}

	ti.quiz.logger.Info("imported trivia questions",
		"category_id", categoryID,
		"requested", query.Amount,
		"imported", result.Imported,
		"rejected", len(result.Errors),
	)
	return result, nil
}

// RemoteCategories lists the categories the remote bank offers.
func (ti *TriviaImporter) RemoteCategories(ctx context.Context) ([]model.TriviaCategory, error) {
	return ti.source.Categories(ctx)
}

func (ti *TriviaImporter) buildQuestion(categoryID int64, tq model.TriviaQuestion) (model.Question, error) {
	if len(tq.IncorrectAnswers) != model.OptionCount-1 {
		return model.Question{}, fmt.Errorf("expected %d incorrect answers, got %d", model.OptionCount-1, len(tq.IncorrectAnswers))
	}

	q := model.Question{CategoryID: categoryID, Text: tq.Text}
	copy(q.Options[:], tq.IncorrectAnswers)
	q.Options[model.OptionCount-1] = tq.CorrectAnswer
	q.CorrectAnswer = model.OptionCount - 1

	ti.quiz.shuffle(model.OptionCount, func(i, j int) {
		q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
		switch q.CorrectAnswer {
		case i:
			q.CorrectAnswer = j
		case j:
			q.CorrectAnswer = i
		}
	})
	return q, nil
}
