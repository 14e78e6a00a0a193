package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

const (
	// DefaultQuestionLimit caps how many questions one category contributes to a quiz.
	DefaultQuestionLimit = 15

	// DefaultLeaderboardLimit caps leaderboard rows.
	DefaultLeaderboardLimit = 20
)

// QuizService is the quiz data manager. It seals question content with the
// codec before it reaches the question store and opens it on the way out.
// It keeps no cached state; every call reads the stores afresh.
type QuizService struct {
	categories driven.CategoryStore
	questions  driven.QuestionStore
	scores     driven.ScoreStore
	codec      driven.Codec
	logger     *slog.Logger

	now           func() time.Time
	shuffle       func(n int, swap func(i, j int))
	questionLimit int
}

// QuizOption customizes a QuizService.
type QuizOption func(*QuizService)

// WithClock sets the time source used to stamp score records.
func WithClock(now func() time.Time) QuizOption {
	return func(s *QuizService) { s.now = now }
}

// WithQuestionLimit sets the per-category question limit used when callers pass 0.
func WithQuestionLimit(limit int) QuizOption {
	return func(s *QuizService) {
		if limit > 0 {
			s.questionLimit = limit
		}
	}
}

// WithShuffle replaces the shuffle used for mixed-category quizzes.
func WithShuffle(shuffle func(n int, swap func(i, j int))) QuizOption {
	return func(s *QuizService) { s.shuffle = shuffle }
}

// NewQuizService creates a QuizService with the required dependencies.
func NewQuizService(
	categories driven.CategoryStore,
	questions driven.QuestionStore,
	scores driven.ScoreStore,
	codec driven.Codec,
	logger *slog.Logger,
	opts ...QuizOption,
) *QuizService {
	s := &QuizService{
		categories:    categories,
		questions:     questions,
		scores:        scores,
		codec:         codec,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		shuffle:       rand.Shuffle,
		questionLimit: DefaultQuestionLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns all categories in alphabetical order.
func (s *QuizService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListAll(ctx)
}

// Category returns one category, or ErrCategoryNotFound.
func (s *QuizService) Category(ctx context.Context, id int64) (model.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	if c == nil {
		return model.Category{}, fmt.Errorf("category %d: %w", id, ErrCategoryNotFound)
	}
	return *c, nil
}

// CreateCategory adds a category. Duplicate names return driven.ErrCategoryExists.
func (s *QuizService) CreateCategory(ctx context.Context, name, description string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, invalid("name", "is required")
	}
	if name == model.AllCategoriesName {
		return model.Category{}, invalid("name", "is reserved")
	}
	return s.categories.Create(ctx, model.Category{Name: name, Description: strings.TrimSpace(description)})
}

// QuestionsByCategory returns a random sample of at most limit questions from
// one category. Questions that fail to decrypt are skipped. limit <= 0 uses the
// configured default.
func (s *QuizService) QuestionsByCategory(ctx context.Context, categoryID int64, limit int) ([]model.Question, error) {
	if limit <= 0 {
		limit = s.questionLimit
	}

	rows, err := s.questions.Sample(ctx, categoryID, limit)
	if err != nil {
		return nil, err
	}
	return s.openAll(rows), nil
}

// QuestionsForAllCategories samples every category with QuestionsByCategory
// and returns the combined set in shuffled order.
func (s *QuizService) QuestionsForAllCategories(ctx context.Context, limit int) ([]model.Question, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var all []model.Question
	for _, c := range categories {
		qs, err := s.QuestionsByCategory(ctx, c.ID, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, qs...)
	}

	s.shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all, nil
}

// AllQuestions returns every readable question ordered by id, optionally
// restricted to one category.
func (s *QuizService) AllQuestions(ctx context.Context, categoryID *int64) ([]model.Question, error) {
	rows, err := s.questions.List(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.openAll(rows), nil
}

// AddQuestion validates and stores a new question, returning it with its id.
func (s *QuizService) AddQuestion(ctx context.Context, q model.Question) (model.Question, error) {
	return s.addQuestion(ctx, q, model.DefaultDifficulty)
}

func (s *QuizService) addQuestion(ctx context.Context, q model.Question, difficulty string) (model.Question, error) {
	q = normalizeQuestion(q)
	if err := s.validateQuestion(ctx, q); err != nil {
		return model.Question{}, err
	}

	token, err := s.codec.Encrypt(q.ToPayload())
	if err != nil {
		return model.Question{}, fmt.Errorf("encrypt question: %w", err)
	}

	id, err := s.questions.Insert(ctx, model.EncryptedQuestion{
		CategoryID: q.CategoryID,
		Ciphertext: token,
		Difficulty: difficulty,
	})
	if err != nil {
		return model.Question{}, err
	}

	q.ID = id
	return q, nil
}

// UpdateQuestion validates q and overwrites the stored question with the same
// id. It returns the question as stored, after trimming.
func (s *QuizService) UpdateQuestion(ctx context.Context, q model.Question) (model.Question, error) {
	q = normalizeQuestion(q)
	if err := s.validateQuestion(ctx, q); err != nil {
		return model.Question{}, err
	}

	token, err := s.codec.Encrypt(q.ToPayload())
	if err != nil {
		return model.Question{}, fmt.Errorf("encrypt question: %w", err)
	}

	err = s.questions.Update(ctx, model.EncryptedQuestion{
		ID:         q.ID,
		CategoryID: q.CategoryID,
		Ciphertext: token,
	})
	if err != nil {
		return model.Question{}, err
	}
	return q, nil
}

// DeleteQuestion removes a question. Score records reference categories, not
// questions, so nothing else is affected.
func (s *QuizService) DeleteQuestion(ctx context.Context, id int64) error {
	return s.questions.Delete(ctx, id)
}

// SaveScore records a finished quiz. A nil categoryID records an all-categories quiz.
func (s *QuizService) SaveScore(ctx context.Context, username string, categoryID *int64, score, total int) (model.ScoreRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.ScoreRecord{}, invalid("username", "is required")
	}
	if err := model.ValidateScore(score, total); err != nil {
		return model.ScoreRecord{}, invalid("score", err.Error())
	}

	rec := model.ScoreRecord{
		Username:       username,
		CategoryID:     model.AllCategoriesID,
		Score:          score,
		TotalQuestions: total,
		CompletedAt:    s.now(),
	}
	if categoryID != nil {
		rec.CategoryID = *categoryID
	}

	id, err := s.scores.Insert(ctx, rec)
	if err != nil {
		return model.ScoreRecord{}, err
	}
	rec.ID = id
	return rec, nil
}

// Leaderboard ranks individual attempts when categoryID is set, and per-user
// averages across all attempts when it is nil. limit <= 0 uses DefaultLeaderboardLimit.
func (s *QuizService) Leaderboard(ctx context.Context, categoryID *int64, limit int) (model.Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	if categoryID == nil {
		users, err := s.scores.TopUsers(ctx, limit)
		if err != nil {
			return model.Leaderboard{}, err
		}
		return model.Leaderboard{Users: users}, nil
	}

	attempts, err := s.scores.TopAttempts(ctx, *categoryID, limit)
	if err != nil {
		return model.Leaderboard{}, err
	}
	id := *categoryID
	return model.Leaderboard{CategoryID: &id, Attempts: attempts}, nil
}

// Statistics aggregates question counts per category and score totals.
func (s *QuizService) Statistics(ctx context.Context) (model.Statistics, error) {
	counts, err := s.categories.QuestionCounts(ctx)
	if err != nil {
		return model.Statistics{}, err
	}

	summary, err := s.scores.Summary(ctx)
	if err != nil {
		return model.Statistics{}, err
	}

	stats := model.Statistics{
		Categories:        counts,
		TotalScores:       summary.TotalScores,
		UniqueUsers:       summary.UniqueUsers,
		AveragePercentage: summary.AveragePercentage,
	}
	for _, c := range counts {
		stats.TotalQuestions += c.Count
	}
	return stats, nil
}

// ClearQuestions deletes every question and returns how many were removed.
func (s *QuizService) ClearQuestions(ctx context.Context) (int64, error) {
	return s.questions.DeleteAll(ctx)
}

func (s *QuizService) openAll(rows []model.EncryptedQuestion) []model.Question {
	questions := make([]model.Question, 0, len(rows))
	for _, row := range rows {
		q, err := s.open(row)
		if err != nil {
			s.logger.Warn("skipping unreadable question", "question_id", row.ID, "error", err)
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func (s *QuizService) open(row model.EncryptedQuestion) (model.Question, error) {
	var payload model.QuestionPayload
	if err := s.codec.Decrypt(row.Ciphertext, &payload); err != nil {
		return model.Question{}, err
	}
	return model.QuestionFromPayload(row.ID, row.CategoryID, payload)
}

func (s *QuizService) validateQuestion(ctx context.Context, q model.Question) error {
	if q.Text == "" {
		return invalid("question", "is required")
	}
	for i, opt := range q.Options {
		if opt == "" {
			return invalid("options", fmt.Sprintf("option %s is required", model.AnswerLetter(i)))
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= model.OptionCount {
		return invalid("correct_answer", model.ErrAnswerOutOfRange.Error())
	}

	if _, err := s.Category(ctx, q.CategoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return invalid("category_id", fmt.Sprintf("category %d does not exist", q.CategoryID))
		}
		return err
	}
	return nil
}

func normalizeQuestion(q model.Question) model.Question {
	q.Text = strings.TrimSpace(q.Text)
	q.Explanation = strings.TrimSpace(q.Explanation)
	for i := range q.Options {
		q.Options[i] = strings.TrimSpace(q.Options[i])
	}
	return q
}
