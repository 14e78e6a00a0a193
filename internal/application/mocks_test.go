package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// --- In-memory port implementations ---

type memCategoryStore struct {
	mu         sync.Mutex
	categories []model.Category
	questions  *memQuestionStore
	nextID     int64
}

func (m *memCategoryStore) ListAll(_ context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.Category(nil), m.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCategoryStore) GetByID(_ context.Context, id int64) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memCategoryStore) GetByName(_ context.Context, name string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memCategoryStore) Create(_ context.Context, c model.Category) (model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return model.Category{}, driven.ErrCategoryExists
		}
	}
	m.nextID++
	c.ID = m.nextID
	m.categories = append(m.categories, c)
	return c, nil
}

func (m *memCategoryStore) QuestionCounts(ctx context.Context) ([]model.CategoryQuestionCount, error) {
	categories, _ := m.ListAll(ctx)
	counts := make([]model.CategoryQuestionCount, 0, len(categories))
	for _, c := range categories {
		rows, _ := m.questions.List(ctx, &c.ID)
		counts = append(counts, model.CategoryQuestionCount{CategoryID: c.ID, Name: c.Name, Count: len(rows)})
	}
	return counts, nil
}

type memQuestionStore struct {
	mu     sync.Mutex
	rows   []model.EncryptedQuestion
	nextID int64
}

func (m *memQuestionStore) Insert(_ context.Context, q model.EncryptedQuestion) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	q.ID = m.nextID
	m.rows = append(m.rows, q)
	return q.ID, nil
}

func (m *memQuestionStore) Update(_ context.Context, q model.EncryptedQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == q.ID {
			m.rows[i].CategoryID = q.CategoryID
			m.rows[i].Ciphertext = q.Ciphertext
			return nil
		}
	}
	return driven.ErrQuestionNotFound
}

func (m *memQuestionStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return driven.ErrQuestionNotFound
}

func (m *memQuestionStore) Sample(ctx context.Context, categoryID int64, limit int) ([]model.EncryptedQuestion, error) {
	rows, _ := m.List(ctx, &categoryID)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memQuestionStore) List(_ context.Context, categoryID *int64) ([]model.EncryptedQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EncryptedQuestion
	for _, r := range m.rows {
		if categoryID == nil || r.CategoryID == *categoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memQuestionStore) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.rows))
	m.rows = nil
	return n, nil
}

type memScoreStore struct {
	mu        sync.Mutex
	records   []model.ScoreRecord
	insertErr error
}

func (m *memScoreStore) Insert(_ context.Context, rec model.ScoreRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *memScoreStore) ListAll(_ context.Context) ([]model.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ScoreRecord(nil), m.records...), nil
}

func (m *memScoreStore) TopAttempts(_ context.Context, categoryID int64, limit int) ([]model.AttemptRank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AttemptRank
	for _, r := range m.records {
		if r.CategoryID == categoryID {
			out = append(out, model.AttemptRank{
				Username: r.Username, Score: r.Score, TotalQuestions: r.TotalQuestions,
				Percentage: r.Percentage(), CompletedAt: r.CompletedAt,
			})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memScoreStore) TopUsers(_ context.Context, limit int) ([]model.UserRank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.UserRank
	for _, r := range m.records {
		out = append(out, model.UserRank{Username: r.Username, AveragePercentage: r.Percentage(), QuizzesTaken: 1, LastQuizAt: r.CompletedAt})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memScoreStore) Summary(_ context.Context) (model.ScoreSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := map[string]bool{}
	var sum float64
	for _, r := range m.records {
		users[r.Username] = true
		sum += r.Percentage()
	}
	s := model.ScoreSummary{TotalScores: len(m.records), UniqueUsers: len(users)}
	if len(m.records) > 0 {
		s.AveragePercentage = model.RoundTenth(sum / float64(len(m.records)))
	}
	return s, nil
}

// jsonCodec stores plain JSON. The token "broken" fails to open.
type jsonCodec struct{}

var errBrokenToken = errors.New("broken token")

func (jsonCodec) Encrypt(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func (jsonCodec) Decrypt(token string, v any) error {
	if token == "broken" {
		return errBrokenToken
	}
	return json.Unmarshal([]byte(token), v)
}

// --- Fixtures ---

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	categories *memCategoryStore
	questions  *memQuestionStore
	scores     *memScoreStore
	svc        *application.QuizService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(opts ...application.QuizOption) *fixture {
	questions := &memQuestionStore{}
	f := &fixture{
		categories: &memCategoryStore{questions: questions},
		questions:  questions,
		scores:     &memScoreStore{},
	}
	opts = append([]application.QuizOption{
		application.WithClock(func() time.Time { return fixedNow }),
		application.WithShuffle(func(int, func(i, j int)) {}),
	}, opts...)
	f.svc = application.NewQuizService(f.categories, f.questions, f.scores, jsonCodec{}, discardLogger(), opts...)
	return f
}

func (f *fixture) category(name string) int64 {
	c, err := f.categories.Create(context.Background(), model.Category{Name: name})
	if err != nil {
		panic(err)
	}
	return c.ID
}

func sampleQuestion(categoryID int64, text string) model.Question {
	return model.Question{
		CategoryID:    categoryID,
		Text:          text,
		Options:       [model.OptionCount]string{"Alpha", "Bravo", "Charlie", "Delta"},
		CorrectAnswer: 2,
		Explanation:   "Because " + text,
	}
}
