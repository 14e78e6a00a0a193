package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

func TestAddQuestion_StoresSealedPayload(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Character Knowledge")

	q, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, "  Who is the lead?  "))
	require.NoError(t, err)
	assert.NotZero(t, q.ID)
	assert.Equal(t, "Who is the lead?", q.Text)

	require.Len(t, f.questions.rows, 1)
	row := f.questions.rows[0]
	assert.Equal(t, cid, row.CategoryID)
	assert.Equal(t, model.DefaultDifficulty, row.Difficulty)
	assert.Contains(t, row.Ciphertext, `"correct_answer":3`, "answer index is stored 1-based")

	got, err := f.svc.AllQuestions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, q, got[0])
}

func TestAddQuestion_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")

	tests := []struct {
		name   string
		mutate func(*model.Question)
		field  string
	}{
		{"empty text", func(q *model.Question) { q.Text = "   " }, "question"},
		{"empty option", func(q *model.Question) { q.Options[3] = "" }, "options"},
		{"answer too high", func(q *model.Question) { q.CorrectAnswer = 4 }, "correct_answer"},
		{"answer negative", func(q *model.Question) { q.CorrectAnswer = -1 }, "correct_answer"},
		{"unknown category", func(q *model.Question) { q.CategoryID = 999 }, "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := sampleQuestion(cid, "Valid?")
			tt.mutate(&q)

			_, err := f.svc.AddQuestion(ctx, q)
			require.Error(t, err)

			var verr *application.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Empty(t, f.questions.rows)
}

func TestUpdateQuestion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")
	other := f.category("Moments")

	q, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, "Original"))
	require.NoError(t, err)

	q.Text = "  Edited  "
	q.Options[1] = " Bravo "
	q.CategoryID = other
	q.CorrectAnswer = 0
	updated, err := f.svc.UpdateQuestion(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Text)
	assert.Equal(t, "Bravo", updated.Options[1])

	got, err := f.svc.AllQuestions(ctx, &other)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, updated, got[0])
	assert.Equal(t, 0, got[0].CorrectAnswer)

	q.ID = 404
	_, err = f.svc.UpdateQuestion(ctx, q)
	assert.ErrorIs(t, err, driven.ErrQuestionNotFound)
}

func TestDeleteQuestion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")

	q, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, "Gone soon"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteQuestion(ctx, q.ID))
	assert.ErrorIs(t, f.svc.DeleteQuestion(ctx, q.ID), driven.ErrQuestionNotFound)
}

func TestQuestionsByCategory_LimitLargerThanAvailable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")

	for i := range 5 {
		_, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, fmt.Sprintf("Q%d", i)))
		require.NoError(t, err)
	}

	got, err := f.svc.QuestionsByCategory(ctx, cid, 15)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	for _, q := range got {
		assert.NotZero(t, q.ID)
	}
}

func TestQuestionsByCategory_DefaultLimit(t *testing.T) {
	f := newFixture(application.WithQuestionLimit(3))
	ctx := context.Background()
	cid := f.category("Quotes")

	for i := range 5 {
		_, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, fmt.Sprintf("Q%d", i)))
		require.NoError(t, err)
	}

	got, err := f.svc.QuestionsByCategory(ctx, cid, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestQuestionsByCategory_SkipsUnreadableRows(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")

	_, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, "Readable"))
	require.NoError(t, err)
	_, err = f.questions.Insert(ctx, model.EncryptedQuestion{CategoryID: cid, Ciphertext: "broken"})
	require.NoError(t, err)
	_, err = f.questions.Insert(ctx, model.EncryptedQuestion{CategoryID: cid, Ciphertext: `{"question":"x","options":["a"],"correct_answer":1}`})
	require.NoError(t, err)

	got, err := f.svc.QuestionsByCategory(ctx, cid, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Readable", got[0].Text)
}

func TestQuestionsForAllCategories_CombinesEveryCategory(t *testing.T) {
	shuffled := false
	f := newFixture(application.WithShuffle(func(n int, swap func(i, j int)) {
		shuffled = true
		if n > 1 {
			swap(0, n-1)
		}
	}))
	ctx := context.Background()
	a := f.category("A")
	b := f.category("B")

	_, err := f.svc.AddQuestion(ctx, sampleQuestion(a, "from A"))
	require.NoError(t, err)
	_, err = f.svc.AddQuestion(ctx, sampleQuestion(b, "from B"))
	require.NoError(t, err)

	got, err := f.svc.QuestionsForAllCategories(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, shuffled)
	assert.Equal(t, "from B", got[0].Text)
	assert.Equal(t, "from A", got[1].Text)
}

func TestSaveScore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")

	rec, err := f.svc.SaveScore(ctx, " Mina ", &cid, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, "Mina", rec.Username)
	assert.Equal(t, cid, rec.CategoryID)
	assert.True(t, fixedNow.Equal(rec.CompletedAt))

	rec, err = f.svc.SaveScore(ctx, "Mina", nil, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, model.AllCategoriesID, rec.CategoryID, "nil category maps to the sentinel")
}

func TestSaveScore_Rejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		score    int
		total    int
	}{
		{"blank username", "  ", 1, 2},
		{"score above total", "Mina", 6, 5},
		{"negative score", "Mina", -1, 5},
		{"zero total", "Mina", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SaveScore(ctx, tt.username, nil, tt.score, tt.total)
			require.Error(t, err)
			assert.True(t, application.IsValidation(err))
		})
	}
	assert.Empty(t, f.scores.records)
}

func TestLeaderboard_ChoosesShape(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")

	_, err := f.svc.SaveScore(ctx, "Mina", &cid, 4, 5)
	require.NoError(t, err)

	byCategory, err := f.svc.Leaderboard(ctx, &cid, 0)
	require.NoError(t, err)
	assert.False(t, byCategory.PerUser())
	require.Len(t, byCategory.Attempts, 1)
	assert.Empty(t, byCategory.Users)
	assert.InDelta(t, 80.0, byCategory.Attempts[0].Percentage, 0.001)

	overall, err := f.svc.Leaderboard(ctx, nil, 0)
	require.NoError(t, err)
	assert.True(t, overall.PerUser())
	require.Len(t, overall.Users, 1)
	assert.Empty(t, overall.Attempts)
}

func TestStatistics(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.category("A")
	f.category("B")

	for i := range 3 {
		_, err := f.svc.AddQuestion(ctx, sampleQuestion(a, fmt.Sprintf("Q%d", i)))
		require.NoError(t, err)
	}
	_, err := f.svc.SaveScore(ctx, "Mina", &a, 1, 2)
	require.NoError(t, err)
	_, err = f.svc.SaveScore(ctx, "Nok", nil, 2, 2)
	require.NoError(t, err)

	stats, err := f.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalQuestions)
	assert.Equal(t, 2, stats.TotalScores)
	assert.Equal(t, 2, stats.UniqueUsers)
	assert.InDelta(t, 75.0, stats.AveragePercentage, 0.001)
	require.Len(t, stats.Categories, 2)
	assert.Equal(t, 3, stats.Categories[0].Count)
	assert.Equal(t, 0, stats.Categories[1].Count)
}

func TestCategory_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Category(context.Background(), 7)
	assert.ErrorIs(t, err, application.ErrCategoryNotFound)
}

func TestCreateCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.svc.CreateCategory(ctx, " Side Characters ", " Everyone else ")
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Side Characters", c.Name)
	assert.Equal(t, "Everyone else", c.Description)

	_, err = f.svc.CreateCategory(ctx, "Side Characters", "")
	assert.ErrorIs(t, err, driven.ErrCategoryExists)

	_, err = f.svc.CreateCategory(ctx, "  ", "")
	assert.True(t, application.IsValidation(err))

	_, err = f.svc.CreateCategory(ctx, model.AllCategoriesName, "")
	assert.True(t, application.IsValidation(err))
}
