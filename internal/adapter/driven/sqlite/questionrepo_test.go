package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

func TestQuestionRepo_InsertAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepo(db)
	ctx := context.Background()

	a := createCategory(t, db, "A")
	b := createCategory(t, db, "B")

	id1, err := repo.Insert(ctx, model.EncryptedQuestion{CategoryID: a, Ciphertext: "one"})
	require.NoError(t, err)
	id2, err := repo.Insert(ctx, model.EncryptedQuestion{CategoryID: b, Ciphertext: "two", Difficulty: "hard"})
	require.NoError(t, err)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id1, all[0].ID)
	assert.Equal(t, "one", all[0].Ciphertext)
	assert.Equal(t, model.DefaultDifficulty, all[0].Difficulty)
	assert.Equal(t, id2, all[1].ID)
	assert.Equal(t, "hard", all[1].Difficulty)

	onlyB, err := repo.List(ctx, &b)
	require.NoError(t, err)
	require.Len(t, onlyB, 1)
	assert.Equal(t, id2, onlyB[0].ID)
}

func TestQuestionRepo_InsertUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepo(db)

	_, err := repo.Insert(context.Background(), model.EncryptedQuestion{CategoryID: 42, Ciphertext: "x"})
	assert.Error(t, err)
}

func TestQuestionRepo_SampleRespectsLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepo(db)
	ctx := context.Background()

	cat := createCategory(t, db, "A")
	other := createCategory(t, db, "B")
	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, model.EncryptedQuestion{CategoryID: cat, Ciphertext: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, model.EncryptedQuestion{CategoryID: other, Ciphertext: "elsewhere"})
	require.NoError(t, err)

	sample, err := repo.Sample(ctx, cat, 15)
	require.NoError(t, err)
	assert.Len(t, sample, 5)
	for _, q := range sample {
		assert.Equal(t, cat, q.CategoryID)
	}

	sample, err = repo.Sample(ctx, cat, 3)
	require.NoError(t, err)
	assert.Len(t, sample, 3)
}

func TestQuestionRepo_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepo(db)
	ctx := context.Background()

	a := createCategory(t, db, "A")
	b := createCategory(t, db, "B")

	id, err := repo.Insert(ctx, model.EncryptedQuestion{CategoryID: a, Ciphertext: "before"})
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, model.EncryptedQuestion{ID: id, CategoryID: b, Ciphertext: "after"}))

	got, err := repo.List(ctx, &b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "after", got[0].Ciphertext)

	err = repo.Update(ctx, model.EncryptedQuestion{ID: 999, CategoryID: a, Ciphertext: "x"})
	assert.ErrorIs(t, err, driven.ErrQuestionNotFound)
}

func TestQuestionRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepo(db)
	ctx := context.Background()

	a := createCategory(t, db, "A")
	id, err := repo.Insert(ctx, model.EncryptedQuestion{CategoryID: a, Ciphertext: "x"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), driven.ErrQuestionNotFound)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestQuestionRepo_DeleteAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepo(db)
	ctx := context.Background()

	a := createCategory(t, db, "A")
	for i := 0; i < 4; i++ {
		_, err := repo.Insert(ctx, model.EncryptedQuestion{CategoryID: a, Ciphertext: "x"})
		require.NoError(t, err)
	}

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
