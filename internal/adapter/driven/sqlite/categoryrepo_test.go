package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

func TestCategoryRepo_SeedDefaultsOnlyWhenEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)
	ctx := context.Background()

	seeded, err := repo.SeedDefaults(ctx, model.DefaultCategories)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = repo.SeedDefaults(ctx, model.DefaultCategories)
	require.NoError(t, err)
	assert.False(t, seeded)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultCategories), count)
}

func TestCategoryRepo_ListAllAlphabetical(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)
	ctx := context.Background()

	createCategory(t, db, "Quotes")
	createCategory(t, db, "Characters")
	createCategory(t, db, "Moments")

	categories, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Characters", categories[0].Name)
	assert.Equal(t, "Moments", categories[1].Name)
	assert.Equal(t, "Quotes", categories[2].Name)
	assert.False(t, categories[0].CreatedAt.IsZero())
}

func TestCategoryRepo_IDsStartAtOne(t *testing.T) {
	db := setupTestDB(t)

	id := createCategory(t, db, "First")
	assert.Equal(t, int64(1), id)
	assert.NotEqual(t, model.AllCategoriesID, id)
}

func TestCategoryRepo_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)

	createCategory(t, db, "Characters")

	_, err := repo.Create(context.Background(), model.Category{Name: "Characters"})
	assert.ErrorIs(t, err, driven.ErrCategoryExists)
}

func TestCategoryRepo_GetByNameAndID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)
	ctx := context.Background()

	id := createCategory(t, db, "Characters")

	byName, err := repo.GetByName(ctx, "Characters")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, id, byName.ID)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Characters", byID.Name)

	missing, err := repo.GetByName(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryRepo_QuestionCountsIncludesEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepo(db)
	questions := NewQuestionRepo(db)
	ctx := context.Background()

	withQuestions := createCategory(t, db, "Alpha")
	createCategory(t, db, "Beta")

	for i := 0; i < 3; i++ {
		_, err := questions.Insert(ctx, model.EncryptedQuestion{CategoryID: withQuestions, Ciphertext: "x"})
		require.NoError(t, err)
	}

	counts, err := repo.QuestionCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "Alpha", counts[0].Name)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, "Beta", counts[1].Name)
	assert.Equal(t, 0, counts[1].Count)
}
