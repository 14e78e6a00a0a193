package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

func newSessionService(f *fixture) *application.SessionService {
	store := application.NewSessionStore(0, func() time.Time { return fixedNow })
	return application.NewSessionService(f.svc, store, discardLogger())
}

func TestSessionService_PlayCategoryQuiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")
	for _, text := range []string{"one", "two"} {
		_, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, text))
		require.NoError(t, err)
	}
	svc := newSessionService(f)

	sess := svc.Create()
	assert.Equal(t, application.StageNoUsername, sess.State.Stage())

	_, err := svc.EnterUsername(sess.ID, "Mina")
	require.NoError(t, err)

	sess, err = svc.Start(ctx, sess.ID, &cid)
	require.NoError(t, err)
	ip := sess.State.(application.InProgress)
	assert.Equal(t, "Quotes", ip.Quiz.CategoryName)
	require.NotNil(t, ip.Quiz.CategoryID)
	assert.Equal(t, cid, *ip.Quiz.CategoryID)
	assert.Equal(t, 2, ip.Quiz.Len())

	_, err = svc.Answer(sess.ID, 2)
	require.NoError(t, err)
	_, err = svc.Next(sess.ID)
	require.NoError(t, err)
	_, err = svc.Answer(sess.ID, 1)
	require.NoError(t, err)

	sess, err = svc.Finish(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StageCompleted, sess.State.Stage())

	require.Len(t, f.scores.records, 1)
	rec := f.scores.records[0]
	assert.Equal(t, "Mina", rec.Username)
	assert.Equal(t, cid, rec.CategoryID)
	assert.Equal(t, 1, rec.Score)
	assert.Equal(t, 2, rec.TotalQuestions)
}

func TestSessionService_AllCategoriesUsesSentinel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")
	_, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, "only"))
	require.NoError(t, err)
	svc := newSessionService(f)

	sess := svc.Create()
	_, err = svc.EnterUsername(sess.ID, "Nok")
	require.NoError(t, err)
	sess, err = svc.Start(ctx, sess.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AllCategoriesName, sess.State.(application.InProgress).Quiz.CategoryName)

	_, err = svc.Answer(sess.ID, 2)
	require.NoError(t, err)
	_, err = svc.Finish(ctx, sess.ID)
	require.NoError(t, err)

	require.Len(t, f.scores.records, 1)
	assert.Equal(t, model.AllCategoriesID, f.scores.records[0].CategoryID)
}

func TestSessionService_StartErrorsKeepState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	empty := f.category("Empty")
	svc := newSessionService(f)

	sess := svc.Create()
	_, err := svc.EnterUsername(sess.ID, "Mina")
	require.NoError(t, err)

	_, err = svc.Start(ctx, sess.ID, &empty)
	assert.ErrorIs(t, err, application.ErrNoQuestions)

	missing := int64(99)
	_, err = svc.Start(ctx, sess.ID, &missing)
	assert.ErrorIs(t, err, application.ErrCategoryNotFound)

	got, err := svc.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StageCategorySelect, got.State.Stage())
}

func TestSessionService_FinishFailureKeepsQuiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")
	_, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, "only"))
	require.NoError(t, err)
	svc := newSessionService(f)

	sess := svc.Create()
	_, err = svc.EnterUsername(sess.ID, "Mina")
	require.NoError(t, err)
	_, err = svc.Start(ctx, sess.ID, &cid)
	require.NoError(t, err)
	_, err = svc.Answer(sess.ID, 2)
	require.NoError(t, err)

	f.scores.insertErr = errors.New("disk full")
	_, err = svc.Finish(ctx, sess.ID)
	require.Error(t, err)

	got, err := svc.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StageInProgress, got.State.Stage())

	f.scores.insertErr = nil
	_, err = svc.Finish(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, f.scores.records, 1)
}

func TestSessionService_ResetPersistsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.category("Quotes")
	_, err := f.svc.AddQuestion(ctx, sampleQuestion(cid, "only"))
	require.NoError(t, err)
	svc := newSessionService(f)

	sess := svc.Create()
	_, err = svc.EnterUsername(sess.ID, "Mina")
	require.NoError(t, err)
	_, err = svc.Start(ctx, sess.ID, &cid)
	require.NoError(t, err)
	_, err = svc.Answer(sess.ID, 2)
	require.NoError(t, err)

	sess, err = svc.Reset(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, application.CategorySelect{Username: "Mina"}, sess.State)
	assert.Empty(t, f.scores.records)
}

func TestSessionStore_UnknownIDs(t *testing.T) {
	store := application.NewSessionStore(0, nil)

	_, err := store.Get("not-a-uuid")
	assert.ErrorIs(t, err, application.ErrSessionNotFound)

	_, err = store.Get(uuid.NewString())
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
}

func TestSessionService_End(t *testing.T) {
	f := newFixture()
	svc := newSessionService(f)

	keep := svc.Create()
	gone := svc.Create()
	require.Equal(t, 2, svc.Active())

	require.NoError(t, svc.End(gone.ID))
	assert.Equal(t, 1, svc.Active())

	_, err := svc.Get(gone.ID)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
	_, err = svc.Get(keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.End(gone.ID), application.ErrSessionNotFound)
	assert.ErrorIs(t, svc.End("not-a-uuid"), application.ErrSessionNotFound)
}

func TestSessionStore_PrunesIdleSessionsOnCreate(t *testing.T) {
	now := fixedNow
	store := application.NewSessionStore(time.Hour, func() time.Time { return now })

	old := store.Create()
	now = now.Add(2 * time.Hour)
	fresh := store.Create()

	assert.Equal(t, 1, store.Len())
	_, err := store.Get(old.ID)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
	_, err = store.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSessionStore_ConcurrentUpdates(t *testing.T) {
	store := application.NewSessionStore(0, nil)
	sess := store.Create()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(sess.ID, func(s application.SessionState) (application.SessionState, error) {
				return application.EnterUsername(s, "Mina")
			})
			_, _ = store.Get(sess.ID)
		}()
	}
	wg.Wait()

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, application.CategorySelect{Username: "Mina"}, got.State)
}
