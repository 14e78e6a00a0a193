package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

func twoQuestionQuiz() model.Quiz {
	return model.Quiz{
		CategoryName: model.AllCategoriesName,
		Questions: []model.Question{
			sampleQuestion(1, "first"),
			sampleQuestion(1, "second"),
		},
	}
}

func TestSessionTransitions_HappyPath(t *testing.T) {
	var s application.SessionState = application.NoUsername{}

	s, err := application.EnterUsername(s, "  Mina ")
	require.NoError(t, err)
	assert.Equal(t, application.CategorySelect{Username: "Mina"}, s)

	s, err = application.StartQuiz(s, twoQuestionQuiz())
	require.NoError(t, err)
	ip := s.(application.InProgress)
	assert.Equal(t, 0, ip.Index)
	assert.Nil(t, ip.Feedback)

	s, err = application.Answer(s, 2)
	require.NoError(t, err)
	ip = s.(application.InProgress)
	require.NotNil(t, ip.Feedback)
	assert.True(t, ip.Feedback.Correct)
	assert.Equal(t, 2, ip.Feedback.Selected)
	assert.Equal(t, "Because first", ip.Feedback.Explanation)
	assert.Equal(t, 1, ip.Score)

	s, err = application.Next(s)
	require.NoError(t, err)
	ip = s.(application.InProgress)
	assert.Equal(t, 1, ip.Index)
	assert.Nil(t, ip.Feedback)
	assert.True(t, ip.IsLast())

	s, err = application.Answer(s, 0)
	require.NoError(t, err)
	assert.False(t, s.(application.InProgress).Feedback.Correct)

	s, err = application.Finish(s)
	require.NoError(t, err)
	done := s.(application.Completed)
	assert.Equal(t, "Mina", done.Username)
	assert.Equal(t, 1, done.Score)
	assert.InDelta(t, 50.0, done.Percentage(), 0.001)

	s, err = application.Reset(s)
	require.NoError(t, err)
	assert.Equal(t, application.CategorySelect{Username: "Mina"}, s)
}

func TestSessionTransitions_Invalid(t *testing.T) {
	selecting := application.CategorySelect{Username: "Mina"}
	fresh := application.InProgress{Username: "Mina", Quiz: twoQuestionQuiz()}
	answered := fresh
	answered.Feedback = &application.Feedback{Selected: 1}
	lastAnswered := answered
	lastAnswered.Index = 1
	done := application.Completed{Username: "Mina", Quiz: twoQuestionQuiz()}

	tests := []struct {
		name string
		run  func() (application.SessionState, error)
	}{
		{"start without username", func() (application.SessionState, error) {
			return application.StartQuiz(application.NoUsername{}, twoQuestionQuiz())
		}},
		{"username during quiz", func() (application.SessionState, error) {
			return application.EnterUsername(fresh, "Nok")
		}},
		{"answer before start", func() (application.SessionState, error) {
			return application.Answer(selecting, 0)
		}},
		{"answer twice", func() (application.SessionState, error) {
			return application.Answer(answered, 0)
		}},
		{"next before answering", func() (application.SessionState, error) {
			return application.Next(fresh)
		}},
		{"next past the end", func() (application.SessionState, error) {
			return application.Next(lastAnswered)
		}},
		{"finish early", func() (application.SessionState, error) {
			return application.Finish(answered)
		}},
		{"finish unanswered last", func() (application.SessionState, error) {
			last := fresh
			last.Index = 1
			return application.Finish(last)
		}},
		{"finish twice", func() (application.SessionState, error) {
			return application.Finish(done)
		}},
		{"reset from selection", func() (application.SessionState, error) {
			return application.Reset(selecting)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			assert.ErrorIs(t, err, application.ErrInvalidTransition)
		})
	}
}

func TestSessionTransitions_InputErrors(t *testing.T) {
	_, err := application.EnterUsername(application.NoUsername{}, "   ")
	assert.True(t, application.IsValidation(err))

	_, err = application.StartQuiz(application.CategorySelect{Username: "Mina"}, model.Quiz{})
	assert.ErrorIs(t, err, application.ErrNoQuestions)

	_, err = application.Answer(application.InProgress{Quiz: twoQuestionQuiz()}, 4)
	assert.True(t, application.IsValidation(err))
}

func TestSessionTransitions_ResetDiscardsProgress(t *testing.T) {
	ip := application.InProgress{Username: "Mina", Quiz: twoQuestionQuiz(), Index: 1, Score: 1}

	s, err := application.Reset(ip)
	require.NoError(t, err)
	assert.Equal(t, application.StageCategorySelect, s.Stage())
}
