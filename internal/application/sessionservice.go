package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// SessionService drives quiz sessions through their transitions, loading
// questions when a quiz starts and recording the score when it finishes.
type SessionService struct {
	quiz   *QuizService
	store  *SessionStore
	logger *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(quiz *QuizService, store *SessionStore, logger *slog.Logger) *SessionService {
	return &SessionService{quiz: quiz, store: store, logger: logger}
}

// Create opens a new session.
func (s *SessionService) Create() Session {
	return s.store.Create()
}

// Get returns a session by id.
func (s *SessionService) Get(id string) (Session, error) {
	return s.store.Get(id)
}

// EnterUsername sets the player's name.
func (s *SessionService) EnterUsername(id, username string) (Session, error) {
	return s.store.Update(id, func(st SessionState) (SessionState, error) {
		return EnterUsername(st, username)
	})
}

// Start draws questions for categoryID, or for every category when it is
// nil, and begins the quiz.
func (s *SessionService) Start(ctx context.Context, id string, categoryID *int64) (Session, error) {
	return s.store.Update(id, func(st SessionState) (SessionState, error) {
		if _, ok := st.(CategorySelect); !ok {
			return st, transitionError(st, "start quiz")
		}

		quiz, err := s.loadQuiz(ctx, categoryID)
		if err != nil {
			return st, err
		}
		return StartQuiz(st, quiz)
	})
}

// Answer grades option (0-based) for the current question.
func (s *SessionService) Answer(id string, option int) (Session, error) {
	return s.store.Update(id, func(st SessionState) (SessionState, error) {
		return Answer(st, option)
	})
}

// Next moves to the following question.
func (s *SessionService) Next(id string) (Session, error) {
	return s.store.Update(id, Next)
}

// Finish completes the quiz and records the score. If the score cannot be
// saved the session stays on the last question so the player can retry.
func (s *SessionService) Finish(ctx context.Context, id string) (Session, error) {
	return s.store.Update(id, func(st SessionState) (SessionState, error) {
		next, err := Finish(st)
		if err != nil {
			return st, err
		}

		done := next.(Completed)
		rec, err := s.quiz.SaveScore(ctx, done.Username, done.Quiz.CategoryID, done.Score, done.Quiz.Len())
		if err != nil {
			return st, err
		}

		s.logger.Info("quiz completed",
			"session_id", id,
			"username", rec.Username,
			"category_id", rec.CategoryID,
			"score", rec.Score,
			"total", rec.TotalQuestions,
		)
		return next, nil
	})
}

// Reset abandons the quiz without recording anything.
func (s *SessionService) Reset(id string) (Session, error) {
	return s.store.Update(id, Reset)
}

// End discards a session and everything in it. Unsaved progress is lost.
func (s *SessionService) End(id string) error {
	return s.store.Delete(id)
}

// Active returns the number of live sessions.
func (s *SessionService) Active() int {
	return s.store.Len()
}

func (s *SessionService) loadQuiz(ctx context.Context, categoryID *int64) (model.Quiz, error) {
	if categoryID == nil {
		questions, err := s.quiz.QuestionsForAllCategories(ctx, 0)
		if err != nil {
			return model.Quiz{}, err
		}
		return model.Quiz{CategoryName: model.AllCategoriesName, Questions: questions}, nil
	}

	c, err := s.quiz.Category(ctx, *categoryID)
	if err != nil {
		return model.Quiz{}, err
	}
	questions, err := s.quiz.QuestionsByCategory(ctx, c.ID, 0)
	if err != nil {
		return model.Quiz{}, err
	}

	cid := c.ID
	return model.Quiz{CategoryID: &cid, CategoryName: c.Name, Questions: questions}, nil
}
