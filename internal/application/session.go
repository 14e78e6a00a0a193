package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// Stage names reported for each session state.
const (
	StageNoUsername     = "no_username"
	StageCategorySelect = "category_select"
	StageInProgress     = "in_progress"
	StageCompleted      = "completed"
)

// SessionState is one state of a player's quiz session. The concrete types
// are NoUsername, CategorySelect, InProgress and Completed.
type SessionState interface {
	Stage() string
	sessionState()
}

// NoUsername is the initial state.
type NoUsername struct{}

// CategorySelect waits for the player to pick a category.
type CategorySelect struct {
	Username string
}

// Feedback records the answer given to the current question.
type Feedback struct {
	Selected    int
	Correct     bool
	Explanation string
}

// InProgress is an active quiz. Feedback is nil until the current question
// has been answered.
type InProgress struct {
	Username string
	Quiz     model.Quiz
	Index    int
	Score    int
	Feedback *Feedback
}

// Completed is a finished quiz whose score has been recorded.
type Completed struct {
	Username string
	Quiz     model.Quiz
	Score    int
}

func (NoUsername) Stage() string     { return StageNoUsername }
func (CategorySelect) Stage() string { return StageCategorySelect }
func (InProgress) Stage() string     { return StageInProgress }
func (Completed) Stage() string      { return StageCompleted }

func (NoUsername) sessionState()     {}
func (CategorySelect) sessionState() {}
func (InProgress) sessionState()     {}
func (Completed) sessionState()      {}

// Current returns the question being asked.
func (s InProgress) Current() model.Question {
	return s.Quiz.Questions[s.Index]
}

// IsLast reports whether the current question is the final one.
func (s InProgress) IsLast() bool {
	return s.Index == s.Quiz.Len()-1
}

// Percentage returns the final score as a percentage rounded to one decimal.
func (s Completed) Percentage() float64 {
	return model.ScoreRecord{Score: s.Score, TotalQuestions: s.Quiz.Len()}.Percentage()
}

// EnterUsername sets or changes the player's name.
func EnterUsername(s SessionState, name string) (SessionState, error) {
	switch s.(type) {
	case NoUsername, CategorySelect:
	default:
		return s, transitionError(s, "enter username")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return s, invalid("username", "is required")
	}
	return CategorySelect{Username: name}, nil
}

// StartQuiz begins quiz from category selection.
func StartQuiz(s SessionState, quiz model.Quiz) (SessionState, error) {
	cs, ok := s.(CategorySelect)
	if !ok {
		return s, transitionError(s, "start quiz")
	}
	if quiz.Len() == 0 {
		return s, ErrNoQuestions
	}
	return InProgress{Username: cs.Username, Quiz: quiz}, nil
}

// Answer grades option (0-based) against the current question. Each question
// can be answered once.
func Answer(s SessionState, option int) (SessionState, error) {
	ip, ok := s.(InProgress)
	if !ok || ip.Feedback != nil {
		return s, transitionError(s, "answer")
	}
	if option < 0 || option >= model.OptionCount {
		return s, invalid("option", model.ErrAnswerOutOfRange.Error())
	}

	q := ip.Current()
	fb := &Feedback{
		Selected:    option,
		Correct:     option == q.CorrectAnswer,
		Explanation: q.Explanation,
	}
	if fb.Correct {
		ip.Score++
	}
	ip.Feedback = fb
	return ip, nil
}

// Next advances to the following question once the current one is answered.
func Next(s SessionState) (SessionState, error) {
	ip, ok := s.(InProgress)
	if !ok || ip.Feedback == nil || ip.IsLast() {
		return s, transitionError(s, "next")
	}
	ip.Index++
	ip.Feedback = nil
	return ip, nil
}

// Finish completes the quiz after the last question is answered.
func Finish(s SessionState) (SessionState, error) {
	ip, ok := s.(InProgress)
	if !ok || ip.Feedback == nil || !ip.IsLast() {
		return s, transitionError(s, "finish")
	}
	return Completed{Username: ip.Username, Quiz: ip.Quiz, Score: ip.Score}, nil
}

// Reset abandons the current or finished quiz and returns to category selection.
func Reset(s SessionState) (SessionState, error) {
	switch st := s.(type) {
	case InProgress:
		return CategorySelect{Username: st.Username}, nil
	case Completed:
		return CategorySelect{Username: st.Username}, nil
	default:
		return s, transitionError(s, "reset")
	}
}

func transitionError(s SessionState, action string) error {
	return fmt.Errorf("%s from %s: %w", action, s.Stage(), ErrInvalidTransition)
}
