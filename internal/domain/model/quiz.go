package model

// Quiz is the fixed question set a player works through. A nil CategoryID
// marks a quiz drawn from every category.
type Quiz struct {
	CategoryID   *int64
	CategoryName string
	Questions    []Question
}

// Len returns the number of questions in the quiz.
func (q Quiz) Len() int {
	return len(q.Questions)
}
