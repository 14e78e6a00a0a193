package model

// TriviaQuestion is a multiple-choice question fetched from a remote bank,
// before its options are shuffled into a Question.
type TriviaQuestion struct {
	Text             string
	CorrectAnswer    string
	IncorrectAnswers []string
	Difficulty       string
}

// TriviaQuery selects questions from a remote bank. Zero values mean any
// category and any difficulty.
type TriviaQuery struct {
	Amount     int
	Category   int
	Difficulty string
}

// TriviaCategory is a category offered by a remote bank.
type TriviaCategory struct {
	ID   int
	Name string
}
