package model

import "time"

// OptionCount is the fixed number of answer options per question.
const OptionCount = 4

// DefaultDifficulty is stored on every question row. It is not used for selection.
const DefaultDifficulty = "medium"

// Question is a decrypted multiple-choice question. CorrectAnswer is a
// zero-based index into Options.
type Question struct {
	ID            int64
	CategoryID    int64
	Text          string
	Options       [OptionCount]string
	CorrectAnswer int
	Explanation   string
}

// EncryptedQuestion is a question row as persisted: the question content lives
// only in Ciphertext, while CategoryID stays in the clear so it can be filtered in SQL.
type EncryptedQuestion struct {
	ID         int64
	CategoryID int64
	Ciphertext string
	Difficulty string
	CreatedAt  time.Time
}

// QuestionPayload is the plaintext document sealed into EncryptedQuestion.Ciphertext.
// CorrectAnswer is 1-based on disk; convert with StoredAnswer and AnswerFromStored.
type QuestionPayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// ToPayload converts a question into its persisted plaintext form.
func (q Question) ToPayload() QuestionPayload {
	return QuestionPayload{
		Question:      q.Text,
		Options:       append([]string(nil), q.Options[:]...),
		CorrectAnswer: StoredAnswer(q.CorrectAnswer),
		Explanation:   q.Explanation,
	}
}

// QuestionFromPayload rebuilds a question from a decrypted payload. The row id
// and category id come from the unencrypted columns.
func QuestionFromPayload(id, categoryID int64, p QuestionPayload) (Question, error) {
	if len(p.Options) != OptionCount {
		return Question{}, ErrOptionCount
	}

	answer, err := AnswerFromStored(p.CorrectAnswer)
	if err != nil {
		return Question{}, err
	}

	q := Question{
		ID:            id,
		CategoryID:    categoryID,
		Text:          p.Question,
		CorrectAnswer: answer,
		Explanation:   p.Explanation,
	}
	copy(q.Options[:], p.Options)
	return q, nil
}
