package model

import "time"

// AllCategoriesID is the sentinel category id stored on score records for
// quizzes that mixed questions from every category. Real categories use
// AUTOINCREMENT ids starting at 1, so the sentinel never names a real row.
const AllCategoriesID int64 = 0

// AllCategoriesName is the display name of the sentinel category.
const AllCategoriesName = "All Categories"

// Category groups questions by topic.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// CategoryQuestionCount is the number of stored questions in one category.
type CategoryQuestionCount struct {
	CategoryID int64
	Name       string
	Count      int
}

// DefaultCategories are inserted on first start when the category table is empty.
var DefaultCategories = []Category{
	{Name: "Character Knowledge", Description: "Test your knowledge about the main characters"},
	{Name: "Romantic Moments", Description: "The sweetest scenes from the series"},
	{Name: "Quotes & Dialogues", Description: "Famous lines from Somewhere Somehow"},
}
