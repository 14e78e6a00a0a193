package model

// ScoreSummary aggregates over all score records.
type ScoreSummary struct {
	TotalScores       int
	UniqueUsers       int
	AveragePercentage float64
}

// Statistics is the database overview shown on the admin screen.
type Statistics struct {
	Categories        []CategoryQuestionCount
	TotalQuestions    int
	TotalScores       int
	UniqueUsers       int
	AveragePercentage float64
}
