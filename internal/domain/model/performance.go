package model

// Performance thresholds, in percent.
const (
	ThresholdOutstanding = 90
	ThresholdGreat       = 70
	ThresholdGood        = 50
)

// PerformanceMessage returns the closing message shown for a final percentage.
func PerformanceMessage(percentage float64) string {
	switch {
	case percentage >= ThresholdOutstanding:
		return "Outstanding! You're a true Stubborn Dreamer!"
	case percentage >= ThresholdGreat:
		return "Great job! You know the series very well!"
	case percentage >= ThresholdGood:
		return "Good effort! Maybe time for a rewatch?"
	default:
		return "Keep watching and try again! Every fan journey is unique!"
	}
}
