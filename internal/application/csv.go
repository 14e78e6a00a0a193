package application

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
)

// QuestionCSVHeader is the exact header of the question interchange format.
var QuestionCSVHeader = []string{
	"Category", "Question", "Option A", "Option B", "Option C", "Option D", "Correct Answer", "Explanation",
}

// ScoreCSVHeader is the exact header of the score interchange format.
var ScoreCSVHeader = []string{
	"Username", "Category", "Score", "Total Questions", "Percentage", "Completed At",
}

// ImportResult reports a partially successful import: the number of rows
// stored and one message per rejected row.
type ImportResult struct {
	Imported int
	Errors   []string
}

func (r *ImportResult) reject(row int, format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", row, fmt.Sprintf(format, args...)))
}

// ExportQuestionsCSV writes every readable question in the question format.
func (s *QuizService) ExportQuestionsCSV(ctx context.Context, w io.Writer) error {
	names, err := s.categoryNames(ctx)
	if err != nil {
		return err
	}

	questions, err := s.AllQuestions(ctx, nil)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(QuestionCSVHeader); err != nil {
		return err
	}
	for _, q := range questions {
		rec := []string{
			names[q.CategoryID],
			q.Text,
			q.Options[0], q.Options[1], q.Options[2], q.Options[3],
			model.AnswerLetter(q.CorrectAnswer),
			q.Explanation,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportScoresCSV writes every score record in the score format.
func (s *QuizService) ExportScoresCSV(ctx context.Context, w io.Writer) error {
	names, err := s.categoryNames(ctx)
	if err != nil {
		return err
	}

	records, err := s.scores.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ScoreCSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		category, ok := names[r.CategoryID]
		if !ok {
			category = fmt.Sprintf("Unknown category %d", r.CategoryID)
		}
		rec := []string{
			r.Username,
			category,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.TotalQuestions),
			strconv.FormatFloat(r.Percentage(), 'f', 1, 64),
			r.CompletedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportQuestionsCSV reads questions in the question format. Rows are
// validated one by one and bad rows are reported without stopping the import.
// Unknown category names are created. A malformed CSV stream or a wrong
// header aborts the whole import with an error.
//
// Category creation is check-then-insert and not atomic across concurrent
// imports: when two imports race to create the same name, the loser's row is
// rejected by the unique constraint and reported as a row error.
func (s *QuizService) ImportQuestionsCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	rows, err := readCSV(r, QuestionCSVHeader)
	if err != nil {
		return result, err
	}

	resolved := make(map[string]int64)
	for i, rec := range rows {
		rowNum := i + 2 // header is row 1

		if len(rec) != len(QuestionCSVHeader) {
			result.reject(rowNum, "expected %d columns, got %d", len(QuestionCSVHeader), len(rec))
			continue
		}
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}

		categoryName, text := rec[0], rec[1]
		options := [model.OptionCount]string{rec[2], rec[3], rec[4], rec[5]}

		if missing := missingFields(rec[:7], QuestionCSVHeader[:7]); len(missing) > 0 {
			result.reject(rowNum, "missing required fields: %s", strings.Join(missing, ", "))
			continue
		}

		if categoryName == model.AllCategoriesName {
			result.reject(rowNum, "category name %q is reserved", categoryName)
			continue
		}

		answer, err := model.AnswerFromLetter(rec[6])
		if err != nil {
			result.reject(rowNum, "invalid correct answer %q (must be A, B, C or D)", rec[6])
			continue
		}

		categoryID, err := s.resolveCategory(ctx, categoryName, resolved)
		if err != nil {
			result.reject(rowNum, "category %q: %v", categoryName, err)
			continue
		}

		_, err = s.AddQuestion(ctx, model.Question{
			CategoryID:    categoryID,
			Text:          text,
			Options:       options,
			CorrectAnswer: answer,
			Explanation:   rec[7],
		})
		if err != nil {
			result.reject(rowNum, "%v", err)
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportScoresCSV reads score records in the score format. The category must
// already exist, or be the all-categories name. The percentage column is
// ignored; it is derived from score and total.
func (s *QuizService) ImportScoresCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	rows, err := readCSV(r, ScoreCSVHeader)
	if err != nil {
		return result, err
	}

	for i, rec := range rows {
		rowNum := i + 2

		if len(rec) != len(ScoreCSVHeader) {
			result.reject(rowNum, "expected %d columns, got %d", len(ScoreCSVHeader), len(rec))
			continue
		}
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}

		if missing := missingFields(rec[:4], ScoreCSVHeader[:4]); len(missing) > 0 {
			result.reject(rowNum, "missing required fields: %s", strings.Join(missing, ", "))
			continue
		}

		score, err := strconv.Atoi(rec[2])
		if err != nil {
			result.reject(rowNum, "score %q is not a whole number", rec[2])
			continue
		}
		total, err := strconv.Atoi(rec[3])
		if err != nil {
			result.reject(rowNum, "total questions %q is not a whole number", rec[3])
			continue
		}
		if err := model.ValidateScore(score, total); err != nil {
			result.reject(rowNum, "score %d out of range for %d questions", score, total)
			continue
		}

		categoryID := model.AllCategoriesID
		if rec[1] != model.AllCategoriesName {
			c, err := s.categories.GetByName(ctx, rec[1])
			if err != nil {
				result.reject(rowNum, "look up category %q: %v", rec[1], err)
				continue
			}
			if c == nil {
				result.reject(rowNum, "category %q does not exist", rec[1])
				continue
			}
			categoryID = c.ID
		}

		completedAt := s.now()
		if rec[5] != "" {
			completedAt, err = time.Parse(time.RFC3339, rec[5])
			if err != nil {
				result.reject(rowNum, "completed at %q is not an RFC 3339 timestamp", rec[5])
				continue
			}
		}

		_, err = s.scores.Insert(ctx, model.ScoreRecord{
			Username:       rec[0],
			CategoryID:     categoryID,
			Score:          score,
			TotalQuestions: total,
			CompletedAt:    completedAt.UTC(),
		})
		if err != nil {
			result.reject(rowNum, "%v", err)
			continue
		}
		result.Imported++
	}

	return result, nil
}

func (s *QuizService) resolveCategory(ctx context.Context, name string, cache map[string]int64) (int64, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	c, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if c == nil {
		created, err := s.categories.Create(ctx, model.Category{Name: name})
		if err != nil {
			return 0, err
		}
		s.logger.Info("created category from import", "category", name, "category_id", created.ID)
		c = &created
	}

	cache[name] = c.ID
	return c.ID, nil
}

func (s *QuizService) categoryNames(ctx context.Context) (map[int64]string, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(categories)+1)
	names[model.AllCategoriesID] = model.AllCategoriesName
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// readCSV parses the whole stream, checks the header and returns the data rows.
// Rows may have any number of fields; column counts are validated per row.
func readCSV(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("parse CSV: file is empty")
	}

	got := records[0]
	if len(got) > 0 {
		got[0] = strings.TrimPrefix(got[0], "\ufeff")
	}
	if !equalHeader(got, header) {
		return nil, fmt.Errorf("unexpected CSV header %q, want %q", strings.Join(got, ","), strings.Join(header, ","))
	}

	return records[1:], nil
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func missingFields(values, names []string) []string {
	var missing []string
	for i, v := range values {
		if v == "" {
			missing = append(missing, names[i])
		}
	}
	return missing
}
