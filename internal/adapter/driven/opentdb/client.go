// Package opentdb implements the TriviaSource port against the Open Trivia Database.
package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/fanquiz/internal/domain/model"
	"github.com/ericfisherdev/fanquiz/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TriviaSource = (*Client)(nil)

// DefaultBaseURL is the public Open Trivia Database endpoint.
const DefaultBaseURL = "https://opentdb.com"

const requestTimeout = 15 * time.Second

// Response codes returned in the response_code field.
const (
	codeSuccess      = 0
	codeNoResults    = 1
	codeInvalidParam = 2
	codeRateLimit    = 5
)

var (
	// ErrNoResults is returned when the bank has too few questions for the query.
	ErrNoResults = errors.New("opentdb: not enough questions for query")

	// ErrRateLimited is returned when requests are made too quickly.
	ErrRateLimited = errors.New("opentdb: rate limited")
)

type rawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []rawQuestion `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"trivia_categories"`
}

// Client fetches questions from the Open Trivia Database.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Client whose transport caches responses in memory.
// Question requests opt out of the cache because each call should draw a
// fresh random set; the category list is served from cache when the server
// allows it.
func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   requestTimeout,
		},
		baseURL: DefaultBaseURL,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

// FetchQuestions requests multiple-choice questions matching query. HTML
// entities in the text are decoded.
func (c *Client) FetchQuestions(ctx context.Context, query model.TriviaQuery) ([]model.TriviaQuestion, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(query.Amount))
	params.Set("type", "multiple")
	if query.Category > 0 {
		params.Set("category", strconv.Itoa(query.Category))
	}
	if query.Difficulty != "" {
		params.Set("difficulty", query.Difficulty)
	}

	var payload questionsResponse
	if err := c.getJSON(ctx, "/api.php?"+params.Encode(), true, &payload); err != nil {
		return nil, err
	}

	switch payload.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return nil, ErrNoResults
	case codeRateLimit:
		return nil, ErrRateLimited
	case codeInvalidParam:
		return nil, fmt.Errorf("opentdb: invalid parameter in %s", params.Encode())
	default:
		return nil, fmt.Errorf("opentdb: response_code=%d", payload.ResponseCode)
	}

	questions := make([]model.TriviaQuestion, 0, len(payload.Results))
	for _, r := range payload.Results {
		incorrect := make([]string, len(r.IncorrectAnswers))
		for i, a := range r.IncorrectAnswers {
			incorrect[i] = html.UnescapeString(a)
		}
		questions = append(questions, model.TriviaQuestion{
			Text:             html.UnescapeString(r.Question),
			CorrectAnswer:    html.UnescapeString(r.CorrectAnswer),
			IncorrectAnswers: incorrect,
			Difficulty:       r.Difficulty,
		})
	}
	return questions, nil
}

// Categories returns the remote category list.
func (c *Client) Categories(ctx context.Context) ([]model.TriviaCategory, error) {
	var payload categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", false, &payload); err != nil {
		return nil, err
	}

	categories := make([]model.TriviaCategory, 0, len(payload.TriviaCategories))
	for _, tc := range payload.TriviaCategories {
		categories = append(categories, model.TriviaCategory{ID: tc.ID, Name: html.UnescapeString(tc.Name)})
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, noStore bool, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("opentdb: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if noStore {
		req.Header.Set("Cache-Control", "no-store")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("opentdb: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("opentdb: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("opentdb: decoding response: %w", err)
	}
	return nil
}
