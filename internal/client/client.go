// Package client talks to the FoodRescue HTTP API and mirrors the behaviour
// of the web front end: presence checks before writes, form reset after a
// successful submission and a bounded live list of recent submissions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/franckalain/foodrescue/internal/models"
	"github.com/franckalain/foodrescue/internal/realtime"
	"github.com/gorilla/websocket"
)

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether the upstream AI provider rate-limited the call
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsCreditsExhausted reports whether the AI provider account ran out of credits
func (e *APIError) IsCreditsExhausted() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// Client is an HTTP client for the FoodRescue API
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// New creates a client for the API rooted at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		dialer:     websocket.DefaultDialer,
	}
}

// SubmissionInput is the payload of a new food submission
type SubmissionInput struct {
	FoodType  string                  `json:"food_type"`
	Quantity  float64                 `json:"quantity"`
	Unit      string                  `json:"unit"`
	Location  string                  `json:"location"`
	EventType *string                 `json:"event_type"`
	Notes     *string                 `json:"notes"`
	Status    models.SubmissionStatus `json:"status"`
}

// SubmitFood records a new surplus-food submission
func (c *Client) SubmitFood(ctx context.Context, in SubmissionInput) (*models.FoodSubmission, error) {
	var sub models.FoodSubmission
	if err := c.do(ctx, http.MethodPost, "/api/food-submissions", in, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// RecentSubmissions returns up to ten submissions, newest first
func (c *Client) RecentSubmissions(ctx context.Context) ([]*models.FoodSubmission, error) {
	var subs []*models.FoodSubmission
	if err := c.do(ctx, http.MethodGet, "/api/food-submissions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateStatus changes the status of a submission
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.FoodSubmission, error) {
	var sub models.FoodSubmission
	body := map[string]models.SubmissionStatus{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/api/food-submissions/"+url.PathEscape(id), body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListNGOs returns every partner NGO sorted by name
func (c *Client) ListNGOs(ctx context.Context) ([]*models.NGO, error) {
	var ngos []*models.NGO
	if err := c.do(ctx, http.MethodGet, "/api/ngos", nil, &ngos); err != nil {
		return nil, err
	}
	return ngos, nil
}

// PredictDemand requests a demand forecast
func (c *Client) PredictDemand(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	var result models.PredictionResult
	if err := c.do(ctx, http.MethodPost, "/api/predict-demand", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if data, _ := io.ReadAll(resp.Body); json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Event is a change notification received over the realtime socket
type Event struct {
	Type  string                `json:"type"`
	Table string                `json:"table"`
	Data  models.FoodSubmission `json:"data"`
}

// Subscribe streams change events to fn until ctx is cancelled or the
// connection fails. Non-change messages are ignored.
func (c *Client) Subscribe(ctx context.Context, fn func(Event)) error {
	wsURL, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}

	conn, _, err := c.dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		if event.Table == realtime.TableFoodSubmissions {
			fn(event)
		}
	}
}
