// Package client talks to the emotion tracker REST API and keeps the
// client-side state a front end needs: a cache of fetched months and the
// record-then-refresh flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Entry is a day's record as the API returns it.
type Entry struct {
	Date    string  `json:"date"`
	Emotion string  `json:"emotion"`
	Reason  *string `json:"reason"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New returns a client for the API at baseURL. A nil httpClient gets a
// default with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) Token() string         { return c.token }

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		apiErr := envelope.Error
		apiErr.Status = resp.StatusCode
		return resp.StatusCode, &apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, id, password string) (*LoginResult, error) {
	var res LoginResult
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"id": id, "password": password}, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

func (c *Client) Register(ctx context.Context, id, password, name string) (*User, error) {
	var u User
	body := map[string]string{"id": id, "password": password, "name": name}
	if _, err := c.do(ctx, http.MethodPost, "/users", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Record writes the entry for date (empty means the server's today).
// created is false when an existing entry was overwritten.
func (c *Client) Record(ctx context.Context, date, emotion string, reason *string) (entry Entry, created bool, err error) {
	var res struct {
		Data Entry `json:"data"`
	}
	body := struct {
		Emotion string  `json:"emotion"`
		Reason  *string `json:"reason,omitempty"`
		Date    string  `json:"date,omitempty"`
	}{emotion, reason, date}

	status, err := c.do(ctx, http.MethodPost, "/emotions", body, &res)
	if err != nil {
		return Entry{}, false, err
	}
	return res.Data, status == http.StatusCreated, nil
}

func (c *Client) Monthly(ctx context.Context, year int, month time.Month) ([]Entry, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(int(month)))

	entries := []Entry{}
	if _, err := c.do(ctx, http.MethodGet, "/emotions/monthly?"+q.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) YearlyStats(ctx context.Context, year int) (map[string]int, error) {
	var res struct {
		Data map[string]int `json:"data"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/emotions/yearly-stats?year="+strconv.Itoa(year), nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}
