// Package todoapi is the HTTP client for the todue service: the
// authoritative remote store behind the synchronization engine. Every
// write endpoint returns the canonical Todo row, post-materialization
// when the write targeted a virtual occurrence.
package todoapi

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
	"unicode/utf8"

	"github.com/ethan-dean/todue/internal/todo"
)

const (
	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxAPIResponseBytes caps response body reads. Todo buckets are
	// small JSON arrays; 4MB leaves generous headroom for range reads.
	maxAPIResponseBytes = 4 * 1024 * 1024
)

// APIError is the service's JSON error body.
type APIError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e APIError) text() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Error
}

// User is the authenticated account returned by login.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

// AuthResponse is returned from POST /auth/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Text         string `json:"text"`
	AssignedDate string `json:"assignedDate"`
}

type updateTextRequest struct {
	Text string `json:"text"`
}

type updatePositionRequest struct {
	Position int `json:"position"`
}

type updateAssignedDateRequest struct {
	ToDate string `json:"toDate"`
}

// virtualTodoRequest keys a request by recurrence definition and
// occurrence date instead of row ID. Used for every mutation of a
// not-yet-materialized occurrence.
type virtualTodoRequest struct {
	RecurringTodoID int64  `json:"recurringTodoId"`
	InstanceDate    string `json:"instanceDate"`
}

// Client talks to the todue REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates an API client rooted at baseURL (e.g.
// "http://localhost:8080/api"). If httpClient is nil, a client with a
// 30-second timeout is created.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SetToken installs the bearer token sent with every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}

// do sends a JSON request and decodes the response into result. Errors
// are mapped onto the engine's taxonomy: transport failures and 5xx/429
// become NetworkError, 404/409/410 become ConflictError, anything else
// surfaces as a plain error with the server's message.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	var reqBody io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request body: %w", err)
		}

		reqBody = bytes.NewReader(payload)
	}

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts, connection refusals and DNS failures all land here.
		return &todo.NetworkError{Err: fmt.Errorf("sending request to %s: %w", endpoint, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return &todo.NetworkError{Err: fmt.Errorf("reading response from %s: %w", endpoint, err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(endpoint, resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response from %s: %w", endpoint, err)
		}
	}

	return nil
}

func (c *Client) statusError(endpoint string, status int, body []byte) error {
	msg := sanitizeResponseBody(body)

	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.text() != "" {
		msg = apiErr.text()
	}

	err := fmt.Errorf("API %s (%d): %s", endpoint, status, msg)

	switch {
	case status == http.StatusNotFound,
		status == http.StatusConflict,
		status == http.StatusGone:
		return &todo.ConflictError{Err: err}
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return &todo.NetworkError{Err: err}
	default:
		return err
	}
}

// Login authenticates with email and password. The returned token is
// installed on the client for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if resp.Token == "" {
		return nil, errors.New("login response missing token")
	}

	c.token = resp.Token

	return &resp, nil
}

// TodosForDate reads the bucket for one date.
func (c *Client) TodosForDate(ctx context.Context, date string) ([]todo.Todo, error) {
	q := url.Values{"date": {date}}

	var todos []todo.Todo
	if err := c.do(ctx, http.MethodGet, "/todos", q, nil, &todos); err != nil {
		return nil, fmt.Errorf("fetching todos for %s: %w", date, err)
	}

	return todos, nil
}

// TodosForRange reads every todo with an assigned date in [start, end].
func (c *Client) TodosForRange(ctx context.Context, start, end string) ([]todo.Todo, error) {
	q := url.Values{"startDate": {start}, "endDate": {end}}

	var todos []todo.Todo
	if err := c.do(ctx, http.MethodGet, "/todos", q, nil, &todos); err != nil {
		return nil, fmt.Errorf("fetching todos for %s..%s: %w", start, end, err)
	}

	return todos, nil
}

// Create persists a new one-off todo at the end of date's bucket.
func (c *Client) Create(ctx context.Context, text, date string) (todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos", nil, createTodoRequest{Text: text, AssignedDate: date}, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("creating todo: %w", err)
	}

	return t, nil
}

// UpdateText replaces a persisted todo's label.
func (c *Client) UpdateText(ctx context.Context, id int64, text string) (todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPut, "/todos/"+formatID(id)+"/text", nil, updateTextRequest{Text: text}, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("updating todo text: %w", err)
	}

	return t, nil
}

// UpdatePosition moves a persisted todo to a 1-based position within its
// bucket.
func (c *Client) UpdatePosition(ctx context.Context, id int64, position int) (todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPut, "/todos/"+formatID(id)+"/position", nil, updatePositionRequest{Position: position}, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("updating todo position: %w", err)
	}

	return t, nil
}

// UpdateAssignedDate moves a persisted todo to another date bucket.
func (c *Client) UpdateAssignedDate(ctx context.Context, id int64, toDate string) (todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPut, "/todos/"+formatID(id)+"/assigned-date", nil, updateAssignedDateRequest{ToDate: toDate}, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("moving todo to %s: %w", toDate, err)
	}

	return t, nil
}

// Complete marks a persisted todo completed.
func (c *Client) Complete(ctx context.Context, id int64) (todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/"+formatID(id)+"/complete", nil, nil, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("completing todo: %w", err)
	}

	return t, nil
}

// Uncomplete reverts a persisted todo to incomplete.
func (c *Client) Uncomplete(ctx context.Context, id int64) (todo.Todo, error) {
	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/"+formatID(id)+"/uncomplete", nil, nil, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("uncompleting todo: %w", err)
	}

	return t, nil
}

// Delete removes a persisted todo. With deleteAllFuture, the item's
// recurrence is truncated at its instance date and every future
// incomplete instance is removed as well.
func (c *Client) Delete(ctx context.Context, id int64, deleteAllFuture bool) error {
	var q url.Values
	if deleteAllFuture {
		q = url.Values{"deleteAllFuture": {"true"}}
	}

	if err := c.do(ctx, http.MethodDelete, "/todos/"+formatID(id), q, nil, nil); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}

	return nil
}

// Virtual variants: the server materializes the occurrence, applies the
// mutation, and returns the now-real row.

// UpdateVirtualText materializes a virtual occurrence with new text.
func (c *Client) UpdateVirtualText(ctx context.Context, recurringTodoID int64, instanceDate, text string) (todo.Todo, error) {
	q := url.Values{"text": {text}}
	body := virtualTodoRequest{RecurringTodoID: recurringTodoID, InstanceDate: instanceDate}

	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/virtual/update-text", q, body, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("updating virtual todo text: %w", err)
	}

	return t, nil
}

// UpdateVirtualPosition materializes a virtual occurrence at a 1-based
// position.
func (c *Client) UpdateVirtualPosition(ctx context.Context, recurringTodoID int64, instanceDate string, position int) (todo.Todo, error) {
	q := url.Values{"position": {strconv.Itoa(position)}}
	body := virtualTodoRequest{RecurringTodoID: recurringTodoID, InstanceDate: instanceDate}

	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/virtual/update-position", q, body, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("updating virtual todo position: %w", err)
	}

	return t, nil
}

// UpdateVirtualAssignedDate materializes a virtual occurrence onto
// another date.
func (c *Client) UpdateVirtualAssignedDate(ctx context.Context, recurringTodoID int64, instanceDate, toDate string) (todo.Todo, error) {
	q := url.Values{"toDate": {toDate}}
	body := virtualTodoRequest{RecurringTodoID: recurringTodoID, InstanceDate: instanceDate}

	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/virtual/update-assigned-date", q, body, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("moving virtual todo to %s: %w", toDate, err)
	}

	return t, nil
}

// CompleteVirtual materializes a virtual occurrence as completed.
func (c *Client) CompleteVirtual(ctx context.Context, recurringTodoID int64, instanceDate string) (todo.Todo, error) {
	body := virtualTodoRequest{RecurringTodoID: recurringTodoID, InstanceDate: instanceDate}

	var t todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/virtual/complete", nil, body, &t); err != nil {
		return todo.Todo{}, fmt.Errorf("completing virtual todo: %w", err)
	}

	return t, nil
}

// DeleteVirtual skips a virtual occurrence, or with deleteAllFuture
// truncates the recurrence from its instance date onward.
func (c *Client) DeleteVirtual(ctx context.Context, recurringTodoID int64, instanceDate string, deleteAllFuture bool) error {
	q := url.Values{
		"recurringTodoId": {formatID(recurringTodoID)},
		"instanceDate":    {instanceDate},
	}
	if deleteAllFuture {
		q.Set("deleteAllFuture", "true")
	}

	if err := c.do(ctx, http.MethodDelete, "/todos/virtual", q, nil, nil); err != nil {
		return fmt.Errorf("deleting virtual todo: %w", err)
	}

	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
