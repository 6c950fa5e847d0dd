package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"taskhub/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "TASKHUB_HTTP_TIMEOUT"
)

// Client is an HTTP client for the taskhub API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	out := *c
	out.authToken = strings.TrimSpace(token)
	return &out
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks whether the API server is reachable.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp)
	return resp, err
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", nil, req, &resp)
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodGet, "/v1/auth/me", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateUser(ctx context.Context, req UserCreateRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPost, "/v1/users", nil, req, &resp)
	return resp, err
}

func (c *Client) GetUser(ctx context.Context, id string) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListUsers(ctx context.Context, query UserQuery) ([]models.User, error) {
	var resp []models.User
	err := c.do(ctx, http.MethodGet, "/v1/users", query.Values(), nil, &resp)
	return resp, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UserUpdateRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SetPassword(ctx context.Context, id string, req PasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id)+"/password", nil, req, nil)
}

func (c *Client) CreateTask(ctx context.Context, req TaskCreateRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPost, "/v1/tasks", nil, req, &resp)
	return resp, err
}

func (c *Client) GetTask(ctx context.Context, id string) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListTasks(ctx context.Context, query TaskQuery) ([]models.Task, error) {
	var resp []models.Task
	err := c.do(ctx, http.MethodGet, "/v1/tasks", query.Values(), nil, &resp)
	return resp, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, req TaskUpdateRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPatch, taskPath(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

func (c *Client) ToggleTask(ctx context.Context, id string) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id)+"/toggle", nil, nil, &resp)
	return resp, err
}

func (c *Client) AssignTask(ctx context.Context, id string, req AssignRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id)+"/assign", nil, req, &resp)
	return resp, err
}

func (c *Client) ShareTask(ctx context.Context, id string, req ShareRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id)+"/share", nil, req, &resp)
	return resp, err
}

func (c *Client) UnshareTask(ctx context.Context, id, userID string) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodDelete, taskPath(id)+"/share/"+url.PathEscape(userID), nil, nil, &resp)
	return resp, err
}

func (c *Client) WatchTask(ctx context.Context, id string) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPost, taskPath(id)+"/watch", nil, nil, &resp)
	return resp, err
}

func (c *Client) UnwatchTask(ctx context.Context, id string) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodDelete, taskPath(id)+"/watch", nil, nil, &resp)
	return resp, err
}

func (c *Client) TaskStats(ctx context.Context) (TaskStats, error) {
	var resp TaskStats
	err := c.do(ctx, http.MethodGet, "/v1/tasks/stats", nil, nil, &resp)
	return resp, err
}

func (c *Client) AddComment(ctx context.Context, taskID string, req CommentCreateRequest) (models.Comment, error) {
	var resp models.Comment
	err := c.do(ctx, http.MethodPost, taskPath(taskID)+"/comments", nil, req, &resp)
	return resp, err
}

func (c *Client) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	var resp []models.Comment
	err := c.do(ctx, http.MethodGet, taskPath(taskID)+"/comments", nil, nil, &resp)
	return resp, err
}

func (c *Client) EditComment(ctx context.Context, taskID, commentID string, req CommentUpdateRequest) (models.Comment, error) {
	var resp models.Comment
	err := c.do(ctx, http.MethodPatch, commentPath(taskID, commentID), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteComment(ctx context.Context, taskID, commentID string) error {
	return c.do(ctx, http.MethodDelete, commentPath(taskID, commentID), nil, nil, nil)
}

func (c *Client) ResolveComment(ctx context.Context, taskID, commentID string, resolved bool) (models.Comment, error) {
	var resp models.Comment
	err := c.do(ctx, http.MethodPost, commentPath(taskID, commentID)+"/resolve", nil, ResolveRequest{Resolved: resolved}, &resp)
	return resp, err
}

func (c *Client) TaskActivity(ctx context.Context, taskID string, limit int) ([]models.Activity, error) {
	var resp []models.Activity
	err := c.do(ctx, http.MethodGet, taskPath(taskID)+"/activity", limitQuery(limit), nil, &resp)
	return resp, err
}

func (c *Client) ActivityFeed(ctx context.Context, limit int) ([]models.Activity, error) {
	var resp []models.Activity
	err := c.do(ctx, http.MethodGet, "/v1/activity", limitQuery(limit), nil, &resp)
	return resp, err
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) (NotificationList, error) {
	var resp NotificationList
	var query url.Values
	if unreadOnly {
		query = url.Values{"unread": []string{"true"}}
	}
	err := c.do(ctx, http.MethodGet, "/v1/notifications", query, nil, &resp)
	return resp, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/v1/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var resp int
	err := c.do(ctx, http.MethodPost, "/v1/notifications/read", nil, nil, &resp)
	return resp, err
}

func taskPath(id string) string {
	return "/v1/tasks/" + url.PathEscape(id)
}

func commentPath(taskID, commentID string) string {
	return taskPath(taskID) + "/comments/" + url.PathEscape(commentID)
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

// decodeEnvelope unwraps the response envelope into out, turning failed
// envelopes and non-JSON error pages into *APIError.
func decodeEnvelope(resp *http.Response, out any) error {
	var env rawEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= 400 {
		message := env.Error
		if message == "" {
			message = env.Message
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, ErrorCode: env.ErrorCode, Message: message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
