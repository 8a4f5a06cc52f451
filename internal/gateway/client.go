package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boardsync-cli/internal/model"
	"boardsync-cli/internal/normalize"
)

// Client implements Gateway over the board server's REST API.
//
// Responses are run through internal/normalize before they reach callers,
// so the rest of the client never sees raw wire shapes. Authentication is a
// bearer token supplied by the caller; token acquisition and refresh are
// not this client's job.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

func NewClient(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gateway: server URL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway: invalid server URL scheme: %q", u.Scheme)
	}
	return &Client{
		base:  u,
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// BaseURL returns the configured server URL without a trailing slash.
func (c *Client) BaseURL() string { return c.base.String() }

// Token returns the bearer credential, for collaborators that authenticate
// against the same server (the realtime channel).
func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (any, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &RemoteError{Op: op, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return decoded, nil
}

func objectOf(op string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected response shape", op)
	}
	return m, nil
}

func listOf(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case map[string]any:
		// Some list endpoints wrap the page in {data: [...], total: n}.
		if items, ok := x["data"].([]any); ok {
			return items
		}
	}
	return nil
}

func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	q := url.Values{}
	if filter.ProjectID != 0 {
		q.Set("projectId", strconv.FormatInt(filter.ProjectID, 10))
	}
	v, err := c.do(ctx, "list tasks", http.MethodGet, "/api/tasks", q, nil)
	if err != nil {
		return nil, err
	}
	var out []model.Task
	for _, it := range listOf(v) {
		if m, ok := it.(map[string]any); ok {
			if t, ok := normalize.Task(m); ok {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (model.Task, error) {
	return c.taskCall(ctx, "get task", http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

func (c *Client) CreateTask(ctx context.Context, draft TaskDraft) (model.Task, error) {
	return c.taskCall(ctx, "create task", http.MethodPost, "/api/tasks", nil, draft)
}

func (c *Client) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (model.Task, error) {
	return c.taskCall(ctx, "update task", http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), nil, patch)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "delete task", http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
	return err
}

func (c *Client) ChangeTaskStatus(ctx context.Context, id int64, status model.Status) (model.Task, error) {
	q := url.Values{"status": {string(status)}}
	return c.taskCall(ctx, "change task status", http.MethodPut, fmt.Sprintf("/api/tasks/%d/status", id), q, nil)
}

func (c *Client) SetTaskProgress(ctx context.Context, id int64, progress int) (model.Task, error) {
	q := url.Values{"progress": {strconv.Itoa(progress)}}
	return c.taskCall(ctx, "set task progress", http.MethodPut, fmt.Sprintf("/api/tasks/%d/progress", id), q, nil)
}

func (c *Client) AssignTask(ctx context.Context, id, userID int64) (model.Task, error) {
	q := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	return c.taskCall(ctx, "assign task", http.MethodPost, fmt.Sprintf("/api/tasks/%d/assign", id), q, nil)
}

func (c *Client) taskCall(ctx context.Context, op, method, path string, q url.Values, body any) (model.Task, error) {
	v, err := c.do(ctx, op, method, path, q, body)
	if err != nil {
		return model.Task{}, err
	}
	m, err := objectOf(op, v)
	if err != nil {
		return model.Task{}, err
	}
	t, ok := normalize.Task(m)
	if !ok {
		return model.Task{}, fmt.Errorf("%s: response entity missing id", op)
	}
	return t, nil
}

func (c *Client) CreateSubtask(ctx context.Context, taskID int64, draft SubtaskDraft) (model.Subtask, error) {
	return c.subtaskCall(ctx, "create subtask", http.MethodPost, fmt.Sprintf("/api/tasks/%d/subtasks", taskID), draft)
}

func (c *Client) UpdateSubtask(ctx context.Context, subtaskID int64, patch SubtaskPatch) (model.Subtask, error) {
	return c.subtaskCall(ctx, "update subtask", http.MethodPut, fmt.Sprintf("/api/tasks/subtasks/%d", subtaskID), patch)
}

func (c *Client) DeleteSubtask(ctx context.Context, subtaskID int64) error {
	_, err := c.do(ctx, "delete subtask", http.MethodDelete, fmt.Sprintf("/api/tasks/subtasks/%d", subtaskID), nil, nil)
	return err
}

func (c *Client) ReorderSubtasks(ctx context.Context, taskID int64, orderedIDs []int64) error {
	body := map[string]any{"subtaskIds": orderedIDs}
	_, err := c.do(ctx, "reorder subtasks", http.MethodPut, fmt.Sprintf("/api/tasks/%d/subtasks/reorder", taskID), nil, body)
	return err
}

func (c *Client) subtaskCall(ctx context.Context, op, method, path string, body any) (model.Subtask, error) {
	v, err := c.do(ctx, op, method, path, nil, body)
	if err != nil {
		return model.Subtask{}, err
	}
	m, err := objectOf(op, v)
	if err != nil {
		return model.Subtask{}, err
	}
	s, ok := normalize.Subtask(m)
	if !ok {
		return model.Subtask{}, fmt.Errorf("%s: response entity missing id", op)
	}
	return s, nil
}

func (c *Client) CreateComment(ctx context.Context, taskID int64, text string) (model.Comment, error) {
	op := "create comment"
	v, err := c.do(ctx, op, http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", taskID), nil, map[string]any{"text": text})
	if err != nil {
		return model.Comment{}, err
	}
	m, err := objectOf(op, v)
	if err != nil {
		return model.Comment{}, err
	}
	cm, ok := normalize.Comment(m)
	if !ok {
		return model.Comment{}, fmt.Errorf("%s: response entity missing id", op)
	}
	return cm, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	_, err := c.do(ctx, "delete comment", http.MethodDelete, fmt.Sprintf("/api/tasks/comments/%d", commentID), nil, nil)
	return err
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	v, err := c.do(ctx, "list projects", http.MethodGet, "/api/projects", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []model.Project
	for _, it := range listOf(v) {
		if m, ok := it.(map[string]any); ok {
			if p, ok := normalize.Project(m); ok {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id int64) (model.Project, error) {
	return c.projectCall(ctx, "get project", http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil)
}

func (c *Client) CreateProject(ctx context.Context, draft ProjectDraft) (model.Project, error) {
	return c.projectCall(ctx, "create project", http.MethodPost, "/api/projects", draft)
}

func (c *Client) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (model.Project, error) {
	return c.projectCall(ctx, "update project", http.MethodPut, fmt.Sprintf("/api/projects/%d", id), patch)
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "delete project", http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, nil)
	return err
}

func (c *Client) ToggleFavorite(ctx context.Context, id int64) (model.Project, error) {
	return c.projectCall(ctx, "toggle favorite", http.MethodPut, fmt.Sprintf("/api/projects/%d/favorite", id), nil)
}

func (c *Client) projectCall(ctx context.Context, op, method, path string, body any) (model.Project, error) {
	v, err := c.do(ctx, op, method, path, nil, body)
	if err != nil {
		return model.Project{}, err
	}
	m, err := objectOf(op, v)
	if err != nil {
		return model.Project{}, err
	}
	p, ok := normalize.Project(m)
	if !ok {
		return model.Project{}, fmt.Errorf("%s: response entity missing id", op)
	}
	return p, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	v, err := c.do(ctx, "list users", http.MethodGet, "/api/users", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []model.User
	for _, it := range listOf(v) {
		if m, ok := it.(map[string]any); ok {
			if u, ok := normalize.User(m); ok {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (c *Client) ListDepartments(ctx context.Context) ([]model.Department, error) {
	v, err := c.do(ctx, "list departments", http.MethodGet, "/api/departments", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []model.Department
	for _, it := range listOf(v) {
		if m, ok := it.(map[string]any); ok {
			if d, ok := normalize.Department(m); ok {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (c *Client) CreateDepartment(ctx context.Context, draft DepartmentDraft) (model.Department, error) {
	return c.departmentCall(ctx, "create department", http.MethodPost, "/api/departments", draft)
}

func (c *Client) UpdateDepartment(ctx context.Context, id int64, patch DepartmentPatch) (model.Department, error) {
	return c.departmentCall(ctx, "update department", http.MethodPut, fmt.Sprintf("/api/departments/%d", id), patch)
}

func (c *Client) DeleteDepartment(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "delete department", http.MethodDelete, fmt.Sprintf("/api/departments/%d", id), nil, nil)
	return err
}

func (c *Client) departmentCall(ctx context.Context, op, method, path string, body any) (model.Department, error) {
	v, err := c.do(ctx, op, method, path, nil, body)
	if err != nil {
		return model.Department{}, err
	}
	m, err := objectOf(op, v)
	if err != nil {
		return model.Department{}, err
	}
	d, ok := normalize.Department(m)
	if !ok {
		return model.Department{}, fmt.Errorf("%s: response entity missing id", op)
	}
	return d, nil
}

func (c *Client) ListLabels(ctx context.Context, filter LabelFilter) ([]model.Label, error) {
	op := "list labels"
	path := "/api/labels"
	q := url.Values{}
	if filter.ProjectID != 0 {
		path = fmt.Sprintf("/api/labels/project/%d", filter.ProjectID)
	} else if filter.GlobalOnly {
		q.Set("global_only", "true")
	}
	v, err := c.do(ctx, op, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	var out []model.Label
	for _, it := range listOf(v) {
		if m, ok := it.(map[string]any); ok {
			if l, ok := normalize.Label(m); ok {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (c *Client) CreateLabel(ctx context.Context, draft LabelDraft) (model.Label, error) {
	return c.labelCall(ctx, "create label", http.MethodPost, "/api/labels", draft)
}

func (c *Client) UpdateLabel(ctx context.Context, id int64, patch LabelPatch) (model.Label, error) {
	return c.labelCall(ctx, "update label", http.MethodPut, fmt.Sprintf("/api/labels/%d", id), patch)
}

func (c *Client) DeleteLabel(ctx context.Context, id int64) error {
	_, err := c.do(ctx, "delete label", http.MethodDelete, fmt.Sprintf("/api/labels/%d", id), nil, nil)
	return err
}

func (c *Client) labelCall(ctx context.Context, op, method, path string, body any) (model.Label, error) {
	v, err := c.do(ctx, op, method, path, nil, body)
	if err != nil {
		return model.Label{}, err
	}
	m, err := objectOf(op, v)
	if err != nil {
		return model.Label{}, err
	}
	l, ok := normalize.Label(m)
	if !ok {
		return model.Label{}, fmt.Errorf("%s: response entity missing id", op)
	}
	return l, nil
}

var _ Gateway = (*Client)(nil)
