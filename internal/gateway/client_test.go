package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"boardsync-cli/internal/model"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
}

func newServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "secret-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, rec
}

func TestClient_UpdateTaskSendsPatchWithBearer(t *testing.T) {
	c, rec := newServer(t, 200, `{"Id": 101, "Title": "patched", "Status": "working"}`)

	title := "patched"
	task, err := c.UpdateTask(context.Background(), 101, TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if rec.method != http.MethodPatch || rec.path != "/api/tasks/101" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
	if rec.auth != "Bearer secret-token" {
		t.Fatalf("auth header = %q", rec.auth)
	}

	// Only the set field goes over the wire.
	var sent map[string]any
	if err := json.Unmarshal(rec.body, &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if len(sent) != 1 || sent["title"] != "patched" {
		t.Fatalf("sent body = %v, want only title", sent)
	}

	// Response is normalized.
	if task.ID != 101 || task.Title != "patched" || task.Status != model.StatusWorking {
		t.Fatalf("task = %+v", task)
	}
}

func TestClient_ChangeStatusUsesDedicatedEndpoint(t *testing.T) {
	c, rec := newServer(t, 200, `{"id": 7, "status": "done"}`)

	task, err := c.ChangeTaskStatus(context.Background(), 7, model.StatusDone)
	if err != nil {
		t.Fatalf("ChangeTaskStatus: %v", err)
	}
	if rec.method != http.MethodPut || rec.path != "/api/tasks/7/status" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
	if rec.query != "status=done" {
		t.Fatalf("query = %q", rec.query)
	}
	if task.Status != model.StatusDone {
		t.Fatalf("status = %q", task.Status)
	}
}

func TestClient_NonOKIsRemoteError(t *testing.T) {
	c, _ := newServer(t, 422, `{"error": "title required"}`)

	_, err := c.CreateTask(context.Background(), TaskDraft{ProjectID: 1})
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if re.StatusCode != 422 {
		t.Fatalf("status = %d", re.StatusCode)
	}
}

func TestClient_ListTasksFilterAndWrappedPage(t *testing.T) {
	c, rec := newServer(t, 200, `{"data": [{"id": 1}, {"id": 2}, {"title": "no id, skipped"}], "total": 3}`)

	tasks, err := c.ListTasks(context.Background(), TaskFilter{ProjectID: 9})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if rec.path != "/api/tasks" || rec.query != "projectId=9" {
		t.Fatalf("request = %s?%s", rec.path, rec.query)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2 (item without id skipped)", len(tasks))
	}
}

func TestClient_LabelRoutes(t *testing.T) {
	c, rec := newServer(t, 200, `[]`)
	if _, err := c.ListLabels(context.Background(), LabelFilter{ProjectID: 4}); err != nil {
		t.Fatalf("ListLabels: %v", err)
	}
	if rec.path != "/api/labels/project/4" {
		t.Fatalf("path = %q", rec.path)
	}

	if _, err := c.ListLabels(context.Background(), LabelFilter{GlobalOnly: true}); err != nil {
		t.Fatalf("ListLabels global: %v", err)
	}
	if rec.path != "/api/labels" || rec.query != "global_only=true" {
		t.Fatalf("request = %s?%s", rec.path, rec.query)
	}
}

func TestClient_DeleteTaskNoContent(t *testing.T) {
	c, rec := newServer(t, 204, ``)
	if err := c.DeleteTask(context.Background(), 12); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if rec.method != http.MethodDelete || rec.path != "/api/tasks/12" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	if _, err := NewClient("", "t"); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	if _, err := NewClient("ftp://example.com", "t"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestTaskPatch_ApplyIsShallowMerge(t *testing.T) {
	base := model.Task{ID: 1, Title: "old", Description: "keep", Progress: 10}
	title := "new"
	p := 55
	merged := TaskPatch{Title: &title, Progress: &p}.Apply(base)

	if merged.Title != "new" || merged.Progress != 55 {
		t.Fatalf("merged = %+v", merged)
	}
	if merged.Description != "keep" {
		t.Fatalf("unset field changed: %+v", merged)
	}
	if base.Title != "old" {
		t.Fatalf("Apply mutated its input")
	}
}
