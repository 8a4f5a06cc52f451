package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// runCmd executes the root command against a test server and returns
// captured stdout.
func runCmd(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BOARDSYNC_CONFIG_DIR", t.TempDir())

	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--server", serverURL, "--token", "tok"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func decodeData(t *testing.T, out string) any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return payload["data"]
}

func TestTasksListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tasks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("projectId") != "3" {
			t.Errorf("projectId = %s", r.URL.Query().Get("projectId"))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth = %s", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"Id": 7, "Title": "Spec", "ProjectId": 3, "Status": "working"}]`))
	}))
	defer srv.Close()

	out, err := runCmd(t, srv.URL, "tasks", "list", "--project", "3")
	if err != nil {
		t.Fatalf("tasks list: %v", err)
	}
	data, ok := decodeData(t, out).([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("data = %v", data)
	}
	task := data[0].(map[string]any)
	if task["title"] != "Spec" || task["status"] != "working" {
		t.Fatalf("task not normalized: %v", task)
	}
}

func TestTasksStatusCommand(t *testing.T) {
	var statusCalled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/tasks/7":
			w.Write([]byte(`{"id": 7, "title": "Spec", "projectId": 3, "status": "todo"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/tasks/7/status":
			statusCalled = true
			if r.URL.Query().Get("status") != "done" {
				t.Errorf("status query = %s", r.URL.Query().Get("status"))
			}
			w.Write([]byte(`{"id": 7, "title": "Spec", "projectId": 3, "status": "done"}`))
		default:
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	out, err := runCmd(t, srv.URL, "tasks", "status", "7", "done")
	if err != nil {
		t.Fatalf("tasks status: %v", err)
	}
	if !statusCalled {
		t.Fatal("status endpoint never hit")
	}
	task := decodeData(t, out).(map[string]any)
	if task["status"] != "done" {
		t.Fatalf("task = %v", task)
	}
}

func TestTasksStatusRejectsUnknownValue(t *testing.T) {
	if _, err := runCmd(t, "http://localhost:0", "tasks", "status", "7", "blocked"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestTasksDeleteCommand(t *testing.T) {
	deleted := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/tasks/7":
			w.Write([]byte(`{"id": 7, "title": "Spec", "projectId": 3}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/tasks/7":
			deleted <- struct{}{}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	out, err := runCmd(t, srv.URL, "tasks", "delete", "7")
	if err != nil {
		t.Fatalf("tasks delete: %v", err)
	}
	// The remote delete is issued concurrently; wait for it.
	select {
	case <-deleted:
	case <-time.After(time.Second):
		t.Fatal("remote delete never issued")
	}
	data := decodeData(t, out).(map[string]any)
	if data["deleted"] != float64(7) {
		t.Fatalf("data = %v", data)
	}
}

func TestProjectsListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"Id": 4, "Name": "Board", "DepartmentId": 2}]}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, srv.URL, "projects", "list")
	if err != nil {
		t.Fatalf("projects list: %v", err)
	}
	data := decodeData(t, out).([]any)
	project := data[0].(map[string]any)
	if project["name"] != "Board" || project["departmentId"] != float64(2) {
		t.Fatalf("project = %v", project)
	}
}

func TestNoServerConfigured(t *testing.T) {
	t.Setenv("BOARDSYNC_CONFIG_DIR", t.TempDir())
	t.Setenv("BOARDSYNC_SERVER", "")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"projects", "list"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected missing-server error")
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		arg string
		ok  bool
	}{
		{"7", true},
		{"0", false},
		{"-3", false},
		{"seven", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := parseID(tc.arg)
		if (err == nil) != tc.ok {
			t.Errorf("parseID(%q): err = %v", tc.arg, err)
		}
	}
}

func TestConfigSetAndShow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOARDSYNC_CONFIG_DIR", dir)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "set", "--server", "https://boards.example.com", "--token", "secret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config set: %v", err)
	}

	out := &bytes.Buffer{}
	cmd = NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "show"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	data := decodeData(t, out.String()).(map[string]any)
	if data["serverUrl"] != "https://boards.example.com" {
		t.Fatalf("serverUrl = %v", data["serverUrl"])
	}
	if data["tokenSet"] != true {
		t.Fatal("tokenSet not reported")
	}
	if strings.Contains(out.String(), "secret") {
		t.Fatal("token leaked into output")
	}
}
