package model

import (
	"strings"
	"time"
)

// Status is a task workflow status. The server owns the set of valid
// transitions; clients only carry the value.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusWorking Status = "working"
	StatusReview  Status = "review"
	StatusDone    Status = "done"
	StatusStuck   Status = "stuck"
)

// ParseStatus maps a raw status string onto the known set. Unknown or empty
// input falls back to "todo", matching the server's default for new tasks.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "working":
		return StatusWorking
	case "review":
		return StatusReview
	case "done":
		return StatusDone
	case "stuck":
		return StatusStuck
	default:
		return StatusTodo
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority maps a raw priority string onto the known set, defaulting
// to "medium".
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityMedium
	}
}

// Subtask is an embedded child of a Task. It has no independent existence in
// the store; its lifecycle is bound to the owning task.
type Subtask struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Completed   bool    `json:"completed"`
	AssigneeIDs []int64 `json:"assigneeIds"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Attachment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type Task struct {
	ID          int64    `json:"id"`
	ProjectID   int64    `json:"projectId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	// AssigneeIDs and LabelIDs are kept sorted and deduped by the
	// normalizer so value comparison works.
	AssigneeIDs []int64 `json:"assigneeIds"`
	LabelIDs    []int64 `json:"labelIds"`

	Subtasks    []Subtask    `json:"subtasks"`
	Comments    []Comment    `json:"comments"`
	Attachments []Attachment `json:"attachments"`

	Progress int `json:"progress"`

	StartDate *time.Time `json:"startDate,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Task) EntityID() int64 { return t.ID }

type Project struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	DepartmentID int64   `json:"departmentId"`
	Color        string  `json:"color,omitempty"`
	Favorite     bool    `json:"favorite"`
	MemberIDs    []int64 `json:"memberIds"`
}

func (p Project) EntityID() int64 { return p.ID }

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Color    string `json:"color,omitempty"`
}

func (u User) EntityID() int64 { return u.ID }

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (d Department) EntityID() int64 { return d.ID }

// Label is project-scoped when ProjectID is set; a nil ProjectID means the
// label is global.
type Label struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	ProjectID *int64 `json:"projectId,omitempty"`
}

func (l Label) EntityID() int64 { return l.ID }
