// Package gateway defines the remote API contract the sync engine depends
// on, plus the HTTP implementation of it.
//
// Every call is expected to fail with an error on non-2xx responses; the
// coordinator converts those failures into rollbacks. No call retries.
package gateway

import (
	"context"
	"time"

	"boardsync-cli/internal/model"
)

// TaskFilter narrows ListTasks. Zero values mean "no filter".
type TaskFilter struct {
	ProjectID int64
}

// LabelFilter narrows ListLabels. ProjectID wins over GlobalOnly when both
// are set.
type LabelFilter struct {
	ProjectID  int64
	GlobalOnly bool
}

// TaskDraft is the payload for creating a task. The server assigns the
// canonical id and computed fields.
type TaskDraft struct {
	ProjectID   int64          `json:"projectId"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      model.Status   `json:"status,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
	AssigneeIDs []int64        `json:"assigneeIds,omitempty"`
	LabelIDs    []int64        `json:"labelIds,omitempty"`
	StartDate   *time.Time     `json:"startDate,omitempty"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
}

// TaskPatch is a partial update: nil fields are left untouched.
type TaskPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	AssigneeIDs *[]int64        `json:"assigneeIds,omitempty"`
	LabelIDs    *[]int64        `json:"labelIds,omitempty"`
	Progress    *int            `json:"progress,omitempty"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
}

// Apply shallow-merges the patch onto a copy of t. The result is built
// off-store so the coordinator can swap it in as one operation.
func (p TaskPatch) Apply(t model.Task) model.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeIDs != nil {
		t.AssigneeIDs = append([]int64(nil), (*p.AssigneeIDs)...)
	}
	if p.LabelIDs != nil {
		t.LabelIDs = append([]int64(nil), (*p.LabelIDs)...)
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.StartDate != nil {
		t.StartDate = p.StartDate
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	return t
}

type SubtaskDraft struct {
	Title       string  `json:"title"`
	AssigneeIDs []int64 `json:"assigneeIds,omitempty"`
}

type SubtaskPatch struct {
	Title       *string  `json:"title,omitempty"`
	Completed   *bool    `json:"completed,omitempty"`
	AssigneeIDs *[]int64 `json:"assigneeIds,omitempty"`
}

func (p SubtaskPatch) Apply(s model.Subtask) model.Subtask {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Completed != nil {
		s.Completed = *p.Completed
	}
	if p.AssigneeIDs != nil {
		s.AssigneeIDs = append([]int64(nil), (*p.AssigneeIDs)...)
	}
	return s
}

type ProjectDraft struct {
	Name         string `json:"name"`
	DepartmentID int64  `json:"departmentId,omitempty"`
	Color        string `json:"color,omitempty"`
}

type ProjectPatch struct {
	Name         *string `json:"name,omitempty"`
	DepartmentID *int64  `json:"departmentId,omitempty"`
	Color        *string `json:"color,omitempty"`
}

func (p ProjectPatch) Apply(pr model.Project) model.Project {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.DepartmentID != nil {
		pr.DepartmentID = *p.DepartmentID
	}
	if p.Color != nil {
		pr.Color = *p.Color
	}
	return pr
}

type LabelDraft struct {
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	ProjectID *int64 `json:"projectId,omitempty"`
}

type LabelPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (p LabelPatch) Apply(l model.Label) model.Label {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	return l
}

type DepartmentDraft struct {
	Name string `json:"name"`
}

type DepartmentPatch struct {
	Name *string `json:"name,omitempty"`
}

func (p DepartmentPatch) Apply(d model.Department) model.Department {
	if p.Name != nil {
		d.Name = *p.Name
	}
	return d
}

type Tasks interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	CreateTask(ctx context.Context, draft TaskDraft) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// ChangeTaskStatus and SetTaskProgress use dedicated endpoints: the
	// server computes side effects (completion timestamps, recalculated
	// progress) that a generic patch does not trigger.
	ChangeTaskStatus(ctx context.Context, id int64, status model.Status) (model.Task, error)
	SetTaskProgress(ctx context.Context, id int64, progress int) (model.Task, error)
	AssignTask(ctx context.Context, id, userID int64) (model.Task, error)

	CreateSubtask(ctx context.Context, taskID int64, draft SubtaskDraft) (model.Subtask, error)
	UpdateSubtask(ctx context.Context, subtaskID int64, patch SubtaskPatch) (model.Subtask, error)
	DeleteSubtask(ctx context.Context, subtaskID int64) error
	ReorderSubtasks(ctx context.Context, taskID int64, orderedIDs []int64) error

	CreateComment(ctx context.Context, taskID int64, text string) (model.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

type Projects interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id int64) (model.Project, error)
	CreateProject(ctx context.Context, draft ProjectDraft) (model.Project, error)
	UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (model.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	ToggleFavorite(ctx context.Context, id int64) (model.Project, error)
}

type Users interface {
	ListUsers(ctx context.Context) ([]model.User, error)
}

type Departments interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	CreateDepartment(ctx context.Context, draft DepartmentDraft) (model.Department, error)
	UpdateDepartment(ctx context.Context, id int64, patch DepartmentPatch) (model.Department, error)
	DeleteDepartment(ctx context.Context, id int64) error
}

type Labels interface {
	ListLabels(ctx context.Context, filter LabelFilter) ([]model.Label, error)
	CreateLabel(ctx context.Context, draft LabelDraft) (model.Label, error)
	UpdateLabel(ctx context.Context, id int64, patch LabelPatch) (model.Label, error)
	DeleteLabel(ctx context.Context, id int64) error
}

// Gateway is the full remote surface one session depends on.
type Gateway interface {
	Tasks
	Projects
	Users
	Departments
	Labels
}
