package sync

import (
	"context"
	"errors"
	stdsync "sync"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/model"
	"boardsync-cli/internal/realtime"
)

var errFakeUnset = errors.New("fake: behavior not configured")

// fakeGateway implements gateway.Gateway for tests. Each method delegates
// to a function field when set; list methods serve fixture slices, create
// methods assign ids from a counter so ack-first flows get server ids.
type fakeGateway struct {
	mu     stdsync.Mutex
	nextID int64

	projects    []model.Project
	users       []model.User
	departments []model.Department
	labels      []model.Label
	tasks       []model.Task

	listTasksErr    error
	listProjectsErr error

	createTaskFn   func(gateway.TaskDraft) (model.Task, error)
	updateTaskFn   func(int64, gateway.TaskPatch) (model.Task, error)
	deleteTaskFn   func(int64) error
	changeStatusFn func(int64, model.Status) (model.Task, error)
	setProgressFn  func(int64, int) (model.Task, error)
	assignFn       func(int64, int64) (model.Task, error)

	createSubtaskFn func(int64, gateway.SubtaskDraft) (model.Subtask, error)
	updateSubtaskFn func(int64, gateway.SubtaskPatch) (model.Subtask, error)
	deleteSubtaskFn func(int64) error
	reorderFn       func(int64, []int64) error

	createCommentFn func(int64, string) (model.Comment, error)
	deleteCommentFn func(int64) error

	createProjectFn  func(gateway.ProjectDraft) (model.Project, error)
	updateProjectFn  func(int64, gateway.ProjectPatch) (model.Project, error)
	deleteProjectFn  func(int64) error
	toggleFavoriteFn func(int64) (model.Project, error)

	createLabelFn func(gateway.LabelDraft) (model.Label, error)
	updateLabelFn func(int64, gateway.LabelPatch) (model.Label, error)
	deleteLabelFn func(int64) error

	createDepartmentFn func(gateway.DepartmentDraft) (model.Department, error)
	updateDepartmentFn func(int64, gateway.DepartmentPatch) (model.Department, error)
	deleteDepartmentFn func(int64) error
}

func (f *fakeGateway) id() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID + 100
}

func (f *fakeGateway) ListTasks(ctx context.Context, filter gateway.TaskFilter) ([]model.Task, error) {
	if f.listTasksErr != nil {
		return nil, f.listTasksErr
	}
	var out []model.Task
	for _, t := range f.tasks {
		if filter.ProjectID == 0 || t.ProjectID == filter.ProjectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeGateway) GetTask(ctx context.Context, id int64) (model.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, errFakeUnset
}

func (f *fakeGateway) CreateTask(ctx context.Context, draft gateway.TaskDraft) (model.Task, error) {
	if f.createTaskFn != nil {
		return f.createTaskFn(draft)
	}
	return model.Task{
		ID:          f.id(),
		ProjectID:   draft.ProjectID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		AssigneeIDs: draft.AssigneeIDs,
		LabelIDs:    draft.LabelIDs,
	}, nil
}

func (f *fakeGateway) UpdateTask(ctx context.Context, id int64, patch gateway.TaskPatch) (model.Task, error) {
	if f.updateTaskFn != nil {
		return f.updateTaskFn(id, patch)
	}
	return patch.Apply(model.Task{ID: id}), nil
}

func (f *fakeGateway) DeleteTask(ctx context.Context, id int64) error {
	if f.deleteTaskFn != nil {
		return f.deleteTaskFn(id)
	}
	return nil
}

func (f *fakeGateway) ChangeTaskStatus(ctx context.Context, id int64, status model.Status) (model.Task, error) {
	if f.changeStatusFn != nil {
		return f.changeStatusFn(id, status)
	}
	return model.Task{ID: id, Status: status}, nil
}

func (f *fakeGateway) SetTaskProgress(ctx context.Context, id int64, progress int) (model.Task, error) {
	if f.setProgressFn != nil {
		return f.setProgressFn(id, progress)
	}
	return model.Task{ID: id, Progress: progress}, nil
}

func (f *fakeGateway) AssignTask(ctx context.Context, id, userID int64) (model.Task, error) {
	if f.assignFn != nil {
		return f.assignFn(id, userID)
	}
	return model.Task{ID: id, AssigneeIDs: []int64{userID}}, nil
}

func (f *fakeGateway) CreateSubtask(ctx context.Context, taskID int64, draft gateway.SubtaskDraft) (model.Subtask, error) {
	if f.createSubtaskFn != nil {
		return f.createSubtaskFn(taskID, draft)
	}
	return model.Subtask{ID: f.id(), Title: draft.Title}, nil
}

func (f *fakeGateway) UpdateSubtask(ctx context.Context, subtaskID int64, patch gateway.SubtaskPatch) (model.Subtask, error) {
	if f.updateSubtaskFn != nil {
		return f.updateSubtaskFn(subtaskID, patch)
	}
	return patch.Apply(model.Subtask{ID: subtaskID}), nil
}

func (f *fakeGateway) DeleteSubtask(ctx context.Context, subtaskID int64) error {
	if f.deleteSubtaskFn != nil {
		return f.deleteSubtaskFn(subtaskID)
	}
	return nil
}

func (f *fakeGateway) ReorderSubtasks(ctx context.Context, taskID int64, orderedIDs []int64) error {
	if f.reorderFn != nil {
		return f.reorderFn(taskID, orderedIDs)
	}
	return nil
}

func (f *fakeGateway) CreateComment(ctx context.Context, taskID int64, text string) (model.Comment, error) {
	if f.createCommentFn != nil {
		return f.createCommentFn(taskID, text)
	}
	return model.Comment{ID: f.id(), Text: text}, nil
}

func (f *fakeGateway) DeleteComment(ctx context.Context, commentID int64) error {
	if f.deleteCommentFn != nil {
		return f.deleteCommentFn(commentID)
	}
	return nil
}

func (f *fakeGateway) ListProjects(ctx context.Context) ([]model.Project, error) {
	if f.listProjectsErr != nil {
		return nil, f.listProjectsErr
	}
	return f.projects, nil
}

func (f *fakeGateway) GetProject(ctx context.Context, id int64) (model.Project, error) {
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, errFakeUnset
}

func (f *fakeGateway) CreateProject(ctx context.Context, draft gateway.ProjectDraft) (model.Project, error) {
	if f.createProjectFn != nil {
		return f.createProjectFn(draft)
	}
	return model.Project{ID: f.id(), Name: draft.Name, DepartmentID: draft.DepartmentID, Color: draft.Color}, nil
}

func (f *fakeGateway) UpdateProject(ctx context.Context, id int64, patch gateway.ProjectPatch) (model.Project, error) {
	if f.updateProjectFn != nil {
		return f.updateProjectFn(id, patch)
	}
	return patch.Apply(model.Project{ID: id}), nil
}

func (f *fakeGateway) DeleteProject(ctx context.Context, id int64) error {
	if f.deleteProjectFn != nil {
		return f.deleteProjectFn(id)
	}
	return nil
}

func (f *fakeGateway) ToggleFavorite(ctx context.Context, id int64) (model.Project, error) {
	if f.toggleFavoriteFn != nil {
		return f.toggleFavoriteFn(id)
	}
	return model.Project{}, errFakeUnset
}

func (f *fakeGateway) ListUsers(ctx context.Context) ([]model.User, error) {
	return f.users, nil
}

func (f *fakeGateway) ListDepartments(ctx context.Context) ([]model.Department, error) {
	return f.departments, nil
}

func (f *fakeGateway) CreateDepartment(ctx context.Context, draft gateway.DepartmentDraft) (model.Department, error) {
	if f.createDepartmentFn != nil {
		return f.createDepartmentFn(draft)
	}
	return model.Department{ID: f.id(), Name: draft.Name}, nil
}

func (f *fakeGateway) UpdateDepartment(ctx context.Context, id int64, patch gateway.DepartmentPatch) (model.Department, error) {
	if f.updateDepartmentFn != nil {
		return f.updateDepartmentFn(id, patch)
	}
	return patch.Apply(model.Department{ID: id}), nil
}

func (f *fakeGateway) DeleteDepartment(ctx context.Context, id int64) error {
	if f.deleteDepartmentFn != nil {
		return f.deleteDepartmentFn(id)
	}
	return nil
}

func (f *fakeGateway) ListLabels(ctx context.Context, filter gateway.LabelFilter) ([]model.Label, error) {
	return f.labels, nil
}

func (f *fakeGateway) CreateLabel(ctx context.Context, draft gateway.LabelDraft) (model.Label, error) {
	if f.createLabelFn != nil {
		return f.createLabelFn(draft)
	}
	return model.Label{ID: f.id(), Name: draft.Name, Color: draft.Color, ProjectID: draft.ProjectID}, nil
}

func (f *fakeGateway) UpdateLabel(ctx context.Context, id int64, patch gateway.LabelPatch) (model.Label, error) {
	if f.updateLabelFn != nil {
		return f.updateLabelFn(id, patch)
	}
	return patch.Apply(model.Label{ID: id}), nil
}

func (f *fakeGateway) DeleteLabel(ctx context.Context, id int64) error {
	if f.deleteLabelFn != nil {
		return f.deleteLabelFn(id)
	}
	return nil
}

var _ gateway.Gateway = (*fakeGateway)(nil)

// fakeChannel feeds events from a test-owned channel and records group
// membership calls.
type fakeChannel struct {
	mu     stdsync.Mutex
	events chan realtime.Event
	joined []int64
	closed bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan realtime.Event, 16)}
}

func (f *fakeChannel) Events() <-chan realtime.Event { return f.events }

func (f *fakeChannel) JoinProject(ctx context.Context, projectID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, projectID)
	return nil
}

func (f *fakeChannel) LeaveProject(ctx context.Context, projectID int64) error {
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

var _ realtime.Channel = (*fakeChannel)(nil)

// chanNotifier surfaces notifications as channel sends so tests can wait
// for asynchronous failure handling.
type chanNotifier struct {
	infos  chan string
	errors chan string
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{infos: make(chan string, 8), errors: make(chan string, 8)}
}

func (n *chanNotifier) Info(msg string)  { n.infos <- msg }
func (n *chanNotifier) Error(msg string) { n.errors <- msg }
