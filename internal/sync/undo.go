package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/model"
	"boardsync-cli/internal/store"
)

var (
	ErrUndoExpired = errors.New("undo window expired")
	ErrUndoDone    = errors.New("delete already undone")
)

// DefaultUndoWindow is how long a delete stays undoable.
const DefaultUndoWindow = 5 * time.Second

// UndoManager handles delete-with-undo: the entity leaves the store
// immediately, the remote delete is issued concurrently (not gated on the
// undo window), and for a bounded window the caller may trigger a
// compensating recreate.
//
// Undo is NOT a restoration: the recreate produces a new identity from the
// snapshot's data. If the original delete call fails while an undo also
// lands, both insertions are allowed to stand; they are not deduplicated
// by content.
type UndoManager struct {
	store    *store.Store
	gw       gateway.Gateway
	window   time.Duration
	notifier Notifier
	logger   *log.Logger
}

func NewUndoManager(st *store.Store, gw gateway.Gateway, window time.Duration, notifier Notifier, logger *log.Logger) *UndoManager {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &UndoManager{store: st, gw: gw, window: window, notifier: notifier, logger: logger}
}

// PendingUndo is the affordance handed to the caller after a delete.
type PendingUndo struct {
	Token     string
	ExpiresAt time.Time

	mu       sync.Mutex
	expired  bool
	done     bool
	timer    *time.Timer
	recreate func(ctx context.Context) error
}

// Undo triggers the compensating recreate. It fails with ErrUndoExpired
// after the window and with ErrUndoDone when already undone.
func (p *PendingUndo) Undo(ctx context.Context) error {
	p.mu.Lock()
	if p.expired {
		p.mu.Unlock()
		return ErrUndoExpired
	}
	if p.done {
		p.mu.Unlock()
		return ErrUndoDone
	}
	p.done = true
	if p.timer != nil {
		p.timer.Stop()
	}
	recreate := p.recreate
	p.mu.Unlock()

	return recreate(ctx)
}

// Expired reports whether the window has passed without an undo.
func (p *PendingUndo) Expired() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expired
}

func (u *UndoManager) newPending(recreate func(ctx context.Context) error) *PendingUndo {
	p := &PendingUndo{
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(u.window),
		recreate:  recreate,
	}
	p.timer = time.AfterFunc(u.window, func() {
		p.mu.Lock()
		if !p.done {
			p.expired = true
		}
		p.mu.Unlock()
	})
	return p
}

// DeleteTask removes the task from the store immediately and issues the
// remote delete without waiting for the undo window. A failed remote delete
// reinserts the original snapshot and surfaces an error.
func (u *UndoManager) DeleteTask(ctx context.Context, id int64) (*PendingUndo, error) {
	snapshot, ok := u.store.Tasks.Find(id)
	if !ok {
		u.logf("delete task %d: not in store, skipping", id)
		return nil, NotFoundError{Kind: "task", ID: id}
	}

	u.store.Tasks.Remove(id)

	// The delete call outlives the caller's context on purpose: a mutation
	// started by a now-finished command still resolves into the store.
	go func(ctx context.Context) {
		if err := u.gw.DeleteTask(ctx, id); err != nil {
			u.store.Tasks.UpsertOne(snapshot)
			u.notifyErr("could not delete task on server, restored: %v", err)
		}
	}(context.WithoutCancel(ctx))

	return u.newPending(func(ctx context.Context) error {
		created, err := u.gw.CreateTask(ctx, draftFromTask(snapshot))
		if err != nil {
			u.notifyErr("could not undo task delete: %v", err)
			return err
		}
		u.store.Tasks.UpsertOne(created)
		u.notifyInfo("task restored as #%d", created.ID)
		return nil
	}), nil
}

// DeleteProject mirrors DeleteTask. Tasks of the deleted project are left
// in place; a dangling projectId is a legitimate transient state healed by
// the next refetch.
func (u *UndoManager) DeleteProject(ctx context.Context, id int64) (*PendingUndo, error) {
	snapshot, ok := u.store.Projects.Find(id)
	if !ok {
		u.logf("delete project %d: not in store, skipping", id)
		return nil, NotFoundError{Kind: "project", ID: id}
	}

	u.store.Projects.Remove(id)

	go func(ctx context.Context) {
		if err := u.gw.DeleteProject(ctx, id); err != nil {
			u.store.Projects.UpsertOne(snapshot)
			u.notifyErr("could not delete project on server, restored: %v", err)
		}
	}(context.WithoutCancel(ctx))

	return u.newPending(func(ctx context.Context) error {
		created, err := u.gw.CreateProject(ctx, gateway.ProjectDraft{
			Name:         snapshot.Name,
			DepartmentID: snapshot.DepartmentID,
			Color:        snapshot.Color,
		})
		if err != nil {
			u.notifyErr("could not undo project delete: %v", err)
			return err
		}
		u.store.Projects.UpsertOne(created)
		u.notifyInfo("project restored as #%d", created.ID)
		return nil
	}), nil
}

// draftFromTask turns a snapshot back into creation data. Embedded
// children and computed fields are not carried: the server rebuilds what
// it owns, and subtasks/comments died with the original identity.
func draftFromTask(t model.Task) gateway.TaskDraft {
	return gateway.TaskDraft{
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		AssigneeIDs: append([]int64(nil), t.AssigneeIDs...),
		LabelIDs:    append([]int64(nil), t.LabelIDs...),
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
	}
}

func (u *UndoManager) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}

func (u *UndoManager) notifyErr(format string, args ...any) {
	if u.notifier != nil {
		u.notifier.Error(fmt.Sprintf(format, args...))
	}
}

func (u *UndoManager) notifyInfo(format string, args ...any) {
	if u.notifier != nil {
		u.notifier.Info(fmt.Sprintf(format, args...))
	}
}
