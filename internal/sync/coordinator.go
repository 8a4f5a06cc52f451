// Package sync is the client-side entity synchronization engine: optimistic
// mutations with rollback, delete-with-undo, and merging of realtime events
// into the in-memory store.
package sync

import (
	"context"
	"fmt"
	"log"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/model"
	"boardsync-cli/internal/store"
)

// NotFoundError means a mutation targeted an id absent from the store. This
// is not a user-facing failure: the entity may have just been deleted by a
// concurrent event. Callers get the typed error; the user gets nothing.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// Notifier carries user-facing, non-blocking signals (the web client's
// toasts). Implementations must not block.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Coordinator orchestrates optimistic mutations: apply locally, call the
// gateway, then commit the authoritative response or roll back to the
// snapshot.
//
// Each apply and each reconcile is atomic with respect to store readers,
// but the apply -> await -> reconcile sequence as a whole is not: two
// back-to-back mutations of the same entity are not serialized, and the
// later optimistic apply can be overwritten by the earlier call's
// commit or rollback. That last-write-wins window is accepted; the server
// remains authoritative and a refetch heals.
type Coordinator struct {
	store    *store.Store
	gw       gateway.Gateway
	notifier Notifier
	logger   *log.Logger
}

func NewCoordinator(st *store.Store, gw gateway.Gateway, notifier Notifier, logger *log.Logger) *Coordinator {
	return &Coordinator{store: st, gw: gw, notifier: notifier, logger: logger}
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

func (c *Coordinator) notifyErr(format string, args ...any) {
	if c.notifier != nil {
		c.notifier.Error(fmt.Sprintf(format, args...))
	}
}

func (c *Coordinator) notifyInfo(format string, args ...any) {
	if c.notifier != nil {
		c.notifier.Info(fmt.Sprintf(format, args...))
	}
}

// CreateTask inserts nothing until the server acknowledges: the canonical
// id comes from the response, so there is no provisional entity to clean up
// on failure.
func (c *Coordinator) CreateTask(ctx context.Context, draft gateway.TaskDraft) (model.Task, error) {
	created, err := c.gw.CreateTask(ctx, draft)
	if err != nil {
		c.notifyErr("could not create task: %v", err)
		return model.Task{}, err
	}
	c.store.Tasks.UpsertOne(created)
	return created, nil
}

// UpdateTask applies the patch optimistically, then reconciles with the
// server response (authoritative for computed fields) or restores the
// snapshot verbatim on failure.
func (c *Coordinator) UpdateTask(ctx context.Context, id int64, patch gateway.TaskPatch) (model.Task, error) {
	snapshot, ok := c.store.Tasks.Find(id)
	if !ok {
		c.logf("update task %d: not in store, skipping", id)
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}

	c.store.Tasks.UpsertOne(patch.Apply(snapshot))

	updated, err := c.gw.UpdateTask(ctx, id, patch)
	if err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not update task: %v", err)
		return model.Task{}, err
	}
	c.store.Tasks.UpsertOne(updated)
	return updated, nil
}

// ChangeTaskStatus is UpdateTask specialized to the status field. It uses
// the dedicated endpoint because the server computes side effects (for
// example completion timestamps) that a generic patch does not.
func (c *Coordinator) ChangeTaskStatus(ctx context.Context, id int64, status model.Status) (model.Task, error) {
	snapshot, ok := c.store.Tasks.Find(id)
	if !ok {
		c.logf("change status of task %d: not in store, skipping", id)
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}

	optimistic := snapshot
	optimistic.Status = status
	c.store.Tasks.UpsertOne(optimistic)

	updated, err := c.gw.ChangeTaskStatus(ctx, id, status)
	if err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not change task status: %v", err)
		return model.Task{}, err
	}
	c.store.Tasks.UpsertOne(updated)
	return updated, nil
}

func (c *Coordinator) SetTaskProgress(ctx context.Context, id int64, progress int) (model.Task, error) {
	snapshot, ok := c.store.Tasks.Find(id)
	if !ok {
		c.logf("set progress of task %d: not in store, skipping", id)
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}

	optimistic := snapshot
	optimistic.Progress = progress
	c.store.Tasks.UpsertOne(optimistic)

	updated, err := c.gw.SetTaskProgress(ctx, id, progress)
	if err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not set task progress: %v", err)
		return model.Task{}, err
	}
	c.store.Tasks.UpsertOne(updated)
	return updated, nil
}

func (c *Coordinator) AssignTask(ctx context.Context, id, userID int64) (model.Task, error) {
	snapshot, ok := c.store.Tasks.Find(id)
	if !ok {
		c.logf("assign task %d: not in store, skipping", id)
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}

	optimistic := snapshot
	optimistic.AssigneeIDs = appendID(snapshot.AssigneeIDs, userID)
	c.store.Tasks.UpsertOne(optimistic)

	updated, err := c.gw.AssignTask(ctx, id, userID)
	if err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not assign task: %v", err)
		return model.Task{}, err
	}
	c.store.Tasks.UpsertOne(updated)
	return updated, nil
}

// appendID returns a fresh sorted slice containing id. The input slice is
// never mutated; snapshots alias it.
func appendID(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	inserted := false
	for _, v := range ids {
		if v == id {
			return append([]int64(nil), ids...)
		}
		if !inserted && v > id {
			out = append(out, id)
			inserted = true
		}
		out = append(out, v)
	}
	if !inserted {
		out = append(out, id)
	}
	return out
}
