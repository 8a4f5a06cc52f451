package sync

import (
	"context"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/model"
)

// Subtask and comment mutations touch only the embedded list of the owning
// task; the task's identity and other fields are never replaced by them.
// Every modified list is a fresh slice: snapshots alias the old backing
// arrays and must stay intact for rollback.

// findTaskBySubtask scans the store for the task owning a subtask id.
func (c *Coordinator) findTaskBySubtask(subtaskID int64) (model.Task, int, bool) {
	for _, t := range c.store.Tasks.All() {
		for i, s := range t.Subtasks {
			if s.ID == subtaskID {
				return t, i, true
			}
		}
	}
	return model.Task{}, 0, false
}

// CreateSubtask is acknowledgment-first, like task creation: the embedded
// list grows only once the server has assigned the subtask id.
func (c *Coordinator) CreateSubtask(ctx context.Context, taskID int64, draft gateway.SubtaskDraft) (model.Subtask, error) {
	if _, ok := c.store.Tasks.Find(taskID); !ok {
		c.logf("create subtask on task %d: not in store, skipping", taskID)
		return model.Subtask{}, NotFoundError{Kind: "task", ID: taskID}
	}

	created, err := c.gw.CreateSubtask(ctx, taskID, draft)
	if err != nil {
		c.notifyErr("could not create subtask: %v", err)
		return model.Subtask{}, err
	}

	// Re-read: the task may have changed while the call was in flight.
	task, ok := c.store.Tasks.Find(taskID)
	if !ok {
		return created, nil
	}
	for _, s := range task.Subtasks {
		if s.ID == created.ID {
			return created, nil
		}
	}
	task.Subtasks = append(append([]model.Subtask(nil), task.Subtasks...), created)
	c.store.Tasks.UpsertOne(task)
	return created, nil
}

func (c *Coordinator) UpdateSubtask(ctx context.Context, subtaskID int64, patch gateway.SubtaskPatch) (model.Subtask, error) {
	snapshot, idx, ok := c.findTaskBySubtask(subtaskID)
	if !ok {
		c.logf("update subtask %d: owning task not in store, skipping", subtaskID)
		return model.Subtask{}, NotFoundError{Kind: "subtask", ID: subtaskID}
	}

	optimistic := snapshot
	optimistic.Subtasks = append([]model.Subtask(nil), snapshot.Subtasks...)
	optimistic.Subtasks[idx] = patch.Apply(optimistic.Subtasks[idx])
	c.store.Tasks.UpsertOne(optimistic)

	updated, err := c.gw.UpdateSubtask(ctx, subtaskID, patch)
	if err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not update subtask: %v", err)
		return model.Subtask{}, err
	}

	confirmed := optimistic
	confirmed.Subtasks = append([]model.Subtask(nil), optimistic.Subtasks...)
	confirmed.Subtasks[idx] = updated
	c.store.Tasks.UpsertOne(confirmed)
	return updated, nil
}

func (c *Coordinator) DeleteSubtask(ctx context.Context, subtaskID int64) error {
	snapshot, idx, ok := c.findTaskBySubtask(subtaskID)
	if !ok {
		c.logf("delete subtask %d: owning task not in store, skipping", subtaskID)
		return NotFoundError{Kind: "subtask", ID: subtaskID}
	}

	optimistic := snapshot
	optimistic.Subtasks = append([]model.Subtask(nil), snapshot.Subtasks[:idx]...)
	optimistic.Subtasks = append(optimistic.Subtasks, snapshot.Subtasks[idx+1:]...)
	c.store.Tasks.UpsertOne(optimistic)

	if err := c.gw.DeleteSubtask(ctx, subtaskID); err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not delete subtask: %v", err)
		return err
	}
	return nil
}

// ReorderSubtasks applies the new embedded order optimistically. Unknown
// ids in orderedIDs are ignored; subtasks missing from orderedIDs keep
// their relative order at the end.
func (c *Coordinator) ReorderSubtasks(ctx context.Context, taskID int64, orderedIDs []int64) error {
	snapshot, ok := c.store.Tasks.Find(taskID)
	if !ok {
		c.logf("reorder subtasks of task %d: not in store, skipping", taskID)
		return NotFoundError{Kind: "task", ID: taskID}
	}

	byID := make(map[int64]model.Subtask, len(snapshot.Subtasks))
	for _, s := range snapshot.Subtasks {
		byID[s.ID] = s
	}
	reordered := make([]model.Subtask, 0, len(snapshot.Subtasks))
	taken := make(map[int64]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if s, ok := byID[id]; ok && !taken[id] {
			reordered = append(reordered, s)
			taken[id] = true
		}
	}
	for _, s := range snapshot.Subtasks {
		if !taken[s.ID] {
			reordered = append(reordered, s)
		}
	}

	optimistic := snapshot
	optimistic.Subtasks = reordered
	c.store.Tasks.UpsertOne(optimistic)

	if err := c.gw.ReorderSubtasks(ctx, taskID, orderedIDs); err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not reorder subtasks: %v", err)
		return err
	}
	return nil
}

// AddComment is acknowledgment-first; comments carry server-assigned ids
// and timestamps.
func (c *Coordinator) AddComment(ctx context.Context, taskID int64, text string) (model.Comment, error) {
	if _, ok := c.store.Tasks.Find(taskID); !ok {
		c.logf("comment on task %d: not in store, skipping", taskID)
		return model.Comment{}, NotFoundError{Kind: "task", ID: taskID}
	}

	created, err := c.gw.CreateComment(ctx, taskID, text)
	if err != nil {
		c.notifyErr("could not add comment: %v", err)
		return model.Comment{}, err
	}

	task, ok := c.store.Tasks.Find(taskID)
	if !ok {
		return created, nil
	}
	for _, cm := range task.Comments {
		if cm.ID == created.ID {
			return created, nil
		}
	}
	task.Comments = append(append([]model.Comment(nil), task.Comments...), created)
	c.store.Tasks.UpsertOne(task)
	return created, nil
}

func (c *Coordinator) DeleteComment(ctx context.Context, commentID int64) error {
	snapshot, idx, ok := c.findTaskByComment(commentID)
	if !ok {
		c.logf("delete comment %d: owning task not in store, skipping", commentID)
		return NotFoundError{Kind: "comment", ID: commentID}
	}

	optimistic := snapshot
	optimistic.Comments = append([]model.Comment(nil), snapshot.Comments[:idx]...)
	optimistic.Comments = append(optimistic.Comments, snapshot.Comments[idx+1:]...)
	c.store.Tasks.UpsertOne(optimistic)

	if err := c.gw.DeleteComment(ctx, commentID); err != nil {
		c.store.Tasks.UpsertOne(snapshot)
		c.notifyErr("could not delete comment: %v", err)
		return err
	}
	return nil
}

func (c *Coordinator) findTaskByComment(commentID int64) (model.Task, int, bool) {
	for _, t := range c.store.Tasks.All() {
		for i, cm := range t.Comments {
			if cm.ID == commentID {
				return t, i, true
			}
		}
	}
	return model.Task{}, 0, false
}
