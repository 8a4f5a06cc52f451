package sync

import (
	"context"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/model"
)

// Project, label and department mutations follow the same shape as tasks:
// acknowledgment-first creates, optimistic updates with snapshot rollback.

func (c *Coordinator) CreateProject(ctx context.Context, draft gateway.ProjectDraft) (model.Project, error) {
	created, err := c.gw.CreateProject(ctx, draft)
	if err != nil {
		c.notifyErr("could not create project: %v", err)
		return model.Project{}, err
	}
	c.store.Projects.UpsertOne(created)
	return created, nil
}

func (c *Coordinator) UpdateProject(ctx context.Context, id int64, patch gateway.ProjectPatch) (model.Project, error) {
	snapshot, ok := c.store.Projects.Find(id)
	if !ok {
		c.logf("update project %d: not in store, skipping", id)
		return model.Project{}, NotFoundError{Kind: "project", ID: id}
	}

	c.store.Projects.UpsertOne(patch.Apply(snapshot))

	updated, err := c.gw.UpdateProject(ctx, id, patch)
	if err != nil {
		c.store.Projects.UpsertOne(snapshot)
		c.notifyErr("could not update project: %v", err)
		return model.Project{}, err
	}
	c.store.Projects.UpsertOne(updated)
	return updated, nil
}

// ToggleProjectFavorite flips the flag optimistically; the server response
// settles the final value (another client may have toggled concurrently).
func (c *Coordinator) ToggleProjectFavorite(ctx context.Context, id int64) (model.Project, error) {
	snapshot, ok := c.store.Projects.Find(id)
	if !ok {
		c.logf("toggle favorite of project %d: not in store, skipping", id)
		return model.Project{}, NotFoundError{Kind: "project", ID: id}
	}

	optimistic := snapshot
	optimistic.Favorite = !snapshot.Favorite
	c.store.Projects.UpsertOne(optimistic)

	updated, err := c.gw.ToggleFavorite(ctx, id)
	if err != nil {
		c.store.Projects.UpsertOne(snapshot)
		c.notifyErr("could not toggle favorite: %v", err)
		return model.Project{}, err
	}
	c.store.Projects.UpsertOne(updated)
	return updated, nil
}

func (c *Coordinator) CreateLabel(ctx context.Context, draft gateway.LabelDraft) (model.Label, error) {
	created, err := c.gw.CreateLabel(ctx, draft)
	if err != nil {
		c.notifyErr("could not create label: %v", err)
		return model.Label{}, err
	}
	c.store.Labels.UpsertOne(created)
	return created, nil
}

func (c *Coordinator) UpdateLabel(ctx context.Context, id int64, patch gateway.LabelPatch) (model.Label, error) {
	snapshot, ok := c.store.Labels.Find(id)
	if !ok {
		c.logf("update label %d: not in store, skipping", id)
		return model.Label{}, NotFoundError{Kind: "label", ID: id}
	}

	c.store.Labels.UpsertOne(patch.Apply(snapshot))

	updated, err := c.gw.UpdateLabel(ctx, id, patch)
	if err != nil {
		c.store.Labels.UpsertOne(snapshot)
		c.notifyErr("could not update label: %v", err)
		return model.Label{}, err
	}
	c.store.Labels.UpsertOne(updated)
	return updated, nil
}

// DeleteLabel is optimistic without an undo window: labels are cheap to
// recreate, so a failed delete just reinserts the snapshot.
func (c *Coordinator) DeleteLabel(ctx context.Context, id int64) error {
	snapshot, ok := c.store.Labels.Find(id)
	if !ok {
		c.logf("delete label %d: not in store, skipping", id)
		return NotFoundError{Kind: "label", ID: id}
	}

	c.store.Labels.Remove(id)

	if err := c.gw.DeleteLabel(ctx, id); err != nil {
		c.store.Labels.UpsertOne(snapshot)
		c.notifyErr("could not delete label: %v", err)
		return err
	}
	return nil
}

func (c *Coordinator) CreateDepartment(ctx context.Context, draft gateway.DepartmentDraft) (model.Department, error) {
	created, err := c.gw.CreateDepartment(ctx, draft)
	if err != nil {
		c.notifyErr("could not create department: %v", err)
		return model.Department{}, err
	}
	c.store.Departments.UpsertOne(created)
	return created, nil
}

func (c *Coordinator) UpdateDepartment(ctx context.Context, id int64, patch gateway.DepartmentPatch) (model.Department, error) {
	snapshot, ok := c.store.Departments.Find(id)
	if !ok {
		c.logf("update department %d: not in store, skipping", id)
		return model.Department{}, NotFoundError{Kind: "department", ID: id}
	}

	c.store.Departments.UpsertOne(patch.Apply(snapshot))

	updated, err := c.gw.UpdateDepartment(ctx, id, patch)
	if err != nil {
		c.store.Departments.UpsertOne(snapshot)
		c.notifyErr("could not update department: %v", err)
		return model.Department{}, err
	}
	c.store.Departments.UpsertOne(updated)
	return updated, nil
}

func (c *Coordinator) DeleteDepartment(ctx context.Context, id int64) error {
	snapshot, ok := c.store.Departments.Find(id)
	if !ok {
		c.logf("delete department %d: not in store, skipping", id)
		return NotFoundError{Kind: "department", ID: id}
	}

	c.store.Departments.Remove(id)

	if err := c.gw.DeleteDepartment(ctx, id); err != nil {
		c.store.Departments.UpsertOne(snapshot)
		c.notifyErr("could not delete department: %v", err)
		return err
	}
	return nil
}
