package sync

import (
	"log"

	"boardsync-cli/internal/normalize"
	"boardsync-cli/internal/realtime"
	"boardsync-cli/internal/store"
)

// MergeHandler folds realtime events into the store. Server state always
// wins: an update overwrites whatever is local, including optimistic state
// from a mutation still in flight.
type MergeHandler struct {
	store  *store.Store
	logger *log.Logger
}

func NewMergeHandler(st *store.Store, logger *log.Logger) *MergeHandler {
	return &MergeHandler{store: st, logger: logger}
}

// Apply merges one event. Malformed payloads are dropped with a warning;
// Apply never panics on channel input.
func (m *MergeHandler) Apply(ev realtime.Event) {
	switch ev.Kind {
	case realtime.KindTask:
		m.applyTask(ev)
	case realtime.KindProject:
		m.applyProject(ev)
	case realtime.KindDepartment:
		m.applyDepartment(ev)
	case realtime.KindLabel:
		m.applyLabel(ev)
	default:
		m.logf("merge: unknown entity kind %q", ev.Kind)
	}
}

func (m *MergeHandler) applyTask(ev realtime.Event) {
	switch ev.Action {
	case realtime.ActionDeleted:
		m.store.Tasks.Remove(ev.ID)
	case realtime.ActionCreated:
		// The mutation path already inserted the acked entity when this
		// client originated the create; re-normalizing the broadcast would
		// only churn subscribers.
		if _, ok := m.store.Tasks.Find(ev.ID); ok {
			return
		}
		fallthrough
	case realtime.ActionUpdated:
		if ev.Payload == nil {
			m.logf("merge: task %s %d without payload, dropping", ev.Action, ev.ID)
			return
		}
		task, ok := normalize.Task(ev.Payload)
		if !ok {
			m.logf("merge: task %s %d payload not normalizable, dropping", ev.Action, ev.ID)
			return
		}
		m.store.Tasks.UpsertOne(task)
	}
}

func (m *MergeHandler) applyProject(ev realtime.Event) {
	switch ev.Action {
	case realtime.ActionDeleted:
		m.store.Projects.Remove(ev.ID)
	case realtime.ActionCreated:
		if _, ok := m.store.Projects.Find(ev.ID); ok {
			return
		}
		fallthrough
	case realtime.ActionUpdated:
		if ev.Payload == nil {
			m.logf("merge: project %s %d without payload, dropping", ev.Action, ev.ID)
			return
		}
		project, ok := normalize.Project(ev.Payload)
		if !ok {
			m.logf("merge: project %s %d payload not normalizable, dropping", ev.Action, ev.ID)
			return
		}
		m.store.Projects.UpsertOne(project)
	}
}

func (m *MergeHandler) applyDepartment(ev realtime.Event) {
	switch ev.Action {
	case realtime.ActionDeleted:
		m.store.Departments.Remove(ev.ID)
	case realtime.ActionCreated:
		if _, ok := m.store.Departments.Find(ev.ID); ok {
			return
		}
		fallthrough
	case realtime.ActionUpdated:
		if ev.Payload == nil {
			m.logf("merge: department %s %d without payload, dropping", ev.Action, ev.ID)
			return
		}
		dept, ok := normalize.Department(ev.Payload)
		if !ok {
			m.logf("merge: department %s %d payload not normalizable, dropping", ev.Action, ev.ID)
			return
		}
		m.store.Departments.UpsertOne(dept)
	}
}

func (m *MergeHandler) applyLabel(ev realtime.Event) {
	switch ev.Action {
	case realtime.ActionDeleted:
		m.store.Labels.Remove(ev.ID)
	case realtime.ActionCreated:
		if _, ok := m.store.Labels.Find(ev.ID); ok {
			return
		}
		fallthrough
	case realtime.ActionUpdated:
		if ev.Payload == nil {
			m.logf("merge: label %s %d without payload, dropping", ev.Action, ev.ID)
			return
		}
		label, ok := normalize.Label(ev.Payload)
		if !ok {
			m.logf("merge: label %s %d payload not normalizable, dropping", ev.Action, ev.ID)
			return
		}
		m.store.Labels.UpsertOne(label)
	}
}

func (m *MergeHandler) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
