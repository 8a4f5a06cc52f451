// Package realtime receives push notifications about entity changes made by
// other clients. Frames are decoded and validated here, at the channel
// boundary; the merge handler only ever sees well-formed events.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"boardsync-cli/internal/normalize"
)

type EntityKind string

const (
	KindTask       EntityKind = "task"
	KindProject    EntityKind = "project"
	KindDepartment EntityKind = "department"
	KindLabel      EntityKind = "label"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is one decoded change notification. ID is always resolvable;
// Payload is nil for bare-id frames (commonly deletes).
type Event struct {
	Kind    EntityKind
	Action  Action
	ID      int64
	Payload map[string]any
}

// wireFrame is the hub's message envelope. Payload may be a full entity
// object or a bare id.
type wireFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// eventTypes maps the hub's message names onto the closed event union.
// "Workspace" is the server's legacy name for departments.
var eventTypes = map[string]struct {
	kind   EntityKind
	action Action
}{
	"TaskCreated":       {KindTask, ActionCreated},
	"TaskUpdated":       {KindTask, ActionUpdated},
	"TaskDeleted":       {KindTask, ActionDeleted},
	"ProjectCreated":    {KindProject, ActionCreated},
	"ProjectUpdated":    {KindProject, ActionUpdated},
	"ProjectDeleted":    {KindProject, ActionDeleted},
	"LabelCreated":      {KindLabel, ActionCreated},
	"LabelUpdated":      {KindLabel, ActionUpdated},
	"LabelDeleted":      {KindLabel, ActionDeleted},
	"WorkspaceCreated":  {KindDepartment, ActionCreated},
	"WorkspaceUpdated":  {KindDepartment, ActionUpdated},
	"WorkspaceDeleted":  {KindDepartment, ActionDeleted},
	"DepartmentCreated": {KindDepartment, ActionCreated},
	"DepartmentUpdated": {KindDepartment, ActionUpdated},
	"DepartmentDeleted": {KindDepartment, ActionDeleted},
}

// DecodeEvent parses one wire frame. Malformed frames return an error and
// must be dropped by the caller; they never stop the read loop.
func DecodeEvent(frame []byte) (Event, error) {
	var wf wireFrame
	if err := json.Unmarshal(frame, &wf); err != nil {
		return Event{}, fmt.Errorf("realtime: bad frame: %w", err)
	}
	typ, ok := eventTypes[strings.TrimSpace(wf.Type)]
	if !ok {
		return Event{}, fmt.Errorf("realtime: unknown event type %q", wf.Type)
	}

	var payload any
	if len(wf.Payload) > 0 {
		if err := json.Unmarshal(wf.Payload, &payload); err != nil {
			return Event{}, fmt.Errorf("realtime: bad %s payload: %w", wf.Type, err)
		}
	}

	id := normalize.ID(payload)
	if id == 0 {
		return Event{}, fmt.Errorf("realtime: %s payload has no resolvable id", wf.Type)
	}

	ev := Event{Kind: typ.kind, Action: typ.action, ID: id}
	if m, ok := payload.(map[string]any); ok {
		ev.Payload = m
	}
	return ev, nil
}
