// Package normalize canonicalizes raw wire payloads into model entities.
//
// The backend's serializers are not consistent about key casing (id vs Id)
// and relation shape (bare ids, junction rows, or nested navigation
// objects). Everything crossing into the store goes through this package so
// the rest of the client only ever sees one canonical shape.
//
// All functions are pure and total: bad input yields ok=false or a zero
// field, never a panic. Normalizing an already-normalized payload is a
// no-op.
package normalize

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"boardsync-cli/internal/model"
)

// idKeys is the fixed precedence for the canonical entity id. Foreign-key
// variants (projectId etc.) are deliberately excluded here: falling back to
// them caused id collisions in earlier clients.
var idKeys = []string{"id", "Id", "ID"}

// ID extracts a canonical id from a bare value or an entity-shaped map.
// Returns 0 when no usable id is present.
func ID(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case map[string]any:
		return numField(x, idKeys...)
	default:
		return toInt64(v)
	}
}

// Task normalizes a raw task payload. ok is false when the payload carries
// no resolvable id; such items must be skipped, not stored.
func Task(raw map[string]any) (model.Task, bool) {
	id := numField(raw, idKeys...)
	if id == 0 {
		return model.Task{}, false
	}

	t := model.Task{
		ID:          id,
		ProjectID:   numField(raw, "projectId", "ProjectId", "projectID"),
		Title:       strField(raw, "title", "Title"),
		Description: strField(raw, "description", "Description"),
		Status:      model.ParseStatus(strField(raw, "status", "Status")),
		Priority:    model.ParsePriority(strField(raw, "priority", "Priority")),
		AssigneeIDs: refIDs(anyField(raw, "assignees", "Assignees", "assigneeIds", "AssigneeIds"), "user", "User", []string{"userId", "UserId", "id", "Id"}),
		LabelIDs:    refIDs(anyField(raw, "labels", "Labels", "labelIds", "LabelIds", "tagIds", "TagIds"), "label", "Label", []string{"labelId", "LabelId", "id", "Id"}),
		Subtasks:    subtasks(anyField(raw, "subtasks", "Subtasks")),
		Comments:    comments(anyField(raw, "comments", "Comments")),
		Attachments: attachments(anyField(raw, "attachments", "Attachments")),
		Progress:    clampProgress(numField(raw, "progress", "Progress")),
		StartDate:   timeField(raw, "startDate", "StartDate"),
		DueDate:     timeField(raw, "dueDate", "DueDate"),
	}
	if ts := timeField(raw, "createdAt", "CreatedAt"); ts != nil {
		t.CreatedAt = *ts
	}
	if ts := timeField(raw, "updatedAt", "UpdatedAt"); ts != nil {
		t.UpdatedAt = *ts
	}
	return t, true
}

func Project(raw map[string]any) (model.Project, bool) {
	id := numField(raw, idKeys...)
	if id == 0 {
		return model.Project{}, false
	}
	return model.Project{
		ID:           id,
		Name:         strField(raw, "name", "Name"),
		DepartmentID: numField(raw, "departmentId", "DepartmentId"),
		Color:        strField(raw, "color", "Color"),
		Favorite:     boolField(raw, "favorite", "Favorite", "isFavorite", "IsFavorite"),
		MemberIDs:    refIDs(anyField(raw, "members", "Members", "memberIds", "MemberIds"), "user", "User", []string{"userId", "UserId", "id", "Id"}),
	}, true
}

func User(raw map[string]any) (model.User, bool) {
	id := numField(raw, idKeys...)
	if id == 0 {
		return model.User{}, false
	}
	return model.User{
		ID:       id,
		Username: strField(raw, "username", "Username"),
		FullName: strField(raw, "fullName", "FullName"),
		Avatar:   strField(raw, "avatar", "Avatar"),
		Color:    strField(raw, "color", "Color"),
	}, true
}

func Department(raw map[string]any) (model.Department, bool) {
	id := numField(raw, idKeys...)
	if id == 0 {
		return model.Department{}, false
	}
	return model.Department{
		ID:   id,
		Name: strField(raw, "name", "Name"),
	}, true
}

func Label(raw map[string]any) (model.Label, bool) {
	id := numField(raw, idKeys...)
	if id == 0 {
		return model.Label{}, false
	}
	l := model.Label{
		ID:    id,
		Name:  strField(raw, "name", "Name"),
		Color: strField(raw, "color", "Color"),
	}
	// projectId nil or 0 => global label.
	if pid := numField(raw, "projectId", "ProjectId"); pid != 0 {
		l.ProjectID = &pid
	}
	return l, true
}

// Subtask normalizes a standalone subtask payload, as returned by the
// subtask-specific endpoints.
func Subtask(raw map[string]any) (model.Subtask, bool) {
	id := numField(raw, idKeys...)
	if id == 0 {
		return model.Subtask{}, false
	}
	return model.Subtask{
		ID:          id,
		Title:       strField(raw, "title", "Title"),
		Completed:   boolField(raw, "completed", "Completed", "isCompleted", "IsCompleted"),
		AssigneeIDs: refIDs(anyField(raw, "assignees", "Assignees", "assigneeIds", "AssigneeIds"), "user", "User", []string{"userId", "UserId", "id", "Id"}),
	}, true
}

// Comment normalizes a standalone comment payload.
func Comment(raw map[string]any) (model.Comment, bool) {
	id := numField(raw, idKeys...)
	if id == 0 {
		return model.Comment{}, false
	}
	c := model.Comment{
		ID:       id,
		Text:     strField(raw, "text", "Text", "content", "Content"),
		AuthorID: numField(raw, "authorId", "AuthorId", "userId", "UserId"),
	}
	if ts := timeField(raw, "createdAt", "CreatedAt"); ts != nil {
		c.CreatedAt = *ts
	}
	return c, true
}

func subtasks(v any) []model.Subtask {
	items, _ := v.([]any)
	out := make([]model.Subtask, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := Subtask(m); ok {
			out = append(out, s)
		}
	}
	return out
}

func comments(v any) []model.Comment {
	items, _ := v.([]any)
	out := make([]model.Comment, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if c, ok := Comment(m); ok {
			out = append(out, c)
		}
	}
	return out
}

func attachments(v any) []model.Attachment {
	items, _ := v.([]any)
	out := make([]model.Attachment, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id := numField(m, idKeys...)
		if id == 0 {
			continue
		}
		out = append(out, model.Attachment{
			ID:   id,
			Name: strField(m, "name", "Name", "fileName", "FileName"),
			URL:  strField(m, "url", "Url", "URL"),
			Size: numField(m, "size", "Size"),
			Type: strField(m, "type", "Type", "contentType", "ContentType"),
		})
	}
	return out
}

// refIDs flattens a relation list into a sorted, deduped id set. Elements
// may be bare ids, junction rows ({userId: 1, ...}), or junction rows
// carrying a nested navigation object ({user: {id: 1, ...}}).
func refIDs(v any, navKey, navKeyUpper string, keys []string) []int64 {
	items, _ := v.([]any)
	seen := map[int64]bool{}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		var id int64
		switch x := it.(type) {
		case map[string]any:
			if nav, ok := x[navKey].(map[string]any); ok {
				id = numField(nav, idKeys...)
			} else if nav, ok := x[navKeyUpper].(map[string]any); ok {
				id = numField(nav, idKeys...)
			} else {
				id = numField(x, keys...)
			}
		default:
			id = toInt64(it)
		}
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func anyField(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func strField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func boolField(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if b, ok := m[k].(bool); ok {
			return b
		}
	}
	return false
}

func numField(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if n := toInt64(v); n != 0 {
				return n
			}
		}
	}
	return 0
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int64(x)
	case float32:
		return int64(x)
	case int:
		return int64(x)
	case int64:
		return x
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0
		}
		return n
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func clampProgress(n int64) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return int(n)
}

// timeField accepts RFC3339 timestamps (with or without sub-second
// precision) and bare YYYY-MM-DD dates.
func timeField(m map[string]any, keys ...string) *time.Time {
	s := strField(m, keys...)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}
