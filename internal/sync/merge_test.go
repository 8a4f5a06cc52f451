package sync

import (
	"testing"

	"boardsync-cli/internal/model"
	"boardsync-cli/internal/realtime"
	"boardsync-cli/internal/store"
)

func TestMergeCreatedSkipsKnownEntity(t *testing.T) {
	st := store.New()
	seedTask(st) // id 7, title "Spec"
	m := NewMergeHandler(st, nil)

	m.Apply(realtime.Event{
		Kind:    realtime.KindTask,
		Action:  realtime.ActionCreated,
		ID:      7,
		Payload: map[string]any{"id": float64(7), "title": "broadcast echo"},
	})

	task, _ := st.Tasks.Find(7)
	if task.Title != "Spec" {
		t.Fatalf("created echo overwrote local entity: %q", task.Title)
	}
	if st.Tasks.Len() != 1 {
		t.Fatalf("store has %d tasks, want 1", st.Tasks.Len())
	}
}

func TestMergeCreatedInsertsUnknownEntity(t *testing.T) {
	st := store.New()
	m := NewMergeHandler(st, nil)

	m.Apply(realtime.Event{
		Kind:   realtime.KindTask,
		Action: realtime.ActionCreated,
		ID:     9,
		Payload: map[string]any{
			"Id": float64(9), "Title": "from elsewhere", "projectId": float64(3), "status": "working",
		},
	})

	task, ok := st.Tasks.Find(9)
	if !ok {
		t.Fatal("broadcast create not inserted")
	}
	if task.Title != "from elsewhere" || task.Status != model.StatusWorking {
		t.Fatalf("payload not normalized: %+v", task)
	}
}

func TestMergeUpdatedOverwritesInFlightState(t *testing.T) {
	st := store.New()
	seedTask(st)
	m := NewMergeHandler(st, nil)

	m.Apply(realtime.Event{
		Kind:    realtime.KindTask,
		Action:  realtime.ActionUpdated,
		ID:      7,
		Payload: map[string]any{"id": float64(7), "title": "server truth", "projectId": float64(3), "status": "done"},
	})

	task, _ := st.Tasks.Find(7)
	if task.Title != "server truth" || task.Status != model.StatusDone {
		t.Fatalf("update not applied: %+v", task)
	}
}

func TestMergeDeletedAbsentIsNoop(t *testing.T) {
	st := store.New()
	signals := 0
	st.Subscribe(func() { signals++ })
	m := NewMergeHandler(st, nil)

	m.Apply(realtime.Event{Kind: realtime.KindTask, Action: realtime.ActionDeleted, ID: 404})

	if signals != 0 {
		t.Fatalf("delete of absent entity signaled %d times", signals)
	}
}

func TestMergeDeletedRemoves(t *testing.T) {
	st := store.New()
	seedTask(st)
	m := NewMergeHandler(st, nil)

	m.Apply(realtime.Event{Kind: realtime.KindTask, Action: realtime.ActionDeleted, ID: 7})

	if _, ok := st.Tasks.Find(7); ok {
		t.Fatal("deleted task still present")
	}
}

func TestMergeDropsPayloadlessUpdate(t *testing.T) {
	st := store.New()
	seedTask(st)
	m := NewMergeHandler(st, nil)

	m.Apply(realtime.Event{Kind: realtime.KindTask, Action: realtime.ActionUpdated, ID: 7})

	task, _ := st.Tasks.Find(7)
	if task.Title != "Spec" {
		t.Fatalf("payload-less update mutated entity: %+v", task)
	}
}

func TestMergeOtherKinds(t *testing.T) {
	st := store.New()
	m := NewMergeHandler(st, nil)

	m.Apply(realtime.Event{
		Kind: realtime.KindProject, Action: realtime.ActionCreated, ID: 4,
		Payload: map[string]any{"id": float64(4), "name": "Board"},
	})
	m.Apply(realtime.Event{
		Kind: realtime.KindDepartment, Action: realtime.ActionUpdated, ID: 2,
		Payload: map[string]any{"ID": float64(2), "Name": "Engineering"},
	})
	m.Apply(realtime.Event{
		Kind: realtime.KindLabel, Action: realtime.ActionCreated, ID: 6,
		Payload: map[string]any{"id": float64(6), "name": "bug", "color": "#ff0000"},
	})
	m.Apply(realtime.Event{Kind: realtime.KindLabel, Action: realtime.ActionDeleted, ID: 6})

	if _, ok := st.Projects.Find(4); !ok {
		t.Fatal("project create not merged")
	}
	dept, ok := st.Departments.Find(2)
	if !ok || dept.Name != "Engineering" {
		t.Fatalf("department update not merged: %+v", dept)
	}
	if _, ok := st.Labels.Find(6); ok {
		t.Fatal("label delete not merged")
	}
}
