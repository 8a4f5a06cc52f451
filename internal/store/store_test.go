package store

import (
	"reflect"
	"testing"

	"boardsync-cli/internal/model"
)

func taskIDs(c *Collection[model.Task]) []int64 {
	all := c.All()
	ids := make([]int64, 0, len(all))
	for _, t := range all {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestCollection_UpsertDedupsByID(t *testing.T) {
	c := NewCollection[model.Task]()

	c.UpsertOne(model.Task{ID: 1, Title: "first"})
	c.UpsertOne(model.Task{ID: 2, Title: "second"})
	c.UpsertOne(model.Task{ID: 1, Title: "first, edited"})
	c.UpsertOne(model.Task{ID: 1, Title: "first, edited again"})

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if got, want := taskIDs(c), []int64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v (update must not reorder)", got, want)
	}
	e, ok := c.Find(1)
	if !ok || e.Title != "first, edited again" {
		t.Fatalf("Find(1) = %+v, want most recent upsert", e)
	}
}

func TestCollection_UpsertManyPreservesFirstSeenOrder(t *testing.T) {
	c := NewCollection[model.Task]()
	c.UpsertMany([]model.Task{{ID: 3}, {ID: 1}, {ID: 2}})
	c.UpsertMany([]model.Task{{ID: 1, Title: "u"}, {ID: 4}})

	if got, want := taskIDs(c), []int64{3, 1, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestCollection_UpsertDropsZeroID(t *testing.T) {
	c := NewCollection[model.Task]()
	c.UpsertOne(model.Task{Title: "no id"})
	c.UpsertMany([]model.Task{{ID: 0}, {ID: 5}})
	if got, want := taskIDs(c), []int64{5}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
}

func TestCollection_RemoveAbsentIsNoop(t *testing.T) {
	c := NewCollection[model.Task]()
	c.UpsertOne(model.Task{ID: 1})
	if c.Remove(999) {
		t.Fatalf("Remove(999) = true, want false")
	}
	if !c.Remove(1) {
		t.Fatalf("Remove(1) = false, want true")
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d after remove", c.Len())
	}
}

func TestCollection_AllIsACopy(t *testing.T) {
	c := NewCollection[model.Task]()
	c.UpsertOne(model.Task{ID: 1, Title: "stable"})
	snapshot := c.All()
	c.UpsertOne(model.Task{ID: 1, Title: "mutated"})
	if snapshot[0].Title != "stable" {
		t.Fatalf("snapshot mutated by later upsert")
	}
}

func TestStore_SingleChangeSignal(t *testing.T) {
	s := New()
	var fired int
	s.Subscribe(func() { fired++ })

	s.Tasks.UpsertMany([]model.Task{{ID: 1}, {ID: 2}, {ID: 3}})
	if fired != 1 {
		t.Fatalf("UpsertMany fired %d signals, want 1", fired)
	}

	s.Projects.UpsertOne(model.Project{ID: 9, Name: "Atlas"})
	if fired != 2 {
		t.Fatalf("fired = %d after project upsert, want 2", fired)
	}

	s.Tasks.Remove(999) // absent: no signal
	if fired != 2 {
		t.Fatalf("remove of absent id fired a signal")
	}
}
