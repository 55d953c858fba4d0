package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	dom "taskboard/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func sampleTask(title string) dom.Task {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return dom.Task{
		Title:        title,
		Status:       dom.StatusNotStarted,
		Priority:     dom.PriorityMedium,
		Dependencies: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryCreateAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTaskRepo()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		got, err := r.Create(ctx, sampleTask(title))
		if err != nil {
			t.Fatalf("Create(%q): %v", title, err)
		}
		ids = append(ids, got.ID)
	}
	if diff := cmp.Diff([]string{"task_1", "task_2", "task_3"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryCreateIgnoresCallerID(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTaskRepo()
	first, _ := r.Create(ctx, sampleTask("a"))

	in := sampleTask("b")
	in.ID = first.ID
	second, err := r.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("caller supplied id %q was reused", first.ID)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTaskRepo()
	in := sampleTask("a")
	in.Dependencies = []string{"task_9"}
	created, _ := r.Create(ctx, in)

	got, err := r.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.Dependencies[0] = "mutated"
	got.Title = "mutated"

	again, _ := r.GetByID(ctx, created.ID)
	if diff := cmp.Diff(created, again); diff != "" {
		t.Errorf("stored task changed through returned copy (-want +got):\n%s", diff)
	}
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTaskRepo()
	a, _ := r.Create(ctx, sampleTask("a"))
	b, _ := r.Create(ctx, sampleTask("b"))
	c, _ := r.Create(ctx, sampleTask("c"))

	b.Title = "b2"
	if _, err := r.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	list, _ := r.List(ctx)
	if diff := cmp.Diff([]dom.Task{b, c}, list); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
	if _, err := r.GetByID(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID after delete: got %v, want ErrNotFound", err)
	}
	if err := r.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
	missing := sampleTask("x")
	missing.ID = "task_999999"
	if _, err := r.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing: got %v, want ErrNotFound", err)
	}
}

func TestMemoryIDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTaskRepo()
	a, _ := r.Create(ctx, sampleTask("a"))
	_ = r.Delete(ctx, a.ID)
	b, _ := r.Create(ctx, sampleTask("b"))
	if b.ID == a.ID {
		t.Errorf("id %q reused after delete", a.ID)
	}
}

func TestMemorySearch(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTaskRepo()
	a := sampleTask("Write report")
	b := sampleTask("Groceries")
	b.Description = "milk, eggs, REPORT card"
	c := sampleTask("Gym")
	for _, task := range []dom.Task{a, b, c} {
		if _, err := r.Create(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := r.Search(ctx, "report")
	var titles []string
	for _, task := range got {
		titles = append(titles, task.Title)
	}
	if diff := cmp.Diff([]string{"Write report", "Groceries"}, titles); diff != "" {
		t.Errorf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryTaskRepo()

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := r.Create(ctx, sampleTask(fmt.Sprintf("t%d", i%2)))
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			ids <- got.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if len(seen) != 50 {
		t.Errorf("got %d distinct ids, want 50", len(seen))
	}
}

func TestNewMemoryTaskRepoFromContinuesNumbering(t *testing.T) {
	seed := []dom.Task{sampleTask("a"), sampleTask("b"), sampleTask("c")}
	seed[0].ID = "task_3"
	seed[1].ID = "legacy"
	seed[2].ID = "task_12"

	r := NewMemoryTaskRepoFrom(seed)
	got, err := r.Create(context.Background(), sampleTask("d"))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "task_13" {
		t.Errorf("id = %q, want task_13", got.ID)
	}
}
