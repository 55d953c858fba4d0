package repo

import (
	"strings"
	"testing"
	"time"

	dom "taskboard/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func TestInsertTaskQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := dom.Task{Title: "a", Status: dom.StatusDone, Priority: dom.PriorityHigh, CreatedAt: now, UpdatedAt: now}

	query, args, err := insertTaskQuery(task)
	if err != nil {
		t.Fatalf("insertTaskQuery: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO tasks") {
		t.Errorf("query = %q", query)
	}
	if !strings.Contains(query, "$7") || strings.Contains(query, "?") {
		t.Errorf("query does not use dollar placeholders: %q", query)
	}
	if !strings.HasSuffix(query, "RETURNING "+strings.Join(taskColumns, ", ")) {
		t.Errorf("query missing RETURNING clause: %q", query)
	}
	want := []any{"a", "", "done", "high", []string{}, now, now}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateTaskQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := dom.Task{
		ID: "task_4", Title: "t", Description: "d", Status: dom.StatusInProgress,
		Priority: dom.PriorityLow, Dependencies: []string{"task_1"}, UpdatedAt: now,
	}

	query, args, err := updateTaskQuery(task)
	if err != nil {
		t.Fatalf("updateTaskQuery: %v", err)
	}
	wantQuery := "UPDATE tasks SET dependencies = $1, description = $2, priority = $3, status = $4, title = $5, updated_at = $6 " +
		"WHERE id = $7 RETURNING " + strings.Join(taskColumns, ", ")
	if query != wantQuery {
		t.Errorf("query =\n%s\nwant\n%s", query, wantQuery)
	}
	want := []any{[]string{"task_1"}, "d", "low", "in_progress", "t", now, "task_4"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(query, "created_at =") {
		t.Error("update must not touch created_at")
	}
}

func TestSearchTasksQueryEscapesWildcards(t *testing.T) {
	query, args, err := searchTasksQuery(`50%_off\`)
	if err != nil {
		t.Fatalf("searchTasksQuery: %v", err)
	}
	if !strings.Contains(query, "title ILIKE $1 OR description ILIKE $2") {
		t.Errorf("query = %q", query)
	}
	if !strings.HasSuffix(query, "ORDER BY seq ASC") {
		t.Errorf("query not ordered by insertion: %q", query)
	}
	pattern := `%50\%\_off\\%`
	if diff := cmp.Diff([]any{pattern, pattern}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}
