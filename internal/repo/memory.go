package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	dom "taskboard/internal/domain"
)

const idPrefix = "task_"

// MemoryTaskRepo keeps tasks in a slice guarded by a RWMutex.
type MemoryTaskRepo struct {
	mu     sync.RWMutex
	tasks  []dom.Task
	nextID int64
}

// NewMemoryTaskRepo returns an empty repo whose first id is task_1.
func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{nextID: 1}
}

// NewMemoryTaskRepoFrom seeds the repo with tasks and continues numbering
// after the highest task_<n> id among them.
func NewMemoryTaskRepoFrom(tasks []dom.Task) *MemoryTaskRepo {
	r := NewMemoryTaskRepo()
	for _, t := range tasks {
		if n, ok := parseSeq(t.ID); ok && n >= r.nextID {
			r.nextID = n + 1
		}
		r.tasks = append(r.tasks, t.Clone())
	}
	return r
}

func (r *MemoryTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		t.ID = formatSeq(r.nextID)
		r.nextID++
		if r.indexLocked(t.ID) < 0 {
			break
		}
	}
	r.tasks = append(r.tasks, t.Clone())
	return t.Clone(), nil
}

func (r *MemoryTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(id)
	if i < 0 {
		return dom.Task{}, ErrNotFound
	}
	return r.tasks[i].Clone(), nil
}

func (r *MemoryTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dom.Task, len(r.tasks))
	for i := range r.tasks {
		out[i] = r.tasks[i].Clone()
	}
	return out, nil
}

func (r *MemoryTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(t.ID)
	if i < 0 {
		return dom.Task{}, ErrNotFound
	}
	r.tasks[i] = t.Clone()
	return t.Clone(), nil
}

func (r *MemoryTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

func (r *MemoryTaskRepo) Search(ctx context.Context, q string) ([]dom.Task, error) {
	q = strings.ToLower(q)
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []dom.Task{}
	for _, t := range r.tasks {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *MemoryTaskRepo) Close() error { return nil }

func (r *MemoryTaskRepo) indexLocked(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func formatSeq(n int64) string {
	return fmt.Sprintf("%s%d", idPrefix, n)
}

func parseSeq(id string) (int64, bool) {
	if !strings.HasPrefix(id, idPrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(id, idPrefix), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
