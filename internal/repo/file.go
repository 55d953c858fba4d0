package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	dom "taskboard/internal/domain"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const lockTimeout = 3 * time.Second

// FileTaskRepo serves reads from memory and rewrites a YAML snapshot after
// every mutation. A sibling .lock file keeps two processes from interleaving writes.
type FileTaskRepo struct {
	*MemoryTaskRepo

	path     string
	fileLock *flock.Flock
	mu       sync.Mutex
}

// NewFileTaskRepo loads path, creating an empty snapshot when it does not exist.
func NewFileTaskRepo(path string) (*FileTaskRepo, error) {
	r := &FileTaskRepo{
		path:     path,
		fileLock: flock.New(path + ".lock"),
	}
	tasks, err := r.load()
	if err != nil {
		return nil, err
	}
	r.MemoryTaskRepo = NewMemoryTaskRepoFrom(tasks)
	if tasks == nil {
		if err := r.save(context.Background()); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *FileTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.MemoryTaskRepo.Create(ctx, t)
	if err != nil {
		return dom.Task{}, err
	}
	if err := r.save(ctx); err != nil {
		_ = r.MemoryTaskRepo.Delete(ctx, out.ID)
		return dom.Task{}, err
	}
	return out, nil
}

func (r *FileTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, err := r.MemoryTaskRepo.GetByID(ctx, t.ID)
	if err != nil {
		return dom.Task{}, err
	}
	out, err := r.MemoryTaskRepo.Update(ctx, t)
	if err != nil {
		return dom.Task{}, err
	}
	if err := r.save(ctx); err != nil {
		_, _ = r.MemoryTaskRepo.Update(ctx, prev)
		return dom.Task{}, err
	}
	return out, nil
}

func (r *FileTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.MemoryTaskRepo.Delete(ctx, id); err != nil {
		return err
	}
	// A failed snapshot leaves the task deleted in memory; the next successful
	// write brings the file back in line.
	return r.save(ctx)
}

// load returns nil tasks when the snapshot is missing, and an empty slice when it is empty.
func (r *FileTaskRepo) load() ([]dom.Task, error) {
	unlock, err := r.lock(context.Background())
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	tasks := []dom.Task{}
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if tasks == nil {
		tasks = []dom.Task{}
	}
	return tasks, nil
}

func (r *FileTaskRepo) save(ctx context.Context) error {
	tasks, err := r.MemoryTaskRepo.List(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (r *FileTaskRepo) lock(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := r.fileLock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire file lock on %s", r.path)
	}
	return func() { _ = r.fileLock.Unlock() }, nil
}

func (r *FileTaskRepo) Close() error {
	return r.fileLock.Close()
}
