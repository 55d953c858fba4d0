package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/cache"
	dom "taskboard/internal/domain"
	"taskboard/internal/repo"

	"golang.org/x/sync/singleflight"
)

type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
	log   *slog.Logger
	now   func() time.Time
}

type Option func(*TaskService)

// WithCache enables read-through caching. A nil cache leaves caching disabled.
func WithCache(c *cache.TaskCache) Option {
	return func(s *TaskService) { s.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskService) { s.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// NewTaskService returns a service over r. Without WithCache every read goes to
// the store; without WithLogger slog.Default is used.
func NewTaskService(r repo.TaskRepo, opts ...Option) *TaskService {
	s := &TaskService{repo: r, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) Create(ctx context.Context, in CreateTask) (dom.Task, error) {
	t, err := in.build()
	if err != nil {
		return dom.Task{}, err
	}
	t.CreatedAt = s.timestamp()
	t.UpdatedAt = t.CreatedAt

	out, err := s.repo.Create(ctx, t)
	if err != nil {
		return dom.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.invalidateCache(ctx)
	return out, nil
}

func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.List(ctx)
	}
	v, err, _ := s.sf.Do("list", func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.log.WarnContext(ctx, "task cache read failed", "key", "list", "error", err)
		}
		gen, fill := s.generation(ctx)
		list, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if fill {
			if err := s.cache.SetList(ctx, gen, list); err != nil {
				s.log.WarnContext(ctx, "task cache write failed", "key", "list", "error", err)
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) GetByID(ctx context.Context, id string) (dom.Task, error) {
	var gen int64
	var fill bool
	if s.cache != nil {
		if t, ok, err := s.cache.GetTask(ctx, id); err != nil {
			s.log.WarnContext(ctx, "task cache read failed", "key", id, "error", err)
		} else if ok {
			return t, nil
		}
		gen, fill = s.generation(ctx)
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, mapRepoErr(err)
	}
	if fill {
		if err := s.cache.SetTask(ctx, gen, t); err != nil {
			s.log.WarnContext(ctx, "task cache write failed", "key", id, "error", err)
		}
	}
	return t, nil
}

// Update merges the supplied fields and refreshes updated_at, even when no field changed.
func (s *TaskService) Update(ctx context.Context, id string, in UpdateTask) (dom.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, mapRepoErr(err)
	}
	patch, err := in.apply(existing)
	if err != nil {
		return dom.Task{}, err
	}
	patch.UpdatedAt = s.timestamp()
	if !patch.UpdatedAt.After(existing.UpdatedAt) {
		patch.UpdatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}

	t, err := s.repo.Update(ctx, patch)
	if err != nil {
		return dom.Task{}, mapRepoErr(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) Complete(ctx context.Context, id string) (dom.Task, error) {
	done := dom.StatusDone
	return s.Update(ctx, id, UpdateTask{Status: &done})
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TaskService) Search(ctx context.Context, q string) ([]dom.Task, error) {
	q = cache.NormalizeQuery(q)
	if q == "" {
		return s.List(ctx)
	}
	if s.cache == nil {
		return s.repo.Search(ctx, q)
	}
	v, err, _ := s.sf.Do("search:"+q, func() (interface{}, error) {
		if list, err := s.cache.GetSearch(ctx, q); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.log.WarnContext(ctx, "task cache read failed", "key", "search", "error", err)
		}
		gen, fill := s.generation(ctx)
		list, err := s.repo.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		if fill {
			if err := s.cache.SetSearch(ctx, gen, q, list); err != nil {
				s.log.WarnContext(ctx, "task cache write failed", "key", "search", "error", err)
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

// timestamp is UTC with microsecond precision so every store round-trips it exactly.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// generation must be read before the store load it guards. fill is false when
// the cache is unreachable.
func (s *TaskService) generation(ctx context.Context) (gen int64, fill bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "task cache read failed", "key", "gen", "error", err)
		return 0, false
	}
	return gen, true
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.WarnContext(ctx, "task cache invalidation failed", "error", err)
	}
}

func mapRepoErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
