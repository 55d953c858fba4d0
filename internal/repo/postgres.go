package repo

import (
	"context"
	"errors"
	"strings"

	dom "taskboard/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var taskColumns = []string{
	"id", "title", "description", "status", "priority", "dependencies", "created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PGTaskRepo stores tasks in the tasks table created by internal/migrations.
type PGTaskRepo struct {
	db *pgxpool.Pool
}

// NewPGTaskRepo wraps an open pool. The schema must already be migrated.
func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query, args, err := insertTaskQuery(t)
	if err != nil {
		return dom.Task{}, err
	}
	return scanTask(r.db.QueryRow(ctx, query, args...))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	query, args, err := psql.Select(taskColumns...).From("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return dom.Task{}, err
	}
	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Task{}, ErrNotFound
	}
	return t, err
}

func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	query, args, err := psql.Select(taskColumns...).From("tasks").OrderBy("seq ASC").ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryTasks(ctx, query, args...)
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	query, args, err := updateTaskQuery(t)
	if err != nil {
		return dom.Task{}, err
	}
	out, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Task{}, ErrNotFound
	}
	return out, err
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) Search(ctx context.Context, q string) ([]dom.Task, error) {
	query, args, err := searchTasksQuery(q)
	if err != nil {
		return nil, err
	}
	return r.queryTasks(ctx, query, args...)
}

// Close is a no-op: the pool belongs to the caller.
func (r *PGTaskRepo) Close() error { return nil }

func (r *PGTaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// id is generated by the table from its sequence column.
func insertTaskQuery(t dom.Task) (string, []any, error) {
	return psql.Insert("tasks").
		Columns("title", "description", "status", "priority", "dependencies", "created_at", "updated_at").
		Values(t.Title, t.Description, string(t.Status), string(t.Priority), nonNil(t.Dependencies), t.CreatedAt, t.UpdatedAt).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
}

func updateTaskQuery(t dom.Task) (string, []any, error) {
	return psql.Update("tasks").
		SetMap(map[string]any{
			"title":        t.Title,
			"description":  t.Description,
			"status":       string(t.Status),
			"priority":     string(t.Priority),
			"dependencies": nonNil(t.Dependencies),
			"updated_at":   t.UpdatedAt,
		}).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
}

func searchTasksQuery(q string) (string, []any, error) {
	pattern := "%" + escapeLike(q) + "%"
	return psql.Select(taskColumns...).
		From("tasks").
		Where(sq.Or{sq.ILike{"title": pattern}, sq.ILike{"description": pattern}}).
		OrderBy("seq ASC").
		ToSql()
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	var status, priority string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.Dependencies, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return dom.Task{}, err
	}
	t.Status = dom.Status(status)
	t.Priority = dom.Priority(priority)
	t.Dependencies = nonNil(t.Dependencies)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func joinColumns() string {
	return strings.Join(taskColumns, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
