package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	dom "taskboard/internal/domain"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jTaskRepo stores tasks as :Task nodes. The dependencies property is the
// source of truth; DEPENDS_ON edges mirror it for tasks that exist.
type Neo4jTaskRepo struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jTaskRepo takes ownership of driver; Close closes it.
func NewNeo4jTaskRepo(driver neo4j.DriverWithContext) *Neo4jTaskRepo {
	return &Neo4jTaskRepo{driver: driver}
}

const (
	cypherCreate = "MERGE (c:Counter {name: 'task'}) " +
		"ON CREATE SET c.value = 0 " +
		"SET c.value = c.value + 1 " +
		"WITH c.value AS seq " +
		"CREATE (t:Task {id: 'task_' + toString(seq), seq: seq, title: $title, description: $description, " +
		"status: $status, priority: $priority, dependencies: $dependencies, created_at: $created_at, updated_at: $updated_at}) " +
		"RETURN t"
	cypherGet    = "MATCH (t:Task {id: $id}) RETURN t"
	cypherList   = "MATCH (t:Task) RETURN t ORDER BY t.seq"
	cypherSearch = "MATCH (t:Task) " +
		"WHERE toLower(t.title) CONTAINS $q OR toLower(t.description) CONTAINS $q " +
		"RETURN t ORDER BY t.seq"
	cypherUpdate = "MATCH (t:Task {id: $id}) " +
		"SET t.title = $title, t.description = $description, t.status = $status, t.priority = $priority, " +
		"t.dependencies = $dependencies, t.updated_at = $updated_at " +
		"RETURN t"
	cypherSyncEdges = "MATCH (t:Task {id: $id}) " +
		"OPTIONAL MATCH (t)-[r:DEPENDS_ON]->() DELETE r " +
		"WITH DISTINCT t " +
		"OPTIONAL MATCH (d:Task) WHERE d.id IN t.dependencies AND d.id <> t.id " +
		"FOREACH (_ IN CASE WHEN d IS NULL THEN [] ELSE [1] END | MERGE (t)-[:DEPENDS_ON]->(d)) " +
		"WITH DISTINCT t " +
		"OPTIONAL MATCH (o:Task) WHERE t.id IN o.dependencies AND o.id <> t.id " +
		"FOREACH (_ IN CASE WHEN o IS NULL THEN [] ELSE [1] END | MERGE (o)-[:DEPENDS_ON]->(t))"
	cypherDelete = "MATCH (t:Task {id: $id}) DETACH DELETE t"
)

func (r *Neo4jTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	return r.write(ctx, func(tx neo4j.ManagedTransaction) (dom.Task, error) {
		out, err := singleTask(ctx, tx, cypherCreate, taskParams(t))
		if err != nil {
			return dom.Task{}, err
		}
		if _, err := tx.Run(ctx, cypherSyncEdges, map[string]any{"id": out.ID}); err != nil {
			return dom.Task{}, err
		}
		return out, nil
	})
}

func (r *Neo4jTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return singleTask(ctx, tx, cypherGet, map[string]any{"id": id})
	})
	if err != nil {
		return dom.Task{}, err
	}
	return result.(dom.Task), nil
}

func (r *Neo4jTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	return r.read(ctx, cypherList, nil)
}

func (r *Neo4jTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	return r.write(ctx, func(tx neo4j.ManagedTransaction) (dom.Task, error) {
		params := taskParams(t)
		params["id"] = t.ID
		out, err := singleTask(ctx, tx, cypherUpdate, params)
		if err != nil {
			return dom.Task{}, err
		}
		if _, err := tx.Run(ctx, cypherSyncEdges, map[string]any{"id": out.ID}); err != nil {
			return dom.Task{}, err
		}
		return out, nil
	})
}

func (r *Neo4jTaskRepo) Delete(ctx context.Context, id string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypherDelete, map[string]any{"id": id})
		if err != nil {
			return 0, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return 0, err
		}
		return summary.Counters().NodesDeleted(), nil
	})
	if err != nil {
		return err
	}
	if deleted.(int) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Neo4jTaskRepo) Search(ctx context.Context, q string) ([]dom.Task, error) {
	return r.read(ctx, cypherSearch, map[string]any{"q": strings.ToLower(q)})
}

func (r *Neo4jTaskRepo) Close() error {
	return r.driver.Close(context.Background())
}

func (r *Neo4jTaskRepo) read(ctx context.Context, cypher string, params map[string]any) ([]dom.Task, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		tasks := []dom.Task{}
		for res.Next(ctx) {
			t, err := taskFromRecord(res.Record())
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]dom.Task), nil
}

func (r *Neo4jTaskRepo) write(ctx context.Context, work func(tx neo4j.ManagedTransaction) (dom.Task, error)) (dom.Task, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(tx)
	})
	if err != nil {
		return dom.Task{}, err
	}
	return result.(dom.Task), nil
}

func singleTask(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) (dom.Task, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return dom.Task{}, err
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return dom.Task{}, err
		}
		return dom.Task{}, ErrNotFound
	}
	return taskFromRecord(res.Record())
}

func taskParams(t dom.Task) map[string]any {
	return map[string]any{
		"title":        t.Title,
		"description":  t.Description,
		"status":       string(t.Status),
		"priority":     string(t.Priority),
		"dependencies": nonNil(t.Dependencies),
		"created_at":   t.CreatedAt,
		"updated_at":   t.UpdatedAt,
	}
}

func taskFromRecord(record *neo4j.Record) (dom.Task, error) {
	v, ok := record.Get("t")
	if !ok {
		return dom.Task{}, fmt.Errorf("record has no task column")
	}
	node, ok := v.(neo4j.Node)
	if !ok {
		return dom.Task{}, fmt.Errorf("task column is %T, not a node", v)
	}
	return taskFromNode(node)
}

func taskFromNode(node neo4j.Node) (dom.Task, error) {
	var t dom.Task
	var err error
	str := func(key string) string {
		if err != nil {
			return ""
		}
		s, ok := node.Props[key].(string)
		if !ok {
			err = fmt.Errorf("task property %q is %T, not a string", key, node.Props[key])
		}
		return s
	}
	ts := func(key string) time.Time {
		if err != nil {
			return time.Time{}
		}
		v, ok := node.Props[key].(time.Time)
		if !ok {
			err = fmt.Errorf("task property %q is %T, not a datetime", key, node.Props[key])
		}
		return v.UTC()
	}

	t.ID = str("id")
	t.Title = str("title")
	t.Description = str("description")
	t.Status = dom.Status(str("status"))
	t.Priority = dom.Priority(str("priority"))
	t.CreatedAt = ts("created_at")
	t.UpdatedAt = ts("updated_at")
	if err != nil {
		return dom.Task{}, err
	}

	t.Dependencies = []string{}
	if raw, ok := node.Props["dependencies"].([]any); ok {
		for _, d := range raw {
			s, ok := d.(string)
			if !ok {
				return dom.Task{}, fmt.Errorf("dependency %v is %T, not a string", d, d)
			}
			t.Dependencies = append(t.Dependencies, s)
		}
	}
	return t, nil
}
