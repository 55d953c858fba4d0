package domain

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority orders tasks for the user; it has no effect on storage.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the domain entity. It does not depend on gin, Postgres, Redis or Neo4j.
type Task struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Status       Status    `json:"status" yaml:"status"`
	Priority     Priority  `json:"priority" yaml:"priority"`
	Dependencies []string  `json:"dependencies" yaml:"dependencies"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// Completed is the boolean view of Status used by simpler clients.
func (t Task) Completed() bool { return t.Status == StatusDone }

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	out := t
	out.Dependencies = append([]string{}, t.Dependencies...)
	return out
}
