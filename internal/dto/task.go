package dto

import (
	"time"

	dom "taskboard/internal/domain"
)

// CreateTaskRequest is the JSON body for POST /tasks. Pointer fields tell
// "absent" apart from zero values; unknown fields are ignored.
type CreateTaskRequest struct {
	Title        *string   `json:"title" example:"Write report"`
	Description  *string   `json:"description" example:"Quarterly numbers"`
	Status       *string   `json:"status" enums:"not_started,in_progress,done"`
	Completed    *bool     `json:"completed"`
	Priority     *string   `json:"priority" enums:"low,medium,high"`
	Dependencies *[]string `json:"dependencies"`
}

// UpdateTaskRequest is the JSON body for PUT/PATCH /tasks/{id}. Only supplied
// fields change; id, created_at and updated_at are ignored.
type UpdateTaskRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Status       *string   `json:"status" enums:"not_started,in_progress,done"`
	Completed    *bool     `json:"completed"`
	Priority     *string   `json:"priority" enums:"low,medium,high"`
	Dependencies *[]string `json:"dependencies"`
}

type TaskResponse struct {
	ID           string    `json:"id" example:"task_1"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	Completed    bool      `json:"completed"`
	Priority     string    `json:"priority"`
	Dependencies []string  `json:"dependencies"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DeletedResponse struct {
	ID string `json:"id"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response.
type Envelope struct {
	Status  string       `json:"status" enums:"success,error"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func TaskToResponse(t dom.Task) TaskResponse {
	deps := t.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Completed:    t.Completed(),
		Priority:     string(t.Priority),
		Dependencies: deps,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func TasksToResponses(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = TaskToResponse(list[i])
	}
	return out
}
