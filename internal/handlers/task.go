package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	dom "taskboard/internal/domain"
	"taskboard/internal/dto"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// TaskHandler serves the /tasks routes over a TaskService.
type TaskHandler struct {
	svc *service.TaskService
	log *slog.Logger
}

func NewTaskHandler(svc *service.TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.Envelope{data=dto.TaskResponse}
// @Failure      400   {object}  dto.Envelope
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	if req.Title == nil {
		writeError(c, h.log, &service.ValidationError{Field: "title", Message: "is required"})
		return
	}

	in := service.CreateTask{
		Title:     *req.Title,
		Completed: req.Completed,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = dom.Status(*req.Status)
	}
	if req.Priority != nil {
		in.Priority = dom.Priority(*req.Priority)
	}
	if req.Dependencies != nil {
		in.Dependencies = *req.Dependencies
	}

	t, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeData(c, http.StatusCreated, dto.TaskToResponse(t))
}

// List godoc
// @Summary      List all tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.TaskResponse}
// @Failure      500  {object}  dto.Envelope
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, dto.TasksToResponses(list))
}

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.Envelope{data=dto.TaskResponse}
// @Failure      404  {object}  dto.Envelope
// @Failure      500  {object}  dto.Envelope
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	t, err := h.svc.GetByID(c.Request.Context(), taskID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, dto.TaskToResponse(t))
}

// Update godoc
// @Summary      Update a task
// @Description  Partial update: only supplied fields change. updated_at is always refreshed.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.Envelope{data=dto.TaskResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      500   {object}  dto.Envelope
// @Router       /tasks/{id} [put]
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	in := service.UpdateTask{
		Title:        req.Title,
		Description:  req.Description,
		Completed:    req.Completed,
		Dependencies: req.Dependencies,
	}
	if req.Status != nil {
		s := dom.Status(*req.Status)
		in.Status = &s
	}
	if req.Priority != nil {
		p := dom.Priority(*req.Priority)
		in.Priority = &p
	}

	t, err := h.svc.Update(c.Request.Context(), taskID(c), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, dto.TaskToResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.Envelope{data=dto.DeletedResponse}
// @Failure      404  {object}  dto.Envelope
// @Failure      500  {object}  dto.Envelope
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id := taskID(c)
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{
		Status:  dto.StatusSuccess,
		Message: fmt.Sprintf("task %s deleted", id),
		Data:    dto.DeletedResponse{ID: id},
	})
}

// Complete godoc
// @Summary      Mark a task as done
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.Envelope{data=dto.TaskResponse}
// @Failure      404  {object}  dto.Envelope
// @Failure      500  {object}  dto.Envelope
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	t, err := h.svc.Complete(c.Request.Context(), taskID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, dto.TaskToResponse(t))
}

// Search godoc
// @Summary      Search tasks by title or description
// @Tags         tasks
// @Produce      json
// @Param        q    query     string  false  "Search query"
// @Success      200  {object}  dto.Envelope{data=[]dto.TaskResponse}
// @Failure      500  {object}  dto.Envelope
// @Router       /tasks/search [get]
func (h *TaskHandler) Search(c *gin.Context) {
	list, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeData(c, http.StatusOK, dto.TasksToResponses(list))
}

func taskID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
