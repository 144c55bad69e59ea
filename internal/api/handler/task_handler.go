package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/task-manager/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toCreateTaskInput(req)
	if err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /api/tasks.
//
// @Summary      List the caller's tasks
// @Description  Tasks created by or assigned to the caller, sorted by due date.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Status, case-insensitive"
// @Param        priority  query     string  false  "Priority, exact match"
// @Param        dueDate   query     string  false  "Tasks due on or before this date"
// @Param        search    query     string  false  "Substring of title or description"
// @Success      200       {array}   taskResponse
// @Failure      404       {object}  messageResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	due, err := parseDate("dueDate", c.QueryParam("dueDate"))
	if err != nil {
		return err
	}

	views, err := h.service.List(c.Request().Context(), actor, ports.ListTasksInput{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		DueDate:  due,
		Search:   c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskViewResponses(views))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	view, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskViewResponse(view))
}

// Update handles PUT /api/tasks/:id.
//
// @Summary      Update a task
// @Description  Non-empty fields replace the stored value; empty fields are left unchanged.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toUpdateTaskInput(req)
	if err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "task removed"})
}

// Summary handles GET /api/tasks/summary.
//
// @Summary      Task counters
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TaskSummary
// @Router       /api/tasks/summary [get]
func (h *TaskHandler) Summary(c echo.Context) error {
	sum, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// ListByStatus handles GET /api/tasks/tasklist.
//
// @Summary      Tasks for a dashboard tab
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  true  "Pending Task, Complete Tasks or Assigned Tasks"
// @Success      200     {array}   taskResponse
// @Failure      400     {object}  messageResponse
// @Router       /api/tasks/tasklist [get]
func (h *TaskHandler) ListByStatus(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListByStatusFilter(c.Request().Context(), actor, c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

