package handler

import (
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

// --- Request → Service input ---

func toCreateTaskInput(req createTaskRequest) (ports.CreateTaskInput, error) {
	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return ports.CreateTaskInput{}, err
	}
	return ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}, nil
}

func toUpdateTaskInput(req updateTaskRequest) (ports.UpdateTaskInput, error) {
	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return ports.UpdateTaskInput{}, err
	}
	return ports.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}, nil
}

// --- Service result → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	var assignee any
	if t.AssignedTo != "" {
		assignee = t.AssignedTo
	}
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  assignee,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskViewResponse(v *domain.TaskView) taskResponse {
	resp := toTaskResponse(&v.Task)
	if v.Creator != nil {
		resp.CreatedBy = *v.Creator
	}
	if v.Assignee != nil {
		resp.AssignedTo = *v.Assignee
	}
	return resp
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func toTaskViewResponses(views []domain.TaskView) []taskResponse {
	out := make([]taskResponse, 0, len(views))
	for i := range views {
		out = append(out, toTaskViewResponse(&views[i]))
	}
	return out
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		User:      n.Recipient,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func toNotificationResponses(ns []*domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNotificationResponse(n))
	}
	return out
}
