package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/pkg/utils"
)

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	task, err := h.taskService.CreateTask(ctx, "", &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) GetSimpleTasks(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")

	ctx := r.Context()
	tasks, err := h.taskService.GetSimpleTasks(ctx, studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, tasks)
}

func (h *Handler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	ctx := r.Context()
	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, task)
}

func (h *Handler) MarkTaskComplete(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	var req models.CompleteTaskRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	if _, err := uuid.Parse(req.StudentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student_id format")
		return
	}

	ctx := r.Context()
	completion, err := h.taskService.MarkComplete(ctx, taskID, req.StudentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, completion)
}

func (h *Handler) MarkTaskIncomplete(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "student_id query parameter is required")
		return
	}

	ctx := r.Context()
	if err := h.taskService.MarkIncomplete(ctx, taskID, studentID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Task marked incomplete",
	})
}

func (h *Handler) GetTaskCompletions(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	ctx := r.Context()
	status, err := h.taskService.GetTaskCompletions(ctx, taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, status)
}
