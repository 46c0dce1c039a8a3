package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/pkg/utils"
)

func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWorkspaceRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	// Проверяем UUID
	if _, err := uuid.Parse(req.OwnerID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid owner_id format")
		return
	}

	ctx := r.Context()
	workspace, err := h.workspaceService.CreateWorkspace(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, workspace)
}

func (h *Handler) GetWorkspaces(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id query parameter is required")
		return
	}

	ctx := r.Context()
	workspaces, err := h.workspaceService.GetWorkspaces(ctx, ownerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, workspaces)
}

func (h *Handler) JoinWorkspace(w http.ResponseWriter, r *http.Request) {
	var req models.JoinWorkspaceRequest
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
	membership, err := h.workspaceService.Join(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, membership)
}

func (h *Handler) GetWorkspaceMembers(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "id")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	ctx := r.Context()
	members, err := h.workspaceService.GetMembers(ctx, workspaceID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, members)
}

func (h *Handler) CreateWorkspaceTask(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "id")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	var req models.CreateTaskRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	task, err := h.taskService.CreateTask(ctx, workspaceID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) GetWorkspaceTasks(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "id")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	studentID := r.URL.Query().Get("student_id")

	ctx := r.Context()
	tasks, err := h.taskService.GetWorkspaceTasks(ctx, workspaceID, studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, tasks)
}
