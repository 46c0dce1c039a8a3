package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/pkg/utils"
)

func (h *Handler) CreateUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUpdateRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CreatedBy == "" {
		writeError(w, http.StatusBadRequest, "created_by is required")
		return
	}

	ctx := r.Context()
	update, err := h.updateService.CreateUpdate(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, update)
}

func (h *Handler) GetUpdates(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")
	viewerID := r.URL.Query().Get("viewer_id")

	ctx := r.Context()
	updates, err := h.updateService.GetUpdates(ctx, section, viewerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, updates)
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")

	ctx := r.Context()
	updates, err := h.updateService.GetCalendar(ctx, section)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, updates)
}

func (h *Handler) DeleteUpdate(w http.ResponseWriter, r *http.Request) {
	updateID := chi.URLParam(r, "id")
	if updateID == "" {
		writeError(w, http.StatusBadRequest, "Update ID is required")
		return
	}

	ctx := r.Context()
	if err := h.updateService.DeleteUpdate(ctx, updateID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Update deleted successfully",
	})
}

// SetInterest обрабатывает ?action=interested|attending|none; none снимает отметки.
func (h *Handler) SetInterest(w http.ResponseWriter, r *http.Request) {
	updateID := chi.URLParam(r, "id")
	if updateID == "" {
		writeError(w, http.StatusBadRequest, "Update ID is required")
		return
	}

	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "student_id query parameter is required")
		return
	}

	if _, err := uuid.Parse(studentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student_id format")
		return
	}

	action := r.URL.Query().Get("action")

	ctx := r.Context()
	var err error
	if action == "none" {
		err = h.updateService.ClearInterest(ctx, updateID, studentID)
	} else {
		err = h.updateService.SetInterest(ctx, updateID, studentID, action)
	}
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Interest recorded",
	})
}

func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "Event ID is required")
		return
	}

	var req models.MarkAttendanceRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	response, err := h.updateService.MarkAttendance(ctx, eventID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}
