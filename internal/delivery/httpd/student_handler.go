package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/pkg/utils"
)

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudentRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	student, err := h.studentService.CreateStudent(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 100)
	offset := getIntQueryParam(r, "offset", 0)

	ctx := r.Context()
	students, total, err := h.studentService.GetStudents(ctx, limit, offset)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"students": students,
		"total":    total,
	})
}

func (h *Handler) GetStudentByID(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	ctx := r.Context()
	student, err := h.studentService.GetStudent(ctx, studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student)
}

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	departments, err := h.studentService.GetDepartments(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, departments)
}

func (h *Handler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "student_id query parameter is required")
		return
	}

	ctx := r.Context()
	stats, err := h.leaderboardService.GetMyStats(ctx, studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, stats)
}

func (h *Handler) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.studentService.GetAdminStats(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, stats)
}
