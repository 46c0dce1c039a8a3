package httpd

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyhub/engagement-service/internal/models"
	"github.com/studyhub/engagement-service/pkg/utils"
)

func (h *Handler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	// Файл приходит multipart-формой, ссылка — JSON
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.submitTaskFile(w, r, taskID)
		return
	}

	var req models.SubmitTaskRequest
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
	submission, err := h.submissionService.Submit(ctx, taskID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submission)
}

func (h *Handler) submitTaskFile(w http.ResponseWriter, r *http.Request, taskID string) {
	// Парсим multipart форму
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	fileContent, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	studentID := r.FormValue("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	if _, err := uuid.Parse(studentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid student_id format")
		return
	}

	req := &models.SubmitTaskRequest{
		StudentID:      studentID,
		SubmissionType: models.SubmissionTypeFile,
		FileContent:    fileContent,
		FileName:       header.Filename,
	}

	ctx := r.Context()
	submission, err := h.submissionService.Submit(ctx, taskID, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submission)
}

func (h *Handler) GetSubmissions(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	ctx := r.Context()
	response, err := h.submissionService.GetSubmissions(ctx, taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	var req models.ReviewSubmissionRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ReviewerID == "" {
		writeError(w, http.StatusBadRequest, "reviewer_id is required")
		return
	}

	if _, err := uuid.Parse(req.ReviewerID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reviewer_id format")
		return
	}

	ctx := r.Context()
	submission, err := h.submissionService.Review(ctx, submissionID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) GetSubmissionReviews(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	ctx := r.Context()
	reviews, err := h.submissionService.GetReviews(ctx, submissionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, reviews)
}
