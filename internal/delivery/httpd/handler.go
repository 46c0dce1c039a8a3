package httpd

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/studyhub/engagement-service/internal/service"
	"github.com/studyhub/engagement-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	studentService     service.StudentService
	workspaceService   service.WorkspaceService
	taskService        service.TaskService
	submissionService  service.SubmissionService
	leaderboardService service.LeaderboardService
	updateService      service.UpdateService
	materialService    service.MaterialService
	logger             zerolog.Logger
}

func NewHandler(
	studentService service.StudentService,
	workspaceService service.WorkspaceService,
	taskService service.TaskService,
	submissionService service.SubmissionService,
	leaderboardService service.LeaderboardService,
	updateService service.UpdateService,
	materialService service.MaterialService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		studentService:     studentService,
		workspaceService:   workspaceService,
		taskService:        taskService,
		submissionService:  submissionService,
		leaderboardService: leaderboardService,
		updateService:      updateService,
		materialService:    materialService,
		logger:             logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/students", func(r chi.Router) {
			r.Post("/", h.CreateStudent)
			r.Get("/", h.GetAllStudents)
			r.Get("/departments", h.GetDepartments)
			r.Get("/{id}", h.GetStudentByID)
		})

		api.Route("/workspaces", func(r chi.Router) {
			r.Post("/", h.CreateWorkspace)
			r.Get("/", h.GetWorkspaces)
			r.Post("/join", h.JoinWorkspace)
			r.Get("/{id}/members", h.GetWorkspaceMembers)
			r.Post("/{id}/tasks", h.CreateWorkspaceTask)
			r.Get("/{id}/tasks", h.GetWorkspaceTasks)
		})

		api.Route("/tasks", func(r chi.Router) {
			r.Post("/", h.CreateTask)
			r.Get("/", h.GetSimpleTasks)
			r.Get("/{id}", h.GetTaskByID)
			r.Post("/{id}/complete", h.MarkTaskComplete)
			r.Delete("/{id}/complete", h.MarkTaskIncomplete)
			r.Get("/{id}/completions", h.GetTaskCompletions)
			r.Post("/{id}/submit", h.SubmitTask)
			r.Get("/{id}/submissions", h.GetSubmissions)
		})

		api.Route("/submissions", func(r chi.Router) {
			r.Post("/{id}/review", h.ReviewSubmission)
			r.Get("/{id}/reviews", h.GetSubmissionReviews)
		})

		api.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", h.GetLeaderboard)
			r.Get("/top-performers", h.GetTopPerformers)
			r.Get("/my-stats", h.GetMyStats)
			r.Post("/mark-attendance/{eventId}", h.MarkAttendance)
		})

		api.Route("/department-updates", func(r chi.Router) {
			r.Post("/", h.CreateUpdate)
			r.Get("/", h.GetUpdates)
			r.Get("/calendar", h.GetCalendar)
			r.Delete("/{id}", h.DeleteUpdate)
			r.Post("/{id}/interest", h.SetInterest)
		})

		api.Route("/materials", func(r chi.Router) {
			r.Post("/", h.CreateMaterial)
			r.Get("/", h.GetMaterials)
			r.Delete("/{id}", h.DeleteMaterial)
		})

		api.Get("/admin/stats", h.GetAdminStats)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "engagement-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleServiceError сопоставляет класс ошибки сервиса с HTTP статусом.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPermission):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	utils.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
