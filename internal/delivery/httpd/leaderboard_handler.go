package httpd

import (
	"net/http"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	if department == "" {
		writeError(w, http.StatusBadRequest, "department query parameter is required")
		return
	}

	section := r.URL.Query().Get("section")
	limit := getIntQueryParam(r, "limit", 0)

	ctx := r.Context()
	entries, err := h.leaderboardService.GetLeaderboard(ctx, department, section, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, entries)
}

func (h *Handler) GetTopPerformers(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	if department == "" {
		writeError(w, http.StatusBadRequest, "department query parameter is required")
		return
	}

	ctx := r.Context()
	entries, err := h.leaderboardService.GetTopPerformers(ctx, department)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, entries)
}
