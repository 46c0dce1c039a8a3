package httpd

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studyhub/engagement-service/internal/models"
)

func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
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

	req := &models.CreateMaterialRequest{
		Title:       r.FormValue("title"),
		Type:        r.FormValue("type"),
		UploadedBy:  r.FormValue("uploaded_by"),
		FileContent: fileContent,
		FileName:    header.Filename,
	}

	ctx := r.Context()
	material, err := h.materialService.CreateMaterial(ctx, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, material)
}

func (h *Handler) GetMaterials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	materials, err := h.materialService.GetMaterials(ctx)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, materials)
}

func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	materialID := chi.URLParam(r, "id")
	if materialID == "" {
		writeError(w, http.StatusBadRequest, "Material ID is required")
		return
	}

	ctx := r.Context()
	if err := h.materialService.DeleteMaterial(ctx, materialID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Material deleted successfully",
	})
}
