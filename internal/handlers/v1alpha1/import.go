package v1alpha1

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
)

// (POST /v1/imports)
func (h *ServiceHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		_ = render.Render(w, r, newErrResponse(r, http.StatusBadRequest, "failed to read body"))
		return
	}

	locator, err := api.UnmarshalLocator(body)
	if err != nil {
		_ = render.Render(w, r, newErrResponse(r, http.StatusBadRequest, "invalid locator: "+err.Error()))
		return
	}

	id, err := h.importSrv.Submit(locator)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, id)
}

// (GET /v1/imports)
func (h *ServiceHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.importSrv.ListStatus())
}

// (GET /v1/imports/{job_id})
func (h *ServiceHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "job_id"))
	if err != nil {
		_ = render.Render(w, r, newErrResponse(r, http.StatusBadRequest, "invalid job id"))
		return
	}

	status, err := h.importSrv.GetStatus(id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, status)
}

// (GET /hf/ls/{community}/{repo_name})
func (h *ServiceHandler) ListHubFiles(w http.ResponseWriter, r *http.Request) {
	resp, err := h.importSrv.ListHubFiles(r.Context(), chi.URLParam(r, "community"), chi.URLParam(r, "repo_name"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}
