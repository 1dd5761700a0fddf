package v1alpha1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/service"
	"github.com/kubev2v/model-server/internal/service/mappers"
)

// (GET /v1/models)
func (h *ServiceHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	filter := service.ModelFilter{
		Runtime:   r.URL.Query().Get("runtime"),
		ModelType: r.URL.Query().Get("model_type"),
	}

	models, err := h.modelSrv.ListModels(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, mappers.ModelListToApi(models))
}

// (GET /v1/models/{model_name})
func (h *ServiceHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.modelSrv.GetModel(r.Context(), chi.URLParam(r, "model_name"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, mappers.ModelToApi(*m))
}

// (GET /v1/models/{model_name}/description)
func (h *ServiceHandler) GetDescription(w http.ResponseWriter, r *http.Request) {
	desc, err := h.modelSrv.GetDescription(r.Context(), chi.URLParam(r, "model_name"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, desc)
}

// (PUT /v1/models/{model_name}/description)
func (h *ServiceHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateDescriptionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		_ = render.Render(w, r, newErrResponse(r, http.StatusBadRequest, "invalid body: "+err.Error()))
		return
	}

	if err := h.modelSrv.UpdateDescription(r.Context(), chi.URLParam(r, "model_name"), req.Description); err != nil {
		renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (POST /v1/models/{model_name}/name)
func (h *ServiceHandler) RenameModel(w http.ResponseWriter, r *http.Request) {
	var req api.RenameModelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		_ = render.Render(w, r, newErrResponse(r, http.StatusBadRequest, "invalid body: "+err.Error()))
		return
	}

	if err := h.modelSrv.Rename(r.Context(), chi.URLParam(r, "model_name"), req); err != nil {
		renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (DELETE /v1/models/{model_name})
func (h *ServiceHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := h.modelSrv.DeleteModel(r.Context(), chi.URLParam(r, "model_name")); err != nil {
		renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (DELETE /v1/models/{model_name}/versions/{version})
func (h *ServiceHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	if err := h.modelSrv.DeleteVersion(r.Context(), chi.URLParam(r, "model_name"), chi.URLParam(r, "version")); err != nil {
		renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
