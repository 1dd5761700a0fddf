package v1alpha1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/service"
	"github.com/kubev2v/model-server/pkg/requestid"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

type ServiceHandler struct {
	importSrv *service.ImportService
	modelSrv  *service.ModelService
}

func NewServiceHandler(importService *service.ImportService, modelService *service.ModelService) *ServiceHandler {
	return &ServiceHandler{
		importSrv: importService,
		modelSrv:  modelService,
	}
}

// Routes mounts the API on router.
func (h *ServiceHandler) Routes(router chi.Router) {
	router.Get("/healthz", h.Health)

	router.Route("/v1/imports", func(r chi.Router) {
		r.Post("/", h.CreateImport)
		r.Get("/", h.ListImports)
		r.Get("/{job_id}", h.GetImport)
	})

	router.Route("/v1/models", func(r chi.Router) {
		r.Get("/", h.ListModels)
		r.Route("/{model_name}", func(r chi.Router) {
			r.Get("/", h.GetModel)
			r.Delete("/", h.DeleteModel)
			r.Get("/description", h.GetDescription)
			r.Put("/description", h.UpdateDescription)
			r.Post("/name", h.RenameModel)
			r.Delete("/versions/{version}", h.DeleteVersion)
		})
	})

	router.Get("/hf/ls/{community}/{repo_name}", h.ListHubFiles)
}

// (GET /healthz)
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, "healthy")
}

// ErrResponse renders api.ErrorResponse with the status of the error.
type ErrResponse struct {
	api.ErrorResponse
	HTTPStatusCode int `json:"-"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrResponse(r *http.Request, status int, message string) *ErrResponse {
	return &ErrResponse{
		ErrorResponse: api.ErrorResponse{
			Message:   message,
			RequestId: requestid.FromContextPtr(r.Context()),
		},
		HTTPStatusCode: status,
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		zap.S().Named("handler").Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err, "request_id", requestid.FromRequest(r))
	}
	_ = render.Render(w, r, newErrResponse(r, status, err.Error()))
}

func errorStatus(err error) int {
	var (
		invalid         *service.ErrInvalidRequest
		notFound        *service.ErrResourceNotFound
		nameConflict    *service.ErrModelNameConflict
		versionConflict *service.ErrModelVersionConflict
		unavailable     *service.ErrServiceUnavailable
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &nameConflict), errors.As(err, &versionConflict):
		return http.StatusConflict
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
