package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kubev2v/model-server/internal/config"
	handlers "github.com/kubev2v/model-server/internal/handlers/v1alpha1"
	"github.com/kubev2v/model-server/internal/service"
	"github.com/kubev2v/model-server/pkg/metrics"
	"github.com/kubev2v/model-server/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg       *config.Config
	listener  net.Listener
	importSrv *service.ImportService
	modelSrv  *service.ModelService
}

// New returns a new instance of the model server api.
func New(
	cfg *config.Config,
	listener net.Listener,
	importSrv *service.ImportService,
	modelSrv *service.ModelService,
) *Server {
	return &Server{
		cfg:       cfg,
		listener:  listener,
		importSrv: importSrv,
		modelSrv:  modelSrv,
	}
}

// NewRouter builds the api router with its middleware stack.
func NewRouter(cfg *config.Config, importSrv *service.ImportService, modelSrv *service.ModelService) chi.Router {
	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	if err := metricMiddleware.Register(prometheus.DefaultRegisterer); err != nil {
		zap.S().Named("api_server").Warnw("http metrics not registered", "error", err)
	}

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.Service.CorsOrigins,
			AllowedMethods: []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	handlers.NewServiceHandler(importSrv, modelSrv).Routes(router)
	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := NewRouter(s.cfg, s.importSrv, s.modelSrv)
	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
