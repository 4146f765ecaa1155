package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/chrissnell/permafrost/internal/log"
	"github.com/chrissnell/permafrost/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	serverConfig   config.ServerData
	Server         http.Server
	logger         *zap.SugaredLogger
	handlers       *Handlers
	metrics        *metrics
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sc config.ServerData, logger *zap.SugaredLogger) (*Controller, error) {
	if configProvider == nil {
		return nil, fmt.Errorf("REST server requires a configuration provider")
	}

	sc.ApplyDefaults(logger)

	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		serverConfig:   sc,
		logger:         logger,
		metrics:        newMetrics(),
	}

	// Create handlers
	ctrl.handlers = NewHandlers(ctrl)

	// Set up router
	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", sc.ListenAddr, sc.Port)
	ctrl.Server.Handler = log.HTTPMiddleware(logger)(router)

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	// Model evaluation
	router.HandleFunc("/evaluate", c.handlers.EvaluateInputs).Methods(http.MethodPost)
	router.HandleFunc("/sweep", c.handlers.RunSweep).Methods(http.MethodPost)

	// Named parameter sets
	router.HandleFunc("/sets", c.handlers.ListSets).Methods(http.MethodGet)
	router.HandleFunc("/sets/{name}", c.handlers.GetSet).Methods(http.MethodGet)
	router.HandleFunc("/sets/{name}", c.handlers.PutSet).Methods(http.MethodPut)
	router.HandleFunc("/sets/{name}", c.handlers.DeleteSet).Methods(http.MethodDelete)
	router.HandleFunc("/sets/{name}/evaluate", c.handlers.EvaluateSet).Methods(http.MethodGet)

	// Operations
	router.HandleFunc("/healthz", c.handlers.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(c.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return router
}
