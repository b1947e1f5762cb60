package router

import (
	"errors"
	"net/http"

	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/web"
)

var (
	ErrLoggerIsNil         = errors.New("logger is nil")
	ErrProductHandlerIsNil = errors.New("product handler is nil")
	ErrBrokerPingerIsNil   = errors.New("broker pinger is nil")
)

type ProductHandler interface {
	CreateProductHandler(w http.ResponseWriter, r *http.Request)
	UpdateProductHandler(w http.ResponseWriter, r *http.Request)
	DeleteProductHandler(w http.ResponseWriter, r *http.Request)
	ListProductsHandler(w http.ResponseWriter, r *http.Request)
	SearchProductsHandler(w http.ResponseWriter, r *http.Request)
	GetProductByIDHandler(w http.ResponseWriter, r *http.Request)
}

// BrokerPinger reports live broker connectivity for the health endpoint.
type BrokerPinger interface {
	Ping() error
}

type Router struct {
	logger         logs.Logger
	productHandler ProductHandler
	broker         BrokerPinger
	mux            *http.ServeMux
}

func New(logger logs.Logger, productHandler ProductHandler, broker BrokerPinger) (*Router, error) {
	if logger == nil {
		return nil, ErrLoggerIsNil
	}
	if productHandler == nil {
		return nil, ErrProductHandlerIsNil
	}
	if broker == nil {
		return nil, ErrBrokerPingerIsNil
	}

	r := &Router{
		logger:         logger,
		productHandler: productHandler,
		broker:         broker,
		mux:            http.NewServeMux(),
	}
	r.setupRoutes()
	return r, nil
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("GET /api/healthz", r.healthzHandler)

	r.mux.HandleFunc("POST /api/products", r.productHandler.CreateProductHandler)
	r.mux.HandleFunc("GET /api/products", r.productHandler.ListProductsHandler)
	r.mux.HandleFunc("PUT /api/products/{id}", r.productHandler.UpdateProductHandler)
	r.mux.HandleFunc("DELETE /api/products/{id}", r.productHandler.DeleteProductHandler)
	r.mux.HandleFunc("GET /api/products/search", r.productHandler.SearchProductsHandler)
	r.mux.HandleFunc("GET /api/products/{id}", r.productHandler.GetProductByIDHandler)
}

func (r *Router) healthzHandler(w http.ResponseWriter, req *http.Request) {
	if err := r.broker.Ping(); err != nil {
		r.logger.Error("health check failed", "error", err)
		web.RespondWithError(w, r.logger, req, http.StatusServiceUnavailable, "Broker Unavailable", "message broker connection is down")
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("catalog service is healthy"))
}
