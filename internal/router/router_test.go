package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/router"
)

type stubProductHandler struct {
	lastRoute string
}

func (s *stubProductHandler) record(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lastRoute = route
		w.WriteHeader(http.StatusOK)
	}
}

func (s *stubProductHandler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	s.record("create")(w, r)
}

func (s *stubProductHandler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	s.record("update")(w, r)
}

func (s *stubProductHandler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	s.record("delete")(w, r)
}

func (s *stubProductHandler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	s.record("list")(w, r)
}

func (s *stubProductHandler) SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	s.record("search")(w, r)
}

func (s *stubProductHandler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	s.record("get")(w, r)
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping() error {
	return s.err
}

func newTestRouter(t *testing.T, pinger router.BrokerPinger) (*router.Router, *stubProductHandler) {
	t.Helper()
	handler := &stubProductHandler{}
	r, err := router.New(logs.NewSlogLogger("ERROR"), handler, pinger)
	require.NoError(t, err)
	return r, handler
}

func TestNew(t *testing.T) {
	logger := logs.NewSlogLogger("ERROR")

	_, err := router.New(nil, &stubProductHandler{}, &stubPinger{})
	assert.ErrorIs(t, err, router.ErrLoggerIsNil)

	_, err = router.New(logger, nil, &stubPinger{})
	assert.ErrorIs(t, err, router.ErrProductHandlerIsNil)

	_, err = router.New(logger, &stubProductHandler{}, nil)
	assert.ErrorIs(t, err, router.ErrBrokerPingerIsNil)
}

func TestRouting(t *testing.T) {
	cases := []struct {
		method string
		path   string
		route  string
	}{
		{http.MethodPost, "/api/products", "create"},
		{http.MethodGet, "/api/products", "list"},
		{http.MethodPut, "/api/products/p1", "update"},
		{http.MethodDelete, "/api/products/p1", "delete"},
		{http.MethodGet, "/api/products/search", "search"},
		{http.MethodGet, "/api/products/p1", "get"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			r, handler := newTestRouter(t, &stubPinger{})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.route, handler.lastRoute)
		})
	}
}

func TestHealthz(t *testing.T) {
	t.Run("BrokerUp", func(t *testing.T) {
		r, _ := newTestRouter(t, &stubPinger{})

		req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "healthy")
	})

	t.Run("BrokerDown", func(t *testing.T) {
		r, _ := newTestRouter(t, &stubPinger{err: errors.New("connection closed")})

		req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
