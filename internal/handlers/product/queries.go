package product

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sonuudigital/product-catalog/internal/repository"
	"github.com/sonuudigital/product-catalog/internal/search"
	"github.com/sonuudigital/product-catalog/internal/web"
)

// ListProductsHandler serves the full catalog from the write store, newest
// first. Unlike search, this view is read-your-writes consistent.
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !web.CheckContext(ctx, h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, requestTimeoutTitleMsg, web.ReqCancelledMsg)
		return
	}

	products, err := h.lister.ListAll(ctx)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		web.RespondWithError(w, h.logger, r, http.StatusInternalServerError, internalServerErrorTitleMsg, "Failed to list products.")
		return
	}

	if products == nil {
		products = []repository.Product{}
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, products)
}

func (h *Handler) SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !web.CheckContext(ctx, h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, requestTimeoutTitleMsg, web.ReqCancelledMsg)
		return
	}

	term := r.URL.Query().Get("q")

	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("page"))

	documents, err := h.queries.SearchProducts(ctx, term, pageSize, pageNumber)
	if err != nil {
		h.logger.Error("failed to search products", "term", term, "error", err)
		web.RespondWithError(w, h.logger, r, http.StatusInternalServerError, internalServerErrorTitleMsg, "Failed to search products.")
		return
	}

	if documents == nil {
		documents = []search.ProductDocument{}
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, documents)
}

func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !web.CheckContext(ctx, h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, requestTimeoutTitleMsg, web.ReqCancelledMsg)
		return
	}

	id := r.PathValue("id")

	document, err := h.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, search.ErrDocumentNotFound) {
			web.RespondWithError(w, h.logger, r, http.StatusNotFound, productNotFoundTitleMsg, productNotFoundBodyMsg)
			return
		}
		h.logger.Error("failed to get product", "productId", id, "error", err)
		web.RespondWithError(w, h.logger, r, http.StatusInternalServerError, internalServerErrorTitleMsg, "Failed to get product.")
		return
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, document)
}
