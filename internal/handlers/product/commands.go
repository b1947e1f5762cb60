package product

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sonuudigital/product-catalog/internal/commands"
	"github.com/sonuudigital/product-catalog/internal/web"
)

func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !web.CheckContext(ctx, h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, requestTimeoutTitleMsg, web.ReqCancelledMsg)
		return
	}

	var in commands.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestBodyTitleMsg, err.Error())
		return
	}

	result, err := h.commands.CreateProduct(ctx, in)
	if err != nil {
		if errors.Is(err, commands.ErrInvalidInput) {
			web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidProductTitleMsg, err.Error())
			return
		}
		h.logger.Error("failed to create product", "error", err)
		web.RespondWithError(w, h.logger, r, http.StatusInternalServerError, internalServerErrorTitleMsg, "Failed to create product.")
		return
	}

	web.RespondWithJSON(w, h.logger, http.StatusCreated, result)
}

func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !web.CheckContext(ctx, h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, requestTimeoutTitleMsg, web.ReqCancelledMsg)
		return
	}

	id := r.PathValue("id")

	var in commands.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidRequestBodyTitleMsg, err.Error())
		return
	}

	result, err := h.commands.UpdateProduct(ctx, id, in)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrInvalidInput):
			web.RespondWithError(w, h.logger, r, http.StatusBadRequest, invalidProductTitleMsg, err.Error())
		case errors.Is(err, commands.ErrProductNotFound):
			web.RespondWithError(w, h.logger, r, http.StatusNotFound, productNotFoundTitleMsg, productNotFoundBodyMsg)
		default:
			h.logger.Error("failed to update product", "productId", id, "error", err)
			web.RespondWithError(w, h.logger, r, http.StatusInternalServerError, internalServerErrorTitleMsg, "Failed to update product.")
		}
		return
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !web.CheckContext(ctx, h.logger) {
		web.RespondWithError(w, h.logger, r, http.StatusRequestTimeout, requestTimeoutTitleMsg, web.ReqCancelledMsg)
		return
	}

	id := r.PathValue("id")

	result, err := h.commands.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, commands.ErrProductNotFound) {
			web.RespondWithError(w, h.logger, r, http.StatusNotFound, productNotFoundTitleMsg, productNotFoundBodyMsg)
			return
		}
		h.logger.Error("failed to delete product", "productId", id, "error", err)
		web.RespondWithError(w, h.logger, r, http.StatusInternalServerError, internalServerErrorTitleMsg, "Failed to delete product.")
		return
	}

	web.RespondWithJSON(w, h.logger, http.StatusOK, result)
}
