package rest

import (
	"net/http"

	"github.com/khairunnisaa/inventory/internal/domain"
	"github.com/khairunnisaa/inventory/internal/service/catalog"
)

func (s *Server) listVariants(w http.ResponseWriter, r *http.Request) {
	// ?itemId=... сужает список до вариантов одного товара.
	var err error
	var variants []domain.ItemVariant

	if itemID := r.URL.Query().Get("itemId"); itemID != "" {
		variants, err = s.variants.ListByItem(r.Context(), itemID)
	} else {
		variants, err = s.variants.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]variantDTO, 0, len(variants))
	for _, v := range variants {
		dtos = append(dtos, toVariantDTO(v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) getVariant(w http.ResponseWriter, r *http.Request) {
	variant, err := s.variants.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVariantDTO(variant))
}

func (s *Server) createVariant(w http.ResponseWriter, r *http.Request) {
	var req createVariantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	variant, err := s.variants.Create(r.Context(), catalog.CreateVariantInput{
		ItemID:     req.ItemID,
		SKU:        req.SKU,
		Name:       req.Name,
		PriceMinor: req.PriceMinor,
		StockQty:   req.StockQuantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toVariantDTO(variant))
}

func (s *Server) updateVariant(w http.ResponseWriter, r *http.Request) {
	var req updateVariantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	variant, err := s.variants.Update(r.Context(), r.PathValue("id"), catalog.UpdateVariantInput{
		SKU:        req.SKU,
		Name:       req.Name,
		PriceMinor: req.PriceMinor,
		StockQty:   req.StockQuantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVariantDTO(variant))
}

func (s *Server) deleteVariant(w http.ResponseWriter, r *http.Request) {
	if err := s.variants.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
