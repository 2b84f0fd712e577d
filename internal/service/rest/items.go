package rest

import (
	"net/http"

	"github.com/khairunnisaa/inventory/internal/domain"
	"github.com/khairunnisaa/inventory/internal/service/catalog"
)

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]itemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item, nil))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// getItem отдаёт товар вместе с его вариантами.
func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := s.items.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var variants []domain.ItemVariant
	if item.HasVariants {
		variants, err = s.variants.ListByItem(r.Context(), item.ID)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, toItemDTO(item, variants))
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := s.items.Create(r.Context(), catalog.CreateItemInput{
		Name:           req.Name,
		Description:    req.Description,
		BasePriceMinor: req.BasePriceMinor,
		StockQty:       req.StockQuantity,
		HasVariants:    req.HasVariants,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemDTO(item, nil))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := s.items.Update(r.Context(), id, catalog.UpdateItemInput{
		Name:           req.Name,
		Description:    req.Description,
		BasePriceMinor: req.BasePriceMinor,
		StockQty:       req.StockQuantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemDTO(item, nil))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.items.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
