package rest

import (
	"net/http"

	"github.com/khairunnisaa/inventory/internal/service/order"
)

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	lines := make([]order.RequestedLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, order.RequestedLine{
			ItemID:    line.ItemID,
			VariantID: line.VariantID,
			Qty:       line.Quantity,
		})
	}

	created, err := s.orders.CreateOrder(r.Context(), lines)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderDTO(created))
}
