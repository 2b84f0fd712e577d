package rest

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/khairunnisaa/inventory/internal/service/catalog"
	"github.com/khairunnisaa/inventory/internal/service/order"
)

// Server — JSON API поверх сервисов каталога и заказов. Заказы приходят
// через order.Creator: в боевой сборке это retry-обёртка движка.
type Server struct {
	items    *catalog.ItemService
	variants *catalog.VariantService
	orders   order.Creator
	logger   *log.Entry
}

// NewServer собирает сервер API.
func NewServer(items *catalog.ItemService, variants *catalog.VariantService, orders order.Creator, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "rest")
	}
	return &Server{
		items:    items,
		variants: variants,
		orders:   orders,
		logger:   logger,
	}
}

// Handler возвращает маршрутизатор API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/items", s.listItems)
	mux.HandleFunc("POST /api/items", s.createItem)
	mux.HandleFunc("GET /api/items/{id}", s.getItem)
	mux.HandleFunc("PUT /api/items/{id}", s.updateItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.deleteItem)

	mux.HandleFunc("GET /api/variants", s.listVariants)
	mux.HandleFunc("POST /api/variants", s.createVariant)
	mux.HandleFunc("GET /api/variants/{id}", s.getVariant)
	mux.HandleFunc("PUT /api/variants/{id}", s.updateVariant)
	mux.HandleFunc("DELETE /api/variants/{id}", s.deleteVariant)

	mux.HandleFunc("GET /api/orders", s.listOrders)
	mux.HandleFunc("POST /api/orders", s.createOrder)
	mux.HandleFunc("GET /api/orders/{id}", s.getOrder)

	return mux
}
