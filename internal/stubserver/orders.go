package stubserver

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShippingAddress models.ShippingAddress `json:"shipping_address"`
		PaymentMethod   string                 `json:"payment_method"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	u := currentUser(r)

	s.mu.Lock()
	cart := s.carts[u.ID]
	if len(cart) == 0 {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	priced := cartResponse(cart)
	items := make([]models.OrderItem, 0, len(priced.Items))
	for _, it := range priced.Items {
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}

	now := time.Now().UTC()
	order := models.Order{
		ID:              s.newID("order"),
		UserID:          u.ID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		Subtotal:        priced.Subtotal,
		Tax:             priced.Tax,
		Shipping:        priced.Shipping,
		Total:           priced.Total,
		Status:          models.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.orders[order.ID] = order
	s.carts[u.ID] = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	page, limit := 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 1 {
		limit = v
	}

	s.mu.Lock()
	mine := []models.Order{}
	for _, order := range s.orders {
		if order.UserID == u.ID {
			mine = append(mine, order)
		}
	}
	s.mu.Unlock()

	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := len(mine)
	start := clamp((page-1)*limit, 0, total)
	end := clamp(start+limit, start, total)

	writeJSON(w, http.StatusOK, models.OrderList{Orders: mine[start:end], Total: total})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	order, ok := s.orders[id]
	s.mu.Unlock()
	if !ok || order.UserID != u.ID {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleOrderTracking(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	order, ok := s.orders[id]
	s.mu.Unlock()
	if !ok || order.UserID != u.ID {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	events := []models.TrackingEvent{
		{Status: models.OrderPending, Timestamp: order.CreatedAt},
	}
	if order.Status != models.OrderPending {
		events = append(events, models.TrackingEvent{Status: order.Status, Timestamp: order.UpdatedAt})
	}
	writeJSON(w, http.StatusOK, models.Tracking{OrderID: order.ID, Status: order.Status, Events: events})
}
