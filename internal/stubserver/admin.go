package stubserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

const lowStockThreshold = 20

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := models.AdminStats{TotalProducts: len(s.products), TotalOrders: len(s.orders)}
	for _, p := range s.products {
		if p.Stock < lowStockThreshold {
			stats.LowStockProducts++
		}
	}
	for _, o := range s.orders {
		stats.TotalRevenue += o.Total
		if o.Status == models.OrderPending {
			stats.PendingOrders++
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	products := make([]models.Product, len(s.products))
	copy(products, s.products)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, products)
}

type productInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
}

func (s *Server) handleAdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "Name and a positive price are required")
		return
	}

	s.mu.Lock()
	p := models.Product{
		ID:          s.newID("prod"),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    "USD",
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	}
	s.products = append(s.products, p)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleAdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req productInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := &s.products[i]
			p.Name = req.Name
			p.Description = req.Description
			p.Price = req.Price
			p.Category = req.Category
			p.ImageURL = req.ImageURL
			p.Stock = req.Stock
			writeJSON(w, http.StatusOK, *p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Product not found")
}

func (s *Server) handleAdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Product not found")
}

func (s *Server) handleAdminOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleAdminOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	order, ok := s.orders[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

var validStatuses = map[string]bool{
	models.OrderPending:    true,
	models.OrderProcessing: true,
	models.OrderShipped:    true,
	models.OrderDelivered:  true,
	models.OrderCancelled:  true,
}

func (s *Server) handleAdminOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if !validStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	order, ok := s.orders[id]
	if ok {
		order.Status = req.Status
		order.UpdatedAt = time.Now().UTC()
		s.orders[id] = order
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}
