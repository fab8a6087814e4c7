package stubserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

func findCartItem(cart []*models.CartItem, productID string) *models.CartItem {
	for _, item := range cart {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

// cartResponse prices the cart the way the real backend does: 8% tax, free
// shipping from $50. Lines keep their insertion order.
func cartResponse(cart []*models.CartItem) models.Cart {
	items := make([]models.CartItem, 0, len(cart))
	var subtotal float64
	var count int
	for _, item := range cart {
		items = append(items, *item)
		subtotal += item.Subtotal
		count += item.Quantity
	}
	shipping := 5.99
	if subtotal >= 50 {
		shipping = 0
	}
	tax := subtotal * 0.08
	return models.Cart{
		Items:      items,
		TotalItems: count,
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		Total:      subtotal + tax + shipping,
	}
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := cartResponse(s.carts[currentUser(r).ID])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	s.mu.Lock()
	var product *models.Product
	for i := range s.products {
		if s.products[i].ID == req.ProductID {
			product = &s.products[i]
			break
		}
	}
	if product == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if product.Stock < req.Quantity {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Not enough stock")
		return
	}

	userID := currentUser(r).ID
	if item := findCartItem(s.carts[userID], req.ProductID); item != nil {
		item.Quantity += req.Quantity
		item.Subtotal = item.Price * float64(item.Quantity)
	} else {
		s.carts[userID] = append(s.carts[userID], &models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  req.Quantity,
			ImageURL:  product.ImageURL,
			Subtotal:  product.Price * float64(req.Quantity),
		})
	}
	resp := cartResponse(s.carts[userID])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	s.mu.Lock()
	userID := currentUser(r).ID
	item := findCartItem(s.carts[userID], productID)
	if item == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Item not in cart")
		return
	}
	item.Quantity = req.Quantity
	item.Subtotal = item.Price * float64(req.Quantity)
	resp := cartResponse(s.carts[userID])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	s.mu.Lock()
	userID := currentUser(r).ID
	cart := s.carts[userID]
	for i, item := range cart {
		if item.ProductID == productID {
			s.carts[userID] = append(cart[:i], cart[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.carts[currentUser(r).ID] = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}
