// Package stubserver is an in-memory implementation of the e-commerce REST
// contract the client talks to. Tests run every state holder against it, and
// cmd/shopfront-stub serves it for local development.
package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

type user struct {
	models.User
	passwordHash []byte
}

type Server struct {
	mu        sync.Mutex
	products  []models.Product
	cats      []models.Category
	users     map[string]*user              // by email
	carts     map[string][]*models.CartItem // lines in insertion order
	favorites map[string]map[string]bool
	orders    map[string]models.Order
	nextID    int
	jwtSecret []byte
	log       *logrus.Entry
}

func New() *Server {
	s := &Server{
		users:     map[string]*user{},
		carts:     map[string][]*models.CartItem{},
		favorites: map[string]map[string]bool{},
		orders:    map[string]models.Order{},
		nextID:    1,
		jwtSecret: []byte("stub-secret"),
		log:       logrus.StandardLogger().WithField("component", "stubserver"),
	}
	s.seed()
	return s
}

// Router builds the full API surface under /api/v1.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.requireAuth(s.handleMe))
		r.Post("/auth/refresh", s.requireAuth(s.handleRefresh))

		r.Get("/products", s.handleProducts)
		r.Get("/products/categories", s.handleCategories)
		r.Get("/products/featured", s.handleFeatured)
		r.Get("/products/search/suggestions", s.handleSuggestions)
		r.Get("/products/{id}", s.handleProduct)

		r.Get("/cart", s.requireAuth(s.handleGetCart))
		r.Post("/cart/add", s.requireAuth(s.handleAddToCart))
		r.Put("/cart/items/{id}", s.requireAuth(s.handleUpdateCartItem))
		r.Delete("/cart/items/{id}", s.requireAuth(s.handleRemoveCartItem))
		r.Delete("/cart", s.requireAuth(s.handleClearCart))

		r.Post("/orders", s.requireAuth(s.handleCreateOrder))
		r.Get("/orders", s.requireAuth(s.handleListOrders))
		r.Get("/orders/{id}", s.requireAuth(s.handleGetOrder))
		r.Get("/orders/{id}/tracking", s.requireAuth(s.handleOrderTracking))

		r.Get("/favorites", s.requireAuth(s.handleListFavorites))
		r.Get("/favorites/{id}/check", s.requireAuth(s.handleCheckFavorite))
		r.Post("/favorites/{id}", s.requireAuth(s.handleAddFavorite))
		r.Delete("/favorites/{id}", s.requireAuth(s.handleRemoveFavorite))

		r.Get("/admin/stats", s.requireAdmin(s.handleAdminStats))
		r.Get("/admin/products", s.requireAdmin(s.handleAdminProducts))
		r.Post("/admin/products", s.requireAdmin(s.handleAdminCreateProduct))
		r.Put("/admin/products/{id}", s.requireAdmin(s.handleAdminUpdateProduct))
		r.Delete("/admin/products/{id}", s.requireAdmin(s.handleAdminDeleteProduct))
		r.Get("/admin/orders", s.requireAdmin(s.handleAdminOrders))
		r.Get("/admin/orders/{id}", s.requireAdmin(s.handleAdminOrder))
		r.Put("/admin/orders/{id}/status", s.requireAdmin(s.handleAdminOrderStatus))
	})
	return r
}

func (s *Server) newID(prefix string) string {
	id := fmt.Sprintf("%s_%d", prefix, s.nextID)
	s.nextID++
	return id
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError mirrors the backend's {"detail": ...} error shape.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}
	return nil
}
