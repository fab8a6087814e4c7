package stubserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

type productQuery struct {
	search    string
	category  string
	minPrice  *float64
	maxPrice  *float64
	sortBy    string
	sortOrder string
	page      int
	limit     int
}

func parseProductQuery(r *http.Request) productQuery {
	q := r.URL.Query()
	pq := productQuery{
		search:    q.Get("search"),
		category:  q.Get("category"),
		sortBy:    q.Get("sort_by"),
		sortOrder: q.Get("sort_order"),
		page:      1,
		limit:     10,
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		pq.minPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		pq.maxPrice = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		pq.page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 1 && v <= 100 {
		pq.limit = v
	}
	if pq.sortBy == "" {
		pq.sortBy = "name"
	}
	if pq.sortOrder == "" {
		pq.sortOrder = "asc"
	}
	return pq
}

func matches(p models.Product, pq productQuery) bool {
	if pq.category != "" && !strings.EqualFold(p.Category, pq.category) {
		return false
	}
	if pq.search != "" {
		needle := strings.ToLower(pq.search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if pq.minPrice != nil && p.Price < *pq.minPrice {
		return false
	}
	if pq.maxPrice != nil && p.Price > *pq.maxPrice {
		return false
	}
	return true
}

func sortProducts(products []models.Product, sortBy, sortOrder string) {
	less := func(a, b models.Product) bool { return a.Name < b.Name }
	switch sortBy {
	case "price":
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case "rating":
		less = func(a, b models.Product) bool {
			ra, rb := 0.0, 0.0
			if a.Rating != nil {
				ra = *a.Rating
			}
			if b.Rating != nil {
				rb = *b.Rating
			}
			return ra < rb
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		if sortOrder == "desc" {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	pq := parseProductQuery(r)

	s.mu.Lock()
	filtered := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if matches(p, pq) {
			filtered = append(filtered, p)
		}
	}
	s.mu.Unlock()

	sortProducts(filtered, pq.sortBy, pq.sortOrder)

	total := len(filtered)
	start := clamp((pq.page-1)*pq.limit, 0, total)
	end := clamp(start+pq.limit, start, total)

	writeJSON(w, http.StatusOK, models.ProductPage{
		Products: filtered[start:end],
		Total:    total,
		Page:     pq.page,
		Limit:    pq.limit,
		HasNext:  end < total,
		HasPrev:  pq.page > 1,
	})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Product not found")
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cats := make([]models.Category, len(s.cats))
	copy(cats, s.cats)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	featured := make([]models.Product, 0, 4)
	for _, p := range s.products {
		if p.Rating != nil && *p.Rating >= 4.5 {
			featured = append(featured, p)
		}
		if len(featured) == 4 {
			break
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, featured)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	prefix := strings.ToLower(r.URL.Query().Get("q"))

	s.mu.Lock()
	suggestions := []string{}
	for _, p := range s.products {
		if prefix != "" && strings.HasPrefix(strings.ToLower(p.Name), prefix) {
			suggestions = append(suggestions, p.Name)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, suggestions)
}
