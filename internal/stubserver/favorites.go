package stubserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

func (s *Server) userFavorites(userID string) map[string]bool {
	favs, ok := s.favorites[userID]
	if !ok {
		favs = map[string]bool{}
		s.favorites[userID] = favs
	}
	return favs
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	favs := s.userFavorites(currentUser(r).ID)
	products := []models.Product{}
	for _, p := range s.products {
		if favs[p.ID] {
			products = append(products, p)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCheckFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	isFav := s.userFavorites(currentUser(r).ID)[id]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"is_favorited": isFav})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	exists := false
	for _, p := range s.products {
		if p.ID == id {
			exists = true
			break
		}
	}
	if !exists {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	s.userFavorites(currentUser(r).ID)[id] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Added to favorites", "product_id": id})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	delete(s.userFavorites(currentUser(r).ID), id)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from favorites", "product_id": id})
}
