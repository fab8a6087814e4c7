package catalog

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/models"
)

// Service issues product reads against the backend.
type Service struct {
	api *httpapi.Client
}

func NewService(api *httpapi.Client) *Service {
	return &Service{api: api}
}

// List fetches one page for the filter. Search and category are independent
// parameters; when both are set the backend intersects them.
func (s *Service) List(ctx context.Context, f Filter, pageSize int) (models.ProductPage, error) {
	q := f.Encode()
	q.Set("limit", strconv.Itoa(pageSize))

	var page models.ProductPage
	err := s.api.Get(ctx, httpapi.EndpointProducts+"?"+q.Encode(), &page)
	return page, err
}

func (s *Service) Get(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := s.api.Get(ctx, httpapi.EndpointProduct(id), &p)
	return p, err
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.api.Get(ctx, httpapi.EndpointProductCategories, &cats)
	return cats, err
}

func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.api.Get(ctx, httpapi.EndpointProductFeatured, &products)
	return products, err
}

// Suggestions returns search completions for a typed prefix.
func (s *Service) Suggestions(ctx context.Context, prefix string) ([]string, error) {
	q := url.Values{}
	q.Set("q", prefix)

	var suggestions []string
	err := s.api.Get(ctx, httpapi.EndpointProductSuggestions+"?"+q.Encode(), &suggestions)
	return suggestions, err
}
