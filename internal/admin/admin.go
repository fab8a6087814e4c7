// Package admin is the back-office client: dashboard stats, product CRUD,
// and order management. It expects an httpapi client carrying the admin
// token.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/models"
)

type Service struct {
	api *httpapi.Client
}

func NewService(api *httpapi.Client) *Service {
	return &Service{api: api}
}

// ProductInput is the create/update form for a catalog product.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
}

type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

func validateProduct(p ProductInput) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ValidationError{Field: "Name", Description: "Name is required"})
	}
	if p.Price <= 0 {
		errs = append(errs, ValidationError{Field: "Price", Description: "Price must be greater than zero"})
	}
	if p.Stock < 0 {
		errs = append(errs, ValidationError{Field: "Stock", Description: "Stock cannot be negative"})
	}
	return errs
}

func (s *Service) Stats(ctx context.Context) (models.AdminStats, error) {
	var stats models.AdminStats
	err := s.api.Get(ctx, httpapi.EndpointAdminStats, &stats)
	return stats, err
}

func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.api.Get(ctx, httpapi.EndpointAdminProducts, &products)
	return products, err
}

// CreateProduct validates locally before sending; invalid input never
// reaches the network.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (models.Product, error) {
	if errs := validateProduct(input); len(errs) > 0 {
		return models.Product{}, errs
	}
	var product models.Product
	err := s.api.Post(ctx, httpapi.EndpointAdminProducts, input, &product)
	return product, err
}

func (s *Service) UpdateProduct(ctx context.Context, id string, input ProductInput) (models.Product, error) {
	if errs := validateProduct(input); len(errs) > 0 {
		return models.Product{}, errs
	}
	var product models.Product
	err := s.api.Put(ctx, httpapi.EndpointAdminProduct(id), input, &product)
	return product, err
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.api.Delete(ctx, httpapi.EndpointAdminProduct(id), nil)
}

func (s *Service) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.api.Get(ctx, httpapi.EndpointAdminOrders, &orders)
	return orders, err
}

func (s *Service) Order(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := s.api.Get(ctx, httpapi.EndpointAdminOrder(id), &order)
	return order, err
}

var allowedStatuses = map[string]bool{
	models.OrderPending:    true,
	models.OrderProcessing: true,
	models.OrderShipped:    true,
	models.OrderDelivered:  true,
	models.OrderCancelled:  true,
}

// UpdateOrderStatus moves an order through fulfilment. Unknown statuses are
// rejected locally.
func (s *Service) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if !allowedStatuses[status] {
		return ValidationErrors{{Field: "Status", Description: "Status must be one of pending, processing, shipped, delivered, cancelled"}}
	}
	body := map[string]string{"status": status}
	return s.api.Put(ctx, httpapi.EndpointAdminOrderStatus(id), body, nil)
}
