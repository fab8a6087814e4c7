// Package orders places and reads orders for the authenticated customer.
package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
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

// ValidationError is a client-side form error; it never reaches the network.
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidationErrors aggregates every failing field so forms can mark all of
// them at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

func validateAddress(a models.ShippingAddress) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(a.FirstName) == "" {
		errs = append(errs, ValidationError{Field: "FirstName", Description: "First name is required"})
	}
	if strings.TrimSpace(a.LastName) == "" {
		errs = append(errs, ValidationError{Field: "LastName", Description: "Last name is required"})
	}
	if strings.TrimSpace(a.Address) == "" {
		errs = append(errs, ValidationError{Field: "Address", Description: "Address is required"})
	}
	if strings.TrimSpace(a.City) == "" {
		errs = append(errs, ValidationError{Field: "City", Description: "City is required"})
	}
	if strings.TrimSpace(a.ZipCode) == "" {
		errs = append(errs, ValidationError{Field: "ZipCode", Description: "ZIP code is required"})
	}
	return errs
}

type createRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

// Create places an order from the current cart. The address is validated
// locally first; invalid input is returned without any request being sent.
func (s *Service) Create(ctx context.Context, address models.ShippingAddress, paymentMethod string) (models.Order, error) {
	if errs := validateAddress(address); len(errs) > 0 {
		return models.Order{}, errs
	}
	if paymentMethod == "" {
		paymentMethod = "credit_card"
	}

	var order models.Order
	err := s.api.Post(ctx, httpapi.EndpointOrders, createRequest{
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
	}, &order)
	return order, err
}

// List returns one page of the user's order history.
func (s *Service) List(ctx context.Context, page, limit int) (models.OrderList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var list models.OrderList
	err := s.api.Get(ctx, httpapi.EndpointOrders+"?"+q.Encode(), &list)
	return list, err
}

func (s *Service) Get(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := s.api.Get(ctx, httpapi.EndpointOrder(id), &order)
	return order, err
}

func (s *Service) Tracking(ctx context.Context, id string) (models.Tracking, error) {
	var tracking models.Tracking
	err := s.api.Get(ctx, httpapi.EndpointOrderTracking(id), &tracking)
	return tracking, err
}
