// Package cart mirrors the server-side shopping cart. The server is
// authoritative: every mutating call replaces the local line items with the
// list the backend returns, so merge/stacking semantics live in one place.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/models"
)

// Authenticator gates cart loading on an established session.
type Authenticator interface {
	IsAuthenticated() bool
}

// Holder keeps the in-memory cart consistent with user actions.
//
// Mutations are serialized by the caller's action cadence; there is no
// internal ordering across overlapping calls, so rapid concurrent mutations
// are last-write-wins.
type Holder struct {
	api  *httpapi.Client
	auth Authenticator
	log  *logrus.Entry

	mu     sync.Mutex
	items  []models.CartItem
	priced models.Cart // server-priced totals from the last response
	errMsg string
}

func NewHolder(api *httpapi.Client, auth Authenticator, log *logrus.Logger) *Holder {
	return &Holder{
		api:  api,
		auth: auth,
		log:  log.WithField("component", "cart"),
	}
}

type addRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Load fetches the current cart. It is a no-op for anonymous sessions.
func (h *Holder) Load(ctx context.Context) error {
	if !h.auth.IsAuthenticated() {
		return nil
	}
	var resp models.Cart
	if err := h.api.Get(ctx, httpapi.EndpointCart, &resp); err != nil {
		h.setError(httpapi.Detail(err, "Failed to load cart"))
		return err
	}
	h.replace(resp)
	return nil
}

// Add posts a quantity delta for the product. On failure the prior local
// state is untouched.
func (h *Holder) Add(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	var resp models.Cart
	err := h.api.Post(ctx, httpapi.EndpointCartAdd, addRequest{ProductID: productID, Quantity: quantity}, &resp)
	if err != nil {
		h.setError(httpapi.Detail(err, "Failed to add item to cart"))
		return err
	}
	h.replace(resp)
	return nil
}

// UpdateQuantity sets the absolute quantity for a line. Zero or negative
// quantities remove the line instead.
func (h *Holder) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return h.Remove(ctx, productID)
	}
	var resp models.Cart
	err := h.api.Put(ctx, httpapi.EndpointCartItem(productID), addRequest{ProductID: productID, Quantity: quantity}, &resp)
	if err != nil {
		h.setError(httpapi.Detail(err, "Failed to update quantity"))
		return err
	}
	h.replace(resp)
	return nil
}

// Remove deletes the line server-side, then drops it locally by product id,
// which stays correct even if local and server ordering differ.
func (h *Holder) Remove(ctx context.Context, productID string) error {
	if err := h.api.Delete(ctx, httpapi.EndpointCartItem(productID), nil); err != nil {
		h.setError(httpapi.Detail(err, "Failed to remove item from cart"))
		return err
	}
	h.mu.Lock()
	for i, item := range h.items {
		if item.ProductID == productID {
			h.items = append(h.items[:i], h.items[i+1:]...)
			break
		}
	}
	h.errMsg = ""
	h.mu.Unlock()
	return nil
}

// Clear empties the cart server-side and locally.
func (h *Holder) Clear(ctx context.Context) error {
	if err := h.api.Delete(ctx, httpapi.EndpointCart, nil); err != nil {
		h.setError(httpapi.Detail(err, "Failed to clear cart"))
		return err
	}
	h.replace(models.Cart{})
	return nil
}

// Items returns a copy of the current line items.
func (h *Holder) Items() []models.CartItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	items := make([]models.CartItem, len(h.items))
	copy(items, h.items)
	return items
}

// Total is the sum of line subtotals, recomputed on every read.
func (h *Holder) Total() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var total float64
	for _, item := range h.items {
		total += item.Subtotal
	}
	return total
}

// ItemCount is the sum of line quantities, recomputed on every read.
func (h *Holder) ItemCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var count int
	for _, item := range h.items {
		count += item.Quantity
	}
	return count
}

// Item returns the line for the product, or nil when absent.
func (h *Holder) Item(productID string) *models.CartItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, item := range h.items {
		if item.ProductID == productID {
			it := item
			return &it
		}
	}
	return nil
}

func (h *Holder) IsEmpty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items) == 0
}

// Pricing returns the server-priced totals (tax, shipping) from the last
// successful response. Line totals should be read via Total/ItemCount.
func (h *Holder) Pricing() models.Cart {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.priced
}

// Err returns the message from the last failed operation.
func (h *Holder) Err() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errMsg
}

func (h *Holder) ClearError() {
	h.mu.Lock()
	h.errMsg = ""
	h.mu.Unlock()
}

// Summary renders a one-line description for logs and status bars.
func (h *Holder) Summary() string {
	return fmt.Sprintf("%d items, $%.2f", h.ItemCount(), h.Total())
}

func (h *Holder) replace(resp models.Cart) {
	h.mu.Lock()
	h.items = resp.Items
	h.priced = resp
	h.errMsg = ""
	h.mu.Unlock()
}

func (h *Holder) setError(msg string) {
	h.mu.Lock()
	h.errMsg = msg
	h.mu.Unlock()
	h.log.Warn(msg)
}
