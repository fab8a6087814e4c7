// Package favorites tracks the user's product bookmarks and notifies
// subscribers when membership changes, replacing the browser-event broadcast
// the storefront header relied on.
package favorites

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/models"
)

// Holder caches the favorited id set for the current session. Listings load
// the set once instead of probing per card; the single Check remains for
// detail pages.
type Holder struct {
	api *httpapi.Client
	log *logrus.Entry

	mu       sync.Mutex
	ids      map[string]bool
	loaded   bool
	watchers []func(count int)
}

func NewHolder(api *httpapi.Client, log *logrus.Logger) *Holder {
	return &Holder{
		api: api,
		log: log.WithField("component", "favorites"),
		ids: map[string]bool{},
	}
}

// LoadIDs fetches the favorited product ids in one call and caches them.
func (h *Holder) LoadIDs(ctx context.Context) error {
	products, err := h.List(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.ids = make(map[string]bool, len(products))
	for _, p := range products {
		h.ids[p.ID] = true
	}
	h.loaded = true
	h.mu.Unlock()
	h.notify()
	return nil
}

// List returns the full favorite products, for the favorites page.
func (h *Holder) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := h.api.Get(ctx, httpapi.EndpointFavorites, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Loaded reports whether the bulk id set has been fetched this session.
func (h *Holder) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

// IsFavorited answers from the cached set once LoadIDs has run.
func (h *Holder) IsFavorited(productID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ids[productID]
}

// Count is the number of favorited products currently known.
func (h *Holder) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ids)
}

// Check probes a single product's membership. It is best-effort: any failure
// degrades to not-favorited rather than blocking the view.
func (h *Holder) Check(ctx context.Context, productID string) bool {
	var resp struct {
		IsFavorited bool `json:"is_favorited"`
	}
	if err := h.api.Get(ctx, httpapi.EndpointFavoriteCheck(productID), &resp); err != nil {
		h.log.WithError(err).Debug("favorite check failed")
		return false
	}
	h.mu.Lock()
	if resp.IsFavorited {
		h.ids[productID] = true
	} else {
		delete(h.ids, productID)
	}
	h.mu.Unlock()
	return resp.IsFavorited
}

// Add bookmarks the product. Already-favorited is treated as success, like
// the backend does.
func (h *Holder) Add(ctx context.Context, productID string) error {
	if err := h.api.Post(ctx, httpapi.EndpointFavorite(productID), nil, nil); err != nil {
		return err
	}
	h.mu.Lock()
	h.ids[productID] = true
	h.mu.Unlock()
	h.notify()
	return nil
}

// Remove drops the bookmark.
func (h *Holder) Remove(ctx context.Context, productID string) error {
	if err := h.api.Delete(ctx, httpapi.EndpointFavorite(productID), nil); err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.ids, productID)
	h.mu.Unlock()
	h.notify()
	return nil
}

// Toggle flips membership based on the cached state and returns the new one.
func (h *Holder) Toggle(ctx context.Context, productID string) (bool, error) {
	if h.IsFavorited(productID) {
		if err := h.Remove(ctx, productID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := h.Add(ctx, productID); err != nil {
		return false, err
	}
	return true, nil
}

// Subscribe registers a callback invoked with the new count after every
// membership change, so a count badge can refresh itself.
func (h *Holder) Subscribe(fn func(count int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchers = append(h.watchers, fn)
}

// Reset drops all cached state, for logout.
func (h *Holder) Reset() {
	h.mu.Lock()
	h.ids = map[string]bool{}
	h.loaded = false
	h.mu.Unlock()
	h.notify()
}

func (h *Holder) notify() {
	h.mu.Lock()
	count := len(h.ids)
	watchers := make([]func(int), len(h.watchers))
	copy(watchers, h.watchers)
	h.mu.Unlock()
	for _, fn := range watchers {
		fn(count)
	}
}
