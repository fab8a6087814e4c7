package catalog

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

type lister interface {
	List(ctx context.Context, f Filter, pageSize int) (models.ProductPage, error)
}

// Listing keeps the in-memory filter, the fetched page, and the Location in
// agreement. The filter is the single source of truth; the location is a
// derived view written back after each successful fetch, guarded so a write
// of our own never bounces back as an external change.
type Listing struct {
	svc      lister
	loc      Location
	log      *logrus.Entry
	pageSize int

	mu          sync.Mutex
	filter      Filter
	searchInput string // typed but not yet submitted
	hasInput    bool
	items       []models.Product
	total       int
	errMsg      string

	seq       uint64 // fetch sequence; only the latest response is applied
	cancel    context.CancelFunc
	selfWrite string // signature of our last location write, consumed once
}

// NewListing seeds the filter from the location so deep links work.
func NewListing(svc lister, loc Location, pageSize int, log *logrus.Logger) *Listing {
	return &Listing{
		svc:      svc,
		loc:      loc,
		log:      log.WithField("component", "catalog"),
		pageSize: pageSize,
		filter:   DecodeFilter(loc.Query()),
	}
}

// SetSearchInput records what the user has typed without submitting. An
// external location change will not clobber it.
func (l *Listing) SetSearchInput(s string) {
	l.mu.Lock()
	l.searchInput = s
	l.hasInput = true
	l.mu.Unlock()
}

func (l *Listing) SearchInput() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hasInput {
		return l.searchInput
	}
	return l.filter.Search
}

// SubmitSearch promotes the typed search text into the filter and fetches.
// Any filter change other than pagination resets to page 1.
func (l *Listing) SubmitSearch(ctx context.Context) error {
	l.mu.Lock()
	if l.hasInput {
		l.filter.Search = l.searchInput
		l.hasInput = false
	}
	l.filter.Page = 1
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

func (l *Listing) SubmitCategory(ctx context.Context, category string) error {
	l.mu.Lock()
	l.filter.Category = category
	l.filter.Page = 1
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

func (l *Listing) SubmitPriceRange(ctx context.Context, min, max *float64) error {
	l.mu.Lock()
	l.filter.MinPrice = min
	l.filter.MaxPrice = max
	l.filter.Page = 1
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

func (l *Listing) SubmitSort(ctx context.Context, sortBy, sortOrder string) error {
	l.mu.Lock()
	l.filter.SortBy = sortBy
	l.filter.SortOrder = sortOrder
	l.filter.Page = 1
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

// SetPage changes only the page, preserving every other filter field.
func (l *Listing) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.filter.Page = page
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

// ClearFilters resets to the default state and refetches.
func (l *Listing) ClearFilters(ctx context.Context) error {
	l.mu.Lock()
	l.filter = DefaultFilter()
	l.searchInput = ""
	l.hasInput = false
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

// Refresh refetches the current filter without touching it.
func (l *Listing) Refresh(ctx context.Context) error {
	return l.fetch(ctx, true)
}

// ApplyLocation absorbs an external location change (back button, header
// search, category link). A change that came from our own write, or that
// matches the current filter, triggers neither a fetch nor a second write.
func (l *Listing) ApplyLocation(ctx context.Context) error {
	q := l.loc.Query()
	candidate := DecodeFilter(q)

	l.mu.Lock()
	if l.selfWrite != "" {
		written := l.selfWrite
		l.selfWrite = ""
		if candidate.Signature() == written {
			l.mu.Unlock()
			return nil
		}
	}
	if candidate.Equal(l.filter) {
		l.mu.Unlock()
		return nil
	}
	l.filter = candidate
	l.mu.Unlock()
	return l.fetch(ctx, false)
}

func (l *Listing) Filter() Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

func (l *Listing) Products() []models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]models.Product, len(l.items))
	copy(items, l.items)
	return items
}

func (l *Listing) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

func (l *Listing) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return totalPages(l.total, l.pageSize)
}

// Err returns the message from the last failed fetch; a failed fetch leaves
// the previously fetched products in place.
func (l *Listing) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errMsg
}

// fetch issues the request for the current filter and, on success, writes
// the canonical query back to the location if it differs. syncLocation is
// false when the filter itself just came from the location.
func (l *Listing) fetch(ctx context.Context, syncLocation bool) error {
	l.mu.Lock()
	l.seq++
	mySeq := l.seq
	if l.cancel != nil {
		// A newer submission supersedes the in-flight fetch.
		l.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	l.cancel = cancel
	f := l.filter
	pageSize := l.pageSize
	l.mu.Unlock()

	page, err := l.svc.List(fctx, f, pageSize)

	l.mu.Lock()
	if mySeq != l.seq {
		// A newer fetch has been issued; this response is stale.
		l.mu.Unlock()
		return nil
	}
	l.cancel = nil

	if err != nil {
		l.errMsg = "Failed to load products"
		l.mu.Unlock()
		l.log.WithError(err).Warn("product fetch failed")
		return err
	}

	l.items = page.Products
	l.total = page.Total
	l.errMsg = ""

	// The page may now point past the end if the result set shrank.
	clamped := false
	if max := totalPages(page.Total, pageSize); l.filter.Page > max {
		l.filter.Page = max
		clamped = true
	}

	wrote := false
	if syncLocation || clamped {
		sig := l.filter.Signature()
		if current := l.loc.Query().Encode(); current != sig {
			l.selfWrite = sig
			l.loc.Replace(l.filter.Encode())
			wrote = true
		}
	}
	l.mu.Unlock()

	if wrote {
		l.log.WithFields(logrus.Fields{"query": f.Signature()}).Debug("location updated")
	}
	if clamped {
		return l.fetch(ctx, false)
	}
	return nil
}

func totalPages(total, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
