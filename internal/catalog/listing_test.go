package catalog

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/models"
)

// fakeLister records every fetch and serves a configurable catalog size.
type fakeLister struct {
	mu      sync.Mutex
	calls   []Filter
	ctxs    []context.Context
	total   int
	fail    bool
	block   chan struct{} // when set, the next call waits here
	blocked bool
}

func (f *fakeLister) List(ctx context.Context, filter Filter, pageSize int) (models.ProductPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filter)
	f.ctxs = append(f.ctxs, ctx)
	block := f.block
	shouldBlock := block != nil && !f.blocked
	if shouldBlock {
		f.blocked = true
	}
	fail := f.fail
	total := f.total
	f.mu.Unlock()

	if shouldBlock {
		select {
		case <-block:
		case <-ctx.Done():
			return models.ProductPage{}, ctx.Err()
		}
	}
	if fail {
		return models.ProductPage{}, errors.New("backend down")
	}

	products := make([]models.Product, 0, pageSize)
	start := (filter.Page - 1) * pageSize
	for i := start; i < total && i < start+pageSize; i++ {
		products = append(products, models.Product{ID: string(rune('a' + i)), Name: "product"})
	}
	return models.ProductPage{Products: products, Total: total, Page: filter.Page, Limit: pageSize}, nil
}

func (f *fakeLister) lastCall(t *testing.T) Filter {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no fetch was issued")
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestListing(total int) (*Listing, *fakeLister, *MemoryLocation) {
	svc := &fakeLister{total: total}
	loc := NewMemoryLocation()
	return NewListing(svc, loc, 12, logrus.New()), svc, loc
}

func TestSubmitSearchResetsPageAndSyncsLocation(t *testing.T) {
	listing, svc, loc := newTestListing(30)

	if err := listing.SetPage(context.Background(), 2); err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	listing.SetSearchInput("phone")
	if err := listing.SubmitSearch(context.Background()); err != nil {
		t.Fatalf("SubmitSearch: %v", err)
	}

	call := svc.lastCall(t)
	if call.Search != "phone" || call.Category != "" || call.Page != 1 {
		t.Errorf("expected fetch with search=phone, empty category, page 1; got %+v", call)
	}

	q := loc.Query()
	if q.Get("search") != "phone" || q.Get("page") != "1" {
		t.Errorf("location not canonical: %q", q.Encode())
	}
}

func TestCategoryChangeFromDeepPageFetchesPageOne(t *testing.T) {
	listing, svc, _ := newTestListing(100)

	if err := listing.SetPage(context.Background(), 3); err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if got := svc.lastCall(t).Page; got != 3 {
		t.Fatalf("expected page 3 fetch, got %d", got)
	}

	if err := listing.SubmitCategory(context.Background(), "Electronics"); err != nil {
		t.Fatalf("SubmitCategory: %v", err)
	}
	call := svc.lastCall(t)
	if call.Page != 1 || call.Category != "Electronics" {
		t.Errorf("expected page 1 with category, got %+v", call)
	}
}

func TestSetPagePreservesOtherFilters(t *testing.T) {
	listing, svc, _ := newTestListing(100)

	listing.SetSearchInput("watch")
	if err := listing.SubmitSearch(context.Background()); err != nil {
		t.Fatalf("SubmitSearch: %v", err)
	}
	if err := listing.SubmitSort(context.Background(), SortByPrice, SortDesc); err != nil {
		t.Fatalf("SubmitSort: %v", err)
	}
	if err := listing.SetPage(context.Background(), 4); err != nil {
		t.Fatalf("SetPage: %v", err)
	}

	call := svc.lastCall(t)
	if call.Search != "watch" || call.SortBy != SortByPrice || call.SortOrder != SortDesc {
		t.Errorf("page change dropped filters: %+v", call)
	}
	if call.Page != 4 {
		t.Errorf("expected page 4, got %d", call.Page)
	}
}

func TestNoFeedbackLoopOnOwnWrite(t *testing.T) {
	listing, svc, loc := newTestListing(30)

	listing.SetSearchInput("phone")
	if err := listing.SubmitSearch(context.Background()); err != nil {
		t.Fatalf("SubmitSearch: %v", err)
	}
	writes := loc.Writes()
	if writes != 1 {
		t.Fatalf("expected exactly one location write per fetch, got %d", writes)
	}
	fetches := svc.callCount()

	// The routing layer reports our own write back as a change.
	if err := listing.ApplyLocation(context.Background()); err != nil {
		t.Fatalf("ApplyLocation: %v", err)
	}

	if svc.callCount() != fetches {
		t.Error("own write must not trigger a refetch")
	}
	if loc.Writes() != writes {
		t.Error("own write must not trigger a second location write")
	}
}

func TestApplyLocationMatchingStateIsNoOp(t *testing.T) {
	listing, svc, loc := newTestListing(30)

	if err := listing.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	fetches := svc.callCount()
	writes := loc.Writes()

	// External navigation to a URL already matching the in-memory state.
	loc.SetQuery(listing.Filter().Encode())
	if err := listing.ApplyLocation(context.Background()); err != nil {
		t.Fatalf("ApplyLocation: %v", err)
	}

	if svc.callCount() != fetches || loc.Writes() != writes {
		t.Error("matching external change must not refetch or rewrite")
	}
}

func TestApplyLocationExternalChangeFetchesWithoutWrite(t *testing.T) {
	listing, svc, loc := newTestListing(60)

	if err := listing.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	writes := loc.Writes()

	q, _ := url.ParseQuery("category=Books&page=2&sort_by=name&sort_order=asc")
	loc.SetQuery(q)
	if err := listing.ApplyLocation(context.Background()); err != nil {
		t.Fatalf("ApplyLocation: %v", err)
	}

	call := svc.lastCall(t)
	if call.Category != "Books" || call.Page != 2 {
		t.Errorf("external change not applied: %+v", call)
	}
	if loc.Writes() != writes {
		t.Error("a filter that came from the location must not be written back")
	}
}

func TestExternalChangeDoesNotClobberTypedSearch(t *testing.T) {
	listing, _, loc := newTestListing(30)

	listing.SetSearchInput("half-typed query")

	q, _ := url.ParseQuery("search=old&page=1&sort_by=name&sort_order=asc")
	loc.SetQuery(q)
	if err := listing.ApplyLocation(context.Background()); err != nil {
		t.Fatalf("ApplyLocation: %v", err)
	}

	if listing.Filter().Search != "old" {
		t.Errorf("filter should take the URL's search, got %q", listing.Filter().Search)
	}
	if listing.SearchInput() != "half-typed query" {
		t.Errorf("typed input was clobbered: %q", listing.SearchInput())
	}
}

func TestFailedFetchKeepsPreviousResults(t *testing.T) {
	listing, svc, loc := newTestListing(30)

	if err := listing.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := listing.Products()
	writes := loc.Writes()

	svc.mu.Lock()
	svc.fail = true
	svc.mu.Unlock()

	if err := listing.SetPage(context.Background(), 2); err == nil {
		t.Fatal("expected fetch error")
	}

	if len(listing.Products()) != len(before) {
		t.Error("failed fetch must leave previous products visible")
	}
	if listing.Err() == "" {
		t.Error("expected an error message")
	}
	if loc.Writes() != writes {
		t.Error("failed fetch must not write the location")
	}
}

func TestPageClampedWhenTotalShrinks(t *testing.T) {
	listing, svc, _ := newTestListing(100)

	if err := listing.SetPage(context.Background(), 5); err != nil {
		t.Fatalf("SetPage: %v", err)
	}

	// The catalog shrinks to a single page before the next fetch.
	svc.mu.Lock()
	svc.total = 10
	svc.mu.Unlock()

	if err := listing.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := listing.Filter().Page; got != 1 {
		t.Errorf("expected page clamped to 1, got %d", got)
	}
	if got := svc.lastCall(t).Page; got != 1 {
		t.Errorf("expected a refetch at page 1, got %d", got)
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	listing, svc, _ := newTestListing(30)

	release := make(chan struct{})
	svc.mu.Lock()
	svc.block = release
	svc.mu.Unlock()

	listing.SetSearchInput("slow")
	done := make(chan error, 1)
	go func() {
		done <- listing.SubmitSearch(context.Background())
	}()

	// Wait until the slow fetch is in flight.
	for svc.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	listing.SetSearchInput("fast")
	if err := listing.SubmitSearch(context.Background()); err != nil {
		t.Fatalf("SubmitSearch: %v", err)
	}
	close(release)
	<-done

	if got := listing.Filter().Search; got != "fast" {
		t.Errorf("stale fetch overwrote newer state: search=%q", got)
	}
	if listing.Err() != "" {
		t.Errorf("superseded fetch must not surface an error, got %q", listing.Err())
	}
}

func TestFetchContextReleasedAfterCompletion(t *testing.T) {
	listing, svc, _ := newTestListing(30)

	if err := listing.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	svc.mu.Lock()
	fctx := svc.ctxs[len(svc.ctxs)-1]
	svc.mu.Unlock()

	select {
	case <-fctx.Done():
	default:
		t.Error("fetch context still live after the fetch completed")
	}
}

func TestClearFiltersResetsEverything(t *testing.T) {
	listing, svc, _ := newTestListing(100)

	listing.SetSearchInput("watch")
	if err := listing.SubmitSearch(context.Background()); err != nil {
		t.Fatalf("SubmitSearch: %v", err)
	}
	min := 10.0
	if err := listing.SubmitPriceRange(context.Background(), &min, nil); err != nil {
		t.Fatalf("SubmitPriceRange: %v", err)
	}

	if err := listing.ClearFilters(context.Background()); err != nil {
		t.Fatalf("ClearFilters: %v", err)
	}

	if !listing.Filter().Equal(DefaultFilter()) {
		t.Errorf("expected default filter, got %+v", listing.Filter())
	}
	call := svc.lastCall(t)
	if call.Search != "" || call.MinPrice != nil {
		t.Errorf("clear did not reach the fetch: %+v", call)
	}
}
