package catalog

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/rafaelmeneses/shopfront/internal/httpapi"
	"github.com/rafaelmeneses/shopfront/internal/stubserver"
	"github.com/rafaelmeneses/shopfront/internal/tokenstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	srv := httptest.NewServer(stubserver.New().Router())
	t.Cleanup(srv.Close)

	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "tokens.json"))
	api := httpapi.New(srv.URL, store, httpapi.WithLogger(logrus.New()))
	return NewService(api)
}

func TestListSearchMatchesNameAndDescription(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// "quality" only appears in descriptions (headphones and camera lens).
	page, err := svc.List(ctx, Filter{Search: "quality", SortBy: SortByName, SortOrder: SortAsc, Page: 1}, 12)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 description matches, got %d", page.Total)
	}

	// Name matching is case-insensitive.
	page, err = svc.List(ctx, Filter{Search: "HEADPHONES", SortBy: SortByName, SortOrder: SortAsc, Page: 1}, 12)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Products[0].ID != "1" {
		t.Errorf("expected the headphones, got %+v", page.Products)
	}
}

func TestListCategoryAndPriceIntersect(t *testing.T) {
	svc := newTestService(t)
	max := 150.0

	page, err := svc.List(context.Background(), Filter{
		Category: "Electronics", MaxPrice: &max,
		SortBy: SortByName, SortOrder: SortAsc, Page: 1,
	}, 12)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Products[0].ID != "1" {
		t.Errorf("expected only the headphones under $150, got %+v", page.Products)
	}
}

func TestListSortByPriceDesc(t *testing.T) {
	svc := newTestService(t)

	page, err := svc.List(context.Background(), Filter{SortBy: SortByPrice, SortOrder: SortDesc, Page: 1}, 12)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(page.Products); i++ {
		if page.Products[i].Price > page.Products[i-1].Price {
			t.Fatalf("products not sorted by price desc: %v then %v",
				page.Products[i-1].Price, page.Products[i].Price)
		}
	}
}

func TestListPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.List(ctx, DefaultFilter(), 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first.Products) != 2 || !first.HasNext || first.HasPrev {
		t.Errorf("unexpected first page: %+v", first)
	}

	last, err := svc.List(ctx, Filter{SortBy: SortByName, SortOrder: SortAsc, Page: 3}, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(last.Products) != 1 || last.HasNext || !last.HasPrev {
		t.Errorf("unexpected last page: %+v", last)
	}
}

func TestGetProduct(t *testing.T) {
	svc := newTestService(t)

	p, err := svc.Get(context.Background(), "3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Name != "Organic Cotton T-Shirt" {
		t.Errorf("unexpected product: %+v", p)
	}

	if _, err := svc.Get(context.Background(), "999"); !httpapi.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	svc := newTestService(t)

	cats, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 5 {
		t.Errorf("expected 5 categories, got %d", len(cats))
	}
}

func TestFeaturedAreHighlyRated(t *testing.T) {
	svc := newTestService(t)

	featured, err := svc.Featured(context.Background())
	if err != nil {
		t.Fatalf("Featured: %v", err)
	}
	if len(featured) == 0 || len(featured) > 4 {
		t.Fatalf("expected between 1 and 4 featured products, got %d", len(featured))
	}
	for _, p := range featured {
		if p.Rating == nil || *p.Rating < 4.5 {
			t.Errorf("product %s is not featured material: %+v", p.ID, p.Rating)
		}
	}
}

func TestSuggestionsPrefixMatch(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Suggestions(context.Background(), "smart")
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(got) != 1 || got[0] != "Smart Fitness Watch" {
		t.Errorf("unexpected suggestions: %v", got)
	}

	empty, err := svc.Suggestions(context.Background(), "")
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty prefix should suggest nothing, got %v", empty)
	}
}
