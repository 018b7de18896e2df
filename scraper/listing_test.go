package scraper

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/go-scrape-watches/config"
	"github.com/aluiziolira/go-scrape-watches/models"
)

func TestCollectListingURLsBulk(t *testing.T) {
	sel := config.DefaultSelectors()
	session := &fakeSession{}
	session.current = listingPage(sel, "/watch/1.htm", "https://other.example/watch/2.htm", "/watch/3.htm")

	fx := newCrawlFixture(t, session)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	urls := fx.scraper.collectListingURLs(brand, brand.URL)
	want := []string{
		"https://market.test/watch/1.htm",
		"https://other.example/watch/2.htm",
		"https://market.test/watch/3.htm",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestCollectListingURLsProbeFallback(t *testing.T) {
	sel := config.DefaultSelectors()

	// no bulk anchors at all, so the positional probe takes over; the
	// hrefless position is skipped, the missing fourth ends the walk
	elements := map[string][]*fakeElement{}
	elements[fmt.Sprintf(sel.ListingItemProbe, 1)] = []*fakeElement{anchor("/watch/1.htm")}
	elements[fmt.Sprintf(sel.ListingItemProbe, 2)] = []*fakeElement{anchor("")}
	elements[fmt.Sprintf(sel.ListingItemProbe, 3)] = []*fakeElement{anchor("/watch/3.htm")}
	session := &fakeSession{}
	session.current = &fakePage{elements: elements, markup: "<html></html>"}

	fx := newCrawlFixture(t, session)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	urls := fx.scraper.collectListingURLs(brand, brand.URL)
	want := []string{
		"https://market.test/watch/1.htm",
		"https://market.test/watch/3.htm",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestCollectListingURLsAnchorsWithoutHrefs(t *testing.T) {
	sel := config.DefaultSelectors()

	// the bulk query matched, so the probe must not be consulted even
	// though a probe position would produce a URL
	elements := map[string][]*fakeElement{}
	elements[sel.ListingLinks[0]] = []*fakeElement{anchor(""), anchor("")}
	elements[fmt.Sprintf(sel.ListingItemProbe, 1)] = []*fakeElement{anchor("/watch/9.htm")}
	session := &fakeSession{}
	session.current = &fakePage{elements: elements, markup: "<html></html>"}

	fx := newCrawlFixture(t, session)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	if urls := fx.scraper.collectListingURLs(brand, brand.URL); len(urls) != 0 {
		t.Fatalf("urls = %v, want none", urls)
	}
}

func TestCollectListingURLsEmptyDumpsMarkup(t *testing.T) {
	session := &fakeSession{}
	session.current = &fakePage{
		elements: map[string][]*fakeElement{},
		markup:   "<html><body>unrecognized layout</body></html>",
	}

	fx := newCrawlFixture(t, session)
	brand := models.Brand{Name: "Patek Philippe", URL: "https://market.test/patek/index.htm"}

	if urls := fx.scraper.collectListingURLs(brand, brand.URL); len(urls) != 0 {
		t.Fatalf("urls = %v, want none", urls)
	}

	dumps, err := filepath.Glob(filepath.Join(fx.errorsDir, "empty_listing_patek_philippe_*.html"))
	if err != nil || len(dumps) != 1 {
		t.Fatalf("markup dumps = %v (err=%v), want exactly one", dumps, err)
	}
}
