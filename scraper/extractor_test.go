package scraper

import (
	"context"
	"testing"

	"github.com/aluiziolira/go-scrape-watches/config"
	"github.com/aluiziolira/go-scrape-watches/models"
)

func extractFixture(t *testing.T, detail *fakePage) *crawlFixture {
	t.Helper()
	session := &fakeSession{pages: map[string]*fakePage{
		"https://market.test/watch/1.htm": detail,
	}}
	return newCrawlFixture(t, session)
}

func TestExtractDetailFields(t *testing.T) {
	sel := config.DefaultSelectors()
	detail := detailPage(sel, " Submariner Date ", " $10,500 ", "  A classic diver.  ",
		specRow("Basic Info", "header artifact"),
		specRow("Reference", "1680"),
		specRow("Reference", "1680/0"),
		specRow("Case material", "Steel\nfunction docReady(fn) { loader(); }"),
		specRow("Description", "Description"),
	)

	fx := extractFixture(t, detail)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	watch, err := fx.scraper.extractDetail(context.Background(), brand, "/watch/1.htm")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if watch == nil {
		t.Fatalf("watch is nil")
	}

	if watch.URL != "https://market.test/watch/1.htm" {
		t.Fatalf("url = %q", watch.URL)
	}
	if watch.Name != "Submariner Date" {
		t.Fatalf("name = %q, want trimmed %q", watch.Name, "Submariner Date")
	}
	if watch.Price != "$10,500" {
		t.Fatalf("price = %q, want %q", watch.Price, "$10,500")
	}
	if watch.Description != "A classic diver." {
		t.Fatalf("description = %q, want %q", watch.Description, "A classic diver.")
	}

	specs := watch.Specifications
	if _, ok := specs["Basic Info"]; ok {
		t.Fatalf("section header row must be dropped: %v", specs)
	}
	if _, ok := specs["Description"]; ok {
		t.Fatalf("placeholder description row must be dropped: %v", specs)
	}
	if got := specs["Reference"]; got != "1680/0" {
		t.Fatalf("duplicate key = %q, want last value %q", got, "1680/0")
	}
	if got := specs["Case material"]; got != "Steel" {
		t.Fatalf("loader boilerplate kept: %q", got)
	}
}

func TestExtractDetailDescriptionFallback(t *testing.T) {
	sel := config.DefaultSelectors()
	detail := detailPage(sel, "Sea-Dweller", "$12,000", "",
		specRow("Description", "Helium escape valve, rated to 1220m."),
		specRow("Reference", "16600"),
	)

	fx := extractFixture(t, detail)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	watch, err := fx.scraper.extractDetail(context.Background(), brand, "/watch/1.htm")
	if err != nil || watch == nil {
		t.Fatalf("extract: watch=%v err=%v", watch, err)
	}

	if watch.Description != "Helium escape valve, rated to 1220m." {
		t.Fatalf("description = %q, want the spec-table fallback", watch.Description)
	}
	if _, ok := watch.Specifications["Description"]; ok {
		t.Fatalf("promoted description must leave the spec table: %v", watch.Specifications)
	}
	if got := watch.Specifications["Reference"]; got != "16600" {
		t.Fatalf("reference = %q, want %q", got, "16600")
	}
}

func TestExtractDetailEmptyPriceTolerated(t *testing.T) {
	sel := config.DefaultSelectors()
	detail := detailPage(sel, "Milgauss", "", "Antimagnetic to 1000 gauss.")

	fx := extractFixture(t, detail)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	watch, err := fx.scraper.extractDetail(context.Background(), brand, "/watch/1.htm")
	if err != nil || watch == nil {
		t.Fatalf("extract: watch=%v err=%v", watch, err)
	}
	if watch.Price != "" {
		t.Fatalf("price = %q, want empty", watch.Price)
	}
	if watch.Name != "Milgauss" {
		t.Fatalf("name = %q, want %q", watch.Name, "Milgauss")
	}
}

func TestExtractDetailNameFallsBackToH1(t *testing.T) {
	sel := config.DefaultSelectors()
	elements := map[string][]*fakeElement{}
	elements["h1"] = []*fakeElement{{text: "Day-Date 40"}}
	elements[sel.DetailPrice[0]] = []*fakeElement{{text: "$34,000"}}
	detail := &fakePage{elements: elements, markup: "<html></html>"}

	fx := extractFixture(t, detail)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	watch, err := fx.scraper.extractDetail(context.Background(), brand, "/watch/1.htm")
	if err != nil || watch == nil {
		t.Fatalf("extract: watch=%v err=%v", watch, err)
	}
	if watch.Name != "Day-Date 40" {
		t.Fatalf("name = %q, want the h1 fallback", watch.Name)
	}
}

func TestExtractSpecsSelectorFallback(t *testing.T) {
	sel := config.DefaultSelectors()

	// the first selector's table filters down to nothing, so the chain
	// moves on to the next selector
	headerOnly := &fakeElement{kids: map[string][]*fakeElement{
		sel.SpecRow: {specRow("Basic Info", "x")},
	}}
	technical := &fakeElement{kids: map[string][]*fakeElement{
		sel.SpecRow: {specRow("Movement", "Automatic")},
	}}

	elements := map[string][]*fakeElement{}
	elements[sel.DetailName[0]] = []*fakeElement{{text: "Explorer II"}}
	elements[sel.SpecTables[0]] = []*fakeElement{headerOnly}
	elements[sel.SpecTables[1]] = []*fakeElement{technical}
	detail := &fakePage{elements: elements, markup: "<html></html>"}

	fx := extractFixture(t, detail)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	watch, err := fx.scraper.extractDetail(context.Background(), brand, "/watch/1.htm")
	if err != nil || watch == nil {
		t.Fatalf("extract: watch=%v err=%v", watch, err)
	}
	if got := watch.Specifications["Movement"]; got != "Automatic" {
		t.Fatalf("movement = %q, want the fallback selector's rows", got)
	}
	if len(watch.Specifications) != 1 {
		t.Fatalf("specs = %v, want only the fallback row", watch.Specifications)
	}
}

func TestExtractSpecsCellChains(t *testing.T) {
	sel := config.DefaultSelectors()

	// no header cell and no last-child cell: both chains fall through to
	// their positional alternatives
	row := &fakeElement{kids: map[string][]*fakeElement{
		"td:first-child":  {{text: "Bracelet"}},
		"td:nth-child(2)": {{text: "Oyster, folding clasp"}},
	}}
	table := &fakeElement{kids: map[string][]*fakeElement{sel.SpecRow: {row}}}

	elements := map[string][]*fakeElement{}
	elements[sel.DetailName[0]] = []*fakeElement{{text: "Datejust"}}
	elements[sel.SpecTables[0]] = []*fakeElement{table}
	detail := &fakePage{elements: elements, markup: "<html></html>"}

	fx := extractFixture(t, detail)
	brand := models.Brand{Name: "Rolex", URL: "https://market.test/rolex/index.htm"}

	watch, err := fx.scraper.extractDetail(context.Background(), brand, "/watch/1.htm")
	if err != nil || watch == nil {
		t.Fatalf("extract: watch=%v err=%v", watch, err)
	}
	if got := watch.Specifications["Bracelet"]; got != "Oyster, folding clasp" {
		t.Fatalf("bracelet = %q, want the positional cells", got)
	}
}
