package carone

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autofinder/models"
	"autofinder/utils"
)

const catalogPage = `<!DOCTYPE html>
<html><body>
<ul class="products">
	<li class="product">
		<div class="box-top"><img data-src="https://img.example.com/1.jpg"></div>
		<div class="box-bottom">
			<div class="box-bottom-title"><h2 class="p-marca">Toyota</h2></div>
			<p class="p-modelo">Corolla 1.8 XEI CVT</p>
			<p class="p-cuotas-2">2019 - 45.000 Km</p>
			<div class="p-price"><ins><span class="woocommerce-Price-amount">$18.500.000</span></ins>
				<del><span class="woocommerce-Price-amount">$19.000.000</span></del></div>
			<a href="https://www.example.com/producto/corolla-1"></a>
		</div>
	</li>
	<li class="product">
		<div class="box-top"><img data-src="https://img.example.com/2.jpg"></div>
		<div class="box-bottom">
			<div class="box-bottom-title"><h2 class="p-marca">Toyota</h2></div>
			<p class="p-modelo">Corolla SEG</p>
			<p class="p-cuotas-2">2021 - 20.000 Km</p>
			<div class="p-price"><span class="woocommerce-Price-amount">$24.000.000</span></div>
			<a href="https://www.example.com/producto/corolla-2"></a>
		</div>
	</li>
	<li class="product">
		<div class="box-bottom">
			<div class="box-bottom-title"><h2 class="p-marca">Toyota</h2></div>
			<p class="p-modelo">Corolla sin foto</p>
			<div class="p-price"><span class="woocommerce-Price-amount">$1.000.000</span></div>
			<a href="https://www.example.com/producto/corolla-3"></a>
		</div>
	</li>
</ul>
</body></html>`

func TestSearchParsesCatalog(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/categoria-producto/") {
			gotPath = r.URL.Path
			w.Write([]byte(catalogPage))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	s := NewWithBaseURL(ts.URL, 15, utils.NewLogger(false))
	listings, err := s.Search(context.Background(), models.Query{Brand: "Toyota", Model: "Corolla"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/categoria-producto/usados/marca-toyota/modelo-corolla/" {
		t.Errorf("catalog path: got %q", gotPath)
	}

	// Card without a photo is discarded.
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.Source != models.SourceCarOne {
		t.Errorf("source: got %q", first.Source)
	}
	if first.Title != "Toyota Corolla 1.8 XEI CVT" {
		t.Errorf("title: got %q", first.Title)
	}
	// Discounted card: current price comes from the <ins> wrapper.
	if first.Price != "$18.500.000" {
		t.Errorf("price: got %q", first.Price)
	}
	if first.Year != "2019" || first.Km != "45.000" {
		t.Errorf("year/km split: got %q / %q", first.Year, first.Km)
	}

	second := listings[1]
	if second.Price != "$24.000.000" {
		t.Errorf("non-discounted price: got %q", second.Price)
	}
}

func TestCanSearchNeedsBrandAndModel(t *testing.T) {
	s := NewWithBaseURL("http://example.com", 15, utils.NewLogger(false))
	if s.CanSearch(models.Query{Brand: "Toyota"}) {
		t.Error("brand-only query must not be searchable")
	}
	if !s.CanSearch(models.Query{Brand: "Toyota", Model: "Corolla"}) {
		t.Error("brand+model query should be searchable")
	}
}
