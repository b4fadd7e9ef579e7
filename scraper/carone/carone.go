// Package carone scrapes the carone.com.ar used-car catalog. Unlike the other
// sources it has no free-text search; the URL is built from brand and model
// path segments, so both must be present in the query.
package carone

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"autofinder/models"
	"autofinder/scraper"
	"autofinder/utils"
)

var containerSelectors = []string{
	"ul.products li.product",
	"li.product",
}

// Scraper queries the carone catalog over plain HTTP.
type Scraper struct {
	baseURL   string
	maxItems  int
	collector *colly.Collector
	logger    *utils.Logger
}

// New creates a carone Scraper against the production site.
func New(maxItems int, logger *utils.Logger) *Scraper {
	return NewWithBaseURL("https://www.carone.com.ar", maxItems, logger)
}

// NewWithBaseURL creates a Scraper against an arbitrary base URL.
func NewWithBaseURL(baseURL string, maxItems int, logger *utils.Logger) *Scraper {
	return &Scraper{
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxItems:  maxItems,
		collector: scraper.NewCollector(baseURL),
		logger:    logger,
	}
}

// Source implements scraper.Adapter.
func (s *Scraper) Source() models.Source { return models.SourceCarOne }

// CanSearch implements scraper.Adapter; the catalog URL needs both segments.
func (s *Scraper) CanSearch(q models.Query) bool { return q.Brand != "" && q.Model != "" }

// Search fetches one catalog page and maps its product cards to listings.
func (s *Scraper) Search(ctx context.Context, q models.Query) ([]*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Clone inherits limits but not callbacks, so the identity rotation is
	// re-applied per search.
	collector := s.collector.Clone()
	extensions.RandomUserAgent(collector)

	var listings []*models.Listing
	var fetchErr error

	collector.OnHTML("body", func(e *colly.HTMLElement) {
		var items *goquery.Selection
		for _, sel := range containerSelectors {
			items = e.DOM.Find(sel)
			if items.Length() > 0 {
				s.logger.Debug("[carone] %d cards via selector %q", items.Length(), sel)
				break
			}
		}
		if items == nil || items.Length() == 0 {
			s.logger.Warn("[carone] No result cards found")
			return
		}

		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if len(listings) >= s.maxItems {
				return false
			}
			if l := s.parseCard(item); l.Complete() {
				listings = append(listings, l)
			}
			return true
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("carone request to %s failed with status %d: %w",
			r.Request.URL, r.StatusCode, err)
	})

	searchURL := fmt.Sprintf("%s/categoria-producto/usados/marca-%s/modelo-%s/",
		s.baseURL, scraper.Slug(q.Brand, "-"), scraper.Slug(q.Model, "-"))
	if err := collector.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("carone visit %s: %w", searchURL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return listings, nil
}

func (s *Scraper) parseCard(item *goquery.Selection) *models.Listing {
	title := strings.TrimSpace(
		text(item, ".box-bottom-title h2.p-marca") + " " + text(item, ".box-bottom p.p-modelo"))

	// Discounted cards wrap the current price in <ins>.
	price := text(item, ".box-bottom .p-price ins .woocommerce-Price-amount")
	if price == "" {
		price = text(item, ".box-bottom .p-price .woocommerce-Price-amount")
	}

	// Year and km share one "2019 - 45.000 Km" field.
	var year, km string
	if parts := strings.Split(text(item, ".box-bottom .p-cuotas-2"), " - "); len(parts) == 2 {
		year = strings.TrimSpace(parts[0])
		km = strings.TrimSpace(strings.ReplaceAll(parts[1], "Km", ""))
	}

	photo, _ := item.Find(".box-top img").First().Attr("data-src")
	link, _ := item.Find(".box-bottom a").First().Attr("href")

	return &models.Listing{
		Source: models.SourceCarOne,
		Title:  title,
		Price:  price,
		Year:   year,
		Km:     km,
		Photo:  photo,
		Link:   link,
	}
}

func text(item *goquery.Selection, selector string) string {
	return strings.TrimSpace(item.Find(selector).First().Text())
}
