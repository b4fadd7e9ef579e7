// Package autocosmos scrapes the autocosmos.com.ar used-car search, a static
// page that renders server side.
package autocosmos

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

// containerSelectors is tried in order; the site has shuffled its card markup
// before, so the primary selector falling empty is not yet "no results".
var containerSelectors = []string{
	"article.listing-card",
	"article[class*='listing-card']",
	"div.listing-card",
}

// Scraper queries autocosmos search results over plain HTTP.
type Scraper struct {
	baseURL   string
	maxItems  int
	collector *colly.Collector
	logger    *utils.Logger
}

// New creates an autocosmos Scraper against the production site.
func New(maxItems int, logger *utils.Logger) *Scraper {
	return NewWithBaseURL("https://www.autocosmos.com.ar", maxItems, logger)
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
func (s *Scraper) Source() models.Source { return models.SourceAutocosmos }

// CanSearch implements scraper.Adapter; any free-text term works.
func (s *Scraper) CanSearch(q models.Query) bool { return q.Term() != "" }

// Search fetches one results page and maps its cards to listings.
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
				s.logger.Debug("[autocosmos] %d cards via selector %q", items.Length(), sel)
				break
			}
		}
		if items == nil || items.Length() == 0 {
			s.logger.Warn("[autocosmos] No result cards found")
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
		fetchErr = fmt.Errorf("autocosmos request to %s failed with status %d: %w",
			r.Request.URL, r.StatusCode, err)
	})

	searchURL := fmt.Sprintf("%s/auto/usado?q=%s", s.baseURL, scraper.Slug(q.Term(), "-"))
	if err := collector.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("autocosmos visit %s: %w", searchURL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return listings, nil
}

func (s *Scraper) parseCard(item *goquery.Selection) *models.Listing {
	link, _ := item.Find("a[href]").First().Attr("href")
	if link != "" && strings.HasPrefix(link, "/") {
		link = s.baseURL + link
	}

	photo, _ := item.Find("figure.listing-card__image img").First().Attr("src")

	// Some cards omit the model or version span, so only non-empty parts
	// are joined to avoid doubled spaces in the title.
	var parts []string
	for _, sel := range []string{".listing-card__brand", ".listing-card__model", ".listing-card__version"} {
		if v := text(item, sel); v != "" {
			parts = append(parts, v)
		}
	}
	title := strings.Join(parts, " ")

	location := strings.Join(strings.Fields(strings.ReplaceAll(
		text(item, ".listing-card__city")+" "+text(item, ".listing-card__province"), "|", " ")), " ")

	return &models.Listing{
		Source:   models.SourceAutocosmos,
		Title:    title,
		Price:    text(item, ".listing-card__price-value"),
		Year:     text(item, ".listing-card__year"),
		Km:       text(item, ".listing-card__km"),
		Location: location,
		Photo:    photo,
		Link:     link,
	}
}

func text(item *goquery.Selection, selector string) string {
	return strings.TrimSpace(item.Find(selector).First().Text())
}
