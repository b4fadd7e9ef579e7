// Package mercadolibre scrapes autos.mercadolibre.com.ar through a headless
// browser. The site renders results client side and actively resists
// automation, so every attempt runs with a randomized browser identity,
// human-ish pacing, and a challenge-page check; the whole search retries a
// bounded number of times and degrades to an empty result on exhaustion.
package mercadolibre

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"autofinder/config"
	"autofinder/models"
	"autofinder/scraper"
	"autofinder/utils"
)

const baseURL = "https://autos.mercadolibre.com.ar"

var (
	// errChallenge marks a verification page. In a server deployment nobody
	// can solve it, so the attempt is terminal and counts against the retry
	// budget.
	errChallenge = errors.New("verification challenge detected")
	errNoResults = errors.New("no result cards found")
)

// card mirrors the JSON object the extraction script builds per result.
type card struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Year     string `json:"year"`
	Km       string `json:"km"`
	Location string `json:"location"`
	Photo    string `json:"photo"`
	Link     string `json:"link"`
}

// detail mirrors the enrichment object from a listing's detail page.
type detail struct {
	Age         string `json:"age"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
}

// Scraper drives the MercadoLibre search through chromedp.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig

	// attempt runs one full search attempt; tests stub it to exercise the
	// retry policy without a browser.
	attempt func(ctx context.Context, term string) ([]*models.Listing, error)
}

// New creates a ready-to-use MercadoLibre Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	s := &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   5 * time.Second,
			Jitter:      true,
			Logger:      logger,
		},
	}
	s.attempt = s.runAttempt
	return s
}

// Source implements scraper.Adapter.
func (s *Scraper) Source() models.Source { return models.SourceMercadoLibre }

// CanSearch implements scraper.Adapter; any free-text term works.
func (s *Scraper) CanSearch(q models.Query) bool { return q.Term() != "" }

// Search runs the resilience-wrapped search. Exhausting the retry budget
// returns an empty result, never an error: one hostile source must not
// surface as an outage.
func (s *Scraper) Search(ctx context.Context, q models.Query) ([]*models.Listing, error) {
	term := q.Term()

	var listings []*models.Listing
	err := s.retry.Do(ctx, "ml-search", func() error {
		found, err := s.attempt(ctx, term)
		if err != nil {
			return err
		}
		listings = found
		return nil
	})
	if err != nil {
		s.logger.Error("[ml] Giving up on %q: %v", term, err)
		return []*models.Listing{}, nil
	}

	return listings, nil
}

// runAttempt performs one complete search pass: fresh browser with a
// randomized identity, navigation, challenge check, card extraction with
// selector fallbacks, and best-effort detail enrichment.
func (s *Scraper) runAttempt(ctx context.Context, term string) ([]*models.Listing, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(randomViewport()),
		chromedp.UserAgent(randomUserAgent()),
	)
	if bin := findChromeBinary(s.cfg.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancelTimeout := context.WithTimeout(browserCtx, time.Duration(s.cfg.RenderTimeoutSec)*time.Second)
	defer cancelTimeout()

	searchURL := buildSearchURL(term)
	s.logger.Info("[ml] Navigating to %s", searchURL)

	var challenged bool
	err := chromedp.Run(runCtx,
		chromedp.Navigate(searchURL),
		chromedp.Sleep(randomDelay(1500, 3500)),
		chromedp.Evaluate(`document.querySelector('#captchacharacters') !== null`, &challenged),
	)
	if err != nil {
		return nil, fmt.Errorf("ml navigate: %w", err)
	}
	if challenged {
		return nil, errChallenge
	}

	var cards []card
	if err := chromedp.Run(runCtx, chromedp.Evaluate(extractScript(s.cfg.MaxItemsPerPage), &cards)); err != nil {
		return nil, fmt.Errorf("ml card extraction: %w", err)
	}
	if len(cards) == 0 {
		return nil, errNoResults
	}

	s.logger.Debug("[ml] Extracted %d cards", len(cards))

	listings := mapCards(cards)
	s.enrichListings(runCtx, listings)
	return listings, nil
}

// mapCards converts extracted cards to listings, discarding records missing
// any mandatory field at the adapter boundary.
func mapCards(cards []card) []*models.Listing {
	listings := make([]*models.Listing, 0, len(cards))
	for _, c := range cards {
		l := &models.Listing{
			Source:   models.SourceMercadoLibre,
			Title:    strings.TrimSpace(c.Title),
			Price:    strings.TrimSpace(c.Price),
			Year:     strings.TrimSpace(c.Year),
			Km:       strings.TrimSpace(c.Km),
			Location: strings.TrimSpace(c.Location),
			Photo:    c.Photo,
			Link:     c.Link,
		}
		if l.Complete() {
			listings = append(listings, l)
		}
	}
	return listings
}

// enrichListings visits each listing's detail page for publish age, condition
// and description. Failures only cost the enrichment, never the base record.
func (s *Scraper) enrichListings(browserCtx context.Context, listings []*models.Listing) {
	visited := utils.NewURLSet()
	for i, l := range listings {
		if !visited.Add(l.Link) {
			continue
		}

		// Pace detail navigations like a human browsing results.
		time.Sleep(randomDelay(500, 2000))

		if err := s.fetchDetail(browserCtx, l); err != nil {
			s.logger.Warn("[ml] Detail fetch failed for %s: %v", l.Link, err)
			continue
		}
		s.logger.Debug("[ml] Enriched %d/%d: %s", i+1, len(listings), l.Title)
	}
}

func (s *Scraper) fetchDetail(browserCtx context.Context, l *models.Listing) error {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	ctx, cancel := context.WithTimeout(tabCtx, time.Duration(s.cfg.DetailTimeoutSec)*time.Second)
	defer cancel()

	var d detail
	err := chromedp.Run(ctx,
		chromedp.Navigate(l.Link),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(detailScript, &d),
	)
	if err != nil {
		return err
	}

	l.Age = strings.TrimSpace(strings.TrimPrefix(d.Age, "Publicado "))
	l.Condition = strings.TrimSpace(d.Condition)
	if desc := []rune(strings.TrimSpace(d.Description)); len(desc) > 500 {
		l.Description = string(desc[:500])
	} else {
		l.Description = string(desc)
	}
	return nil
}

// buildSearchURL builds the slug-style search URL with the cache-busting
// param the site's CDN respects.
func buildSearchURL(term string) string {
	return fmt.Sprintf("%s/%s/_NoIndex_True?cache_bust=%d",
		baseURL, scraper.Slug(term, "-"), rand.Intn(10000)+1)
}

func randomUserAgent() string {
	return fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/%d.0.%d.0 Safari/537.36",
		110+rand.Intn(11), rand.Intn(10000))
}

func randomDelay(minMs, maxMs int) time.Duration {
	return time.Duration(minMs+rand.Intn(maxMs-minMs)) * time.Millisecond
}

// randomViewport picks a common desktop resolution so consecutive attempts
// don't share a fingerprint.
func randomViewport() (int, int) {
	sizes := [][2]int{{1366, 768}, {1440, 900}, {1536, 864}, {1920, 1080}}
	s := sizes[rand.Intn(len(sizes))]
	return s[0], s[1]
}
