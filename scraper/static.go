package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Slug lower-cases a search term and joins its words with the given
// separator, the URL convention the listing sources share.
func Slug(term, sep string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(term)), " ", sep)
}

// NewCollector builds the parent collector the static-HTML adapters clone per
// search: restricted to the source's host, randomized browser identity and
// request pacing.
func NewCollector(baseURL string) *colly.Collector {
	opts := []colly.CollectorOption{colly.AllowURLRevisit()}
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		opts = append(opts, colly.AllowedDomains(u.Hostname()))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(30 * time.Second)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		RandomDelay: 2 * time.Second,
	})

	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	return c
}
