package services

import (
	"strings"

	"autofinder/models"
	"autofinder/utils"
)

// Filter applies the optional query bounds to a merged listing set. Unknown
// values never exclude: a record whose price, year or km text cannot be
// parsed passes the corresponding bound, and an absent estado/ubicacion field
// passes the substring checks. Filters never mutate records.
type Filter struct {
	logger *utils.Logger
}

// NewFilter creates a Filter with the given logger.
func NewFilter(logger *utils.Logger) *Filter {
	return &Filter{logger: logger}
}

// Apply returns the listings that satisfy every active bound in q.
func (f *Filter) Apply(q models.Query, listings []*models.Listing) []*models.Listing {
	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if f.keep(q, l) {
			result = append(result, l)
		}
	}

	f.logger.Info("[filter] %d → %d listings (dropped %d)",
		len(listings), len(result), len(listings)-len(result))
	return result
}

func (f *Filter) keep(q models.Query, l *models.Listing) bool {
	if min, ok := bound(q.YearMin, ExtractYear); ok {
		if year, ok := ExtractYear(l.Year); ok && year < min {
			return false
		}
	}
	if min, ok := bound(q.PriceMin, ExtractPrice); ok {
		if price, ok := ExtractPrice(l.Price); ok && price < min {
			return false
		}
	}
	if max, ok := bound(q.PriceMax, ExtractPrice); ok {
		if price, ok := ExtractPrice(l.Price); ok && price > max {
			return false
		}
	}
	if max, ok := bound(q.KmMax, ExtractKm); ok {
		if km, ok := ExtractKm(l.Km); ok && km > max {
			return false
		}
	}
	if !containsFold(l.Condition, q.Estado) {
		return false
	}
	if !containsFold(l.Location, q.Provincia) {
		return false
	}
	return true
}

// bound parses a request-supplied bound string. An absent or unparseable
// bound deactivates its filter.
func bound(s string, extract func(string) (int, bool)) (int, bool) {
	if s == "" {
		return 0, false
	}
	return extract(s)
}

// containsFold is a case-insensitive containment check that only excludes
// when both the field and the term are present.
func containsFold(field, term string) bool {
	if term == "" || field == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(term))
}
