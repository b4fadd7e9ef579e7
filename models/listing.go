package models

import "strings"

// Source identifies one listing source.
type Source string

const (
	SourceMercadoLibre Source = "ml"
	SourceAutocosmos   Source = "autocosmos"
	SourceCarOne       Source = "carone"
	SourceInfoAuto     Source = "infoauto"
	SourceAll          Source = "todas"
)

// ParseSource maps a request value to a known source tag. Unknown or empty
// values fall back to "todas".
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceMercadoLibre:
		return SourceMercadoLibre
	case SourceAutocosmos:
		return SourceAutocosmos
	case SourceCarOne:
		return SourceCarOne
	case SourceInfoAuto:
		return SourceInfoAuto
	default:
		return SourceAll
	}
}

// Query is the caller intent for one aggregation request. All fields are
// optional except Sources, which defaults to "todas". Numeric bounds are kept
// as the raw request strings; the filter engine normalizes them.
type Query struct {
	Brand   string
	Model   string
	Sources Source

	YearMin   string
	PriceMin  string
	PriceMax  string
	KmMax     string
	Estado    string
	Provincia string
}

// Term returns the free-text search term: brand+model when both are present,
// otherwise whichever one is.
func (q Query) Term() string {
	switch {
	case q.Brand != "" && q.Model != "":
		return q.Brand + " " + q.Model
	case q.Brand != "":
		return q.Brand
	default:
		return q.Model
	}
}

// Wants reports whether the query selects the given source.
func (q Query) Wants(s Source) bool {
	return q.Sources == SourceAll || q.Sources == s
}

// Listing is the common record shape every source adapter produces. Price,
// year and km stay as the source-formatted text; comparisons go through the
// normalizer.
type Listing struct {
	Source   Source `json:"fuente"`
	Title    string `json:"titulo"`
	Price    string `json:"precio"`
	Year     string `json:"anio"`
	Km       string `json:"km"`
	Location string `json:"ubicacion"`
	Photo    string `json:"foto"`
	Link     string `json:"link"`

	// Enrichment fields, filled only by sources that fetch detail pages.
	Age         string `json:"antiguedad,omitempty"`
	Condition   string `json:"estado,omitempty"`
	Description string `json:"descripcion,omitempty"`
}

// Complete reports whether the four mandatory fields are present. Adapters
// must not emit records that fail this check.
func (l *Listing) Complete() bool {
	return l.Title != "" && l.Price != "" && l.Link != "" && l.Photo != ""
}

// Result is the endpoint response payload.
type Result struct {
	Autos []*Listing `json:"autos"`
}
