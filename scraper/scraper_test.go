package scraper

import (
	"context"
	"testing"

	"autofinder/models"
)

type stubAdapter struct {
	tag       models.Source
	needsBoth bool
}

func (s *stubAdapter) Source() models.Source { return s.tag }

func (s *stubAdapter) CanSearch(q models.Query) bool {
	if s.needsBoth {
		return q.Brand != "" && q.Model != ""
	}
	return q.Term() != ""
}

func (s *stubAdapter) Search(context.Context, models.Query) ([]*models.Listing, error) {
	return nil, nil
}

func TestRegistryEligible(t *testing.T) {
	reg := NewRegistry(
		&stubAdapter{tag: models.SourceMercadoLibre},
		&stubAdapter{tag: models.SourceAutocosmos},
		&stubAdapter{tag: models.SourceCarOne, needsBoth: true},
	)

	tests := []struct {
		name string
		q    models.Query
		want int
	}{
		{"all sources, brand+model", models.Query{Brand: "Toyota", Model: "Corolla", Sources: models.SourceAll}, 3},
		{"all sources, brand only", models.Query{Brand: "Toyota", Sources: models.SourceAll}, 2},
		{"single source", models.Query{Brand: "Toyota", Sources: models.SourceAutocosmos}, 1},
		{"no terms at all", models.Query{Sources: models.SourceAll}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(reg.Eligible(tt.q)); got != tt.want {
				t.Errorf("eligible adapters: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		term, sep, want string
	}{
		{"Toyota Corolla", "-", "toyota-corolla"},
		{"  Fiat Cronos ", "-", "fiat-cronos"},
		{"Peugeot", "+", "peugeot"},
	}
	for _, tt := range tests {
		if got := Slug(tt.term, tt.sep); got != tt.want {
			t.Errorf("Slug(%q, %q) = %q; want %q", tt.term, tt.sep, got, tt.want)
		}
	}
}
