package infoauto

import (
	"context"
	"fmt"
	"strings"

	"autofinder/models"
)

// Adapter exposes the pricing-reference API as a listing source. The lookup
// is two-stage: brand by case-insensitive exact name, then the first model
// whose description contains the requested model as a substring. No match at
// either stage is an empty result, never an error.
type Adapter struct {
	client *Client
}

// NewAdapter wraps an authenticated-on-demand Client as a source adapter.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Source implements scraper.Adapter.
func (a *Adapter) Source() models.Source { return models.SourceInfoAuto }

// CanSearch implements scraper.Adapter; the catalog lookup needs both terms.
func (a *Adapter) CanSearch(q models.Query) bool { return q.Brand != "" && q.Model != "" }

// Search resolves the brand/model pair to reference-price records.
func (a *Adapter) Search(ctx context.Context, q models.Query) ([]*models.Listing, error) {
	brands, err := a.client.Brands(ctx)
	if err != nil {
		return nil, err
	}

	var brand *Brand
	for i := range brands {
		if strings.EqualFold(brands[i].Name, q.Brand) {
			brand = &brands[i]
			break
		}
	}
	if brand == nil {
		return nil, nil
	}

	modelsList, err := a.client.ModelsByBrand(ctx, brand.ID)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(q.Model)
	for _, m := range modelsList {
		if !strings.Contains(strings.ToLower(m.Description), want) {
			continue
		}

		l := &models.Listing{
			Source: models.SourceInfoAuto,
			Title:  brand.Name + " " + m.Description,
			Price:  priceText(m),
			Photo:  m.PhotoURL,
			Link:   fmt.Sprintf("%s/pub/models/%d", a.client.baseURL, m.Codia),
		}
		if m.PricesTo > 0 {
			l.Year = fmt.Sprintf("%d", m.PricesTo)
		}
		if !l.Complete() {
			return nil, nil
		}
		return []*models.Listing{l}, nil
	}

	return nil, nil
}

func priceText(m Model) string {
	if m.ListPrice <= 0 {
		return ""
	}
	// The API quotes list prices in thousands of pesos.
	return fmt.Sprintf("$ %d.000", m.ListPrice)
}
