package services

import (
	"testing"

	"autofinder/models"
	"autofinder/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger(false) }

func listing(price, year, km string) *models.Listing {
	return &models.Listing{
		Source: models.SourceMercadoLibre,
		Title:  "Toyota Corolla",
		Price:  price,
		Year:   year,
		Km:     km,
		Photo:  "https://example.com/1.jpg",
		Link:   "https://example.com/1",
	}
}

func TestFilterPriceBoundsInclusive(t *testing.T) {
	f := NewFilter(newTestLogger())
	in := []*models.Listing{
		listing("$ 10.000.000", "2019", "10.000 Km"),
		listing("$ 20.000.000", "2019", "10.000 Km"),
		listing("$ 25.000.000", "2019", "10.000 Km"),
	}

	out := f.Apply(models.Query{PriceMin: "10000000", PriceMax: "20000000"}, in)
	if len(out) != 2 {
		t.Fatalf("expected 2 listings inside inclusive bounds, got %d", len(out))
	}
}

func TestFilterYearFloor(t *testing.T) {
	f := NewFilter(newTestLogger())
	in := []*models.Listing{
		listing("$ 1", "2015", ""),
		listing("$ 1", "2019", ""),
	}

	out := f.Apply(models.Query{YearMin: "2018"}, in)
	if len(out) != 1 || out[0].Year != "2019" {
		t.Fatalf("expected only the 2019 listing, got %d", len(out))
	}
}

func TestFilterKmCeiling(t *testing.T) {
	f := NewFilter(newTestLogger())
	in := []*models.Listing{
		listing("$ 1", "2019", "45.000 Km"),
		listing("$ 1", "2019", "120.000 Km"),
	}

	out := f.Apply(models.Query{KmMax: "50000"}, in)
	if len(out) != 1 || out[0].Km != "45.000 Km" {
		t.Fatalf("expected only the 45.000 Km listing, got %d", len(out))
	}
}

// A record whose year/price/km text cannot be parsed is never excluded by the
// corresponding bound, whatever the bound is.
func TestFilterPermissiveOnUnknown(t *testing.T) {
	f := NewFilter(newTestLogger())
	unknown := listing("Consultar", "usado", "sin datos")

	queries := []models.Query{
		{YearMin: "2030"},
		{PriceMin: "1", PriceMax: "2"},
		{KmMax: "0"},
		{YearMin: "2030", PriceMin: "999999999", KmMax: "0"},
	}
	for _, q := range queries {
		out := f.Apply(q, []*models.Listing{unknown})
		if len(out) != 1 {
			t.Errorf("query %+v excluded a record with unknown fields", q)
		}
	}
}

func TestFilterUnparseableBoundIsNoOp(t *testing.T) {
	f := NewFilter(newTestLogger())
	in := []*models.Listing{listing("$ 5.000.000", "2019", "")}

	out := f.Apply(models.Query{PriceMax: "veinte"}, in)
	if len(out) != 1 {
		t.Fatal("unparseable bound should deactivate the filter")
	}
}

func TestFilterSubstringFields(t *testing.T) {
	f := NewFilter(newTestLogger())

	withLocation := listing("$ 1", "", "")
	withLocation.Location = "Córdoba Capital"
	withCondition := listing("$ 1", "", "")
	withCondition.Condition = "Usado"
	bare := listing("$ 1", "", "")

	t.Run("provincia containment is case-insensitive", func(t *testing.T) {
		out := f.Apply(models.Query{Provincia: "córdoba"}, []*models.Listing{withLocation})
		if len(out) != 1 {
			t.Fatal("expected containment match to pass")
		}
	})

	t.Run("provincia mismatch drops the record", func(t *testing.T) {
		out := f.Apply(models.Query{Provincia: "mendoza"}, []*models.Listing{withLocation})
		if len(out) != 0 {
			t.Fatal("expected mismatch to drop the record")
		}
	})

	t.Run("absent field never excludes", func(t *testing.T) {
		out := f.Apply(models.Query{Provincia: "mendoza", Estado: "nuevo"}, []*models.Listing{bare})
		if len(out) != 1 {
			t.Fatal("records without location/condition must pass substring filters")
		}
	})

	t.Run("estado mismatch drops the record", func(t *testing.T) {
		out := f.Apply(models.Query{Estado: "nuevo"}, []*models.Listing{withCondition})
		if len(out) != 0 {
			t.Fatal("expected estado mismatch to drop the record")
		}
	})
}

func TestFilterNoActiveBoundsKeepsAll(t *testing.T) {
	f := NewFilter(newTestLogger())
	in := []*models.Listing{
		listing("$ 1", "1990", "999.999 Km"),
		listing("Consultar", "", ""),
	}

	out := f.Apply(models.Query{}, in)
	if len(out) != len(in) {
		t.Fatalf("expected all %d listings to pass, got %d", len(in), len(out))
	}
}
