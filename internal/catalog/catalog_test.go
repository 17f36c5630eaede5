package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofbot/internal/models"
)

const testDoc = `
categories:
  - {id: Apartment, label: آپارتمان}
  - {id: Land, label: زمین}
cities:
  - id: x
    label: ایکس
    districts:
      - {id: d1, label: باغ}
      - {id: d2, label: باغ فیض}
      - {id: d3, label: شهرک}
  - id: y
    label: ایگرگ
    districts:
      - {id: e1, label: مرکز}
  - id: z
    label: زد
    districts:
      - {id: narmak-south, label: نارمک جنوبی}
      - {id: narmak, label: نارمک}
`

func mustParse(t *testing.T, doc string) *Catalog {
	t.Helper()
	c, err := Parse([]byte(doc))
	require.NoError(t, err)
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	cats := c.Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, models.CategoryApartment, cats[0].ID)

	ids := map[models.CategoryID]bool{}
	for _, cat := range cats {
		ids[cat.ID] = true
	}
	assert.True(t, ids[models.CategoryApartment])
	assert.True(t, ids[models.CategoryVilla])
	assert.True(t, ids[models.CategoryLand])

	for _, city := range c.Cities() {
		assert.NotEmpty(t, c.Districts(city.ID), "city %s has no districts", city.ID)
	}
}

func TestLabelsKeepCatalogOrder(t *testing.T) {
	c := mustParse(t, testDoc)
	assert.Equal(t, []string{"آپارتمان", "زمین"}, c.CategoryLabels())
	assert.Equal(t, []string{"ایکس", "ایگرگ", "زد"}, c.CityLabels())
	assert.Equal(t, []models.Option{{ID: "d1", Label: "باغ"}, {ID: "d2", Label: "باغ فیض"}, {ID: "d3", Label: "شهرک"}}, c.Districts("x"))
	assert.Nil(t, c.Districts("nope"))
}

func TestReverseLookupIsExact(t *testing.T) {
	c := mustParse(t, testDoc)

	cat, ok := c.CategoryByLabel("آپارتمان")
	require.True(t, ok)
	assert.Equal(t, models.CategoryApartment, cat.ID)

	_, ok = c.CategoryByLabel("آپارتمان بزرگ")
	assert.False(t, ok)
	_, ok = c.CategoryByLabel("آپار")
	assert.False(t, ok)

	city, ok := c.CityByLabel("  ایگرگ ")
	require.True(t, ok)
	assert.Equal(t, "y", city.ID)

	_, ok = c.CityByLabel("")
	assert.False(t, ok)
}

func TestMatchDistrict(t *testing.T) {
	c := mustParse(t, testDoc)

	cases := []struct {
		name   string
		city   string
		text   string
		wantID string
		wantOK bool
	}{
		{"exact label", "x", "شهرک", "d3", true},
		{"text contains label", "x", "منطقه شهرک لطفا", "d3", true},
		{"first match wins", "x", "باغ فیض", "d1", true},
		{"fragment of label", "x", "فیض", "d2", true},
		{"single rune fragment rejected", "x", "ش", "", false},
		{"other city's district", "x", "مرکز", "", false},
		{"unknown city", "nope", "شهرک", "", false},
		{"empty text", "x", "  ", "", false},
		{"contained label beats earlier fragment", "z", "نارمک", "narmak", true},
		{"fragment when nothing is contained", "z", "جنوبی", "narmak-south", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := c.MatchDistrict(tc.city, tc.text)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantID, got.ID)
		})
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"no categories":          "cities: [{id: x, label: X, districts: [{id: a, label: A}]}]",
		"no cities":              "categories: [{id: Land, label: L}]",
		"duplicate category":     "categories: [{id: Land, label: L}, {id: Land, label: M}]\ncities: [{id: x, label: X, districts: [{id: a, label: A}]}]",
		"city without districts": "categories: [{id: Land, label: L}]\ncities: [{id: x, label: X}]",
		"duplicate district":     "categories: [{id: Land, label: L}]\ncities: [{id: x, label: X, districts: [{id: a, label: A}, {id: a, label: B}]}]",
		"empty label":            "categories: [{id: Land, label: ' '}]\ncities: [{id: x, label: X, districts: [{id: a, label: A}]}]",
		"not yaml":               "categories: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Cities(), 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
