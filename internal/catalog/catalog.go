// Package catalog holds the read-only option sets the dialogue validates against:
// property categories, cities and the districts of each city.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"roofbot/internal/models"
	"roofbot/internal/utils"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// minPartialRunes is the shortest input accepted as a fragment of a district label.
const minPartialRunes = 2

// City is a catalog city with its districts in display order.
type City struct {
	models.Option `yaml:",inline"`
	Districts     []models.Option `yaml:"districts"`
}

type document struct {
	Categories []models.Category `yaml:"categories"`
	Cities     []City            `yaml:"cities"`
}

// Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	categories []models.Category
	cities     []City

	categoryKeys []string
	cityKeys     []string
	districtKeys map[string][]string // city id -> normalized district labels
	cityIndex    map[string]int
}

// Default parses the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile parses a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Catalog from a YAML document and validates it.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		categories:   doc.Categories,
		cities:       doc.Cities,
		districtKeys: make(map[string][]string, len(doc.Cities)),
		cityIndex:    make(map[string]int, len(doc.Cities)),
	}
	for _, cat := range doc.Categories {
		c.categoryKeys = append(c.categoryKeys, utils.NormalizeText(cat.Label))
	}
	for i, city := range doc.Cities {
		c.cityKeys = append(c.cityKeys, utils.NormalizeText(city.Label))
		c.cityIndex[city.ID] = i
		keys := make([]string, 0, len(city.Districts))
		for _, d := range city.Districts {
			keys = append(keys, utils.NormalizeText(d.Label))
		}
		c.districtKeys[city.ID] = keys
	}
	return c, nil
}

func (d document) validate() error {
	if len(d.Categories) == 0 {
		return errors.New("no categories")
	}
	if len(d.Cities) == 0 {
		return errors.New("no cities")
	}

	ids := map[string]bool{}
	labels := map[string]bool{}
	for _, cat := range d.Categories {
		if cat.ID == "" || strings.TrimSpace(cat.Label) == "" {
			return fmt.Errorf("category %q: id and label are required", cat.ID)
		}
		key := utils.NormalizeText(cat.Label)
		if ids[string(cat.ID)] || labels[key] {
			return fmt.Errorf("category %q: duplicate id or label", cat.ID)
		}
		ids[string(cat.ID)], labels[key] = true, true
	}

	ids = map[string]bool{}
	labels = map[string]bool{}
	for _, city := range d.Cities {
		if city.ID == "" || strings.TrimSpace(city.Label) == "" {
			return fmt.Errorf("city %q: id and label are required", city.ID)
		}
		key := utils.NormalizeText(city.Label)
		if ids[city.ID] || labels[key] {
			return fmt.Errorf("city %q: duplicate id or label", city.ID)
		}
		ids[city.ID], labels[key] = true, true

		if len(city.Districts) == 0 {
			return fmt.Errorf("city %q: no districts", city.ID)
		}
		seen := map[string]bool{}
		for _, dist := range city.Districts {
			if dist.ID == "" || strings.TrimSpace(dist.Label) == "" {
				return fmt.Errorf("city %q: district %q: id and label are required", city.ID, dist.ID)
			}
			if seen[dist.ID] {
				return fmt.Errorf("city %q: duplicate district %q", city.ID, dist.ID)
			}
			seen[dist.ID] = true
		}
	}
	return nil
}

func (c *Catalog) Categories() []models.Category {
	return append([]models.Category(nil), c.categories...)
}

func (c *Catalog) CategoryLabels() []string {
	labels := make([]string, len(c.categories))
	for i, cat := range c.categories {
		labels[i] = cat.Label
	}
	return labels
}

func (c *Catalog) Cities() []models.Option {
	out := make([]models.Option, len(c.cities))
	for i, city := range c.cities {
		out[i] = city.Option
	}
	return out
}

func (c *Catalog) CityLabels() []string {
	labels := make([]string, len(c.cities))
	for i, city := range c.cities {
		labels[i] = city.Label
	}
	return labels
}

// Districts returns the districts of cityID in catalog order, nil for an unknown city.
func (c *Catalog) Districts(cityID string) []models.Option {
	i, ok := c.cityIndex[cityID]
	if !ok {
		return nil
	}
	return append([]models.Option(nil), c.cities[i].Districts...)
}

// CategoryByLabel is an exact (normalized) reverse lookup.
func (c *Catalog) CategoryByLabel(label string) (models.Category, bool) {
	key := utils.NormalizeText(label)
	for i, k := range c.categoryKeys {
		if k == key {
			return c.categories[i], true
		}
	}
	return models.Category{}, false
}

// CityByLabel is an exact (normalized) reverse lookup.
func (c *Catalog) CityByLabel(label string) (models.Option, bool) {
	key := utils.NormalizeText(label)
	for i, k := range c.cityKeys {
		if k == key {
			return c.cities[i].Option, true
		}
	}
	return models.Option{}, false
}

// MatchDistrict finds the first district of cityID, in catalog order, whose label
// is contained in text. Only when no label is contained does it fall back to the
// first district whose label contains text, and only for text of at least
// minPartialRunes runes.
func (c *Catalog) MatchDistrict(cityID, text string) (models.Option, bool) {
	i, ok := c.cityIndex[cityID]
	if !ok {
		return models.Option{}, false
	}
	in := utils.NormalizeText(text)
	if in == "" {
		return models.Option{}, false
	}
	keys := c.districtKeys[cityID]
	for j, key := range keys {
		if strings.Contains(in, key) {
			return c.cities[i].Districts[j], true
		}
	}
	if utf8.RuneCountInString(in) < minPartialRunes {
		return models.Option{}, false
	}
	for j, key := range keys {
		if strings.Contains(key, in) {
			return c.cities[i].Districts[j], true
		}
	}
	return models.Option{}, false
}
