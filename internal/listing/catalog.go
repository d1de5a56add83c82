package listing

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Listing is a catalog entry. Area and Type are used for filtering only.
type Listing struct {
	PropertyRef `yaml:",inline"`
	Area        string `yaml:"area"`
	Type        string `yaml:"type"`
}

type catalogFile struct {
	Listings []Listing `yaml:"listings"`
}

// Catalog is an in-process Searcher over a fixed set of listings.
type Catalog struct {
	listings []Listing
}

func NewCatalog(listings []Listing) *Catalog {
	cp := make([]Listing, len(listings))
	copy(cp, listings)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Price < cp[j].Price })
	return &Catalog{listings: cp}
}

// LoadCatalog reads listings from a YAML file with a top-level "listings" key.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, l := range f.Listings {
		if strings.TrimSpace(l.ID) == "" {
			return nil, fmt.Errorf("catalog listing %d: missing id", i)
		}
	}
	return NewCatalog(f.Listings), nil
}

func (c *Catalog) Search(ctx context.Context, q Query) ([]PropertyRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	loc := strings.ToLower(strings.TrimSpace(q.Location))
	typ := strings.ToLower(strings.TrimSpace(q.PropertyType))

	out := make([]PropertyRef, 0, limit)
	for _, l := range c.listings {
		if loc != "" && !matchesLocation(l, loc) {
			continue
		}
		if typ != "" && !strings.EqualFold(l.Type, typ) {
			continue
		}
		if q.Bedrooms > 0 && l.Bedrooms < q.Bedrooms {
			continue
		}
		if q.MaxPrice > 0 && l.Price > q.MaxPrice {
			continue
		}
		out = append(out, l.PropertyRef)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matchesLocation(l Listing, loc string) bool {
	city := strings.ToLower(l.City)
	area := strings.ToLower(l.Area)
	if city == loc || area == loc || strings.Contains(city, loc) || strings.Contains(area, loc) {
		return true
	}
	// "lekki phase 1" should still match a listing filed under "Lekki".
	return area != "" && strings.Contains(loc, area)
}

// SampleCatalog is used when no catalog file or marketplace endpoint is
// configured.
func SampleCatalog() *Catalog {
	return NewCatalog([]Listing{
		{PropertyRef: PropertyRef{ID: "lk-101", Title: "3 Bedroom Terrace Duplex, Lekki Phase 1", Price: 95000000, Bedrooms: 3, Bathrooms: 4, City: "Lagos"}, Area: "Lekki", Type: "duplex"},
		{PropertyRef: PropertyRef{ID: "lk-102", Title: "2 Bedroom Apartment, Chevron Drive", Price: 48000000, Bedrooms: 2, Bathrooms: 2, City: "Lagos"}, Area: "Lekki", Type: "apartment"},
		{PropertyRef: PropertyRef{ID: "ik-201", Title: "4 Bedroom Detached House, Ikoyi", Price: 450000000, Bedrooms: 4, Bathrooms: 5, City: "Lagos"}, Area: "Ikoyi", Type: "house"},
		{PropertyRef: PropertyRef{ID: "vi-301", Title: "Luxury 3 Bedroom Penthouse, Victoria Island", Price: 320000000, Bedrooms: 3, Bathrooms: 4, City: "Lagos"}, Area: "Victoria Island", Type: "penthouse"},
		{PropertyRef: PropertyRef{ID: "ij-401", Title: "Mini Flat, Ikeja GRA", Price: 18000000, Bedrooms: 1, Bathrooms: 1, City: "Lagos"}, Area: "Ikeja", Type: "apartment"},
		{PropertyRef: PropertyRef{ID: "yb-501", Title: "Studio Apartment near Unilag, Yaba", Price: 12500000, Bedrooms: 1, Bathrooms: 1, City: "Lagos"}, Area: "Yaba", Type: "studio"},
		{PropertyRef: PropertyRef{ID: "ab-601", Title: "5 Bedroom Mansion, Maitama", Price: 600000000, Bedrooms: 5, Bathrooms: 6, City: "Abuja"}, Area: "Maitama", Type: "house"},
		{PropertyRef: PropertyRef{ID: "ab-602", Title: "3 Bedroom Bungalow, Gwarinpa", Price: 65000000, Bedrooms: 3, Bathrooms: 3, City: "Abuja"}, Area: "Gwarinpa", Type: "bungalow"},
		{PropertyRef: PropertyRef{ID: "ph-701", Title: "4 Bedroom Semi-Detached Duplex, GRA Phase 2", Price: 110000000, Bedrooms: 4, Bathrooms: 4, City: "Port Harcourt"}, Area: "GRA", Type: "duplex"},
		{PropertyRef: PropertyRef{ID: "ib-801", Title: "600sqm Plot of Land, Bodija", Price: 25000000, City: "Ibadan"}, Area: "Bodija", Type: "land"},
	})
}
