package listing

import (
	"context"
	"strconv"
	"strings"
)

// PropertyRef is the read-only projection of a listing shown in the chat.
type PropertyRef struct {
	ID           string  `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	Price        float64 `json:"price" yaml:"price"`
	Bedrooms     int     `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms    int     `json:"bathrooms" yaml:"bathrooms"`
	City         string  `json:"city" yaml:"city"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty" yaml:"thumbnail_url"`
}

// Query carries the memory-derived filters for a search. Zero values mean
// "no filter".
type Query struct {
	Location     string  `json:"location,omitempty"`
	PropertyType string  `json:"property_type,omitempty"`
	Bedrooms     int     `json:"bedrooms,omitempty"`
	MaxPrice     float64 `json:"max_price,omitempty"`
	Limit        int     `json:"limit"`
}

// Searcher finds listings. An empty result is not an error; errors are
// reserved for transport or backend failures.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]PropertyRef, error)
}

// FormatPrice renders a naira amount with thousands separators.
func FormatPrice(amount float64) string {
	if amount <= 0 {
		return "price on request"
	}
	digits := strconv.FormatInt(int64(amount+0.5), 10)
	var b strings.Builder
	b.WriteString("₦")
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
