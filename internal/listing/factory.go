package listing

import (
	"strings"
	"time"
)

// NewSearcher prefers the marketplace API, then a catalog file, then the
// built-in sample catalog.
func NewSearcher(searchURL, catalogPath string, timeout time.Duration) (Searcher, error) {
	if strings.TrimSpace(searchURL) != "" {
		return NewHTTPSearcher(searchURL, timeout), nil
	}
	if strings.TrimSpace(catalogPath) != "" {
		return LoadCatalog(catalogPath)
	}
	return SampleCatalog(), nil
}
