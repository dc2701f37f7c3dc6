// Package source acquires raw job postings from external job boards. Each
// board implements Source; the Acquirer wraps every fetch with caching,
// admission control and extraction.
package source

import (
	"context"
	"strings"

	"github.com/jobsift/jobsift/internal/extract"
)

// SearchTerms parameterize one acquisition request.
type SearchTerms struct {
	Keywords []string `mapstructure:"keywords"`
	Category string   `mapstructure:"category"`
}

// Source is one job board. Fetch returns the raw postings matching terms;
// implementations do no caching or throttling of their own.
type Source interface {
	Name() string
	Fetch(ctx context.Context, terms SearchTerms) ([]extract.RawPosting, error)
}

// matchesKeywords reports whether text mentions any of the keywords. No
// keywords means everything matches.
func matchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
