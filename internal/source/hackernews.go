package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jobsift/jobsift/internal/extract"
)

const (
	algoliaAPIURL = "https://hn.algolia.com/api/v1"
	hnItemURL     = "https://news.ycombinator.com/item?id=%s"
)

// HackerNews reads the latest monthly "Ask HN: Who is hiring?" thread through
// the Algolia search API. Every top-level comment is one posting.
type HackerNews struct {
	client *Client
	apiURL string
}

func NewHackerNews(client *Client) *HackerNews {
	return &HackerNews{
		client: client,
		apiURL: algoliaAPIURL,
	}
}

func (h *HackerNews) Name() string { return "hackernews" }

type algoliaSearchResponse struct {
	Hits []struct {
		ObjectID string `json:"objectID"`
		Title    string `json:"title"`
	} `json:"hits"`
}

type algoliaItem struct {
	Children []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"children"`
}

func (h *HackerNews) Fetch(ctx context.Context, terms SearchTerms) ([]extract.RawPosting, error) {
	threadID, err := h.latestHiringThread(ctx)
	if err != nil {
		return nil, err
	}

	var item algoliaItem
	if err := h.client.getJSON(ctx, h.apiURL+"/items/"+threadID, nil, &item); err != nil {
		return nil, fmt.Errorf("hackernews thread %s: %w", threadID, err)
	}

	var postings []extract.RawPosting
	for _, child := range item.Children {
		text := stripHTML(child.Text)
		if text == "" || !matchesKeywords(text, terms.Keywords) {
			continue
		}

		posting := extract.RawPosting{
			Source:      h.Name(),
			NativeID:    child.ID,
			Description: text,
			URL:         fmt.Sprintf(hnItemURL, child.ID),
		}

		// The thread convention puts "Company | Role | Location" on the
		// first line.
		header := strings.SplitN(text, "\n", 2)[0]
		if parts := strings.Split(header, "|"); len(parts) >= 2 {
			posting.Company = strings.TrimSpace(parts[0])
			posting.Title = strings.TrimSpace(parts[1])
			if len(parts) >= 3 {
				posting.Location = strings.TrimSpace(parts[2])
			}
		}

		postings = append(postings, posting)
	}
	return postings, nil
}

func (h *HackerNews) latestHiringThread(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("tags", "story,author_whoishiring")
	q.Set("query", "who is hiring")
	q.Set("hitsPerPage", "10")

	var response algoliaSearchResponse
	if err := h.client.getJSON(ctx, h.apiURL+"/search_by_date", q, &response); err != nil {
		return "", fmt.Errorf("hackernews thread search: %w", err)
	}

	for _, hit := range response.Hits {
		if strings.Contains(strings.ToLower(hit.Title), "who is hiring") {
			return hit.ObjectID, nil
		}
	}
	return "", fmt.Errorf("no hiring thread found")
}
