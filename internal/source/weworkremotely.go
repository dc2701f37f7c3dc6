package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobsift/jobsift/internal/extract"
)

const (
	wwrBaseURL         = "https://weworkremotely.com"
	wwrDefaultCategory = "remote-programming-jobs"
)

// WeWorkRemotely scrapes a We Work Remotely category listing page. The board
// has no public API, so postings carry only the listing fields; descriptions
// stay empty.
type WeWorkRemotely struct {
	client  *Client
	baseURL string
}

func NewWeWorkRemotely(client *Client) *WeWorkRemotely {
	return &WeWorkRemotely{
		client:  client,
		baseURL: wwrBaseURL,
	}
}

func (w *WeWorkRemotely) Name() string { return "weworkremotely" }

func (w *WeWorkRemotely) Fetch(ctx context.Context, terms SearchTerms) ([]extract.RawPosting, error) {
	category := terms.Category
	if category == "" {
		category = wwrDefaultCategory
	}

	doc, err := w.client.getHTML(ctx, w.baseURL+"/categories/"+category)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely listing: %w", err)
	}

	var postings []extract.RawPosting
	doc.Find("section.jobs li").Each(func(_ int, item *goquery.Selection) {
		if item.HasClass("view-all") {
			return
		}

		title := strings.TrimSpace(item.Find("span.title").Text())
		if title == "" || !matchesKeywords(title, terms.Keywords) {
			return
		}

		href, _ := item.Find(`a[href^="/remote-jobs/"]`).First().Attr("href")

		postings = append(postings, extract.RawPosting{
			Source:   w.Name(),
			Title:    title,
			Company:  strings.TrimSpace(item.Find("span.company").First().Text()),
			Location: strings.TrimSpace(item.Find("span.region").Text()),
			URL:      w.baseURL + href,
		})
	})
	return postings, nil
}
