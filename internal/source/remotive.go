package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jobsift/jobsift/internal/extract"
)

const remotiveAPIURL = "https://remotive.com/api/remote-jobs"

// Remotive fetches postings from the Remotive public JSON API.
type Remotive struct {
	client *Client
	apiURL string
}

func NewRemotive(client *Client) *Remotive {
	return &Remotive{
		client: client,
		apiURL: remotiveAPIURL,
	}
}

func (r *Remotive) Name() string { return "remotive" }

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Company     string `json:"company_name"`
	Location    string `json:"candidate_required_location"`
	JobType     string `json:"job_type"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
}

func (r *Remotive) Fetch(ctx context.Context, terms SearchTerms) ([]extract.RawPosting, error) {
	q := url.Values{}
	if len(terms.Keywords) > 0 {
		q.Set("search", strings.Join(terms.Keywords, " "))
	}
	if terms.Category != "" {
		q.Set("category", terms.Category)
	}

	var response remotiveResponse
	if err := r.client.getJSON(ctx, r.apiURL, q, &response); err != nil {
		return nil, fmt.Errorf("remotive search: %w", err)
	}

	postings := make([]extract.RawPosting, 0, len(response.Jobs))
	for _, job := range response.Jobs {
		description := stripHTML(job.Description)
		// The salary and employment type live in separate API fields; fold
		// them into the text so extraction sees them.
		if job.Salary != "" {
			description += "\nSalary: " + job.Salary
		}
		if job.JobType != "" {
			description += "\n" + strings.ReplaceAll(job.JobType, "_", " ")
		}

		postings = append(postings, extract.RawPosting{
			Source:      r.Name(),
			NativeID:    job.ID,
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			Description: description,
			URL:         job.URL,
			ApplyURL:    job.URL,
		})
	}
	return postings, nil
}
