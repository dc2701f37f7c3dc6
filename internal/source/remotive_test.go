package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remotiveFixture = `{
  "job-count": 2,
  "jobs": [
    {
      "id": 1907000,
      "url": "https://remotive.com/remote-jobs/software-dev/backend-engineer-1907000",
      "title": "Backend Engineer",
      "company_name": "Acme",
      "candidate_required_location": "Worldwide",
      "job_type": "full_time",
      "salary": "$120k-$150k",
      "description": "<p>Go and PostgreSQL required.</p><p>5+ years of experience.</p>"
    },
    {
      "id": 1907001,
      "url": "https://remotive.com/remote-jobs/software-dev/frontend-engineer-1907001",
      "title": "Frontend Engineer",
      "company_name": "Widgets",
      "candidate_required_location": "Europe",
      "job_type": "contract",
      "salary": "",
      "description": "React and TypeScript."
    }
  ]
}`

func TestRemotiveFetch(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(remotiveFixture))
	}))
	defer server.Close()

	r := NewRemotive(NewClient(nil, ""))
	r.apiURL = server.URL

	postings, err := r.Fetch(context.Background(), SearchTerms{
		Keywords: []string{"backend", "go"},
		Category: "software-dev",
	})
	require.NoError(t, err)
	require.Len(t, postings, 2)

	assert.Contains(t, gotQuery, "search=backend+go")
	assert.Contains(t, gotQuery, "category=software-dev")

	first := postings[0]
	assert.Equal(t, "remotive", first.Source)
	// The numeric API id arrives as a string.
	assert.Equal(t, "1907000", first.NativeID)
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Worldwide", first.Location)
	// HTML stripped, salary and job type folded into the text.
	assert.NotContains(t, first.Description, "<p>")
	assert.Contains(t, first.Description, "Go and PostgreSQL required.")
	assert.Contains(t, first.Description, "Salary: $120k-$150k")
	assert.Contains(t, first.Description, "full time")

	second := postings[1]
	assert.Equal(t, "1907001", second.NativeID)
	assert.NotContains(t, second.Description, "Salary:")
}

func TestRemotiveFetchBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	r := NewRemotive(NewClient(nil, ""))
	r.apiURL = server.URL

	_, err := r.Fetch(context.Background(), SearchTerms{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status")
}
