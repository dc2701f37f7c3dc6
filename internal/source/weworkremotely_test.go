package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wwrFixture = `<html><body>
<section class="jobs">
  <ul>
    <li class="feature">
      <a href="/company/acme"><span class="company">Acme</span></a>
      <a href="/remote-jobs/acme-senior-go-engineer">
        <span class="title">Senior Go Engineer</span>
        <span class="region company">Anywhere in the World</span>
      </a>
    </li>
    <li>
      <a href="/remote-jobs/widgets-rails-developer">
        <span class="title">Rails Developer</span>
        <span class="company">Widgets</span>
        <span class="region company">Europe Only</span>
      </a>
    </li>
    <li class="view-all"><a href="/categories/remote-programming-jobs">View all</a></li>
  </ul>
</section>
</body></html>`

func TestWeWorkRemotelyFetch(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(wwrFixture))
	}))
	defer server.Close()

	w := NewWeWorkRemotely(NewClient(nil, ""))
	w.baseURL = server.URL

	postings, err := w.Fetch(context.Background(), SearchTerms{})
	require.NoError(t, err)

	assert.Equal(t, "/categories/remote-programming-jobs", gotPath)
	// The view-all entry is not a posting.
	require.Len(t, postings, 2)

	first := postings[0]
	assert.Equal(t, "weworkremotely", first.Source)
	assert.Equal(t, "Senior Go Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Anywhere in the World", first.Location)
	assert.Equal(t, server.URL+"/remote-jobs/acme-senior-go-engineer", first.URL)
}

func TestWeWorkRemotelyKeywordFilter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(wwrFixture))
	}))
	defer server.Close()

	w := NewWeWorkRemotely(NewClient(nil, ""))
	w.baseURL = server.URL

	postings, err := w.Fetch(context.Background(), SearchTerms{Keywords: []string{"rails"}})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "Rails Developer", postings[0].Title)
}
