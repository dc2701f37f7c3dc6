package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestPostingDeterministic(t *testing.T) {
	t.Parallel()

	raw := RawPosting{
		Source:      "remotive",
		Title:       "Senior Backend Engineer",
		Company:     "Acme",
		Location:    "Remote - Worldwide",
		Description: "Python and Go required. 5+ years of experience. $120k-$150k. #golang",
		URL:         "https://example.com/jobs/1",
	}

	first := Posting(raw)
	second := Posting(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("extraction must be deterministic for identical input")
	}
}

func TestPostingIdentity(t *testing.T) {
	t.Parallel()

	withID := Posting(RawPosting{Source: "remotive", NativeID: "123", Title: "Engineer"})
	if got := withID.ID(); got != "remotive:123" {
		t.Fatalf("expected source-native identity, got %q", got)
	}

	a := Posting(RawPosting{Source: "hackernews", Title: "Engineer", Company: "Acme", Description: "Go role"})
	b := Posting(RawPosting{Source: "hackernews", Title: "Engineer", Company: "Acme", Description: "Go role"})
	if a.ID() != b.ID() {
		t.Fatal("identical content must hash to the same identity")
	}
	if !strings.HasPrefix(a.ID(), "hackernews:") {
		t.Fatalf("identity must be source-scoped, got %q", a.ID())
	}

	c := Posting(RawPosting{Source: "hackernews", Title: "Engineer", Company: "Acme", Description: "Rust role"})
	if a.ID() == c.ID() {
		t.Fatal("different descriptions must not collide")
	}
}

func TestExtractTitleFallback(t *testing.T) {
	t.Parallel()

	rec := Posting(RawPosting{
		Source:      "hackernews",
		Description: "We are hiring a senior go developer. Fully remote.",
	})
	if rec.Title != "Senior go developer" {
		t.Fatalf("unexpected title: %q", rec.Title)
	}

	unknown := Posting(RawPosting{Source: "hackernews", Description: "No structure here at all"})
	if unknown.Title != "Unknown Position" {
		t.Fatalf("expected placeholder title, got %q", unknown.Title)
	}
	if unknown.Company != "Unknown" {
		t.Fatalf("expected placeholder company, got %q", unknown.Company)
	}
}

func TestExtractLocation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  RawPosting
		want string
	}{
		{"structured location kept", RawPosting{Location: "Berlin, Germany"}, "Berlin, Germany"},
		{"structured remote normalized", RawPosting{Location: "Remote - Worldwide"}, "Remote"},
		{"city from description", RawPosting{Description: "Based in Austin, TX with a great team"}, "Austin, TX"},
		{"remote from description", RawPosting{Description: "This role is fully remote"}, "Remote"},
		{"nothing found", RawPosting{Description: "join us"}, "Not specified"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Posting(tc.raw).Location; got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractSalary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		text     string
		min, max float64
		currency string
		period   string
	}{
		{"k range with dollars", "Salary: $120k-$150k", 120000, 150000, "USD", "year"},
		{"k range with currency code", "Pay: 50k-60k EUR", 50000, 60000, "EUR", "year"},
		{"full amounts", "We pay $90,000 - $110,000 annually", 90000, 110000, "USD", "year"},
		{"single k amount", "$140k+ for the right person", 140000, 140000, "USD", "year"},
		{"monthly", "$5k per month", 5000, 5000, "USD", "month"},
		{"gbp currency code", "Salary 65k GBP", 65000, 65000, "GBP", "year"},
		{"no salary", "Competitive compensation", 0, 0, "USD", "year"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := Posting(RawPosting{Description: tc.text})
			if rec.SalaryMin != tc.min || rec.SalaryMax != tc.max {
				t.Fatalf("got %v-%v, want %v-%v", rec.SalaryMin, rec.SalaryMax, tc.min, tc.max)
			}
			if rec.SalaryCurrency != tc.currency {
				t.Fatalf("got currency %q, want %q", rec.SalaryCurrency, tc.currency)
			}
			if rec.SalaryPeriod != tc.period {
				t.Fatalf("got period %q, want %q", rec.SalaryPeriod, tc.period)
			}
		})
	}
}

func TestExtractSkillsContext(t *testing.T) {
	t.Parallel()

	// The qualifying words sit apart so each skill's context window only
	// sees its own qualifier.
	rec := Posting(RawPosting{
		Description: "Python is required for this role. The team ships weekly and values autonomy. Experience with React is a plus.",
	})

	if !rec.RequiredSkills.Has("python") {
		t.Fatalf("python should be required, got %v", rec.RequiredSkills.Sorted())
	}
	if !rec.PreferredSkills.Has("react") {
		t.Fatalf("react should be preferred, got %v", rec.PreferredSkills.Sorted())
	}
	if rec.RequiredSkills.Has("react") {
		t.Fatal("react must not also be required")
	}

	// Unqualified mentions land in required.
	plain := Posting(RawPosting{Description: "Our stack is built on Docker and Kubernetes."})
	if !plain.RequiredSkills.Has("docker") || !plain.RequiredSkills.Has("kubernetes") {
		t.Fatalf("unqualified skills should default to required, got %v", plain.RequiredSkills.Sorted())
	}
	if plain.PreferredSkills.Len() != 0 {
		t.Fatalf("expected no preferred skills, got %v", plain.PreferredSkills.Sorted())
	}
}

func TestExtractSkillsWholeWord(t *testing.T) {
	t.Parallel()

	// "go" inside other words must not count; punctuation-bearing terms must.
	rec := Posting(RawPosting{Description: "We are an agoraphobic category company. C++ and next.js welcome."})
	if rec.RequiredSkills.Has("go") {
		t.Fatal("substring match leaked for 'go'")
	}
	if !rec.RequiredSkills.Has("c++") {
		t.Fatalf("expected c++, got %v", rec.RequiredSkills.Sorted())
	}
	if !rec.RequiredSkills.Has("next.js") {
		t.Fatalf("expected next.js, got %v", rec.RequiredSkills.Sorted())
	}
}

func TestExtractExperienceYears(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want int
	}{
		{"5+ years of experience with Go", 5},
		{"at least 3 years in the field", 3},
		{"3-5 years in backend roles", 4},
		{"no mention at all", 0},
	}

	for _, tc := range cases {
		if got := Posting(RawPosting{Description: tc.text}).ExperienceYears; got != tc.want {
			t.Fatalf("%q: got %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestExtractCategoricalFields(t *testing.T) {
	t.Parallel()

	rec := Posting(RawPosting{
		Title:       "Engineer",
		Description: "Junior position, part-time, hybrid in Amsterdam",
	})
	if rec.Seniority != SeniorityJunior {
		t.Fatalf("got seniority %q", rec.Seniority)
	}
	if rec.Employment != EmploymentPartTime {
		t.Fatalf("got employment %q", rec.Employment)
	}
	if rec.Remote != RemoteHybrid {
		t.Fatalf("got remote type %q", rec.Remote)
	}

	fullRemote := Posting(RawPosting{Description: "100% remote contract role"})
	if fullRemote.Remote != RemoteFull {
		t.Fatalf("got remote type %q", fullRemote.Remote)
	}
	if fullRemote.Employment != EmploymentContract {
		t.Fatalf("got employment %q", fullRemote.Employment)
	}
	// Defaults.
	if plain := Posting(RawPosting{Description: "nothing to see"}); plain.Employment != EmploymentFullTime {
		t.Fatalf("expected full-time default, got %q", plain.Employment)
	}
}

func TestExtractEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Send your resume to jobs@example.com today", "jobs@example.com"},
		{"mailto", "Apply via mailto:Hiring@Example.COM", "hiring@example.com"},
		{"obfuscated", "reach us: careers at acme dot io", "careers@acme.io"},
		{"bracketed", "write to team[at]startup[dot]dev", "team@startup.dev"},
		{"none", "apply through the website", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Posting(RawPosting{Description: tc.text}).ContactEmail; got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractHashtags(t *testing.T) {
	t.Parallel()

	rec := Posting(RawPosting{Description: "Great role #Golang #remote #Golang"})
	tags := rec.Hashtags.Sorted()
	want := []string{"golang", "remote"}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("got %v, want %v", tags, want)
	}
}
