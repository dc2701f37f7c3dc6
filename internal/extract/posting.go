// Package extract pulls structured job and candidate facts out of free text.
// All extraction is pure: no I/O, deterministic for identical input, and no
// failures — fields that cannot be determined take their documented defaults.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

type Seniority string

const (
	SeniorityJunior       Seniority = "junior"
	SeniorityMid          Seniority = "mid"
	SenioritySenior       Seniority = "senior"
	SeniorityStaff        Seniority = "staff"
	SeniorityManager      Seniority = "manager"
	SeniorityNotSpecified Seniority = "not_specified"
)

type RemoteType string

const (
	RemoteFull         RemoteType = "remote"
	RemoteFlexible     RemoteType = "remote_flexible"
	RemoteHybrid       RemoteType = "hybrid"
	RemoteOffice       RemoteType = "office"
	RemoteNotSpecified RemoteType = "not_specified"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

const (
	locationRemote       = "Remote"
	locationNotSpecified = "Not specified"
)

// RawPosting is one opportunity as a source hands it over. Sources fill in
// whatever structured fields their payload carries; everything else is
// derived from Description text.
type RawPosting struct {
	Source      string
	NativeID    string
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	ApplyURL    string
}

// Record is a fully extracted posting. Immutable once produced.
// Zero values mean "not specified" for SalaryMin/SalaryMax/ExperienceYears.
type Record struct {
	Title           string         `json:"title"`
	Company         string         `json:"company"`
	Location        string         `json:"location"`
	Description     string         `json:"description"`
	Source          string         `json:"source"`
	NativeID        string         `json:"native_id,omitempty"`
	URL             string         `json:"url"`
	SalaryMin       float64        `json:"salary_min,omitempty"`
	SalaryMax       float64        `json:"salary_max,omitempty"`
	SalaryCurrency  string         `json:"salary_currency"`
	SalaryPeriod    string         `json:"salary_period"`
	RequiredSkills  Set            `json:"required_skills,omitempty"`
	PreferredSkills Set            `json:"preferred_skills,omitempty"`
	ExperienceYears int            `json:"experience_years,omitempty"`
	Seniority       Seniority      `json:"seniority"`
	Employment      EmploymentType `json:"employment"`
	Remote          RemoteType     `json:"remote"`
	ContactEmail    string         `json:"contact_email,omitempty"`
	ApplyURL        string         `json:"apply_url,omitempty"`
	Hashtags        Set            `json:"hashtags,omitempty"`
}

// ID is the posting identity: the source-native id when the platform provides
// one, otherwise a content hash over the fields that define the opportunity.
func (r *Record) ID() string {
	if r.NativeID != "" {
		return fmt.Sprintf("%s:%s", r.Source, r.NativeID)
	}
	return fmt.Sprintf("%s:%s", r.Source, Hash(r.Title+"|"+r.Company+"|"+r.Description))
}

// Hash returns the stable content hash used for identities and cache keys.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Posting extracts a Record from a raw source payload.
func Posting(raw RawPosting) Record {
	text := raw.Title + "\n" + raw.Location + "\n" + raw.Description
	lower := strings.ToLower(text)

	min, max, currency, period := extractSalary(text, lower)
	required, preferred := extractSkills(lower)

	rec := Record{
		Title:           extractTitle(raw),
		Company:         extractCompany(raw),
		Location:        extractLocation(raw),
		Description:     raw.Description,
		Source:          raw.Source,
		NativeID:        raw.NativeID,
		URL:             raw.URL,
		SalaryMin:       min,
		SalaryMax:       max,
		SalaryCurrency:  currency,
		SalaryPeriod:    period,
		RequiredSkills:  required,
		PreferredSkills: preferred,
		ExperienceYears: extractExperienceYears(lower),
		Seniority:       extractSeniority(lower),
		Employment:      extractEmployment(lower),
		Remote:          extractRemoteType(lower),
		ContactEmail:    extractEmail(text),
		ApplyURL:        raw.ApplyURL,
		Hashtags:        extractHashtags(text),
	}

	return rec
}

func extractTitle(raw RawPosting) string {
	if t := strings.TrimSpace(raw.Title); t != "" {
		return t
	}
	for _, pattern := range titlePatterns {
		if m := pattern.FindStringSubmatch(raw.Description); m != nil {
			return capitalize(strings.TrimSpace(m[1]))
		}
	}
	return "Unknown Position"
}

func extractCompany(raw RawPosting) string {
	if c := strings.TrimSpace(raw.Company); c != "" {
		return c
	}
	return "Unknown"
}

func extractLocation(raw RawPosting) string {
	if loc := strings.TrimSpace(raw.Location); loc != "" {
		if remoteLocationTokens.MatchString(loc) {
			return locationRemote
		}
		return loc
	}

	for _, pattern := range locationPatterns {
		m := pattern.FindStringSubmatch(raw.Description)
		if m == nil {
			continue
		}
		loc := strings.TrimSpace(m[1])
		if remoteLocationTokens.MatchString(loc) {
			return locationRemote
		}
		return capitalize(loc)
	}
	return locationNotSpecified
}

func extractSalary(text, lower string) (min, max float64, currency, period string) {
	currency = "USD"
	period = "year"

	for _, pattern := range salaryPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		min = parseAmount(m[1])
		if len(m) > 2 {
			max = parseAmount(m[2])
		} else {
			max = min
		}

		// Values under 1000 are thousands-suffixed shorthand.
		if min < 1000 {
			min *= 1000
		}
		if max < 1000 {
			max *= 1000
		}
		break
	}

	if strings.Contains(lower, "eur") || strings.Contains(text, "€") {
		currency = "EUR"
	} else if strings.Contains(lower, "gbp") || strings.Contains(text, "£") {
		currency = "GBP"
	}

	if strings.Contains(lower, "month") {
		period = "month"
	}

	return min, max, currency, period
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

const skillContextWindow = 50

func extractSkills(lower string) (required, preferred Set) {
	required = NewSet()
	preferred = NewSet()

	for _, terms := range skillTaxonomy {
		for _, term := range terms {
			for _, idx := range findWholeWord(lower, term) {
				window := contextWindow(lower, idx, len(term), skillContextWindow)
				switch {
				case containsAny(window, requiredContextWords):
					required.Add(term)
				case containsAny(window, preferredContextWords):
					preferred.Add(term)
				default:
					// Unqualified mentions default to required.
					required.Add(term)
				}
			}
		}
	}
	return required, preferred
}

// findWholeWord returns the indexes of whole-word occurrences of term. Word
// boundaries tolerate the punctuation that appears inside taxonomy terms
// ("c++", "next.js").
func findWholeWord(text, term string) []int {
	var indexes []int
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			break
		}
		idx += start
		if isBoundary(text, idx-1) && isBoundary(text, idx+len(term)) {
			indexes = append(indexes, idx)
		}
		start = idx + len(term)
	}
	return indexes
}

func isBoundary(text string, idx int) bool {
	if idx < 0 || idx >= len(text) {
		return true
	}
	c := text[idx]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}

func contextWindow(text string, idx, termLen, radius int) string {
	lo := idx - radius
	if lo < 0 {
		lo = 0
	}
	hi := idx + termLen + radius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func extractExperienceYears(lower string) int {
	for _, pattern := range experiencePatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if len(m) > 2 {
			// A range collapses to its floored mean.
			lo, _ := strconv.Atoi(m[1])
			hi, _ := strconv.Atoi(m[2])
			return (lo + hi) / 2
		}
		years, _ := strconv.Atoi(m[1])
		return years
	}
	return 0
}

func extractSeniority(lower string) Seniority {
	for _, entry := range seniorityKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.level
		}
	}
	return SeniorityNotSpecified
}

func extractEmployment(lower string) EmploymentType {
	for _, entry := range employmentKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.kind
		}
	}
	return EmploymentFullTime
}

func extractRemoteType(lower string) RemoteType {
	switch {
	case strings.Contains(lower, "hybrid"):
		return RemoteHybrid
	case containsAny(lower, []string{"100% remote", "fully remote", "remote only"}):
		return RemoteFull
	case strings.Contains(lower, "remote"):
		return RemoteFlexible
	case strings.Contains(lower, "office") || strings.Contains(lower, "onsite") || strings.Contains(lower, "on-site"):
		return RemoteOffice
	}
	return RemoteNotSpecified
}

func extractEmail(text string) string {
	for _, pattern := range emailPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if len(m) > 1 && m[1] != "" {
				candidate = m[1]
			}
			if email := normalizeEmail(candidate); email != "" {
				return email
			}
		}
	}
	return ""
}

// normalizeEmail rewrites obfuscation tokens and validates the result against
// a strict address grammar. Returns "" for anything that does not validate.
func normalizeEmail(candidate string) string {
	email := strings.ToLower(strings.TrimSpace(candidate))
	email = strings.TrimPrefix(email, "mailto:")
	email = emailAtToken.ReplaceAllString(email, "@")
	email = emailDotToken.ReplaceAllString(email, ".")
	email = strings.TrimSpace(email)

	if emailValid.MatchString(email) {
		return email
	}
	return ""
}

func extractHashtags(text string) Set {
	tags := NewSet()
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags.Add(strings.ToLower(m[1]))
	}
	return tags
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
