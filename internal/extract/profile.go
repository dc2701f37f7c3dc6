package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CandidateProfile holds structured facts extracted from one résumé.
// Produced once per parse and cached by content hash of the source text.
type CandidateProfile struct {
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone,omitempty"`
	Location       string               `json:"location"`
	Skills         Set                  `json:"skills,omitempty"`
	Languages      Set                  `json:"languages,omitempty"`
	Experience     []ExperienceEntry    `json:"experience,omitempty"`
	Education      []EducationEntry     `json:"education,omitempty"`
	Projects       []ProjectEntry       `json:"projects,omitempty"`
	Certifications []CertificationEntry `json:"certifications,omitempty"`
	Summary        string               `json:"summary,omitempty"`
}

type ExperienceEntry struct {
	Title            string   `json:"title,omitempty"`
	Company          string   `json:"company,omitempty"`
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

type EducationEntry struct {
	Degree         string  `json:"degree,omitempty"`
	Major          string  `json:"major,omitempty"`
	Institution    string  `json:"institution,omitempty"`
	GraduationDate string  `json:"graduation_date,omitempty"`
	GPA            float64 `json:"gpa,omitempty"`
}

type ProjectEntry struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	URL          string `json:"url,omitempty"`
	Technologies Set    `json:"technologies,omitempty"`
}

type CertificationEntry struct {
	Name   string `json:"name,omitempty"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
}

var (
	resumeHeaderWords = regexp.MustCompile(`(?i)(resume|cv|curriculum vitae)`)
	profileLocation   = regexp.MustCompile(`(?i)(?:location|address|based in):\s*([^\n]+)`)
	degreeKeywords    = []string{"phd", "master", "bachelor", "msc", "bsc", "bs", "ba"}
	majorKeywords     = []string{"computer science", "software engineering", "information technology", "data science"}
	institutionWords  = []string{"university", "college", "institute", "school"}

	expDateRange = regexp.MustCompile(`((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})\s*[-–]\s*((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}|Present)`)
	expHeader    = regexp.MustCompile(`^([^|@\n]+)(?:[|@]\s*([^\n]+))?`)
	gradDate     = regexp.MustCompile(`(?i)(?:graduated|completion|expected):\s*([A-Za-z]+\s+\d{4})`)
	gpaValue     = regexp.MustCompile(`(?i)gpa:\s*(\d+\.\d+)`)
	certIssuer   = regexp.MustCompile(`(?i)(?:issued by|from):\s*([^\n]+)`)
	certDate     = regexp.MustCompile(`(?i)(?:issued|completed|earned):\s*([A-Za-z]+\s+\d{4})`)
)

// Profile extracts a CandidateProfile from raw résumé text. Like Posting it
// never fails: missing facts stay at their zero values.
func Profile(text string) CandidateProfile {
	lower := strings.ToLower(text)
	skills, _ := extractSkills(lower)

	return CandidateProfile{
		Name:           extractName(text),
		Email:          extractEmail(text),
		Phone:          phonePattern.FindString(text),
		Location:       extractProfileLocation(text),
		Skills:         skills,
		Languages:      extractLanguages(lower),
		Experience:     extractExperienceEntries(text),
		Education:      extractEducationEntries(text),
		Projects:       extractProjectEntries(text),
		Certifications: extractCertificationEntries(text),
		Summary:        extractSummary(text),
	}
}

func extractName(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(resumeHeaderWords.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if emailPatterns[0].MatchString(line) || phonePattern.MatchString(line) {
			continue
		}
		return line
	}
	return "Unknown"
}

func extractProfileLocation(text string) string {
	if m := profileLocation.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return locationNotSpecified
}

func extractLanguages(lower string) Set {
	languages := NewSet()
	for _, lang := range humanLanguages {
		if strings.Contains(lower, lang) {
			languages.Add(capitalize(lang))
		}
	}
	return languages
}

func extractExperienceEntries(text string) []ExperienceEntry {
	section := extractSection(text, "experience", "work experience", "employment")
	if section == "" {
		return nil
	}

	var entries []ExperienceEntry
	for _, block := range splitEntries(section) {
		var entry ExperienceEntry

		lines := strings.Split(block, "\n")
		// First line usually carries "Title | Company".
		if m := expHeader.FindStringSubmatch(lines[0]); m != nil {
			entry.Title = strings.TrimSpace(m[1])
			entry.Company = strings.TrimSpace(m[2])
		}

		if m := expDateRange.FindStringSubmatch(block); m != nil {
			entry.StartDate = m[1]
			entry.EndDate = m[2]
		}

		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			if rest, ok := trimBullet(line); ok {
				entry.Responsibilities = append(entry.Responsibilities, rest)
			}
		}

		if entry.Title != "" || entry.Company != "" || entry.StartDate != "" || len(entry.Responsibilities) > 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

func extractEducationEntries(text string) []EducationEntry {
	section := extractSection(text, "education", "academic background")
	if section == "" {
		return nil
	}

	var entries []EducationEntry
	for _, block := range splitEntries(section) {
		lower := strings.ToLower(block)
		var entry EducationEntry

		for _, degree := range degreeKeywords {
			if containsWholeWord(lower, degree) {
				entry.Degree = strings.ToUpper(degree)
				break
			}
		}
		for _, major := range majorKeywords {
			if strings.Contains(lower, major) {
				entry.Major = titleCase(major)
				break
			}
		}
		for _, word := range institutionWords {
			pattern := regexp.MustCompile(`(?i)` + word + `\s+of\s+([^,\n]+)`)
			if m := pattern.FindStringSubmatch(block); m != nil {
				entry.Institution = strings.TrimSpace(m[1])
				break
			}
		}
		if m := gradDate.FindStringSubmatch(block); m != nil {
			entry.GraduationDate = m[1]
		}
		if m := gpaValue.FindStringSubmatch(block); m != nil {
			entry.GPA, _ = strconv.ParseFloat(m[1], 64)
		}

		if entry != (EducationEntry{}) {
			entries = append(entries, entry)
		}
	}
	return entries
}

func extractProjectEntries(text string) []ProjectEntry {
	section := extractSection(text, "projects", "personal projects")
	if section == "" {
		return nil
	}

	var entries []ProjectEntry
	for _, block := range splitEntries(section) {
		lines := strings.Split(block, "\n")
		entry := ProjectEntry{Name: strings.TrimSpace(lines[0])}

		entry.URL = urlPattern.FindString(block)

		tech, _ := extractSkills(strings.ToLower(block))
		if tech.Len() > 0 {
			entry.Technologies = tech
		}

		var description []string
		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			if _, bullet := trimBullet(line); line != "" && !bullet {
				description = append(description, line)
			}
		}
		entry.Description = strings.Join(description, " ")

		entries = append(entries, entry)
	}
	return entries
}

func extractCertificationEntries(text string) []CertificationEntry {
	section := extractSection(text, "certifications", "certificates", "qualifications")
	if section == "" {
		return nil
	}

	var entries []CertificationEntry
	for _, block := range splitEntries(section) {
		lines := strings.Split(block, "\n")
		entry := CertificationEntry{Name: strings.TrimSpace(lines[0])}

		if m := certIssuer.FindStringSubmatch(block); m != nil {
			entry.Issuer = strings.TrimSpace(m[1])
		}
		if m := certDate.FindStringSubmatch(block); m != nil {
			entry.Date = m[1]
		}
		entry.URL = urlPattern.FindString(block)

		entries = append(entries, entry)
	}
	return entries
}

func extractSummary(text string) string {
	section := extractSection(text, "summary", "objective", "profile")
	return strings.Join(strings.Fields(section), " ")
}

// extractSection returns the body between a section header and the next blank
// line gap, trying the given header names in order.
func extractSection(text string, names ...string) string {
	for _, name := range names {
		pattern := regexp.MustCompile(`(?is)(?:^|\n)` + regexp.QuoteMeta(name) + `:?\s*\n+(.*?)(?:\n\s*\n[A-Za-z ]+:?\s*\n|\z)`)
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func splitEntries(section string) []string {
	var blocks []string
	for _, block := range regexp.MustCompile(`\n\s*\n`).Split(section, -1) {
		if strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func containsWholeWord(text, word string) bool {
	return len(findWholeWord(text, word)) > 0
}

func trimBullet(line string) (string, bool) {
	for _, bullet := range []string{"•", "-", "*"} {
		if rest, ok := strings.CutPrefix(line, bullet); ok && strings.TrimSpace(rest) != "" {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

var experienceDateLayouts = []string{"January 2006", "Jan 2006"}

// TotalExperienceYears sums the candidate's parsed experience date ranges.
// "Present" resolves to now. Entries with unparseable dates are skipped.
func (p *CandidateProfile) TotalExperienceYears(now time.Time) float64 {
	var total float64
	for _, exp := range p.Experience {
		if exp.StartDate == "" || exp.EndDate == "" {
			continue
		}
		start, ok := parseExperienceDate(exp.StartDate)
		if !ok {
			continue
		}
		end := now
		if !strings.EqualFold(exp.EndDate, "Present") {
			end, ok = parseExperienceDate(exp.EndDate)
			if !ok {
				continue
			}
		}
		if end.After(start) {
			total += end.Sub(start).Hours() / 24 / 365.25
		}
	}
	return total
}

func parseExperienceDate(s string) (time.Time, bool) {
	for _, layout := range experienceDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
