package extract

import "regexp"

// Location patterns are tried in priority order. The first match wins.
var locationPatterns = []*regexp.Regexp{
	// Explicit "in/at/based in City, ST" forms.
	regexp.MustCompile(`(?:\bin|\bat|[Bb]ased in|[Ll]ocation:?|[Pp]osition in|[Rr]emote in)\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)*(?:\s*,\s*[A-Z]{2,3})?)`),
	// Remote indicators.
	regexp.MustCompile(`(?i)\b((?:100%\s+)?remote|fully remote|remote(?:\s+(?:friendly|ok|possible|only))?|work from home|anywhere|worldwide)\b`),
	// Hybrid indicators, optionally anchored to a city.
	regexp.MustCompile(`(?i)\b(hybrid(?:\s+in\s+[A-Z][a-z]+(?:\s*,\s*[A-Z]{2,3})?)?)`),
	// Multi-location offices.
	regexp.MustCompile(`(?i)(?:locations?|offices?)\s+in\s+([A-Z][a-z]+(?:\s*[,&]\s*[A-Z][a-z]+)*)`),
}

var remoteLocationTokens = regexp.MustCompile(`(?i)\b(remote|anywhere|worldwide|work from home)\b`)

// Salary patterns, ordered from most to least specific. Patterns with two
// capture groups describe a range, one group a single value.
var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$(\d+)k\s*[-–]\s*\$?(\d+)k`),
	regexp.MustCompile(`(?i)(\d+)k\s*[-–]\s*(\d+)k\s*(?:usd|eur|gbp)`),
	regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})+)\s*[-–]\s*\$?(\d{1,3}(?:,\d{3})+)`),
	regexp.MustCompile(`(?i)\$(\d+)k\+?`),
	regexp.MustCompile(`(?i)(\d+)k\+?\s*(?:usd|eur|gbp)`),
	regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})+)`),
}

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)(?:\s+of)?\s+(?:experience|exp)`),
	regexp.MustCompile(`(?i)(?:minimum|min\.?|at least)\s+(\d+)\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)(\d+)\s*[-–]\s*(\d+)\s*(?:years?|yrs?)`),
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)hiring (?:a\s+)?([^.!?\n]*(?:engineer|developer|architect|designer)[^.!?\n]*)`),
	regexp.MustCompile(`(?i)looking for (?:a\s+)?([^.!?\n]*(?:engineer|developer|architect|designer)[^.!?\n]*)`),
	regexp.MustCompile(`(?i)open position:?\s*([^.!?\n]+)`),
	regexp.MustCompile(`(?i)job opening:?\s*([^.!?\n]+)`),
	regexp.MustCompile(`(?i)role:?\s*([^.!?\n]+)`),
	regexp.MustCompile(`(?i)position:?\s*([^.!?\n]+)`),
}

// Email patterns, tried in order. Later patterns catch obfuscated forms which
// are normalized before validation.
var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`),
	regexp.MustCompile(`(?i)mailto:([\w.+-]+@[\w.-]+\.\w+)`),
	regexp.MustCompile(`(?i)(?:email|contact|apply|send)\W{0,30}?([\w.+-]+@[\w.-]+\.\w+)`),
	regexp.MustCompile(`(?i)[\w.-]+\s*(?:\bat\b|\[at\]|\(at\))\s*[\w.-]+\s*(?:\bdot\b|\[dot\]|\(dot\))\s*\w+`),
}

var (
	emailValid    = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)
	emailAtToken  = regexp.MustCompile(`\s*(?:\bat\b|\[at\]|\(at\))\s*`)
	emailDotToken = regexp.MustCompile(`\s*(?:\bdot\b|\[dot\]|\(dot\))\s*`)

	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	phonePattern   = regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	urlPattern     = regexp.MustCompile(`https?://[^\s<>"]+`)
)

// skillTaxonomy is the fixed vocabulary scanned for whole-word occurrences.
var skillTaxonomy = map[string][]string{
	"languages": {"python", "javascript", "typescript", "java", "c++", "ruby", "go", "rust"},
	"frontend":  {"react", "vue", "angular", "svelte", "next.js", "gatsby"},
	"backend":   {"node.js", "django", "flask", "fastapi", "spring", "rails"},
	"database":  {"postgresql", "mysql", "mongodb", "redis", "elasticsearch"},
	"cloud":     {"aws", "gcp", "azure", "kubernetes", "docker"},
	"tools":     {"git", "jenkins", "terraform", "ansible", "prometheus"},
}

var (
	requiredContextWords  = []string{"required", "must", "need", "essential"}
	preferredContextWords = []string{"preferred", "nice to have", "plus"}
)

// Keyword vocabularies for categorical fields. The first category whose
// keyword appears in the text wins.
var seniorityKeywords = []struct {
	level    Seniority
	keywords []string
}{
	{SeniorityJunior, []string{"junior", "entry level", "entry-level", "jr"}},
	{SeniorityMid, []string{"mid level", "mid-level", "intermediate"}},
	{SenioritySenior, []string{"senior", "sr", "lead"}},
	{SeniorityStaff, []string{"staff", "principal"}},
	{SeniorityManager, []string{"manager", "head of", "director"}},
}

var employmentKeywords = []struct {
	kind     EmploymentType
	keywords []string
}{
	{EmploymentFullTime, []string{"full time", "full-time", "permanent"}},
	{EmploymentPartTime, []string{"part time", "part-time"}},
	{EmploymentContract, []string{"contract", "contractor", "freelance"}},
	{EmploymentInternship, []string{"intern", "internship", "trainee"}},
}

var humanLanguages = []string{
	"english", "spanish", "portuguese", "french", "german", "italian",
	"chinese", "japanese", "korean", "russian", "arabic", "hindi",
}
