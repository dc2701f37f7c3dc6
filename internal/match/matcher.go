// Package match scores extracted postings against a candidate profile.
// Scoring is pure and deterministic: the same posting and profile always
// produce the same Score.
package match

import (
	"strings"
	"time"

	"github.com/jobsift/jobsift/internal/extract"

	"go.uber.org/zap"
)

// Weights distributes the total score across the scoring factors.
// They must sum to 1.0.
type Weights struct {
	Skills     float64 `mapstructure:"skills" validate:"gte=0,lte=1"`
	Experience float64 `mapstructure:"experience" validate:"gte=0,lte=1"`
	Location   float64 `mapstructure:"location" validate:"gte=0,lte=1"`
	Seniority  float64 `mapstructure:"seniority" validate:"gte=0,lte=1"`
	Salary     float64 `mapstructure:"salary" validate:"gte=0,lte=1"`
	Education  float64 `mapstructure:"education" validate:"gte=0,lte=1"`
	Language   float64 `mapstructure:"language" validate:"gte=0,lte=1"`
}

func DefaultWeights() Weights {
	return Weights{
		Skills:     0.30,
		Experience: 0.20,
		Location:   0.15,
		Seniority:  0.10,
		Salary:     0.10,
		Education:  0.10,
		Language:   0.05,
	}
}

// Sum returns the aggregate weight, used to validate configured overrides.
func (w Weights) Sum() float64 {
	return w.Skills + w.Experience + w.Location + w.Seniority + w.Salary + w.Education + w.Language
}

// Thresholds are the minimum factor scores a posting must clear to be
// recommended.
type Thresholds struct {
	MinTotal      float64 `mapstructure:"min-total"`
	MinSkills     float64 `mapstructure:"min-skills"`
	MinExperience float64 `mapstructure:"min-experience"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTotal:      60.0,
		MinSkills:     50.0,
		MinExperience: 40.0,
	}
}

// Score is the detailed match between one candidate and one posting.
// All scores are on a 0-100 scale.
type Score struct {
	Total      float64 `json:"total"`
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Location   float64 `json:"location"`
	Seniority  float64 `json:"seniority"`
	Salary     float64 `json:"salary"`
	Education  float64 `json:"education"`
	Language   float64 `json:"language"`

	MissingRequired   []string `json:"missing_required,omitempty"`
	MatchingPreferred []string `json:"matching_preferred,omitempty"`
	Reasons           []string `json:"reasons"`
}

// Matcher applies a fixed weight table and thresholds to posting/profile
// pairs.
type Matcher struct {
	weights    Weights
	thresholds Thresholds
	logger     *zap.Logger

	// Overridable in tests; experience dates are measured against it.
	now func() time.Time
}

func New(weights Weights, thresholds Thresholds, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		weights:    weights,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// Score evaluates one posting against the candidate. A posting that is not
// remote is zero across the board with a single explaining reason.
func (m *Matcher) Score(job *extract.Record, candidate *extract.CandidateProfile) Score {
	if !isRemoteJob(job) {
		return Score{Reasons: []string{"Job is not remote."}}
	}

	years := candidate.TotalExperienceYears(m.now())

	skills, missing, preferred := scoreSkills(job, candidate)
	experience := scoreExperience(job, years)
	location := scoreLocation(job, candidate)
	seniority := scoreSeniority(job, years)
	salary := scoreSalary(job)
	education := scoreEducation(candidate)
	language := scoreLanguage(candidate)

	total := (skills*m.weights.Skills +
		experience*m.weights.Experience +
		location*m.weights.Location +
		seniority*m.weights.Seniority +
		salary*m.weights.Salary +
		education*m.weights.Education +
		language*m.weights.Language) * 100

	score := Score{
		Total:             total,
		Skills:            skills * 100,
		Experience:        experience * 100,
		Location:          location * 100,
		Seniority:         seniority * 100,
		Salary:            salary * 100,
		Education:         education * 100,
		Language:          language * 100,
		MissingRequired:   missing.Sorted(),
		MatchingPreferred: preferred.Sorted(),
	}
	score.Reasons = matchReasons(score, missing, preferred)

	m.logger.Debug("scored posting",
		zap.String("posting", job.ID()),
		zap.Float64("total", total),
	)
	return score
}

// Recommended reports whether the score clears every configured threshold.
func (m *Matcher) Recommended(s Score) bool {
	return s.Total >= m.thresholds.MinTotal &&
		s.Skills >= m.thresholds.MinSkills &&
		s.Experience >= m.thresholds.MinExperience
}

var remoteIndicators = []string{
	"remote",
	"work from home",
	"wfh",
	"virtual",
	"distributed team",
	"anywhere",
	"worldwide",
}

var nonRemoteIndicators = []string{
	"on-site",
	"onsite",
	"in office",
	"hybrid",
	"local only",
	"must be in",
	"must work from",
}

// isRemoteJob gates scoring. A single non-remote indicator in the location or
// description disqualifies the posting; otherwise at least one remote
// indicator must be present.
func isRemoteJob(job *extract.Record) bool {
	location := strings.ToLower(job.Location)
	description := strings.ToLower(job.Description)

	for _, indicator := range nonRemoteIndicators {
		if strings.Contains(location, indicator) || strings.Contains(description, indicator) {
			return false
		}
	}

	for _, indicator := range remoteIndicators {
		if strings.Contains(location, indicator) || strings.Contains(description, indicator) {
			return true
		}
	}
	return false
}

// scoreSkills weights required skill coverage 70/30 against preferred
// coverage. A posting with no skill requirements scores full.
func scoreSkills(job *extract.Record, candidate *extract.CandidateProfile) (float64, extract.Set, extract.Set) {
	if job.RequiredSkills.Len() == 0 && job.PreferredSkills.Len() == 0 {
		return 1.0, extract.NewSet(), extract.NewSet()
	}

	missing := job.RequiredSkills.Diff(candidate.Skills)
	matchingRequired := job.RequiredSkills.Intersect(candidate.Skills)
	matchingPreferred := job.PreferredSkills.Intersect(candidate.Skills)

	requiredScore := 1.0
	if job.RequiredSkills.Len() > 0 {
		requiredScore = float64(matchingRequired.Len()) / float64(job.RequiredSkills.Len())
	}
	preferredScore := 1.0
	if job.PreferredSkills.Len() > 0 {
		preferredScore = float64(matchingPreferred.Len()) / float64(job.PreferredSkills.Len())
	}

	return requiredScore*0.7 + preferredScore*0.3, missing, matchingPreferred
}

func scoreExperience(job *extract.Record, candidateYears float64) float64 {
	if job.ExperienceYears == 0 {
		return 1.0
	}

	required := float64(job.ExperienceYears)
	switch {
	case candidateYears >= required:
		return 1.0
	case candidateYears >= required*0.7:
		return 0.8
	case candidateYears >= required*0.5:
		return 0.5
	default:
		return 0.2
	}
}

func scoreLocation(job *extract.Record, candidate *extract.CandidateProfile) float64 {
	if job.Remote == extract.RemoteFull || job.Remote == extract.RemoteFlexible {
		return 1.0
	}

	jobLocation := normalizeLocation(job.Location)
	candidateLocation := normalizeLocation(candidate.Location)
	if jobLocation == "not specified" || candidateLocation == "not specified" {
		return 0.5
	}

	if jobLocation == candidateLocation {
		return 1.0
	}

	// Same region counts as a partial match.
	jobParts := extract.NewSet(strings.Fields(jobLocation)...)
	candidateParts := extract.NewSet(strings.Fields(candidateLocation)...)
	if jobParts.Intersect(candidateParts).Len() > 0 {
		return 0.8
	}
	return 0.3
}

func normalizeLocation(location string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(location), ",", ""))
}

var seniorityOrder = map[extract.Seniority]int{
	extract.SeniorityJunior:  0,
	extract.SeniorityMid:     1,
	extract.SenioritySenior:  2,
	extract.SeniorityStaff:   3,
	extract.SeniorityManager: 4,
}

// experienceRanges maps seniority levels to the year spans they typically
// cover. Ranges overlap; the lowest level whose span contains the candidate's
// years wins.
var experienceRanges = []struct {
	level    extract.Seniority
	min, max float64
}{
	{extract.SeniorityJunior, 0, 3},
	{extract.SeniorityMid, 2, 5},
	{extract.SenioritySenior, 4, 8},
	{extract.SeniorityStaff, 6, 12},
	{extract.SeniorityManager, 5, 15},
}

func candidateLevel(years float64) extract.Seniority {
	for _, r := range experienceRanges {
		if years >= r.min && years <= r.max {
			return r.level
		}
	}
	// Beyond every range means more experience than the top band asks for.
	if years > 15 {
		return extract.SeniorityManager
	}
	return extract.SeniorityJunior
}

func scoreSeniority(job *extract.Record, candidateYears float64) float64 {
	if job.Seniority == extract.SeniorityNotSpecified {
		return 1.0
	}

	jobLevel := seniorityOrder[job.Seniority]
	level := seniorityOrder[candidateLevel(candidateYears)]

	difference := jobLevel - level
	if difference < 0 {
		difference = -difference
	}

	switch difference {
	case 0:
		return 1.0
	case 1:
		return 0.7
	default:
		return 0.3
	}
}

// scoreSalary is neutral when the posting states a salary, since candidate
// expectations are not modelled, and full when it states none.
func scoreSalary(job *extract.Record) float64 {
	if job.SalaryMin == 0 && job.SalaryMax == 0 {
		return 1.0
	}
	return 0.5
}

var educationLevels = map[string]float64{
	"phd":       4,
	"master":    3,
	"bachelor":  2,
	"associate": 1,
}

var relevantMajorTerms = []string{"computer", "software", "information", "data"}

func scoreEducation(candidate *extract.CandidateProfile) float64 {
	if len(candidate.Education) == 0 {
		return 0.5
	}

	var highest float64
	relevantMajor := false

	for _, edu := range candidate.Education {
		degree := strings.ToLower(edu.Degree)
		for level, value := range educationLevels {
			if strings.Contains(degree, level) && value > highest {
				highest = value
			}
		}

		major := strings.ToLower(edu.Major)
		for _, term := range relevantMajorTerms {
			if strings.Contains(major, term) {
				relevantMajor = true
				break
			}
		}
	}

	score := highest / 3
	if score > 1.0 {
		score = 1.0
	}
	if relevantMajor {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// scoreLanguage assumes English is required when the posting states nothing.
func scoreLanguage(candidate *extract.CandidateProfile) float64 {
	if candidate.Languages.Len() == 0 {
		return 0.5
	}
	if candidate.Languages.Has("English") {
		return 1.0
	}
	return 0.3
}

// matchReasons renders the factor scores as reader-facing sentences, in a
// fixed factor order.
func matchReasons(s Score, missing, preferred extract.Set) []string {
	var reasons []string

	switch {
	case s.Skills >= 80:
		reasons = append(reasons, "Strong skill match with the required qualifications.")
		if preferred.Len() > 0 {
			reasons = append(reasons, "Bonus: Matches preferred skills: "+strings.Join(preferred.Sorted(), ", "))
		}
	case s.Skills >= 50:
		reasons = append(reasons, "Partial skill match, but some key skills are missing.")
		if missing.Len() > 0 {
			reasons = append(reasons, "Missing required skills: "+strings.Join(missing.Sorted(), ", "))
		}
	default:
		reasons = append(reasons, "Significant skill gap with the requirements.")
		reasons = append(reasons, "Missing critical skills: "+strings.Join(missing.Sorted(), ", "))
	}

	switch {
	case s.Experience >= 80:
		reasons = append(reasons, "Experience level exceeds the requirements.")
	case s.Experience >= 50:
		reasons = append(reasons, "Experience level meets the minimum requirements.")
	default:
		reasons = append(reasons, "May need more experience for this role.")
	}

	switch {
	case s.Location >= 80:
		reasons = append(reasons, "Location is ideal for this position.")
	case s.Location >= 50:
		reasons = append(reasons, "Location is workable but may require relocation or remote work arrangement.")
	default:
		reasons = append(reasons, "Location mismatch might be a challenge.")
	}

	switch {
	case s.Seniority >= 80:
		reasons = append(reasons, "Seniority level is a great match.")
	case s.Seniority >= 50:
		reasons = append(reasons, "Seniority level is acceptable but not ideal.")
	default:
		reasons = append(reasons, "Seniority level mismatch.")
	}

	switch {
	case s.Education >= 80:
		reasons = append(reasons, "Educational background is highly relevant.")
	case s.Education >= 50:
		reasons = append(reasons, "Educational background is adequate.")
	default:
		reasons = append(reasons, "May need additional education or certifications.")
	}

	switch {
	case s.Language >= 80:
		reasons = append(reasons, "Meets all language requirements.")
	case s.Language >= 50:
		reasons = append(reasons, "Basic language requirements are met.")
	default:
		reasons = append(reasons, "May need to improve language skills.")
	}

	return reasons
}
