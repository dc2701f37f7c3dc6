package pipeline

import (
	"strings"

	"github.com/jobsift/jobsift/internal/extract"

	"go.uber.org/zap"
)

// Filter is a single preference step applied to the merged posting list
// before scoring. Filters are pure list transforms.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(records []extract.Record) ([]extract.Record, Step)
}

// Step describes the result of executing one filter.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Preferences configures the built-in filters.
type Preferences struct {
	RemoteOnly        bool     `mapstructure:"remote-only"`
	EmploymentTypes   []string `mapstructure:"employment-types"`
	ExcludedCompanies []string `mapstructure:"excluded-companies"`
	MinSalary         float64  `mapstructure:"min-salary"`
}

// FiltersFromPreferences builds the standard filter chain.
func FiltersFromPreferences(prefs Preferences) []Filter {
	return []Filter{
		NewRemoteOnly(prefs.RemoteOnly),
		NewEmploymentTypes(prefs.EmploymentTypes),
		NewExcludedCompanies(prefs.ExcludedCompanies),
		NewMinSalary(prefs.MinSalary),
	}
}

// RunFilters executes the enabled filters sequentially, logging a step line
// per filter.
func RunFilters(log *zap.Logger, filters []Filter, records []extract.Record) []extract.Record {
	for _, filter := range filters {
		if !filter.IsEnabled() {
			if log != nil {
				log.Info("filter disabled", zap.String("name", filter.Name()))
			}
			continue
		}

		next, step := filter.Apply(records)
		if log != nil {
			log.Info("filter step",
				zap.String("name", filter.Name()),
				zap.Int("initial", step.Initial),
				zap.Int("dropped", step.Dropped),
				zap.Int("left", step.Left),
			)
		}
		records = next
	}
	return records
}

// keep rebuilds the list from the records that pass the predicate, preserving
// order.
func keep(records []extract.Record, predicate func(*extract.Record) bool) ([]extract.Record, Step) {
	initial := len(records)
	result := make([]extract.Record, 0, initial)
	for i := range records {
		if predicate(&records[i]) {
			result = append(result, records[i])
		}
	}
	return result, Step{Initial: initial, Dropped: initial - len(result), Left: len(result)}
}

type remoteOnlyFilter struct {
	enabled bool
	reason  string
}

// NewRemoteOnly creates a filter that keeps remote-capable postings only.
func NewRemoteOnly(enabled bool) Filter {
	return &remoteOnlyFilter{enabled: enabled}
}

func (f *remoteOnlyFilter) Name() string { return "remote_only" }

func (f *remoteOnlyFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *remoteOnlyFilter) IsEnabled() bool { return f.enabled }

func (f *remoteOnlyFilter) Apply(records []extract.Record) ([]extract.Record, Step) {
	return keep(records, func(r *extract.Record) bool {
		switch r.Remote {
		case extract.RemoteFull, extract.RemoteFlexible:
			return true
		}
		return r.Location == "Remote"
	})
}

type employmentTypesFilter struct {
	disabled bool
	allowed  map[extract.EmploymentType]bool
}

// NewEmploymentTypes creates a filter that keeps the configured employment
// types. An empty list keeps everything.
func NewEmploymentTypes(types []string) Filter {
	allowed := make(map[extract.EmploymentType]bool, len(types))
	for _, t := range types {
		allowed[extract.EmploymentType(strings.ToLower(strings.TrimSpace(t)))] = true
	}
	return &employmentTypesFilter{allowed: allowed}
}

func (f *employmentTypesFilter) Name() string { return "employment_types" }

func (f *employmentTypesFilter) Disable(string) { f.disabled = true }

func (f *employmentTypesFilter) IsEnabled() bool { return !f.disabled }

func (f *employmentTypesFilter) Apply(records []extract.Record) ([]extract.Record, Step) {
	if len(f.allowed) == 0 {
		return records, Step{Initial: len(records), Left: len(records)}
	}
	return keep(records, func(r *extract.Record) bool {
		return f.allowed[r.Employment]
	})
}

type excludedCompaniesFilter struct {
	disabled bool
	excluded []string
}

// NewExcludedCompanies creates a filter that drops postings from blacklisted
// companies. Matching is case-insensitive on the full company name.
func NewExcludedCompanies(companies []string) Filter {
	excluded := make([]string, 0, len(companies))
	for _, company := range companies {
		if c := strings.ToLower(strings.TrimSpace(company)); c != "" {
			excluded = append(excluded, c)
		}
	}
	return &excludedCompaniesFilter{excluded: excluded}
}

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Disable(string) { f.disabled = true }

func (f *excludedCompaniesFilter) IsEnabled() bool { return !f.disabled }

func (f *excludedCompaniesFilter) Apply(records []extract.Record) ([]extract.Record, Step) {
	if len(f.excluded) == 0 {
		return records, Step{Initial: len(records), Left: len(records)}
	}
	return keep(records, func(r *extract.Record) bool {
		company := strings.ToLower(r.Company)
		for _, excluded := range f.excluded {
			if company == excluded {
				return false
			}
		}
		return true
	})
}

type minSalaryFilter struct {
	disabled bool
	min      float64
}

// NewMinSalary creates a filter that drops postings whose stated salary tops
// out below the minimum. Postings without salary data pass through.
func NewMinSalary(min float64) Filter {
	return &minSalaryFilter{min: min}
}

func (f *minSalaryFilter) Name() string { return "min_salary" }

func (f *minSalaryFilter) Disable(string) { f.disabled = true }

func (f *minSalaryFilter) IsEnabled() bool { return !f.disabled }

func (f *minSalaryFilter) Apply(records []extract.Record) ([]extract.Record, Step) {
	if f.min <= 0 {
		return records, Step{Initial: len(records), Left: len(records)}
	}
	return keep(records, func(r *extract.Record) bool {
		if r.SalaryMax == 0 {
			return true
		}
		return r.SalaryMax >= f.min
	})
}
