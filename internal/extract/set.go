package extract

import "sort"

// Set is a case-normalized string set used for skills, languages and hashtags.
type Set map[string]struct{}

func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s Set) Add(v string) {
	s[v] = struct{}{}
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order for stable output.
func (s Set) Sorted() []string {
	items := make([]string, 0, len(s))
	for item := range s {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

func (s Set) Intersect(other Set) Set {
	result := NewSet()
	for item := range s {
		if other.Has(item) {
			result.Add(item)
		}
	}
	return result
}

// Diff returns members of s that are not in other.
func (s Set) Diff(other Set) Set {
	result := NewSet()
	for item := range s {
		if !other.Has(item) {
			result.Add(item)
		}
	}
	return result
}
