package board

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Filter returns the jobs matching the combination of profile skills,
// manual filters and free-text search.
//
// The effective filter set is the case-insensitive union of profileSkills
// and manualFilters. A job passes the filters iff every term equals, case-
// insensitively, at least one of its tags (AND across terms, OR across the
// job's tags). It passes the search iff search is empty or appears as a
// case-insensitive substring of its position, company, location or any
// tag. Both conditions must hold.
//
// The function is pure: no side effects, input order preserved, identical
// inputs yield identical output.
func Filter(jobs []Job, profileSkills, manualFilters []string, search string) []Job {
	terms := effectiveTerms(profileSkills, manualFilters)
	needle := strings.ToLower(strings.TrimSpace(search))

	matched := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if matchesTerms(job, terms) && matchesSearch(job, needle) {
			matched = append(matched, job)
		}
	}
	return matched
}

// effectiveTerms folds both filter sources to lower case and deduplicates
// them, so "React" from the profile and "react" from a clicked tag count
// as one term.
func effectiveTerms(profileSkills, manualFilters []string) mapset.Set[string] {
	terms := mapset.NewSet[string]()
	for _, src := range [][]string{profileSkills, manualFilters} {
		for _, raw := range src {
			if t := strings.ToLower(strings.TrimSpace(raw)); t != "" {
				terms.Add(t)
			}
		}
	}
	return terms
}

func matchesTerms(job Job, terms mapset.Set[string]) bool {
	if terms.Cardinality() == 0 {
		return true
	}
	tags := job.Tags()
	missing := false
	terms.Each(func(term string) bool {
		if !anyTagEquals(tags, term) {
			missing = true
			return true // stop
		}
		return false
	})
	return !missing
}

func anyTagEquals(tags []string, lowerTerm string) bool {
	for _, tag := range tags {
		if strings.ToLower(tag) == lowerTerm {
			return true
		}
	}
	return false
}

func matchesSearch(job Job, needle string) bool {
	if needle == "" {
		return true
	}
	haystacks := []string{job.Position, job.Company, job.Location}
	haystacks = append(haystacks, job.Tags()...)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
