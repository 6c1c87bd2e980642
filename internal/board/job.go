// Package board contains the domain state and business logic for the job
// listings application: the job list, the user profile, favorites and the
// filter engine. It is transport-agnostic — the web package is one
// consumer, the tests another.
package board

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobID is the integer identifier of a job posting. Persisted datasets and
// seed files sometimes carry ids as JSON strings ("42" instead of 42);
// decoding normalizes both forms here so the rest of the code only ever
// compares integers.
type JobID int64

func (id JobID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseJobID converts a decimal string to a JobID.
func ParseJobID(s string) (JobID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid job id %q", s)
	}
	return JobID(n), nil
}

func (id *JobID) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*id = JobID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("job id must be a number or a numeric string, got %s", b)
	}
	parsed, err := ParseJobID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Job is a single posting. Field names mirror the seed dataset; "new" and
// "featured" drive the card badges.
type Job struct {
	ID          JobID    `json:"id"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Logo        string   `json:"logo,omitempty"`
	Contract    string   `json:"contract"`
	Location    string   `json:"location"`
	Role        string   `json:"role"`
	Level       string   `json:"level"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
	New         bool     `json:"new"`
	Featured    bool     `json:"featured"`
	PostedAt    string   `json:"postedAt"`
}

// Tags returns the filterable tag values of a job: role, level, then each
// skill, in display order.
func (j Job) Tags() []string {
	tags := make([]string, 0, 2+len(j.Skills))
	tags = append(tags, j.Role, j.Level)
	tags = append(tags, j.Skills...)
	return tags
}

// Profile is the singleton user profile. Skills keep insertion order for
// display; duplicates are rejected at add time.
type Profile struct {
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Skills   []string `json:"skills"`
}

// frDate renders a time the way the original dataset does (fr-FR locale).
func frDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// splitSkills turns the comma-separated skills field of the job form into
// a clean slice.
func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
