package board

import (
	"reflect"
	"testing"
)

func sampleJobs() []Job {
	return []Job{
		{ID: 1, Company: "Acme", Position: "Dev", Location: "Paris", Role: "Frontend", Level: "Junior", Skills: []string{"React"}},
		{ID: 2, Company: "Globex", Position: "Senior Backend Developer", Location: "London", Role: "Backend", Level: "Senior", Skills: []string{"Go", "Postgres"}},
		{ID: 3, Company: "Initech", Position: "Fullstack Dev", Location: "Lyon", Role: "Fullstack", Level: "Midweight", Skills: []string{"React", "Node"}},
	}
}

func ids(jobs []Job) []JobID {
	out := make([]JobID, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		skills  []string
		filters []string
		search  string
		want    []JobID
	}{
		{
			name: "no filters returns everything in order",
			want: []JobID{1, 2, 3},
		},
		{
			name:    "single tag filter",
			filters: []string{"React"},
			want:    []JobID{1, 3},
		},
		{
			name:    "conjunction requires every term",
			filters: []string{"Frontend", "Junior"},
			want:    []JobID{1},
		},
		{
			name:    "conjunction excludes partial match",
			filters: []string{"Frontend", "Senior"},
			want:    []JobID{},
		},
		{
			name:    "terms are case-insensitive",
			filters: []string{"REACT"},
			want:    []JobID{1, 3},
		},
		{
			name:   "profile skills filter like manual tags",
			skills: []string{"Go"},
			want:   []JobID{2},
		},
		{
			name:    "profile skills and manual filters combine",
			skills:  []string{"React"},
			filters: []string{"Junior"},
			want:    []JobID{1},
		},
		{
			name:    "duplicate terms across sources collapse",
			skills:  []string{"react"},
			filters: []string{"REACT"},
			want:    []JobID{1, 3},
		},
		{
			name:   "search matches location substring",
			search: "lon",
			want:   []JobID{2},
		},
		{
			name:   "search matches company",
			search: "acme",
			want:   []JobID{1},
		},
		{
			name:   "search matches a tag",
			search: "postgres",
			want:   []JobID{2},
		},
		{
			name:    "search and filters combine",
			filters: []string{"React"},
			search:  "lyon",
			want:    []JobID{3},
		},
		{
			name:    "no job carries the term",
			filters: []string{"Vue"},
			want:    []JobID{},
		},
		{
			name:    "blank terms are ignored",
			filters: []string{"  ", ""},
			want:    []JobID{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleJobs(), tt.skills, tt.filters, tt.search))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Filtering must be pure: repeated calls with the same inputs yield the
// same result, and the input slice is left untouched.
func TestFilter_Idempotent(t *testing.T) {
	jobs := sampleJobs()
	before := append([]Job(nil), jobs...)

	first := Filter(jobs, []string{"React"}, []string{"Junior"}, "dev")
	second := Filter(jobs, []string{"React"}, []string{"Junior"}, "dev")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Filter() differs: %v vs %v", ids(first), ids(second))
	}
	if !reflect.DeepEqual(jobs, before) {
		t.Error("Filter() mutated its input")
	}
}

func TestFilter_EndToEnd(t *testing.T) {
	jobs := []Job{{ID: 1, Role: "Frontend", Level: "Junior", Skills: []string{"React"}, Position: "Dev", Company: "Acme", Location: "Paris"}}

	got := Filter(jobs, nil, []string{"React"}, "")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("filter React: got %v, want [1]", ids(got))
	}

	got = Filter(jobs, nil, []string{"Vue"}, "")
	if len(got) != 0 {
		t.Fatalf("filter Vue: got %v, want []", ids(got))
	}
}
