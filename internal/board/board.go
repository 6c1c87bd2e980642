package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/RihabMhd/jobboard/internal/store"
)

// Sentinel errors returned by the service.
var (
	ErrNotFound       = errors.New("offre introuvable")
	ErrDuplicateSkill = errors.New("cette compétence existe déjà")
)

// Service owns the in-memory application state and writes each slice back
// to the store on every change. All exported methods are safe for
// concurrent use; the store writes for the three keys stay independent
// (no cross-key transaction), matching the persistence contract.
type Service struct {
	mu  sync.Mutex
	kv  store.KV
	log *slog.Logger

	jobs      []Job
	profile   Profile
	favorites []JobID
	nextID    int64

	// jobsStored tells the seed step whether the store ever held a job
	// list. Once it has, the seed resource is never consulted again.
	jobsStored bool
	seedFailed bool
}

// NewService returns a Service bound to kv. Call Load before serving.
func NewService(kv store.KV, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{kv: kv, log: log}
}

// Load reads the three state slices from the store. Each slice degrades
// independently: a missing key or corrupt payload resets that slice to
// its default and logs, it never fails startup.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = nil
	if err := store.Load(ctx, s.kv, store.KeyJobs, &s.jobs); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Corrupt payload: the key exists, so the seed stays off.
			// The listing degrades to empty instead of refetching.
			s.log.Warn("resetting job list", "err", err)
			s.jobsStored = true
		}
		s.jobs = []Job{}
	} else {
		s.jobsStored = true
	}

	s.profile = Profile{}
	if err := store.Load(ctx, s.kv, store.KeyProfile, &s.profile); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Warn("resetting profile", "err", err)
		s.profile = Profile{}
	}

	s.favorites = []JobID{}
	raw, err := s.kv.Get(ctx, store.KeyFavorites)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		s.log.Warn("resetting favorites", "err", err)
	default:
		s.favorites = decodeFavorites(raw, s.log)
	}
	s.favorites = dedupeIDs(s.favorites)

	s.resetNextID()
}

// Seed populates the job list from fetch when the store never held one.
// One-time fallback: once a list is stored, the seed resource is ignored
// even if it changes upstream. A fetch failure leaves the listing empty
// and flags the error for the UI; the rest of the app stays usable.
func (s *Service) Seed(ctx context.Context, fetch func(context.Context) ([]Job, error)) error {
	s.mu.Lock()
	if s.jobsStored {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	jobs, err := fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.seedFailed = true
		s.mu.Unlock()
		return fmt.Errorf("seeding job list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = jobs
	s.jobsStored = true
	s.resetNextID()
	if err := store.Save(ctx, s.kv, store.KeyJobs, s.jobs); err != nil {
		s.log.Warn("persisting seeded jobs", "err", err)
	}
	s.log.Info("seeded job list", "count", len(jobs))
	return nil
}

// SeedFailed reports whether the initial fetch failed, so the listing can
// show its inline error message.
func (s *Service) SeedFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedFailed
}

// resetNextID seeds the id generator above both every existing id and the
// current unix-millisecond clock. Ids stay timestamp-shaped like the
// original data while remaining collision-free within the process.
func (s *Service) resetNextID() {
	next := time.Now().UnixMilli()
	for _, j := range s.jobs {
		if int64(j.ID) >= next {
			next = int64(j.ID) + 1
		}
	}
	s.nextID = next
}

func (s *Service) allocID() JobID {
	id := JobID(s.nextID)
	s.nextID++
	return id
}

// ─── Read access ─────────────────────────────────────────────────────────

// Jobs returns a snapshot of the full job list in display order.
func (s *Service) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Profile returns a snapshot of the user profile.
func (s *Service) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile
	p.Skills = append([]string(nil), s.profile.Skills...)
	return p
}

// Get returns the job with the given id.
func (s *Service) Get(id JobID) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return Job{}, ErrNotFound
}

// Query applies the filter engine to the current state. Search text and
// manual filters come from the request; profile skills from stored state.
func (s *Service) Query(manualFilters []string, search string) []Job {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	skills := append([]string(nil), s.profile.Skills...)
	s.mu.Unlock()
	return Filter(jobs, skills, manualFilters, search)
}

// ─── Favorites ───────────────────────────────────────────────────────────

// IsFavorite reports whether id is currently marked as favorite.
func (s *Service) IsFavorite(id JobID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOfID(s.favorites, id) >= 0
}

// FavoritesCount returns the number of favorite ids.
func (s *Service) FavoritesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.favorites)
}

// FavoriteJobs returns the favorite jobs in job-list order.
func (s *Service) FavoriteJobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	favs := make([]Job, 0, len(s.favorites))
	for _, j := range s.jobs {
		if indexOfID(s.favorites, j.ID) >= 0 {
			favs = append(favs, j)
		}
	}
	return favs
}

// ToggleFavorite flips the favorite mark on an existing job and persists
// the favorites slice. Returns the new state (true = now favorite).
func (s *Service) ToggleFavorite(ctx context.Context, id JobID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.jobExists(id) {
		return false, ErrNotFound
	}

	var nowFavorite bool
	if i := indexOfID(s.favorites, id); i >= 0 {
		s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
	} else {
		s.favorites = append(s.favorites, id)
		nowFavorite = true
	}
	return nowFavorite, store.Save(ctx, s.kv, store.KeyFavorites, s.favorites)
}

// PruneFavorites drops favorite ids that no longer reference an existing
// job and persists when anything changed. Delete already prunes eagerly;
// this sweep covers store writes made by other processes.
func (s *Service) PruneFavorites(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.favorites[:0]
	for _, id := range s.favorites {
		if s.jobExists(id) {
			kept = append(kept, id)
		}
	}
	removed := len(s.favorites) - len(kept)
	s.favorites = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, store.Save(ctx, s.kv, store.KeyFavorites, s.favorites)
}

// ─── Profile ─────────────────────────────────────────────────────────────

// SaveProfile validates and stores the name/position form. Skills are left
// untouched.
func (s *Service) SaveProfile(ctx context.Context, f ProfileForm) error {
	f.trim()
	if err := checkForm(&f, profileMessages); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Name = f.Name
	s.profile.Position = f.Position
	return store.Save(ctx, s.kv, store.KeyProfile, s.profile)
}

// AddSkill appends a skill to the profile. Blank input is a no-op;
// duplicates return ErrDuplicateSkill.
func (s *Service) AddSkill(ctx context.Context, raw string) error {
	skill := strings.TrimSpace(raw)
	if skill == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.profile.Skills {
		if have == skill {
			return ErrDuplicateSkill
		}
	}
	s.profile.Skills = append(s.profile.Skills, skill)
	return store.Save(ctx, s.kv, store.KeyProfile, s.profile)
}

// RemoveSkill deletes a skill from the profile. Removing an absent skill
// is a no-op.
func (s *Service) RemoveSkill(ctx context.Context, skill string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.profile.Skills[:0]
	for _, have := range s.profile.Skills {
		if have != skill {
			kept = append(kept, have)
		}
	}
	if len(kept) == len(s.profile.Skills) {
		return nil
	}
	s.profile.Skills = kept
	return store.Save(ctx, s.kv, store.KeyProfile, s.profile)
}

// ─── CRUD ────────────────────────────────────────────────────────────────

// Create validates the form, allocates a fresh id and inserts the job at
// the front of the list, flagged as new. On a store write failure the
// in-memory insert is kept (the error is a *store.SaveError) so the user
// can retry the save.
func (s *Service) Create(ctx context.Context, f JobForm) (Job, error) {
	f.trim()
	if err := checkForm(&f, jobMessages); err != nil {
		return Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	job := f.toJob(s.allocID())
	job.New = true
	s.jobs = append([]Job{job}, s.jobs...)
	return job, store.Save(ctx, s.kv, store.KeyJobs, s.jobs)
}

// Update validates the form and replaces every field of the job, keeping
// the id. Editing clears the "new" badge, like a fresh submission of the
// management form.
func (s *Service) Update(ctx context.Context, id JobID, f JobForm) (Job, error) {
	f.trim()
	if err := checkForm(&f, jobMessages); err != nil {
		return Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, j := range s.jobs {
		if j.ID == id {
			job := f.toJob(id)
			s.jobs[i] = job
			return job, store.Save(ctx, s.kv, store.KeyJobs, s.jobs)
		}
	}
	return Job{}, ErrNotFound
}

// Delete removes the job and, if present, its id from the favorites, then
// persists both slices. The two writes stay independent.
func (s *Service) Delete(ctx context.Context, id JobID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	for k, j := range s.jobs {
		if j.ID == id {
			i = k
			break
		}
	}
	if i < 0 {
		return ErrNotFound
	}
	s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
	err := store.Save(ctx, s.kv, store.KeyJobs, s.jobs)

	if k := indexOfID(s.favorites, id); k >= 0 {
		s.favorites = append(s.favorites[:k], s.favorites[k+1:]...)
		if ferr := store.Save(ctx, s.kv, store.KeyFavorites, s.favorites); err == nil {
			err = ferr
		}
	}
	return err
}

// ─── Helpers ─────────────────────────────────────────────────────────────

func (f JobForm) toJob(id JobID) Job {
	return Job{
		ID:          id,
		Company:     f.Company,
		Position:    f.Position,
		Logo:        f.Logo,
		Contract:    f.Contract,
		Location:    f.Location,
		Role:        f.Role,
		Level:       f.Level,
		Skills:      splitSkills(f.Skills),
		Description: f.Description,
		PostedAt:    frDate(time.Now()),
	}
}

func (s *Service) jobExists(id JobID) bool {
	for _, j := range s.jobs {
		if j.ID == id {
			return true
		}
	}
	return false
}

func indexOfID(ids []JobID, id JobID) int {
	for i, have := range ids {
		if have == id {
			return i
		}
	}
	return -1
}

// decodeFavorites parses the persisted favorites array entry by entry,
// dropping ids that do not decode instead of discarding the whole list.
func decodeFavorites(raw []byte, log *slog.Logger) []JobID {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Warn("resetting favorites", "err", err)
		return []JobID{}
	}
	ids := make([]JobID, 0, len(entries))
	for _, entry := range entries {
		var id JobID
		if err := json.Unmarshal(entry, &id); err != nil {
			log.Warn("dropping favorite id", "raw", string(entry), "err", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func dedupeIDs(ids []JobID) []JobID {
	seen := make(map[JobID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

