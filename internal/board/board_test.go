package board_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RihabMhd/jobboard/internal/board"
	"github.com/RihabMhd/jobboard/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newService builds a memory-backed service preloaded with raw JSON
// payloads per store key.
func newService(t *testing.T, seeded map[string]string) (*board.Service, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	for key, raw := range seeded {
		require.NoError(t, kv.Set(context.Background(), key, []byte(raw)))
	}
	svc := board.NewService(kv, quietLogger())
	svc.Load(context.Background())
	return svc, kv
}

func validForm() board.JobForm {
	return board.JobForm{
		Company:     "Acme",
		Position:    "Développeur Frontend",
		Contract:    "CDI",
		Location:    "Paris",
		Role:        "Frontend",
		Level:       "Junior",
		Skills:      "React, CSS",
		Description: "Construire l'interface du produit.",
	}
}

const twoJobs = `[
  {"id": 1, "company": "Acme", "position": "Dev", "contract": "CDI",
   "location": "Paris", "role": "Frontend", "level": "Junior",
   "skills": ["React"], "description": "d", "new": false, "featured": false,
   "postedAt": "01/01/2024"},
  {"id": 7, "company": "Globex", "position": "Ops", "contract": "CDD",
   "location": "London", "role": "Backend", "level": "Senior",
   "skills": ["Go"], "description": "d", "new": false, "featured": true,
   "postedAt": "02/01/2024"}
]`

// ─── Loading & id coercion ─────────────────────────────────────────────────

func TestLoad_CoercesStringIDs(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		store.KeyJobs:      `[{"id": "42", "company": "Acme", "position": "Dev", "contract": "CDI", "location": "Paris", "role": "Frontend", "level": "Junior", "skills": [], "description": "d", "postedAt": "01/01/2024"}]`,
		store.KeyFavorites: `["42"]`,
	})

	job, err := svc.Get(board.JobID(42))
	require.NoError(t, err)
	assert.Equal(t, board.JobID(42), job.ID)
	assert.True(t, svc.IsFavorite(42), "string favorite id must match integer job id")
}

func TestLoad_CorruptSliceResetsToDefault(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		store.KeyJobs:    `{not json`,
		store.KeyProfile: `{"name": "Rihab", "position": "Dev", "skills": ["React"]}`,
	})

	assert.Empty(t, svc.Jobs(), "corrupt job list resets to empty")
	assert.Equal(t, "Rihab", svc.Profile().Name, "other slices are unaffected")
}

func TestLoad_DropsOnlyInvalidFavoriteEntries(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		store.KeyJobs:      twoJobs,
		store.KeyFavorites: `[1, "abc", 7]`,
	})

	assert.Equal(t, 2, svc.FavoritesCount(), "valid ids survive a bad neighbour")
	assert.True(t, svc.IsFavorite(1))
	assert.True(t, svc.IsFavorite(7))
}

func TestLoad_CorruptFavoritesArrayResetsOnlyFavorites(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		store.KeyJobs:      twoJobs,
		store.KeyFavorites: `{not an array`,
	})

	assert.Zero(t, svc.FavoritesCount())
	assert.Len(t, svc.Jobs(), 2, "job list is unaffected")
}

func TestLoad_DeduplicatesFavorites(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		store.KeyJobs:      twoJobs,
		store.KeyFavorites: `[7, 7, 1]`,
	})
	assert.Equal(t, 2, svc.FavoritesCount())
}

// ─── Seed ──────────────────────────────────────────────────────────────────

func TestSeed_PopulatesEmptyStoreOnce(t *testing.T) {
	svc, kv := newService(t, nil)

	err := svc.Seed(context.Background(), func(context.Context) ([]board.Job, error) {
		return []board.Job{{ID: 1, Company: "Acme"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, svc.Jobs(), 1)

	raw, err := kv.Get(context.Background(), store.KeyJobs)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Acme", "seeded list is persisted")
}

func TestSeed_SkippedWhenStoreHoldsJobs(t *testing.T) {
	svc, _ := newService(t, map[string]string{store.KeyJobs: twoJobs})

	called := false
	err := svc.Seed(context.Background(), func(context.Context) ([]board.Job, error) {
		called = true
		return nil, nil
	})
	require.NoError(t, err)
	assert.False(t, called, "seed resource must not be consulted once the store holds a list")
}

func TestSeed_SkippedWhenStoredListIsCorrupt(t *testing.T) {
	svc, _ := newService(t, map[string]string{store.KeyJobs: `{not json`})

	called := false
	err := svc.Seed(context.Background(), func(context.Context) ([]board.Job, error) {
		called = true
		return []board.Job{{ID: 1, Company: "Acme"}}, nil
	})
	require.NoError(t, err)
	assert.False(t, called, "a corrupt list means the key exists; degrade to empty, never refetch")
	assert.Empty(t, svc.Jobs())
}

func TestSeed_FetchFailureLeavesAppUsable(t *testing.T) {
	svc, _ := newService(t, nil)

	err := svc.Seed(context.Background(), func(context.Context) ([]board.Job, error) {
		return nil, errors.New("connection refused")
	})
	require.Error(t, err)
	assert.True(t, svc.SeedFailed())
	assert.Empty(t, svc.Jobs())

	// Profile and favorites still work.
	require.NoError(t, svc.AddSkill(context.Background(), "React"))
	assert.Equal(t, []string{"React"}, svc.Profile().Skills)
}

// ─── Favorites ─────────────────────────────────────────────────────────────

func TestToggleFavorite_TwiceRestoresOriginalSet(t *testing.T) {
	svc, _ := newService(t, map[string]string{store.KeyJobs: twoJobs})

	fav, err := svc.ToggleFavorite(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.True(t, svc.IsFavorite(7))

	fav, err = svc.ToggleFavorite(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, fav)
	assert.False(t, svc.IsFavorite(7))
	assert.Zero(t, svc.FavoritesCount())
}

func TestToggleFavorite_UnknownJob(t *testing.T) {
	svc, _ := newService(t, map[string]string{store.KeyJobs: twoJobs})
	_, err := svc.ToggleFavorite(context.Background(), 999)
	assert.ErrorIs(t, err, board.ErrNotFound)
}

func TestPruneFavorites_DropsStaleIDs(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		store.KeyJobs:      twoJobs,
		store.KeyFavorites: `[1, 999]`,
	})

	removed, err := svc.PruneFavorites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.True(t, svc.IsFavorite(1))
	assert.False(t, svc.IsFavorite(999))
}

// ─── CRUD ──────────────────────────────────────────────────────────────────

func TestCreate_InsertsAtFrontWithFreshID(t *testing.T) {
	svc, kv := newService(t, map[string]string{store.KeyJobs: twoJobs})

	job, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)

	jobs := svc.Jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, job.ID, jobs[0].ID, "new job goes first")
	assert.True(t, jobs[0].New, "new job is flagged new")
	assert.Equal(t, []string{"React", "CSS"}, jobs[0].Skills)

	for _, existing := range jobs[1:] {
		assert.NotEqual(t, existing.ID, job.ID, "fresh id must not collide")
	}

	raw, err := kv.Get(context.Background(), store.KeyJobs)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Développeur Frontend")
}

func TestCreate_IDsAreDistinctAcrossRapidCalls(t *testing.T) {
	svc, _ := newService(t, nil)

	seen := make(map[board.JobID]bool)
	for i := 0; i < 50; i++ {
		job, err := svc.Create(context.Background(), validForm())
		require.NoError(t, err)
		assert.False(t, seen[job.ID], "id %d allocated twice", job.ID)
		seen[job.ID] = true
	}
}

func TestUpdate_ReplacesFieldsKeepsID(t *testing.T) {
	svc, _ := newService(t, map[string]string{store.KeyJobs: twoJobs})

	f := validForm()
	f.Company = "Initech"
	f.Skills = "Vue"
	job, err := svc.Update(context.Background(), 7, f)
	require.NoError(t, err)

	assert.Equal(t, board.JobID(7), job.ID)
	assert.Equal(t, "Initech", job.Company)
	assert.Equal(t, []string{"Vue"}, job.Skills)
	assert.False(t, job.New, "editing clears the new badge")

	got, err := svc.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "Initech", got.Company)
}

func TestUpdate_UnknownJob(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.Update(context.Background(), 1, validForm())
	assert.ErrorIs(t, err, board.ErrNotFound)
}

func TestDelete_CascadesIntoFavorites(t *testing.T) {
	svc, kv := newService(t, map[string]string{
		store.KeyJobs:      twoJobs,
		store.KeyFavorites: `[7]`,
	})

	require.NoError(t, svc.Delete(context.Background(), 7))

	_, err := svc.Get(7)
	assert.ErrorIs(t, err, board.ErrNotFound)
	assert.False(t, svc.IsFavorite(7))
	assert.Empty(t, svc.FavoriteJobs())

	raw, err := kv.Get(context.Background(), store.KeyFavorites)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw), "favorites pruned in the store too")
}

func TestCreate_ValidationAbortsWithoutMutation(t *testing.T) {
	svc, kv := newService(t, map[string]string{store.KeyJobs: twoJobs})
	before, err := kv.Get(context.Background(), store.KeyJobs)
	require.NoError(t, err)

	f := validForm()
	f.Company = "   "
	_, err = svc.Create(context.Background(), f)

	var verr *board.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Le nom de l'entreprise est requis", verr.Fields["company"])

	assert.Len(t, svc.Jobs(), 2, "job list unchanged")
	after, err := kv.Get(context.Background(), store.KeyJobs)
	require.NoError(t, err)
	assert.Equal(t, before, after, "nothing persisted")
}

func TestCreate_SaveFailureKeepsInMemoryChange(t *testing.T) {
	svc, kv := newService(t, nil)
	kv.FailWrites = errors.New("quota exceeded")

	job, err := svc.Create(context.Background(), validForm())

	var serr *store.SaveError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, store.KeyJobs, serr.Key)

	// The attempted change stays so the user can retry the save.
	got, err := svc.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)
}

// ─── Profile ───────────────────────────────────────────────────────────────

func TestSaveProfile_Validation(t *testing.T) {
	svc, _ := newService(t, nil)

	err := svc.SaveProfile(context.Background(), board.ProfileForm{Name: "Jo", Position: ""})
	var verr *board.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Le nom doit contenir au moins 3 caractères", verr.Fields["name"])
	assert.Equal(t, "Le poste souhaité est requis", verr.Fields["position"])
	assert.Empty(t, svc.Profile().Name, "no partial mutation")
}

func TestSaveProfile_PersistsNameAndPosition(t *testing.T) {
	svc, kv := newService(t, nil)
	require.NoError(t, svc.AddSkill(context.Background(), "React"))

	err := svc.SaveProfile(context.Background(), board.ProfileForm{Name: "Rihab M.", Position: "Frontend"})
	require.NoError(t, err)

	p := svc.Profile()
	assert.Equal(t, "Rihab M.", p.Name)
	assert.Equal(t, []string{"React"}, p.Skills, "skills untouched by the profile form")

	raw, err := kv.Get(context.Background(), store.KeyProfile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Rihab M.")
}

func TestSkills_AddRemove(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.AddSkill(ctx, " React "))
	require.NoError(t, svc.AddSkill(ctx, "Vue"))
	assert.ErrorIs(t, svc.AddSkill(ctx, "React"), board.ErrDuplicateSkill)
	require.NoError(t, svc.AddSkill(ctx, ""), "blank input is a no-op")

	assert.Equal(t, []string{"React", "Vue"}, svc.Profile().Skills, "insertion order kept")

	require.NoError(t, svc.RemoveSkill(ctx, "React"))
	assert.Equal(t, []string{"Vue"}, svc.Profile().Skills)
	require.NoError(t, svc.RemoveSkill(ctx, "absent"), "removing an absent skill is a no-op")
}
