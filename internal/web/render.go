package web

import (
	"fmt"
	"net/url"

	"github.com/RihabMhd/jobboard/internal/board"
)

// View models are built by pure functions of (domain snapshot, query), so
// rendering the same state twice produces the same markup. Search text and
// manual filters live in the URL; the builders also produce the links that
// add, remove or clear filter tags.

// page carries the fields every template needs: tab highlighting, the
// search box state, the favorites counter in the tab label and the
// one-shot notice banner.
type page struct {
	Title          string
	ActiveTab      string
	Search         string
	Filters        []string
	FavoritesCount int
	Notice         string
}

// TagView is a clickable tag on a job card; following AddURL adds the tag
// to the manual filters.
type TagView struct {
	Name   string
	AddURL string
}

// CardView is everything a job card template needs.
type CardView struct {
	ID           board.JobID
	Company      string
	Position     string
	Logo         string
	Contract     string
	Location     string
	PostedAt     string
	Tags         []TagView
	New          bool
	Featured     bool
	Favorite     bool
	FavoriteIcon string
	BackURL      string
}

// FilterChip is one active manual filter with its removal link.
type FilterChip struct {
	Name      string
	RemoveURL string
}

// FilterBarView renders the active-filter chips. The bar disappears
// entirely when no manual filter is active.
type FilterBarView struct {
	Visible  bool
	Chips    []FilterChip
	ClearURL string
}

// listingURL builds the listings URL carrying the given manual filters and
// search text.
func listingURL(filters []string, search string) string {
	v := url.Values{}
	for _, f := range filters {
		v.Add("filter", f)
	}
	if search != "" {
		v.Set("search", search)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

func withFilter(filters []string, tag string) []string {
	for _, f := range filters {
		if f == tag {
			return filters
		}
	}
	return append(append([]string(nil), filters...), tag)
}

func withoutFilter(filters []string, tag string) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		if f != tag {
			out = append(out, f)
		}
	}
	return out
}

// newCardView maps a job to its card. filters and search are the current
// query, used to build the per-tag filter links; backURL is where the
// favorite toggle returns to.
func newCardView(j board.Job, favorite bool, filters []string, search, backURL string) CardView {
	tags := j.Tags()
	views := make([]TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, TagView{
			Name:   tag,
			AddURL: listingURL(withFilter(filters, tag), search),
		})
	}

	icon := "☆"
	if favorite {
		icon = "★"
	}

	return CardView{
		ID:           j.ID,
		Company:      j.Company,
		Position:     j.Position,
		Logo:         logoURL(j),
		Contract:     j.Contract,
		Location:     j.Location,
		PostedAt:     j.PostedAt,
		Tags:         views,
		New:          j.New,
		Featured:     j.Featured,
		Favorite:     favorite,
		FavoriteIcon: icon,
		BackURL:      backURL,
	}
}

// newFilterBar builds the chips for the active manual filters. Clearing
// also resets the search text, like the original "clear all" control.
func newFilterBar(filters []string, search string) FilterBarView {
	if len(filters) == 0 {
		return FilterBarView{}
	}
	chips := make([]FilterChip, 0, len(filters))
	for _, f := range filters {
		chips = append(chips, FilterChip{
			Name:      f,
			RemoveURL: listingURL(withoutFilter(filters, f), search),
		})
	}
	return FilterBarView{Visible: true, Chips: chips, ClearURL: "/"}
}

// statsLine words the counter in French, branching on plural count and on
// whether any filter or search is active.
func statsLine(matched, total int, filtersActive bool) string {
	if filtersActive {
		if matched > 1 {
			return fmt.Sprintf("%d offres trouvées sur %d", matched, total)
		}
		return fmt.Sprintf("%d offre trouvée sur %d", matched, total)
	}
	if total > 1 {
		return fmt.Sprintf("%d offres disponibles", total)
	}
	return fmt.Sprintf("%d offre disponible", total)
}

// logoURL falls back to a generated initials avatar when a job has no
// logo, same service the original markup used.
func logoURL(j board.Job) string {
	if j.Logo != "" {
		return j.Logo
	}
	return "https://api.dicebear.com/8.x/initials/svg?seed=" + url.QueryEscape(j.Company)
}

// Notice codes travel in the redirect query string; unknown codes render
// nothing.
var noticeTexts = map[string]string{
	"profile-saved":    "Profil enregistré avec succès !",
	"skill-duplicate":  "Cette compétence existe déjà !",
	"job-added":        "Offre ajoutée avec succès !",
	"job-updated":      "Offre modifiée avec succès !",
	"job-deleted":      "Offre supprimée.",
	"confirm-required": "Suppression non confirmée.",
	"save-failed":      "Erreur lors de la sauvegarde des données",
	"not-found":        "Offre introuvable.",
}

func noticeText(code string) string {
	return noticeTexts[code]
}
