// Package web exposes the application over HTTP: server-rendered pages
// for the four tabs (listings, favorites, profile, management) plus a
// JSON API under /api sharing the same board.Service.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/RihabMhd/jobboard/internal/board"
	"github.com/RihabMhd/jobboard/internal/store"
)

// Handler holds shared dependencies.
type Handler struct {
	board *board.Service
	log   *slog.Logger
}

// New returns a configured Handler.
func New(b *board.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{board: b, log: log}
}

// Router builds the gin engine with all routes mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	r.Use(cors.New(corsConfig))

	r.SetHTMLTemplate(templates)
	r.StaticFS("/static", staticRoot())

	r.GET("/health", h.health())

	r.GET("/", h.listings())
	r.GET("/favorites", h.favorites())
	r.GET("/jobs/:id", h.jobDetail())
	r.POST("/favorites/:id", h.toggleFavorite())

	r.GET("/profile", h.profilePage())
	r.POST("/profile", h.saveProfile())
	r.POST("/profile/skills", h.addSkill())
	r.POST("/profile/skills/remove", h.removeSkill())

	r.GET("/manage", h.managePage())
	r.GET("/manage/new", h.jobFormPage())
	r.GET("/manage/:id/edit", h.jobFormPage())
	r.POST("/manage", h.submitJobForm())
	r.POST("/manage/:id/delete", h.deleteJob())

	api := r.Group("/api")
	{
		api.GET("/jobs", h.apiListJobs())
		api.POST("/jobs", h.apiCreateJob())
		api.GET("/jobs/:id", h.apiGetJob())
		api.PUT("/jobs/:id", h.apiUpdateJob())
		api.DELETE("/jobs/:id", h.apiDeleteJob())
		api.POST("/jobs/:id/favorite", h.apiToggleFavorite())
		api.GET("/favorites", h.apiFavorites())
		api.GET("/profile", h.apiGetProfile())
		api.PUT("/profile", h.apiSaveProfile())
		api.POST("/profile/skills", h.apiAddSkill())
		api.DELETE("/profile/skills/:skill", h.apiRemoveSkill())
	}

	return r
}

func (h *Handler) health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "jobboard"})
	}
}

// ─── Page view models ────────────────────────────────────────────────────

type listingPage struct {
	page
	Stats        string
	FilterBar    FilterBarView
	Cards        []CardView
	EmptyMessage string
}

type favoritesPage struct {
	page
	Cards        []CardView
	EmptyMessage string
}

type profilePage struct {
	page
	Form   board.ProfileForm
	Skills []string
	Errors map[string]string
}

type manageItem struct {
	ID       board.JobID
	Position string
	Company  string
	Location string
	Logo     string
}

type managePage struct {
	page
	Items []manageItem
}

type jobFormView struct {
	page
	FormTitle string
	Form      board.JobForm
	Errors    map[string]string
}

type jobDetailPage struct {
	page
	Card        CardView
	Description string
}

// basePage collects what every template needs from the request and the
// board.
func (h *Handler) basePage(c *gin.Context, title, tab string) page {
	return page{
		Title:          title,
		ActiveTab:      tab,
		Search:         strings.TrimSpace(c.Query("search")),
		Filters:        cleanFilters(c.QueryArray("filter")),
		FavoritesCount: h.board.FavoritesCount(),
		Notice:         noticeText(c.Query("notice")),
	}
}

// ─── HTML: listings & favorites ──────────────────────────────────────────

func (h *Handler) listings() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := h.basePage(c, "Offres d'emploi", "listings")
		matched := h.board.Query(p.Filters, p.Search)
		profile := h.board.Profile()
		total := len(h.board.Jobs())

		back := listingURL(p.Filters, p.Search)
		cards := make([]CardView, 0, len(matched))
		for _, j := range matched {
			cards = append(cards, newCardView(j, h.board.IsFavorite(j.ID), p.Filters, p.Search, back))
		}

		empty := "Aucune offre ne correspond à votre recherche."
		if h.board.SeedFailed() {
			empty = "Erreur de chargement des données."
		}

		active := len(p.Filters) > 0 || len(profile.Skills) > 0 || p.Search != ""
		c.HTML(http.StatusOK, "index", listingPage{
			page:         p,
			Stats:        statsLine(len(matched), total, active),
			FilterBar:    newFilterBar(p.Filters, p.Search),
			Cards:        cards,
			EmptyMessage: empty,
		})
	}
}

func (h *Handler) favorites() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := h.basePage(c, "Mes favoris", "favorites")
		favs := h.board.FavoriteJobs()
		cards := make([]CardView, 0, len(favs))
		for _, j := range favs {
			cards = append(cards, newCardView(j, true, nil, "", "/favorites"))
		}
		c.HTML(http.StatusOK, "favorites", favoritesPage{
			page:         p,
			Cards:        cards,
			EmptyMessage: "Aucune offre favorite pour le moment.",
		})
	}
}

func (h *Handler) jobDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := board.ParseJobID(c.Param("id"))
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/?notice=not-found")
			return
		}
		job, err := h.board.Get(id)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/?notice=not-found")
			return
		}
		p := h.basePage(c, job.Position+" — "+job.Company, "listings")
		c.HTML(http.StatusOK, "job", jobDetailPage{
			page:        p,
			Card:        newCardView(job, h.board.IsFavorite(id), p.Filters, p.Search, c.Request.URL.String()),
			Description: job.Description,
		})
	}
}

func (h *Handler) toggleFavorite() gin.HandlerFunc {
	return func(c *gin.Context) {
		back := c.PostForm("back")
		if back == "" {
			back = "/"
		}
		id, err := board.ParseJobID(c.Param("id"))
		if err != nil {
			c.Redirect(http.StatusSeeOther, addNotice(back, "not-found"))
			return
		}
		if _, err := h.board.ToggleFavorite(c.Request.Context(), id); err != nil {
			c.Redirect(http.StatusSeeOther, addNotice(back, noticeFor(err)))
			return
		}
		c.Redirect(http.StatusSeeOther, back)
	}
}

// ─── HTML: profile ───────────────────────────────────────────────────────

func (h *Handler) profilePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := h.board.Profile()
		c.HTML(http.StatusOK, "profile", profilePage{
			page:   h.basePage(c, "Mon profil", "profile"),
			Form:   board.ProfileForm{Name: profile.Name, Position: profile.Position},
			Skills: profile.Skills,
		})
	}
}

func (h *Handler) saveProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var f board.ProfileForm
		if err := c.ShouldBind(&f); err != nil {
			c.Redirect(http.StatusSeeOther, "/profile")
			return
		}
		err := h.board.SaveProfile(c.Request.Context(), f)
		var verr *board.ValidationError
		if errors.As(err, &verr) {
			c.HTML(http.StatusUnprocessableEntity, "profile", profilePage{
				page:   h.basePage(c, "Mon profil", "profile"),
				Form:   f,
				Skills: h.board.Profile().Skills,
				Errors: verr.Fields,
			})
			return
		}
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/profile?notice="+noticeFor(err))
			return
		}
		c.Redirect(http.StatusSeeOther, "/profile?notice=profile-saved")
	}
}

func (h *Handler) addSkill() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := h.board.AddSkill(c.Request.Context(), c.PostForm("skill"))
		switch {
		case errors.Is(err, board.ErrDuplicateSkill):
			c.Redirect(http.StatusSeeOther, "/profile?notice=skill-duplicate")
		case err != nil:
			c.Redirect(http.StatusSeeOther, "/profile?notice="+noticeFor(err))
		default:
			c.Redirect(http.StatusSeeOther, "/profile")
		}
	}
}

func (h *Handler) removeSkill() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.board.RemoveSkill(c.Request.Context(), c.PostForm("skill")); err != nil {
			c.Redirect(http.StatusSeeOther, "/profile?notice="+noticeFor(err))
			return
		}
		c.Redirect(http.StatusSeeOther, "/profile")
	}
}

// ─── HTML: management ────────────────────────────────────────────────────

func (h *Handler) managePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs := h.board.Jobs()
		items := make([]manageItem, 0, len(jobs))
		for _, j := range jobs {
			items = append(items, manageItem{
				ID:       j.ID,
				Position: j.Position,
				Company:  j.Company,
				Location: j.Location,
				Logo:     logoURL(j),
			})
		}
		c.HTML(http.StatusOK, "manage", managePage{
			page:  h.basePage(c, "Gestion des offres", "manage"),
			Items: items,
		})
	}
}

func (h *Handler) jobFormPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := h.basePage(c, "Gestion des offres", "manage")
		view := jobFormView{page: p, FormTitle: "Ajouter une offre"}

		if raw := c.Param("id"); raw != "" {
			id, err := board.ParseJobID(raw)
			if err != nil {
				c.Redirect(http.StatusSeeOther, "/manage?notice=not-found")
				return
			}
			job, err := h.board.Get(id)
			if err != nil {
				c.Redirect(http.StatusSeeOther, "/manage?notice=not-found")
				return
			}
			view.FormTitle = "Modifier l'offre"
			view.Form = board.JobForm{
				ID:          job.ID.String(),
				Company:     job.Company,
				Position:    job.Position,
				Logo:        job.Logo,
				Contract:    job.Contract,
				Location:    job.Location,
				Role:        job.Role,
				Level:       job.Level,
				Skills:      strings.Join(job.Skills, ", "),
				Description: job.Description,
			}
		}
		c.HTML(http.StatusOK, "job_form", view)
	}
}

// submitJobForm handles both creation (empty id field) and update, like
// the single management form of the original interface.
func (h *Handler) submitJobForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		var f board.JobForm
		if err := c.ShouldBind(&f); err != nil {
			c.Redirect(http.StatusSeeOther, "/manage")
			return
		}

		var err error
		notice := "job-added"
		if strings.TrimSpace(f.ID) == "" {
			_, err = h.board.Create(c.Request.Context(), f)
		} else {
			var id board.JobID
			id, err = board.ParseJobID(f.ID)
			if err == nil {
				_, err = h.board.Update(c.Request.Context(), id, f)
				notice = "job-updated"
			}
		}

		var verr *board.ValidationError
		switch {
		case errors.As(err, &verr):
			title := "Ajouter une offre"
			if f.ID != "" {
				title = "Modifier l'offre"
			}
			c.HTML(http.StatusUnprocessableEntity, "job_form", jobFormView{
				page:      h.basePage(c, "Gestion des offres", "manage"),
				FormTitle: title,
				Form:      f,
				Errors:    verr.Fields,
			})
		case err != nil:
			c.Redirect(http.StatusSeeOther, "/manage?notice="+noticeFor(err))
		default:
			c.Redirect(http.StatusSeeOther, "/manage?notice="+notice)
		}
	}
}

// deleteJob removes a job after explicit confirmation and cascades into
// the favorites.
func (h *Handler) deleteJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.PostForm("confirm") != "oui" {
			c.Redirect(http.StatusSeeOther, "/manage?notice=confirm-required")
			return
		}
		id, err := board.ParseJobID(c.Param("id"))
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/manage?notice=not-found")
			return
		}
		if err := h.board.Delete(c.Request.Context(), id); err != nil {
			c.Redirect(http.StatusSeeOther, "/manage?notice="+noticeFor(err))
			return
		}
		c.Redirect(http.StatusSeeOther, "/manage?notice=job-deleted")
	}
}

// ─── JSON API ────────────────────────────────────────────────────────────

func erro(err error) gin.H {
	return gin.H{"error": err.Error()}
}

func (h *Handler) apiListJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs := h.board.Query(cleanFilters(c.QueryArray("filter")), c.Query("search"))
		c.JSON(http.StatusOK, jobs)
	}
}

func (h *Handler) apiGetJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := board.ParseJobID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		job, err := h.board.Get(id)
		if err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func (h *Handler) apiCreateJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		var f board.JobForm
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		f.ID = ""
		job, err := h.board.Create(c.Request.Context(), f)
		if err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, job)
	}
}

func (h *Handler) apiUpdateJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := board.ParseJobID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		var f board.JobForm
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		job, err := h.board.Update(c.Request.Context(), id, f)
		if err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func (h *Handler) apiDeleteJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := board.ParseJobID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		if err := h.board.Delete(c.Request.Context(), id); err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (h *Handler) apiToggleFavorite() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := board.ParseJobID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		fav, err := h.board.ToggleFavorite(c.Request.Context(), id)
		if err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorite": fav})
	}
}

func (h *Handler) apiFavorites() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.board.FavoriteJobs())
	}
}

func (h *Handler) apiGetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.board.Profile())
	}
}

func (h *Handler) apiSaveProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var f board.ProfileForm
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		if err := h.board.SaveProfile(c.Request.Context(), f); err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.board.Profile())
	}
}

func (h *Handler) apiAddSkill() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Skill string `json:"skill"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		if err := h.board.AddSkill(c.Request.Context(), body.Skill); err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.board.Profile())
	}
}

func (h *Handler) apiRemoveSkill() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.board.RemoveSkill(c.Request.Context(), c.Param("skill")); err != nil {
			h.apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.board.Profile())
	}
}

// apiError maps service errors to JSON responses. Store write failures
// keep the in-memory change server-side; the client gets a retryable
// error.
func (h *Handler) apiError(c *gin.Context, err error) {
	var verr *board.ValidationError
	var serr *store.SaveError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, board.ErrNotFound):
		c.JSON(http.StatusNotFound, erro(err))
	case errors.Is(err, board.ErrDuplicateSkill):
		c.JSON(http.StatusConflict, erro(err))
	case errors.As(err, &serr):
		h.log.Warn("store write failed", "key", serr.Key, "err", serr.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la sauvegarde des données"})
	default:
		c.JSON(http.StatusInternalServerError, erro(err))
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────

// cleanFilters trims, drops empties and deduplicates while keeping
// insertion order.
func cleanFilters(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// noticeFor picks the redirect notice code for a service error.
func noticeFor(err error) string {
	var serr *store.SaveError
	switch {
	case errors.As(err, &serr):
		return "save-failed"
	case errors.Is(err, board.ErrNotFound):
		return "not-found"
	default:
		return "save-failed"
	}
}

// addNotice appends a notice code to a redirect target, preserving any
// query already present.
func addNotice(target, code string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "/?notice=" + code
	}
	q := u.Query()
	q.Set("notice", code)
	u.RawQuery = q.Encode()
	return u.String()
}
