package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/middleware"
	"github.com/emberhaus/internal/service"
	"github.com/gin-gonic/gin"
)

// Collection is the set of handlers behind one /api/{Name} collection.
type Collection struct {
	Name   string
	List   gin.HandlerFunc
	Get    gin.HandlerFunc
	Create gin.HandlerFunc
	Update gin.HandlerFunc
	Delete gin.HandlerFunc
}

// resource adapts one service to the REST surface. R is the storage row, V the public
// JSON shape and I the create/update payload.
type resource[R any, V any, I any] struct {
	api       *API
	label     string
	list      func(service.ListOptions) ([]R, error)
	get       func(id uint, includeDrafts bool) (*R, error)
	getBySlug func(slug string, includeDrafts bool) (*R, error)
	create    func(I) (*R, error)
	update    func(uint, I) (*R, error)
	remove    func(uint) error
	view      func(R) V
}

func (r resource[R, V, I]) collection(name string) Collection {
	return Collection{
		Name:   name,
		List:   r.handleList,
		Get:    r.handleGet,
		Create: r.handleCreate,
		Update: r.handleUpdate,
		Delete: r.handleDelete,
	}
}

func (r resource[R, V, I]) handleList(c *gin.Context) {
	rows, err := r.list(listOptions(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.MapViews(rows, r.view))
}

// handleGet resolves numeric keys as ids and anything else as a slug.
func (r resource[R, V, I]) handleGet(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	includeDrafts := middleware.IsAdmin(c)

	var (
		row *R
		err error
	)
	if id, parseErr := strconv.ParseUint(key, 10, 32); parseErr == nil {
		row, err = r.get(uint(id), includeDrafts)
	} else if r.getBySlug != nil {
		row, err = r.getBySlug(key, includeDrafts)
	} else {
		respondError(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.view(*row))
}

func (r resource[R, V, I]) handleCreate(c *gin.Context) {
	var input I
	if !bindJSON(c, &input, "invalid "+r.label+" payload") {
		return
	}
	row, err := r.create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	r.api.purgeCache(c)
	c.JSON(http.StatusCreated, r.view(*row))
}

func (r resource[R, V, I]) handleUpdate(c *gin.Context) {
	id, err := parseUintParam(c, "key")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id")
		return
	}
	var input I
	if !bindJSON(c, &input, "invalid "+r.label+" payload") {
		return
	}
	row, err := r.update(id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	r.api.purgeCache(c)
	c.JSON(http.StatusOK, r.view(*row))
}

func (r resource[R, V, I]) handleDelete(c *gin.Context) {
	id, err := parseUintParam(c, "key")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := r.remove(id); err != nil {
		respondServiceError(c, err)
		return
	}
	r.api.purgeCache(c)
	c.Status(http.StatusNoContent)
}

// Collections lists every content collection served under /api.
func (a *API) Collections() []Collection {
	journal := resource[db.JournalPost, service.JournalPostView, service.JournalPostInput]{
		api:       a,
		label:     "journal post",
		list:      a.journal.List,
		get:       a.journal.Get,
		getBySlug: a.journal.GetBySlug,
		create:    a.journal.Create,
		update:    a.journal.Update,
		remove:    a.journal.Delete,
		view:      service.JournalPostToView,
	}
	events := resource[db.Event, service.EventView, service.EventInput]{
		api:       a,
		label:     "event",
		list:      a.events.List,
		get:       a.events.Get,
		getBySlug: a.events.GetBySlug,
		create:    a.events.Create,
		update:    a.events.Update,
		remove:    a.events.Delete,
		view:      service.EventToView,
	}
	rituals := resource[db.Ritual, service.RitualView, service.RitualInput]{
		api:       a,
		label:     "ritual",
		list:      a.rituals.List,
		get:       a.rituals.Get,
		getBySlug: a.rituals.GetBySlug,
		create:    a.rituals.Create,
		update:    a.rituals.Update,
		remove:    a.rituals.Delete,
		view:      service.RitualToView,
	}
	sections := resource[db.PageContent, service.PageContentView, service.PageContentInput]{
		api:   a,
		label: "page content",
		list:  a.sections.List,
		get: func(id uint, _ bool) (*db.PageContent, error) {
			return a.sections.Get(id)
		},
		create: a.sections.Create,
		update: a.sections.Update,
		remove: a.sections.Delete,
		view:   service.PageContentToView,
	}
	pages := resource[db.StandalonePage, service.StandalonePageView, service.StandalonePageInput]{
		api:       a,
		label:     "page",
		list:      a.pages.List,
		get:       a.pages.Get,
		getBySlug: a.pages.GetBySlug,
		create:    a.pages.Create,
		update:    a.pages.Update,
		remove:    a.pages.Delete,
		view:      service.StandalonePageToView,
	}

	return []Collection{
		journal.collection("journal"),
		events.collection("events"),
		rituals.collection("rituals"),
		sections.collection("pages"),
		pages.collection("standalone-pages"),
	}
}

// GetStats returns dashboard counters.
func (a *API) GetStats(c *gin.Context) {
	stats, err := a.stats.Collect()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
