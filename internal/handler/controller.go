package handler

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"jobboard/pkg/api"
	"jobboard/pkg/logger"
	"jobboard/pkg/query"
	"jobboard/pkg/render"
	"jobboard/pkg/roles"
)

const SessionCookie = "jobboard_session"

// StatsSource reports scrape client counters for the health endpoint.
type StatsSource interface {
	Stats() api.Stats
}

// Controller maps the page controls onto the caller's query controller.
type Controller struct {
	sessions  *SessionStore
	renderer  *render.HTMLRenderer
	stats     StatsSource
	log       *logger.Logger
	startedAt time.Time
}

type StatusResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewController(sessions *SessionStore, renderer *render.HTMLRenderer, stats StatsSource) *Controller {
	return &Controller{
		sessions:  sessions,
		renderer:  renderer,
		stats:     stats,
		log:       logger.GetLogger().WithField("component", "http_handler"),
		startedAt: time.Now(),
	}
}

// NewApp builds the fiber app with every route registered.
func NewApp(h *Controller) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "jobboard",
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})

	app.Use(recover.New())
	app.Use(h.requestLogger)

	app.Get("/", h.Index)
	app.Post("/role", h.SelectRole)
	app.Post("/fetch", h.Fetch)
	app.Post("/previous", h.Previous)
	app.Post("/next", h.Next)
	app.Get("/api/view", h.ViewJSON)
	app.Get("/healthz", h.Health)

	return app
}

func (h *Controller) session(c *fiber.Ctx) *query.Controller {
	current := c.Cookies(SessionCookie)
	id, ctl := h.sessions.Get(current)
	if id != current {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return ctl
}

func (h *Controller) Index(c *fiber.Ctx) error {
	view := render.Build(h.session(c).Snapshot())

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, view); err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Controller) SelectRole(c *fiber.Ctx) error {
	ctl := h.session(c)

	keyword, err := formKeyword(c)
	if err != nil {
		return err
	}
	ctl.SelectKeyword(keyword)

	return c.Redirect("/", fiber.StatusSeeOther)
}

// Fetch also applies the submitted role when it differs from the stored
// one, so the form works without the select's change handler.
func (h *Controller) Fetch(c *fiber.Ctx) error {
	ctl := h.session(c)

	if c.Context().PostArgs().Has("keyword") {
		keyword, err := formKeyword(c)
		if err != nil {
			return err
		}
		if keyword != ctl.Snapshot().Keyword {
			ctl.SelectKeyword(keyword)
		}
	}

	if err := ctl.RequestFetch(c.UserContext()); err != nil {
		var verr *query.ValidationError
		if !errors.As(err, &verr) {
			h.log.WithError(err).Debug("Fetch finished with error")
		}
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Controller) Previous(c *fiber.Ctx) error {
	h.session(c).GoToPreviousPage(c.UserContext())
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Controller) Next(c *fiber.Ctx) error {
	h.session(c).GoToNextPage(c.UserContext())
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Controller) ViewJSON(c *fiber.Ctx) error {
	return c.JSON(render.Build(h.session(c).Snapshot()))
}

func (h *Controller) Health(c *fiber.Ctx) error {
	metrics := map[string]interface{}{
		"sessions":       h.sessions.Len(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}
	if h.stats != nil {
		metrics["scrape_client"] = h.stats.Stats()
	}

	return c.JSON(StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metrics:   metrics,
	})
}

// formKeyword returns the normalized keyword field; empty means no role.
func formKeyword(c *fiber.Ctx) (string, error) {
	keyword := roles.Normalize(c.FormValue("keyword"))
	if keyword != "" && !roles.Known(keyword) {
		return "", fiber.NewError(fiber.StatusBadRequest, "unknown role")
	}
	return keyword, nil
}

func (h *Controller) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}

	if code >= fiber.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Path()).Error("Request failed")
		return c.Status(code).JSON(errorResponse{Error: "internal error"})
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}

func (h *Controller) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			status = ferr.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	h.log.WithFields(map[string]interface{}{
		"method":      c.Method(),
		"path":        c.Path(),
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("HTTP request")
	return err
}
