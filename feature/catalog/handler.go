package catalog

import (
	"errors"
	"strconv"
	"time"

	"transit-catalog/core/logger"
	"transit-catalog/core/utils"
	gtfsreconcile "transit-catalog/feature/gtfs/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/imports", h.HandleImports)

	group := app.Group("/catalog")
	group.Get("/:entity", h.HandleList)
	group.Get("/:entity/:id", h.HandleHistory)
}

// HandleList lists catalog rows.
// @Summary List catalog rows
// @Description Lists the active rows of an entity type (agency, route, stop), or the rows active on a past date.
// @Tags catalog
// @Produce json
// @Param entity path string true "Entity type" Enums(agency, route, stop)
// @Param at query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Rows"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/{entity} [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	entity := c.Params("entity")

	var (
		rows []Row
		err  error
	)
	if at := c.Query("at"); at != "" {
		date, perr := time.Parse(utils.DateLayout, at)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at must be YYYY-MM-DD"})
		}
		rows, err = h.service.AsOf(c.Context(), entity, date)
	} else {
		rows, err = h.service.Active(c.Context(), entity)
	}
	if err != nil {
		return h.fail(c, l, err)
	}

	return c.JSON(fiber.Map{
		"entity": entity,
		"count":  len(rows),
		"rows":   rows,
	})
}

// HandleHistory returns every version of one entity.
// @Summary Entity history
// @Description Returns all versions sharing the natural key of the given surrogate id.
// @Tags catalog
// @Produce json
// @Param entity path string true "Entity type" Enums(agency, route, stop)
// @Param id path int true "Surrogate id"
// @Success 200 {object} History
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /catalog/{entity}/{id} [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id must be an integer"})
	}

	history, err := h.service.History(c.Context(), c.Params("entity"), id)
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(history)
}

// HandleImports lists recent snapshot imports.
// @Summary List imports
// @Description Lists the most recent snapshot imports with their status and per-entity summary.
// @Tags catalog
// @Produce json
// @Param limit query int false "Maximum records (default 50)"
// @Success 200 {array} models.ImportFile
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports [get]
func (h *Handler) HandleImports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	files, err := h.service.Imports(c.Context(), c.QueryInt("limit", 50))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(files)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gtfsreconcile.ErrUnknownEntity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	l.Error("Catalog query failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
