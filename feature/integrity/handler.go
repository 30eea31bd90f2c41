package integrity

import (
	"errors"

	"transit-catalog/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/snapshots", h.HandleSnapshotCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/history", h.HandleHistoryCheck)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrNoStorage) || errors.Is(err, ErrNoDatabase) {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs every check (bucket structure, pending snapshots, catalog schema, SCD history).
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	return c.JSON(h.service.Report(c.Context()))
}

// HandleStructureCheck checks and optionally fixes the bucket layout.
// @Summary Check Bucket Structure
// @Description Checks that the incoming and archive prefixes exist in the snapshot bucket. Optionally creates them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create missing folders"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	missing, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return h.fail(c, err)
	}

	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))

		if fix {
			l.Info("Attempting to fix missing folders")
			if err := h.service.FixStructure(c.Context(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleSnapshotCheck lists snapshots waiting to be imported.
// @Summary Check Pending Snapshots
// @Description Lists archives under the incoming prefix without a copy under the archive prefix.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Pending Snapshots"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Storage not configured"
// @Router /integrity/snapshots [get]
func (h *Handler) HandleSnapshotCheck(c *fiber.Ctx) error {
	pending, err := h.service.CheckPending(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Snapshot check failed", zap.Error(err))
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  "checked",
		"pending": pending,
	})
}

// HandleSchemaCheck checks the catalog schema.
// @Summary Check Catalog Schema
// @Description Checks that the catalog tables carry every column of the models with a compatible type.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Database not connected"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting catalog schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Catalog schema check failed", zap.Error(err))
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleHistoryCheck checks the SCD invariants.
// @Summary Check Catalog History
// @Description Reports natural keys with several active rows and intervals that end before they start.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.HistoryReport "History Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Database not connected"
// @Router /integrity/history [get]
func (h *Handler) HandleHistoryCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckHistory(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Catalog history check failed", zap.Error(err))
		return h.fail(c, err)
	}
	if !report.Matched {
		logger.WithRayID(h.service.logger, c).Warn("Catalog history violations detected")
	}
	return c.JSON(report)
}
