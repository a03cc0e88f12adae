package artifacts

import (
	"errors"

	"github.com/asdfjk123/renode/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for remote artifacts.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// FetchRequest names the object to download.
type FetchRequest struct {
	Object string `json:"object"`
}

// RegisterRoutes registers the artifact routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/artifacts")
	group.Get("/", h.HandleList)
	group.Get("/check", h.HandleCheck)
	group.Post("/fetch", h.HandleFetch)
}

// HandleList lists remote artifacts.
// @Summary List Artifacts
// @Description Lists objects in the artifact bucket.
// @Tags artifacts
// @Produce json
// @Param prefix query string false "Object name prefix"
// @Success 200 {object} map[string]interface{} "Object list"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/artifacts [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.List(c.Context(), c.Query("prefix"))
	if err != nil {
		l.Error("Listing artifacts failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"objects": names})
}

// HandleCheck verifies the artifact bucket.
// @Summary Check Artifact Store
// @Description Verifies the configured bucket exists.
// @Tags artifacts
// @Produce json
// @Success 200 {object} map[string]string "Bucket present"
// @Failure 503 {object} map[string]string "Bucket unavailable"
// @Router /api/artifacts/check [get]
func (h *Handler) HandleCheck(c *fiber.Ctx) error {
	if err := h.service.Check(c.Context()); err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Artifact store unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok", "bucket": h.service.bucket})
}

// HandleFetch downloads an artifact into the cache.
// @Summary Fetch Artifact
// @Description Downloads an object into the local cache and returns its path.
// @Tags artifacts
// @Accept json
// @Produce json
// @Param request body FetchRequest true "Object to fetch"
// @Success 200 {object} map[string]string "Cached path"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /api/artifacts/fetch [post]
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	var req FetchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	p, err := h.service.Fetch(c.Context(), req.Object)
	if errors.Is(err, ErrInvalidObject) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Fetch failed", zap.String("object", req.Object), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"path": p})
}
