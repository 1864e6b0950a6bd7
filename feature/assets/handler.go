package assets

import (
	"colabdraw/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HeaderRoomKey carries the room encryption key.
const HeaderRoomKey = "X-Room-Key"

// Handler handles HTTP requests for assets.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the asset routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/assets")
	group.Post("", h.HandleSaveAssets)
	group.Post("/load", h.HandleLoadAssets)
}

type saveRequest struct {
	Prefix string `json:"prefix"`
	Files  []Item `json:"files"`
}

type loadRequest struct {
	Prefix string   `json:"prefix"`
	IDs    []string `json:"ids"`
}

// HandleSaveAssets stores already encrypted files. Individual failures are
// reported in the response body, not through the status code.
func (h *Handler) HandleSaveAssets(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body: " + err.Error()})
	}

	result := h.service.SaveAssets(c.Context(), req.Prefix, req.Files)
	if err := result.Err(); err != nil {
		l.Warn("Asset batch partially failed", zap.Strings("errored", result.Errored), zap.Error(err))
	}
	return c.JSON(result)
}

// HandleLoadAssets downloads and decrypts the requested files.
func (h *Handler) HandleLoadAssets(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	key := c.Get(HeaderRoomKey)
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": HeaderRoomKey + " header is required"})
	}
	var req loadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body: " + err.Error()})
	}

	result := h.service.LoadAssets(c.Context(), req.Prefix, req.IDs, key)
	if len(result.Errored) > 0 {
		l.Warn("Some assets could not be loaded", zap.Int("errored", len(result.Errored)), zap.Int("loaded", len(result.Loaded)))
	}
	return c.JSON(result)
}
