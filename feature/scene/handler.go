package scene

import (
	"colabdraw/core/errors"
	"colabdraw/core/logger"
	"colabdraw/core/reconcile"
	"colabdraw/core/scene"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

const (
	// HeaderRoomKey carries the room encryption key.
	HeaderRoomKey = "X-Room-Key"
	// HeaderConnectionID identifies the client connection for the version cache.
	HeaderConnectionID = "X-Connection-ID"
)

// Handler handles HTTP requests for scenes.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the scene routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/rooms/:room")
	group.Get("/scene", h.HandleLoadScene)
	group.Put("/scene", h.HandleSaveScene)
	group.Delete("/connections/:conn", h.HandleForgetConnection)
}

type saveRequest struct {
	Elements []scene.Element    `json:"elements"`
	AppState *reconcile.AppState `json:"appState"`
}

type sceneResponse struct {
	Elements     []scene.Element `json:"elements"`
	SceneVersion int64           `json:"sceneVersion"`
}

func newSceneResponse(elements []scene.Element) sceneResponse {
	if elements == nil {
		elements = []scene.Element{}
	}
	return sceneResponse{Elements: elements, SceneVersion: scene.Version(elements)}
}

// HandleSaveScene merges the posted elements into the stored scene.
// Responds 204 when the connection already saved this exact scene.
func (h *Handler) HandleSaveScene(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body: " + err.Error()})
	}

	// The connection id outlives the request as a cache key, and fiber
	// reuses the buffers behind Params and Get.
	b := Binding{
		RoomID:       utils.CopyString(c.Params("room")),
		RoomKey:      c.Get(HeaderRoomKey),
		ConnectionID: utils.CopyString(c.Get(HeaderConnectionID)),
	}
	if b.RoomKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": HeaderRoomKey + " header is required"})
	}

	saved, err := h.service.Save(c.Context(), b, req.Elements, req.AppState)
	if err != nil {
		l.Error("Scene save failed", zap.String("room", b.RoomID), zap.Error(err))
		return writeError(c, err)
	}
	if saved == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(newSceneResponse(saved))
}

// HandleLoadScene returns the decrypted scene of a room.
func (h *Handler) HandleLoadScene(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	room := c.Params("room")
	key := c.Get(HeaderRoomKey)
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": HeaderRoomKey + " header is required"})
	}

	conn := utils.CopyString(c.Get(HeaderConnectionID))
	elements, err := h.service.Load(c.Context(), room, key, conn)
	if err != nil {
		l.Error("Scene load failed", zap.String("room", room), zap.Error(err))
		return writeError(c, err)
	}
	if elements == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "scene not found"})
	}
	return c.JSON(newSceneResponse(elements))
}

// HandleForgetConnection drops the cached version of a closed connection.
func (h *Handler) HandleForgetConnection(c *fiber.Ctx) error {
	h.service.Forget(utils.CopyString(c.Params("conn")))
	return c.SendStatus(fiber.StatusNoContent)
}

func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrDecryption):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrInvalidRequest):
		status = fiber.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
