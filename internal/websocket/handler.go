package websocket

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/parv18050212/ai-tutor/internal/dto"
	"github.com/parv18050212/ai-tutor/internal/pkg/logger"
	"github.com/parv18050212/ai-tutor/internal/pkg/serverutils"
	"github.com/parv18050212/ai-tutor/internal/service"
)

// Handler relays tutoring questions over a websocket, one question per
// message. It runs the same pipeline as POST /api/chat/v1, so voice and
// text clients see identical behavior.
type Handler struct {
	tutorService service.ITutorService
	logger       logger.ILogger
}

func NewHandler(tutorService service.ITutorService, log logger.ILogger) *Handler {
	return &Handler{
		tutorService: tutorService,
		logger:       log,
	}
}

type wsError struct {
	Error string `json:"error"`
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	// Registered outside the /api prefix: the chat group's bearer-header
	// middleware would otherwise reject the handshake before the
	// query-token check below ever runs.
	app.Use("/ws/chat", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}

		// The browser websocket API cannot set headers, so the token
		// rides in the query string.
		userId, err := serverutils.ResolveUserID(ctx.Query("token"))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		ctx.Locals("user_id", userId)
		return ctx.Next()
	})

	app.Get("/ws/chat", websocket.New(h.relay))
}

func (h *Handler) relay(conn *websocket.Conn) {
	userIdStr, _ := conn.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		_ = conn.WriteJSON(wsError{Error: "invalid user"})
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req dto.AskRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			_ = conn.WriteJSON(wsError{Error: "invalid request payload"})
			continue
		}

		if err := serverutils.ValidateRequest(req); err != nil {
			_ = conn.WriteJSON(wsError{Error: err.Error()})
			continue
		}

		res, err := h.tutorService.Ask(context.Background(), userId, &req)
		if err != nil {
			h.logger.Error("websocket", "ask failed", map[string]interface{}{
				"user_id": userId,
				"error":   err.Error(),
			})
			_ = conn.WriteJSON(wsError{Error: "failed to generate answer"})
			continue
		}

		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}
