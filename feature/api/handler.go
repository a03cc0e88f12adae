package api

import (
	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/logger"
	"github.com/asdfjk123/renode/feature/monitor"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type handler struct {
	cc      *control.Context
	engine  StatusSource
	version string
	logger  *zap.Logger
}

// StatusResponse describes the running instance.
type StatusResponse struct {
	Version    string `json:"version"`
	Session    string `json:"session"`
	State      string `json:"state"`
	Uptime     string `json:"uptime"`
	Dispatched uint64 `json:"dispatched"`
}

// CommandRequest carries one monitor command.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse carries the command output.
type CommandResponse struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

func (h *handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api")
	group.Get("/status", h.HandleStatus)
	group.Post("/command", h.HandleCommand)
	group.Post("/quit", h.HandleQuit)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(h.HandleSocket))
}

// HandleStatus reports engine state.
// @Summary Status
// @Description Returns build identification and the engine state.
// @Tags control
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/status [get]
func (h *handler) HandleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{Version: h.version, Session: h.cc.ID()}
	if h.engine != nil {
		st := h.engine.Status()
		resp.State = string(st.State)
		resp.Uptime = st.Uptime.String()
		resp.Dispatched = st.Dispatched
	}
	return c.JSON(resp)
}

// HandleCommand runs a monitor command.
// @Summary Execute Command
// @Description Runs one monitor command and returns its output.
// @Tags control
// @Accept json
// @Produce json
// @Param request body CommandRequest true "Command"
// @Success 200 {object} CommandResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} CommandResponse "Command failed"
// @Failure 503 {object} map[string]string "Monitor unavailable"
// @Router /api/command [post]
func (h *handler) HandleCommand(c *fiber.Ctx) error {
	var req CommandRequest
	if err := c.BodyParser(&req); err != nil || req.Command == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "command is required"})
	}

	exec, ok := control.Lookup[monitor.Executor](h.cc)
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "monitor is not available"})
	}

	l := logger.WithRayID(h.logger, c)
	out, err := exec.Execute(h.cc.Context(), req.Command)
	if err != nil {
		l.Warn("Command failed", zap.String("command", req.Command), zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(CommandResponse{Output: out, Error: err.Error()})
	}
	return c.JSON(CommandResponse{Output: out})
}

// HandleQuit requests shutdown.
// @Summary Quit
// @Description Requests a graceful shutdown.
// @Tags control
// @Produce json
// @Success 202 {object} map[string]string
// @Router /api/quit [post]
func (h *handler) HandleQuit(c *fiber.Ctx) error {
	logger.WithRayID(h.logger, c).Info("Shutdown requested over API")
	h.cc.RequestShutdown()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "quitting"})
}

// HandleSocket runs each text frame as a monitor command and replies with its output.
func (h *handler) HandleSocket(conn *websocket.Conn) {
	l := h.logger
	if rid, ok := conn.Locals("ray_id").(string); ok {
		l = l.With(zap.String("ray_id", rid))
	}
	l.Info("Websocket monitor attached")
	defer l.Info("Websocket monitor detached")

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var reply string
		exec, ok := control.Lookup[monitor.Executor](h.cc)
		if !ok {
			reply = "error: monitor is not available\n"
		} else {
			out, err := exec.Execute(h.cc.Context(), string(msg))
			reply = out
			if err != nil {
				reply += "error: " + err.Error() + "\n"
			}
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			return
		}
	}
}
