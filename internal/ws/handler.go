package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"site-ems/internal/api/models"
	"site-ems/internal/logger"
	"site-ems/internal/model"
	"site-ems/internal/scenario"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the interactive session: every connected client sees the same
// parameters, and a valid update recomputes the run and broadcasts it to all.
type Handler struct {
	hub    *Hub
	runner *scenario.Runner
	log    logger.Logger

	mu     sync.Mutex
	params model.RunParams
	last   []byte
}

func NewHandler(hub *Hub, runner *scenario.Runner, log logger.Logger) *Handler {
	return &Handler{
		hub:    hub,
		runner: runner,
		log:    log,
		params: model.DefaultRunParams(),
	}
}

// Params returns the current session parameters.
func (h *Handler) Params() model.RunParams {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.params
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	h.sendBounds(client)
	h.sendCurrent(r.Context(), client)

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("websocket read error: %v", err)
			}
			return
		}
		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.sendError(c, "INVALID_REQUEST", err)
		return
	}

	switch env.Type {
	case TypeParamsUpdate:
		var p ParamsUpdatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "INVALID_REQUEST", err)
			return
		}
		h.update(c, p)

	default:
		h.sendError(c, "INVALID_REQUEST", errors.New("unknown message type: "+env.Type))
	}
}

// update recomputes with the new parameters. Invalid parameters are reported to the
// sender only and the session keeps its previous parameters.
func (h *Handler) update(c *Client, p ParamsUpdatePayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := p.Apply(h.params)
	msg, err := h.compute(context.Background(), next)
	if err != nil {
		code := "SIMULATION_ERROR"
		if errors.Is(err, model.ErrInvalidInput) {
			code = "INVALID_INPUT"
		}
		h.sendError(c, code, err)
		return
	}
	h.params = next
	h.last = msg
	h.hub.Broadcast(msg)
}

func (h *Handler) compute(ctx context.Context, params model.RunParams) ([]byte, error) {
	out, err := h.runner.Run(ctx, params, "")
	if err != nil {
		return nil, err
	}
	return NewEnvelope(TypeSimulationResult, ResultFromOutcome(out))
}

func (h *Handler) sendBounds(c *Client) {
	msg, err := NewEnvelope(TypeParamsBounds, ParamsBoundsPayload{Parameters: models.Parameters()})
	if err != nil {
		h.log.Errorf("creating %s message: %v", TypeParamsBounds, err)
		return
	}
	h.hub.Send(c, msg)
}

func (h *Handler) sendCurrent(ctx context.Context, c *Client) {
	h.mu.Lock()
	if h.last == nil {
		msg, err := h.compute(ctx, h.params)
		if err != nil {
			h.mu.Unlock()
			h.sendError(c, "SIMULATION_ERROR", err)
			return
		}
		h.last = msg
	}
	msg := h.last
	h.mu.Unlock()
	h.hub.Send(c, msg)
}

func (h *Handler) sendError(c *Client, code string, err error) {
	msg, mErr := NewEnvelope(TypeError, ErrorPayload{Code: code, Message: err.Error()})
	if mErr != nil {
		h.log.Errorf("creating %s message: %v", TypeError, mErr)
		return
	}
	h.hub.Send(c, msg)
}
