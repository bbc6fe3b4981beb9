package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"etaboard/internal/hub"
	"etaboard/internal/report"
)

const maxKeysPerClient = 32

type WSHandler struct {
	hub     *hub.Hub
	service *report.Service
	options *OptionParser
	logger  *slog.Logger
}

func NewWSHandler(h *hub.Hub, service *report.Service, options *OptionParser, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: service,
		options: options,
		logger:  logger.With("handler", "websocket"),
	}
}

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type KeysPayload struct {
	Keys []string `json:"keys"`
}

type ErrorPayload struct {
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

// ServeWS upgrades the connection. The initial display options come from the
// same query parameters and headers as the HTTP endpoints.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options.Parse(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	client := hub.NewClient(uuid.New().String(), 64, opts)
	h.hub.Register(client)
	ServerStats.IncWSConnections()
	defer ServerStats.DecWSConnections()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", client.ID, "error", err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		ServerStats.IncWSMessagesIn()

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(client, "", "invalid message format")
			continue
		}

		switch msg.Type {
		case "subscribe":
			var payload KeysPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(client, "", "invalid subscribe payload")
				continue
			}
			h.subscribe(client, payload.Keys)

		case "unsubscribe":
			var payload KeysPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(client, "", "invalid unsubscribe payload")
				continue
			}
			if len(payload.Keys) > 0 {
				h.hub.Unsubscribe(client, payload.Keys)
			}

		case "options":
			opts := client.Options()
			if err := json.Unmarshal(msg.Payload, &opts); err != nil {
				h.sendError(client, "", "invalid options payload")
				continue
			}
			if err := h.options.Validate(opts); err != nil {
				h.sendError(client, "", err.Error())
				continue
			}
			client.SetOptions(opts)
			h.send(client, hub.Message{Type: "options", Payload: opts})
			h.resend(client, client.Keys())

		case "ping":
			h.send(client, hub.Message{Type: "pong"})

		default:
			h.sendError(client, "", "unknown message type")
		}
	}
}

// subscribe attaches the valid keys and sends their current reports. Unknown
// keys are reported back one by one.
func (h *WSHandler) subscribe(client *hub.Client, keys []string) {
	opts := client.Options()
	accepted := make([]string, 0, len(keys))
	for _, key := range keys {
		if len(client.Keys())+len(accepted) >= maxKeysPerClient {
			h.sendError(client, key, "subscription limit reached")
			continue
		}
		rep, err := h.service.Report(key, opts)
		if err != nil {
			h.sendError(client, key, err.Error())
			continue
		}
		accepted = append(accepted, key)
		h.send(client, hub.Message{Type: "report", Payload: rep})
	}
	if len(accepted) > 0 {
		h.hub.Subscribe(client, accepted)
	}
}

func (h *WSHandler) resend(client *hub.Client, keys []string) {
	opts := client.Options()
	for _, key := range keys {
		if rep := h.service.Render(key, opts); rep != nil {
			h.send(client, hub.Message{Type: "report", Payload: rep})
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
			ServerStats.IncWSMessagesOut()

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) sendError(client *hub.Client, key, message string) {
	h.send(client, hub.Message{Type: "error", Payload: ErrorPayload{Key: key, Message: message}})
}

func (h *WSHandler) send(client *hub.Client, msg hub.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
		h.logger.Debug("client send buffer full", "client_id", client.ID, "type", msg.Type)
	}
}
