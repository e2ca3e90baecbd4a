package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type eventMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// EventsHandler pushes completion signals of the signed-in student over a
// WebSocket.
type EventsHandler struct {
	bus    ports.CompletionBus
	logger zerolog.Logger
}

func NewEventsHandler(bus ports.CompletionBus, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{bus: bus, logger: logger}
}

// eventClient is one socket. Signals go through send; a full buffer drops
// the client.
type eventClient struct {
	socket    *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (cl *eventClient) close() {
	cl.closeOnce.Do(func() { close(cl.done) })
}

// enqueue never blocks the publisher.
func (cl *eventClient) enqueue(msg []byte) bool {
	select {
	case <-cl.done:
		return false
	default:
	}
	select {
	case cl.send <- msg:
		return true
	default:
		cl.close()
		return false
	}
}

// Stream upgrades the connection and relays submission_completed messages
// until the client disconnects.
//
// @Summary      Completion events
// @Description  WebSocket. Pass the token as access_token when headers cannot be set.
// @Tags         student
// @Security     BearerAuth
// @Param        access_token  query  string  false  "Bearer token"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /student/events [get]
func (h *EventsHandler) Stream(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	socket, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	client := &eventClient{
		socket: socket,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	log := h.logger.With().Str("student_id", user.ID).Logger()

	unsubscribe := h.bus.Subscribe(user.ID, func(signal domain.CompletionSignal) {
		msg, err := json.Marshal(eventMessage{Type: "submission_completed", Payload: signal})
		if err != nil {
			log.Error().Err(err).Msg("encode completion event")
			return
		}
		if !client.enqueue(msg) {
			log.Warn().Msg("event client send buffer full, closing connection")
		}
	})
	log.Debug().Msg("event client connected")

	go h.writePump(client, log)
	h.readPump(client, log)

	unsubscribe()
	client.close()
	log.Debug().Msg("event client disconnected")
	return nil
}

func (h *EventsHandler) readPump(cl *eventClient, log zerolog.Logger) {
	defer cl.socket.Close()

	cl.socket.SetReadLimit(4096)
	_ = cl.socket.SetReadDeadline(time.Now().Add(pongWait))
	cl.socket.SetPongHandler(func(string) error {
		return cl.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := cl.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var msg eventMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			pong, _ := json.Marshal(eventMessage{Type: "pong", Payload: "pong"})
			cl.enqueue(pong)
		}
	}
}

func (h *EventsHandler) writePump(cl *eventClient, log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.socket.Close()
	}()

	for {
		select {
		case msg := <-cl.send:
			_ = cl.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				cl.close()
				return
			}
		case <-ticker.C:
			_ = cl.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				cl.close()
				return
			}
		case <-cl.done:
			_ = cl.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = cl.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
