package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxMessageSize = 4096
)

type sessionManager interface {
	JoinSession(ctx context.Context, code, player string) (*entity.Session, error)
	MakeMove(ctx context.Context, code, player string, cell int) (*entity.Session, error)
	PostMessage(ctx context.Context, code, player, text string) (*entity.ChatMessage, error)
}

// Server is the duplex presentation of the session state machine. Every event
// handler delegates to the same session manager the HTTP mirror uses.
type Server struct {
	logger  *slog.Logger
	manager sessionManager
	hub     *Hub

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, client *Client, payload json.RawMessage) error
}

func New(logger *slog.Logger, manager sessionManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,
		hub:     NewHub(logger),

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]func(context.Context, *Client, json.RawMessage) error),
	}

	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionChatMessage] = server.handleChatMessage

	return server
}

// Start serves the /ws endpoint until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}

// Handler exposes the upgrade endpoint for tests.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(conn)
	log.Info("websocket connection established", "client", client.id)

	go that.writePump(client)
	that.readPump(ctx, client)
}

// readPump reads envelopes off the wire and dispatches them until the
// connection drops.
func (that *Server) readPump(ctx context.Context, client *Client) {
	log := that.logger.With("method", "readPump", "client", client.id)

	defer func() {
		that.hub.Remove(client)
		client.close()
		_ = client.conn.Close()
		log.Info("websocket connection closed")
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, client, message.Payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// writePump drains the client's send buffer and keeps the connection alive
// with pings.
func (that *Server) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encodeMessage(action string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	frame, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return frame, nil
}

// sendTo unicasts one event to a single client.
func (that *Server) sendTo(client *Client, action string, payload any) error {
	frame, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	select {
	case client.send <- frame:
		return nil
	default:
		return fmt.Errorf("send buffer full for client %s", client.id)
	}
}

// broadcast pushes one event to every connection in the session's room.
func (that *Server) broadcast(code, action string, payload any) error {
	frame, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	that.hub.Broadcast(code, frame)

	return nil
}
