package gateway

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ndonskov/trivia_bot/internal/middleware"
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/ndonskov/trivia_bot/pkg/logger"
)

const (
	upgradeRateLimit  = 30
	upgradeRateWindow = time.Minute
)

// GameResolver looks a game up by its join code. The game service
// satisfies it.
type GameResolver interface {
	GetGameByJoinCode(code string) (*models.Game, error)
}

// WSHandler upgrades spectator connections and parks them in the hub
// room of their game. The socket is one way: the server pushes events,
// inbound frames are only read to detect the close.
type WSHandler struct {
	hub      *Hub
	games    GameResolver
	limiter  *middleware.RateLimiter
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, games GameResolver) *WSHandler {
	return &WSHandler{
		hub:     hub,
		games:   games,
		limiter: middleware.NewRateLimiter(upgradeRateLimit, upgradeRateWindow),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type client struct {
	conn *websocket.Conn
	send chan Event
	once chan struct{}

	closing sync.Once
}

// close tears the client down and unblocks its reader. Safe to call
// more than once; eviction and the normal disconnect path both land
// here.
func (c *client) close() {
	c.closing.Do(func() {
		close(c.once)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// ServeWS handles GET /ws?code=<game join code>.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !h.limiter.Allow(host) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	game, err := h.games.GetGameByJoinCode(code)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{
		conn: conn,
		send: make(chan Event, 16),
		once: make(chan struct{}),
	}
	h.hub.join(game.ID, c)
	defer h.hub.leave(game.ID, c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case ev := <-c.send:
				if err := conn.WriteJSON(ev); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-c.once:
				return
			}
		}
	}()

	// Opening snapshot so late joiners know where the game stands.
	c.send <- Event{Type: EventGameState, GameID: game.ID, Payload: statePayload{Status: game.Status}}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	c.close()
	<-writerDone
}
