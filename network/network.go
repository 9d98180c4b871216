package network

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"excavation/protocol"
	"excavation/room"
)

const dropLogInterval = 10 * time.Second

var (
	ErrSlowConsumer = errors.New("network: outbound queue full")
	ErrClosed       = errors.New("network: connection closed")
)

type Options struct {
	QueueSize    int        // outbound frames buffered per connection
	CommandRate  rate.Limit // inbound frames per second per connection
	CommandBurst int
	Logger       *log.Logger
}

// Handler upgrades /ws requests and bridges each socket to the room inbox.
type Handler struct {
	room     *room.Room
	opts     Options
	log      *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(r *room.Room, opts Options) *Handler {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.CommandRate <= 0 {
		opts.CommandRate = 30
	}
	if opts.CommandBurst <= 0 {
		opts.CommandBurst = 60
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Handler{
		room: r,
		opts: opts,
		log:  opts.Logger,
		upgrader: websocket.Upgrader{
			// The game is served to any origin, same as the static client.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Upgrade HTTP -> WebSocket
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.log.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	// Basic timeouts + pong handling (keeps connections healthy)
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx := req.Context()
	wc := newWSConn(h.opts.QueueSize)
	defer wc.Close()

	reply := make(chan room.ConnectResult, 1)
	if !h.submit(ctx, room.Connect{Conn: wc, Reply: reply}) {
		return
	}
	var connID string
	select {
	case res := <-reply:
		connID = res.ConnID
	case <-ctx.Done():
		return
	case <-h.room.Done():
		return
	}

	go wc.writeLoop(conn)

	limiter := rate.NewLimiter(h.opts.CommandRate, h.opts.CommandBurst)
	// Joins draw from their own budget so a client that burned its burst can
	// still identify itself.
	joinLimiter := rate.NewLimiter(rate.Every(time.Second), 3)
	var (
		dropped     int
		lastDropLog time.Time
	)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Printf("read %s: %v", connID, err)
			}
			break
		}
		env, err := protocol.DecodeEnvelope(msg)
		lim := limiter
		if err == nil && env.T == protocol.MsgJoin {
			lim = joinLimiter
		}
		if !lim.Allow() {
			dropped++
			if time.Since(lastDropLog) >= dropLogInterval {
				h.log.Printf("conn %s: rate limited, dropped %d frames", connID, dropped)
				dropped, lastDropLog = 0, time.Now()
			}
			continue
		}
		if err != nil {
			h.log.Printf("conn %s: %v", connID, err)
			continue
		}
		if !h.submit(ctx, room.Command{ConnID: connID, Env: env}) {
			break
		}
	}

	h.submit(context.Background(), room.Leave{ConnID: connID})
}

func (h *Handler) submit(ctx context.Context, msg any) bool {
	select {
	case h.room.Inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-h.room.Done():
		return false
	}
}

// wsConn is the room-facing side of a socket. Send never blocks the room:
// frames go to a bounded queue drained by writeLoop.
type wsConn struct {
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConn(queue int) *wsConn {
	return &wsConn{
		out:  make(chan []byte, queue),
		done: make(chan struct{}),
	}
}

func (c *wsConn) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.out <- b:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *wsConn) writeLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
			return
		case b := <-c.out:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				_ = c.Close()
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				_ = conn.Close()
				return
			}
		}
	}
}
