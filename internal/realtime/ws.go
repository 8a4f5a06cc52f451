package realtime

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Channel is a persistent push subscription scoped by project groups.
// Reconnection is the channel's own responsibility; missed events are NOT
// replayed after a reconnect — consumers heal with a full refetch.
type Channel interface {
	Events() <-chan Event
	JoinProject(ctx context.Context, projectID int64) error
	LeaveProject(ctx context.Context, projectID int64) error
	Close() error
}

const (
	dialTimeout    = 10 * time.Second
	writeTimeout   = 10 * time.Second
	maxBackoff     = 30 * time.Second
	eventBuffering = 64
)

// Conn implements Channel over a websocket to the server's hub endpoint.
type Conn struct {
	hubURL   string
	clientID string
	logger   *log.Logger

	events chan Event

	mu     sync.Mutex
	ws     *websocket.Conn
	groups map[int64]bool
	closed bool
	done   chan struct{}
}

// Dial connects to <server>/appHub with a bearer credential and starts the
// read loop.
func Dial(ctx context.Context, serverURL, token string, logger *log.Logger) (*Conn, error) {
	hubURL, err := hubURLFor(serverURL, token)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		hubURL:   hubURL,
		clientID: uuid.NewString(),
		logger:   logger,
		events:   make(chan Event, eventBuffering),
		groups:   map[int64]bool{},
		done:     make(chan struct{}),
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

func hubURLFor(serverURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(serverURL), "/"))
	if err != nil {
		return "", fmt.Errorf("realtime: invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("realtime: invalid server URL scheme: %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/appHub"
	q := u.Query()
	if strings.TrimSpace(token) != "" {
		q.Set("access_token", strings.TrimSpace(token))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Conn) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	ws, _, err := dialer.DialContext(ctx, c.hubURL, nil)
	if err != nil {
		return fmt.Errorf("realtime: connect: %w", err)
	}
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	return nil
}

// Events delivers decoded events in receipt order. The channel is closed
// when the connection is closed for good.
func (c *Conn) Events() <-chan Event { return c.events }

func (c *Conn) JoinProject(ctx context.Context, projectID int64) error {
	c.mu.Lock()
	c.groups[projectID] = true
	c.mu.Unlock()
	return c.send(map[string]any{
		"type":      "JoinProjectGroup",
		"projectId": strconv.FormatInt(projectID, 10),
		"clientId":  c.clientID,
	})
}

func (c *Conn) LeaveProject(ctx context.Context, projectID int64) error {
	c.mu.Lock()
	delete(c.groups, projectID)
	c.mu.Unlock()
	return c.send(map[string]any{
		"type":      "LeaveProjectGroup",
		"projectId": strconv.FormatInt(projectID, 10),
		"clientId":  c.clientID,
	})
}

func (c *Conn) send(msg map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.ws == nil {
		return fmt.Errorf("realtime: not connected")
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(msg)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ws := c.ws
	c.mu.Unlock()

	close(c.done)
	if ws != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		return ws.Close()
	}
	return nil
}

// readLoop pumps frames into the events channel, reconnecting with capped
// backoff on failure. After a reconnect the current project groups are
// re-joined; events published while disconnected are lost.
func (c *Conn) readLoop() {
	defer close(c.events)
	backoff := time.Second

	for {
		c.mu.Lock()
		ws := c.ws
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		_, frame, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed = c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			if !c.reconnect(&backoff) {
				return
			}
			continue
		}
		backoff = time.Second

		ev, err := DecodeEvent(frame)
		if err != nil {
			c.logf("realtime: dropping frame: %v", err)
			continue
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) reconnect(backoff *time.Duration) bool {
	for {
		select {
		case <-c.done:
			return false
		case <-time.After(*backoff):
		}
		if *backoff < maxBackoff {
			*backoff *= 2
			if *backoff > maxBackoff {
				*backoff = maxBackoff
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		err := c.connect(ctx)
		cancel()
		if err != nil {
			c.logf("realtime: reconnect failed: %v", err)
			continue
		}

		c.mu.Lock()
		groups := make([]int64, 0, len(c.groups))
		for id := range c.groups {
			groups = append(groups, id)
		}
		c.mu.Unlock()
		for _, id := range groups {
			if err := c.JoinProject(context.Background(), id); err != nil {
				c.logf("realtime: rejoin project %d: %v", id, err)
			}
		}
		c.logf("realtime: reconnected (%d groups)", len(groups))
		return true
	}
}

func (c *Conn) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

var _ Channel = (*Conn)(nil)
