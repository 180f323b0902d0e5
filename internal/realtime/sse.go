package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sse"

	"go-booking-realtime/internal/infrastructure/logger"
)

// SSEConnection implements Connection over a server-sent-events stream. The
// stream is write-only, so topics come from the connect-time defaults plus
// any channels requested in the query string, and liveness is refreshed on
// every successful write instead of on client frames.
type SSEConnection struct {
	*clientState

	writer  http.ResponseWriter
	flusher http.Flusher

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.Mutex

	writeMu sync.Mutex

	logger logger.Logger
}

func NewSSEConnection(
	ctx context.Context,
	id string,
	identity string,
	role Role,
	w http.ResponseWriter,
	keepAliveInterval time.Duration,
	log logger.Logger,
) (*SSEConnection, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	rctx, cancel := context.WithCancel(ctx)

	c := &SSEConnection{
		clientState: newClientState(id, identity, role),
		writer:      w,
		flusher:     flusher,
		ctx:         rctx,
		cancel:      cancel,
		logger:      log.WithField("connection_id", id),
	}

	c.setupHeaders()

	go c.keepAlive(keepAliveInterval)

	return c, nil
}

func (c *SSEConnection) Transport() string { return "sse" }

func (c *SSEConnection) Send(ctx context.Context, frame *Frame) error {
	if c.IsClosed() {
		return fmt.Errorf("connection %s is closed", c.id)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := sse.Encode(c.writer, sse.Event{
		Event: frame.Type,
		Data:  frame,
	})
	if err != nil {
		c.logger.Errorf("failed to write sse event: %v", err)
		c.Close()
		return err
	}
	c.flusher.Flush()

	// A successful write is the only liveness signal an SSE client gives.
	c.Touch()
	return nil
}

func (c *SSEConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()

	c.logger.Debug("sse connection closed")
	return nil
}

func (c *SSEConnection) IsClosed() bool {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()
	return c.closed
}

func (c *SSEConnection) Context() context.Context { return c.ctx }

func (c *SSEConnection) setupHeaders() {
	h := c.writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // for nginx
}

// keepAlive pushes a ping frame on a fixed cadence while the stream is open.
// The ticker stops with the connection context.
func (c *SSEConnection) keepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Send(c.ctx, NewFrame(FramePing, nil)); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
