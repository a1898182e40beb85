// Package sse pushes committed player state to the renderer as server-sent
// events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/cache"
	"go.uber.org/zap"
)

// StateChannel is the pub/sub channel carrying state snapshots.
const StateChannel = "cardpack:state"

const (
	keepaliveInterval = 30 * time.Second
	publishTimeout    = 2 * time.Second
	publishQueue      = 64
)

// Handler handles the SSE endpoint.
type Handler struct {
	pubsub   cache.PubSub
	channel  string
	snapshot func() any
	logger   *zap.Logger
}

// NewHandler creates a new SSE Handler. snapshot supplies the event sent
// right after a client connects.
func NewHandler(pubsub cache.PubSub, channel string, snapshot func() any, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, channel: channel, snapshot: snapshot, logger: logger}
}

// ServeSSE handles GET /sse.
func (h *Handler) ServeSSE(c *gin.Context) {
	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, h.channel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer unsub()

	initial, err := json.Marshal(h.snapshot())
	if err != nil {
		h.logger.Error("sse snapshot failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: state\ndata: %s\n\n", initial)
	c.Writer.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: state\ndata: %s\n\n", msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

// Publisher forwards snapshots to the pub/sub channel from its own
// goroutine, so callers holding locks never wait on the broker.
type Publisher struct {
	pubsub  cache.PubSub
	channel string
	queue   chan []byte
	logger  *zap.Logger
}

// NewPublisher creates a Publisher. Nothing is sent until Run is called.
func NewPublisher(pubsub cache.PubSub, channel string, logger *zap.Logger) *Publisher {
	return &Publisher{
		pubsub:  pubsub,
		channel: channel,
		queue:   make(chan []byte, publishQueue),
		logger:  logger,
	}
}

// Notify queues v for publishing. It never blocks; when the queue is full
// the snapshot is dropped.
func (p *Publisher) Notify(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("sse encode snapshot failed", zap.Error(err))
		return
	}
	select {
	case p.queue <- payload:
	default:
		p.logger.Warn("sse publish queue full, snapshot dropped")
	}
}

// Run publishes queued snapshots in order until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case payload := <-p.queue:
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := p.pubsub.Publish(pubCtx, p.channel, string(payload)); err != nil {
				p.logger.Warn("sse publish failed", zap.Error(err))
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
