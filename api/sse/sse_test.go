package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// readEvent returns the next event name and data, skipping comments.
func readEvent(t *testing.T, rd *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if event != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestServeSSE_StreamsPublishedState(t *testing.T) {
	_, ps := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	h := NewHandler(ps, StateChannel, func() any {
		return map[string]int{"coins": 0}
	}, logger)
	r := gin.New()
	r.GET("/sse", h.ServeSSE)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := NewPublisher(ps, StateChannel, logger)
	go pub.Run(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	event, data := readEvent(t, rd)
	assert.Equal(t, "state", event)
	assert.JSONEq(t, `{"coins":0}`, data)

	// The initial event is written after subscribing, so this one is seen.
	pub.Notify(map[string]int{"coins": 10})
	event, data = readEvent(t, rd)
	assert.Equal(t, "state", event)
	assert.JSONEq(t, `{"coins":10}`, data)
}

func TestPublisher_DropsWhenQueueFull(t *testing.T) {
	_, ps := testutil.SetupTestCache(t)
	pub := NewPublisher(ps, StateChannel, zap.NewNop())

	for i := 0; i < publishQueue+5; i++ {
		pub.Notify(i)
	}
	assert.Len(t, pub.queue, publishQueue)
}

func TestPublisher_RunPublishesInOrder(t *testing.T) {
	_, ps := testutil.SetupTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, unsub, err := ps.Subscribe(ctx, StateChannel)
	require.NoError(t, err)
	defer unsub()

	pub := NewPublisher(ps, StateChannel, zap.NewNop())
	pub.Notify(1)
	pub.Notify(2)
	go pub.Run(ctx)

	for _, want := range []string{"1", "2"} {
		select {
		case m := <-msgs:
			assert.Equal(t, want, m.Payload)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for publish")
		}
	}
}
