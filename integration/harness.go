// Package integration drives the fully wired server over real HTTP.
package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/cardpack/api/rest"
	"github.com/kasuganosora/cardpack/api/sse"
	"github.com/kasuganosora/cardpack/audit"
	"github.com/kasuganosora/cardpack/cache"
	"github.com/kasuganosora/cardpack/game/accrual"
	"github.com/kasuganosora/cardpack/game/catalog"
	"github.com/kasuganosora/cardpack/game/loot"
	"github.com/kasuganosora/cardpack/game/player"
	mw "github.com/kasuganosora/cardpack/middleware"
	"github.com/kasuganosora/cardpack/persist"
	"github.com/kasuganosora/cardpack/scheduler"
	"github.com/kasuganosora/cardpack/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const profileKey = "default"

// Clock is a settable time source shared by the controller and the test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TestServer wraps a real HTTP server with every subsystem wired together.
// It mirrors the dependency wiring in main.go.
type TestServer struct {
	DB      *gorm.DB
	Cache   cache.Cache
	PubSub  cache.PubSub
	Catalog *catalog.Catalog
	Ctl     *player.Controller
	Audit   *audit.Service
	Sched   *scheduler.Scheduler
	Clock   *Clock
	Server  *httptest.Server
	URL     string

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewTestServer creates a fully wired server backed by an in-memory SQLite
// profile store. The accrual ticker runs every few milliseconds against
// Clock, so tests move time with Clock.Advance.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c, pubsub := testutil.SetupTestCache(t)
	logger := zap.NewNop()
	clk := &Clock{now: time.UnixMilli(1_760_000_000_000)}

	cat, err := catalog.Default(catalog.DefaultRarityOrder)
	require.NoError(t, err)
	roller, err := loot.NewRoller(cat, loot.DefaultWeights, loot.DefaultCardsPerPack, loot.NewSeededRNG(42))
	require.NoError(t, err)

	store, err := persist.NewStore(persist.BackendDB, db, c)
	require.NoError(t, err)
	ctl, err := player.Open(context.Background(), player.Options{
		Store:   store,
		Key:     profileKey,
		Rules:   accrual.DefaultRules(),
		Economy: player.DefaultEconomy(),
		Roller:  roller,
		Now:     clk.Now,
		Logger:  logger,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	publisher := sse.NewPublisher(pubsub, sse.StateChannel, logger)
	go publisher.Run(ctx)
	ctl.OnChange(func(st player.State) { publisher.Notify(ctl.ViewOf(st)) })

	auditSvc := audit.New(db, logger)
	sched := scheduler.New(logger)
	sched.AddTicker("pack_accrual", 5*time.Millisecond, func(ctx context.Context) error {
		_, err := ctl.Tick(ctx)
		return err
	})

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(1000), 2000))
	r.GET("/health", apirest.Health(sched))
	apirest.Register(r, apirest.NewHandler(ctl, cat, 0, logger), auditSvc, profileKey)
	r.GET("/sse", sse.NewHandler(pubsub, sse.StateChannel, func() any { return ctl.View() }, logger).ServeSSE)

	server := httptest.NewServer(r)
	ts := &TestServer{
		DB:      db,
		Cache:   c,
		PubSub:  pubsub,
		Catalog: cat,
		Ctl:     ctl,
		Audit:   auditSvc,
		Sched:   sched,
		Clock:   clk,
		Server:  server,
		URL:     server.URL,
		cancel:  cancel,
	}
	t.Cleanup(ts.Close)
	return ts
}

// Close shuts down the server and all background workers. It is safe to
// call more than once.
func (ts *TestServer) Close() {
	ts.closeOnce.Do(func() {
		ts.cancel()
		ts.Server.Close()
		ts.Sched.Stop()
		ts.Audit.Stop(context.Background())
	})
}

// Reopen opens a second controller over the same database, as a restart would.
func (ts *TestServer) Reopen(t *testing.T) *player.Controller {
	t.Helper()
	roller, err := loot.NewRoller(ts.Catalog, loot.DefaultWeights, 0, loot.NewSeededRNG(1))
	require.NoError(t, err)
	ctl, err := player.Open(context.Background(), player.Options{
		Store:   persist.NewDBStore(ts.DB),
		Key:     profileKey,
		Rules:   accrual.DefaultRules(),
		Economy: player.DefaultEconomy(),
		Roller:  roller,
		Now:     ts.Clock.Now,
	})
	require.NoError(t, err)
	return ctl
}

// --- HTTP helpers ---

// PostJSON sends a POST request with a JSON body and decodes the reply.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp.StatusCode, readJSON(t, resp)
}

// GetJSON sends a GET request and decodes the reply.
func (ts *TestServer) GetJSON(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	return resp.StatusCode, readJSON(t, resp)
}

func readJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

// --- SSE helpers ---

// EventStream is an open /sse connection.
type EventStream struct {
	body   io.ReadCloser
	events chan string
}

// OpenEvents connects to /sse and returns once the initial event arrived.
func (ts *TestServer) OpenEvents(t *testing.T) (*EventStream, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	es := &EventStream{body: resp.Body, events: make(chan string, 64)}
	t.Cleanup(func() {
		cancel()
		resp.Body.Close()
	})
	go es.read()
	return es, es.Next(t)
}

func (es *EventStream) read() {
	defer close(es.events)
	sc := bufio.NewScanner(es.body)
	for sc.Scan() {
		if data, ok := strings.CutPrefix(sc.Text(), "data: "); ok {
			es.events <- data
		}
	}
}

// Next returns the data of the next state event.
func (es *EventStream) Next(t *testing.T) string {
	t.Helper()
	select {
	case data, ok := <-es.events:
		require.True(t, ok, "event stream closed")
		return data
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}
