package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

func TestLogger_LevelsAndSkip(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(TraceID(), Logger(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/health", "/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
	assert.NotEmpty(t, entries[0].ContextMap()["trace_id"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(TraceID(), Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

type memSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memSink) Log(e audit.Entry) {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
}

func TestAudit_RecordsBodies(t *testing.T) {
	sink := &memSink{}
	r := gin.New()
	r.Use(TraceID())
	r.POST("/fuse", Audit(sink, "default", audit.ActionFuse), func(c *gin.Context) {
		var body map[string]any
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, gin.H{"fused": true})
	})
	r.POST("/broke", Audit(sink, "default", audit.ActionShopCard), func(c *gin.Context) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient coins"})
	})

	req := httptest.NewRequest(http.MethodPost, "/fuse", strings.NewReader(`{"indices":[0,1,2]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TraceIDHeader, "t-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/broke", nil))

	require.Len(t, sink.entries, 2)
	e := sink.entries[0]
	assert.Equal(t, "t-1", e.TraceID)
	assert.Equal(t, "default", e.Profile)
	assert.Equal(t, audit.ActionFuse, e.Action)
	assert.JSONEq(t, `{"indices":[0,1,2]}`, string(e.Request.(json.RawMessage)))
	assert.JSONEq(t, `{"fused":true}`, string(e.Response.(json.RawMessage)))
	assert.Empty(t, e.Error)

	assert.Equal(t, "insufficient coins", sink.entries[1].Error)
}
