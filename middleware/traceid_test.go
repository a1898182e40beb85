package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraceRouter() *gin.Engine {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/trace", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	return r
}

func traceFor(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTraceID_Generated(t *testing.T) {
	w := traceFor(newTraceRouter(), "")
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Body.String()
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceID_Provided(t *testing.T) {
	w := traceFor(newTraceRouter(), "my-custom-trace")
	assert.Equal(t, "my-custom-trace", w.Body.String())
	assert.Equal(t, "my-custom-trace", w.Header().Get(TraceIDHeader))
}

func TestTraceID_RejectsOversizedOrBinary(t *testing.T) {
	r := newTraceRouter()
	for _, h := range []string{strings.Repeat("a", 37), "has space", "tab\there"} {
		w := traceFor(r, h)
		assert.NotEqual(t, h, w.Body.String())
		assert.Len(t, w.Body.String(), 36)
	}
}

func TestGetTraceID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}

func TestTraceID_UniquePerRequest(t *testing.T) {
	r := newTraceRouter()
	assert.NotEqual(t, traceFor(r, "").Body.String(), traceFor(r, "").Body.String())
}
