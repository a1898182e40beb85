package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/cardpack/audit"
)

// maxAuditBody bounds how much of a request or response body is recorded.
const maxAuditBody = 64 << 10

// AuditLogger is the sink the Audit middleware writes to.
type AuditLogger interface {
	Log(entry audit.Entry)
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if room := maxAuditBody - w.buf.Len(); room > 0 {
		w.buf.Write(b[:min(len(b), room)])
	}
	return w.ResponseWriter.Write(b)
}

// Audit records the request and response of a state-changing route under
// action. Bodies that are not JSON are stored as empty.
func Audit(sink AuditLogger, profile, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), c.Request.Body))
		}
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		entry := audit.Entry{
			TraceID:    GetTraceID(c),
			Profile:    profile,
			Action:     action,
			Request:    json.RawMessage(reqBody),
			Response:   json.RawMessage(rec.buf.Bytes()),
			IP:         c.ClientIP(),
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.String()
		} else if c.Writer.Status() >= 400 {
			var body struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(rec.buf.Bytes(), &body) == nil {
				entry.Error = body.Error
			}
		}
		sink.Log(entry)
	}
}
