package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kasuganosora/cardpack/model"
	"github.com/kasuganosora/cardpack/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	svc.Log(Entry{
		TraceID:    "trace-123",
		Profile:    "default",
		Action:     ActionFuse,
		Request:    map[string][]int{"indices": {0, 1, 2}},
		Response:   json.RawMessage(`{"fused":true}`),
		IP:         "127.0.0.1",
		DurationMs: 42,
	})

	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, "default", logs[0].Profile)
	assert.Equal(t, ActionFuse, logs[0].Action)
	assert.JSONEq(t, `{"indices":[0,1,2]}`, string(logs[0].Request))
	assert.JSONEq(t, `{"fused":true}`, string(logs[0].Response))
	assert.Equal(t, 42, logs[0].DurationMs)
}

func TestLog_InvalidRawJSONIsDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Log(Entry{Action: ActionReset, Response: json.RawMessage(`{oops`)})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Response)
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	for i := 0; i < 250; i++ {
		svc.Log(Entry{Action: ActionPackClaim})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(250), count)
}

func TestLog_TimerFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newService(db, zap.NewNop(), 10*time.Millisecond)
	defer svc.Stop(context.Background())

	svc.Log(Entry{Action: ActionShopCard})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AuditLog{}).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestLog_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	// Only checks that flooding past the queue never blocks or panics.
	for i := 0; i < queueSize+10; i++ {
		svc.Log(Entry{Action: ActionShopBulk})
	}
	svc.Stop(context.Background())
}
