// Package audit writes an asynchronous trail of state-changing actions.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/cardpack/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionPackClaim = "pack_claim"
	ActionShopCard  = "shop_card"
	ActionShopPack  = "shop_pack"
	ActionShopBulk  = "shop_bulk"
	ActionFuse      = "fuse"
	ActionReset     = "reset"
)

const (
	queueSize = 1024
	batchSize = 100
)

// Entry holds one audit event to be logged. Request and Response are
// marshalled to JSON; raw JSON should be passed as json.RawMessage.
type Entry struct {
	TraceID    string
	Profile    string
	Action     string
	Request    interface{}
	Response   interface{}
	Error      string
	IP         string
	DurationMs int
}

// Service logs audit entries asynchronously in batches.
type Service struct {
	db       *gorm.DB
	ch       chan *model.AuditLog
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
	logger   *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	return newService(db, logger, 2*time.Second)
}

func newService(db *gorm.DB, logger *zap.Logger, interval time.Duration) *Service {
	svc := &Service{
		db:       db,
		ch:       make(chan *model.AuditLog, queueSize),
		stopCh:   make(chan struct{}),
		interval: interval,
		logger:   logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 || !json.Valid(raw) {
			return nil
		}
		return datatypes.JSON(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// Log enqueues an entry for async DB write. A full queue drops the entry.
func (svc *Service) Log(entry Entry) {
	record := &model.AuditLog{
		TraceID:    entry.TraceID,
		Profile:    entry.Profile,
		Action:     entry.Action,
		Request:    toJSON(entry.Request),
		Response:   toJSON(entry.Response),
		Error:      entry.Error,
		IP:         entry.IP,
		DurationMs: entry.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("trace_id", entry.TraceID))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.CreateInBatches(batch, batchSize).Error; err != nil {
			svc.logger.Error("audit batch write failed",
				zap.Int("entries", len(batch)),
				zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
