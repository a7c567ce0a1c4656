package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/edmorua/admin-user-back/internal/models"
	"github.com/edmorua/admin-user-back/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	storeBatchSize     = 50
	storeFlushInterval = 5 * time.Second
)

// StoreHandler is an slog.Handler that batches ERROR+ records into the
// account store's system log collection.
type StoreHandler struct {
	shared *storeBuffer
	attrs  []slog.Attr
	group  string
}

type storeBuffer struct {
	sink   store.LogSink
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewStoreHandler(sink store.LogSink) *StoreHandler {
	b := &storeBuffer{
		sink:   sink,
		buffer: make([]models.SystemLog, 0, storeBatchSize),
		ticker: time.NewTicker(storeFlushInterval),
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.flushLoop()
	return &StoreHandler{shared: b}
}

func (b *storeBuffer) flushLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ticker.C:
			b.flush()
		case <-b.done:
			b.flush()
			return
		}
	}
}

func (b *storeBuffer) flush() {
	b.mu.Lock()
	if len(b.buffer) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.buffer
	b.buffer = make([]models.SystemLog, 0, storeBatchSize)
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.sink.WriteLogs(ctx, batch); err != nil {
		// written at WARN so the failure is not fed back into this handler
		slog.Warn("failed to flush system logs", "error", err, "count", len(batch))
	}
}

// Stop flushes pending entries and waits for the flush loop to exit.
func (h *StoreHandler) Stop() {
	h.shared.ticker.Stop()
	close(h.shared.done)
	h.shared.wg.Wait()
}

// Enabled only handles ERROR and above.
func (h *StoreHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *StoreHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		CreatedAt: time.Now().UTC(),
	}

	extra := make(map[string]interface{})
	collect := func(a slog.Attr) bool {
		switch key := a.Key; key {
		case "request_id", "trace_id":
			entry.TraceID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			entry.LatencyMs = latencyMs(a.Value)
		default:
			extra[key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		a.Key = h.qualify(a.Key)
		return collect(a)
	})

	if len(extra) > 0 {
		if b, err := json.Marshal(stringifyErrors(extra)); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	b := h.shared
	b.mu.Lock()
	b.buffer = append(b.buffer, entry)
	needFlush := len(b.buffer) >= storeBatchSize
	b.mu.Unlock()

	if needFlush {
		go b.flush()
	}
	return nil
}

func (h *StoreHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = h.qualify(a.Key)
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *StoreHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.qualify(name)
	return &clone
}

// qualify prefixes key with the open group, so attrs added before a group
// keep their plain names.
func (h *StoreHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func latencyMs(v slog.Value) int {
	switch v.Kind() {
	case slog.KindFloat64:
		return int(math.Round(v.Float64()))
	case slog.KindInt64:
		return int(v.Int64())
	case slog.KindDuration:
		return int(v.Duration().Milliseconds())
	}
	return 0
}

func stringifyErrors(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		if err, ok := v.(error); ok {
			m[k] = err.Error()
		} else if s, ok := v.(fmt.Stringer); ok {
			m[k] = s.String()
		}
	}
	return m
}
