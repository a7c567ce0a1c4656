package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/edmorua/admin-user-back/internal/models"
	"github.com/edmorua/admin-user-back/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreHandler_OnlyErrors(t *testing.T) {
	repo := store.NewMemoryRepository()
	h := NewStoreHandler(repo)
	logger := slog.New(h)

	logger.Info("ignored")
	logger.Warn("also ignored")
	logger.Error("profile lookup failed",
		"request_id", "req-1",
		"user_id", "u-1",
		"action", "myprofile",
		"error", errors.New("boom"),
		"latency_ms", 12.6,
		"path", "/api/users/myprofile",
	)
	h.Stop()

	logs := repo.Logs()
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "profile lookup failed", entry.Message)
	assert.Equal(t, "req-1", entry.TraceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "myprofile", entry.Action)
	assert.Equal(t, "boom", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "/api/users/myprofile", extra["path"])
}

func TestStoreHandler_WithAttrsAndGroup(t *testing.T) {
	repo := store.NewMemoryRepository()
	h := NewStoreHandler(repo)

	logger := slog.New(h).With("request_id", "req-2").WithGroup("db")
	logger.Error("query failed", "op", "find")
	h.Stop()

	logs := repo.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "req-2", logs[0].TraceID)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(logs[0].Extra, &extra))
	assert.Equal(t, "find", extra["db.op"])
}

func TestStoreHandler_FlushesFullBatch(t *testing.T) {
	repo := store.NewMemoryRepository()
	h := NewStoreHandler(repo)
	defer h.Stop()

	logger := slog.New(h)
	for i := 0; i < storeBatchSize; i++ {
		logger.Error("failure", "n", i)
	}

	assert.Eventually(t, func() bool {
		return len(repo.Logs()) == storeBatchSize
	}, 2*time.Second, 10*time.Millisecond)
}

type failingSink struct{}

func (failingSink) WriteLogs(context.Context, []models.SystemLog) error {
	return errors.New("sink down")
}

func (failingSink) PurgeLogs(context.Context, time.Time) (int64, error) {
	return 0, errors.New("sink down")
}

func TestStoreHandler_SinkFailureDoesNotPanic(t *testing.T) {
	h := NewStoreHandler(failingSink{})
	slog.New(h).Error("lost")
	assert.NotPanics(t, h.Stop)
}

func TestMultiHandler_FansOut(t *testing.T) {
	var text, js bytes.Buffer
	m := NewMultiHandler(
		slog.NewTextHandler(&text, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(m).With("component", "test")

	logger.Info("hello")
	logger.Error("bad")

	assert.Contains(t, text.String(), "hello")
	assert.Contains(t, text.String(), "bad")
	assert.NotContains(t, js.String(), "hello")
	assert.Contains(t, js.String(), `"msg":"bad"`)
	assert.Contains(t, js.String(), `"component":"test"`)
}

func TestMultiHandler_Enabled(t *testing.T) {
	m := NewMultiHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))
	assert.False(t, m.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, m.Enabled(context.Background(), slog.LevelError))
}

func TestNewConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewConsoleHandler(&buf, "production")).Info("started", "port", "4000")
	assert.Contains(t, buf.String(), `"msg":"started"`)

	buf.Reset()
	slog.New(NewConsoleHandler(&buf, "development")).Debug("verbose")
	assert.Contains(t, buf.String(), "msg=verbose")
}

func TestPurgeOnce(t *testing.T) {
	repo := store.NewMemoryRepository()
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.WriteLogs(context.Background(), []models.SystemLog{
		{Message: "old", Timestamp: old},
		{Message: "new", Timestamp: time.Now()},
	}))

	PurgeOnce(repo, 24*time.Hour)

	logs := repo.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "new", logs[0].Message)
}
