package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestShutdownEntry(t *testing.T) {
	meta := map[string]any{"store": "postgres", "outbox": "worker"}

	entry := shutdownEntry("terminated", meta)

	assert.Equal(t, "SERVER_SHUTDOWN", entry.Action)
	assert.Equal(t, map[string]any{"store": "postgres", "outbox": "worker", "signal": "terminated"}, entry.Meta)
	assert.NotContains(t, meta, "signal")
}

func TestStdoutAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	audit := NewStdoutAuditLogger(zap.New(core))

	audit.Log(context.Background(), AuditLog{
		Action:  "STORE_CLOSED",
		Message: "Store and background workers released",
		Meta:    map[string]any{"store": "bolt"},
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "audit", entries[0].LoggerName)
		fields := entries[0].ContextMap()
		assert.Equal(t, "STORE_CLOSED", fields["action"])
		assert.Equal(t, "Store and background workers released", fields["message"])
	}
}
