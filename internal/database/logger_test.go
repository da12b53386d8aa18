package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(logging.New(&buf, "debug"), logger.Warn)
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), fc, nil)
	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Empty(t, logLines(t, &buf))

	l.Trace(ctx, time.Now(), fc, errors.New("no such table: nope"))
	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "query failed", lines[0]["msg"])
	assert.Equal(t, "SELECT 1", lines[0]["sql"])
	assert.Equal(t, "no such table: nope", lines[0]["error"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "slow query", lines[1]["msg"])
}

func TestGormLogger_LevelsAndMode(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(logging.New(&buf, "debug"), logger.Silent)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), func() (string, int64) { return "x", 0 }, errors.New("boom"))
	l.Error(ctx, "failed %d", 1)
	assert.Empty(t, logLines(t, &buf))

	verbose := l.LogMode(logger.Info)
	verbose.Info(ctx, "hello %s", "db")
	verbose.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 2", 0 }, nil)

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "hello db", lines[0]["msg"])
	assert.Equal(t, "gorm", lines[0]["component"])
	assert.Equal(t, "query", lines[1]["msg"])
}

func TestOpen_RoutesQueryErrorsToLogger(t *testing.T) {
	var buf bytes.Buffer
	db, err := Open("sqlite", memoryDSN(), Options{LogLevel: "error", Logger: logging.New(&buf, "debug")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	buf.Reset()

	var u models.User
	require.ErrorIs(t, db.DB.First(&u, 42).Error, gorm.ErrRecordNotFound)
	require.Error(t, db.DB.Exec("SELECT * FROM missing_table").Error)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "query failed", lines[0]["msg"])
	assert.Contains(t, lines[0]["sql"], "missing_table")
}
