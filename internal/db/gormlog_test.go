package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bandly-go/pkg/logger"
)

func TestGormLogTrace(t *testing.T) {
	var buf bytes.Buffer
	log := newGormLog(logger.New(&buf, slog.LevelDebug, "text"))
	query := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	log.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("expected record-not-found to be silent, got %q", buf.String())
	}

	log.Trace(ctx, time.Now(), query, errors.New("connection reset"))
	if out := buf.String(); !strings.Contains(out, "db: query failed") || !strings.Contains(out, "SELECT 1") {
		t.Fatalf("expected failed query entry, got %q", out)
	}

	buf.Reset()
	log.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	if out := buf.String(); !strings.Contains(out, "db: slow query") {
		t.Fatalf("expected slow query entry, got %q", out)
	}

	buf.Reset()
	log.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("expected silent mode to drop entries, got %q", buf.String())
	}
}
