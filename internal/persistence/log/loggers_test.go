package log

import (
	"path/filepath"
	"testing"
	"time"

	"craftage.ai/internal/sim/world"
)

func TestAuditLogger_WriteRotateRead(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l := NewAuditLoggerWithOptions(dir, LoggerOptions{Now: func() time.Time { return now }})

	if err := l.WriteAudit(world.AuditEntry{Tick: 1, PlayerID: "P000001", Kind: world.AuditCraft, Ref: "axe", Consumed: map[string]int{"wood": 5}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.WriteAudit(world.AuditEntry{Tick: 2, PlayerID: "P000001", Kind: world.AuditReject, Code: "E_NO_RESOURCE"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := l.WriteAudit(world.AuditEntry{Tick: 3, PlayerID: "P000001", Kind: world.AuditStarving}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := AuditFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "audit-2026-03-01-10.jsonl.zst" {
		t.Fatalf("unexpected files: %v", files)
	}
	first, err := ReadAudit(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(first) != 2 || first[0].Ref != "axe" || first[0].Consumed["wood"] != 5 || first[1].Code != "E_NO_RESOURCE" {
		t.Fatalf("unexpected entries: %+v", first)
	}
	second, err := ReadAudit(files[1])
	if err != nil || len(second) != 1 || second[0].Kind != world.AuditStarving {
		t.Fatalf("unexpected second file: %+v err=%v", second, err)
	}
}

func TestAuditLogger_CloseWithoutWrites(t *testing.T) {
	l := NewAuditLogger(t.TempDir())
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
