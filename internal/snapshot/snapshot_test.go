package snapshot

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	m := New(nil, nil, Config{SnapshotKey: "snapshots/portal.db.zst"}, nil, nil)
	if m.config.TempDir == "" {
		t.Error("TempDir default not applied")
	}
	if m.config.LockTTL != 2*time.Minute {
		t.Errorf("LockTTL = %v", m.config.LockTTL)
	}
}

func TestCurrentETag(t *testing.T) {
	t.Parallel()

	m := New(nil, nil, Config{}, nil, nil)
	if m.CurrentETag() != "" {
		t.Errorf("initial etag = %q", m.CurrentETag())
	}
	m.SetCurrentETag("abc123")
	if m.CurrentETag() != "abc123" {
		t.Errorf("etag = %q", m.CurrentETag())
	}
}
