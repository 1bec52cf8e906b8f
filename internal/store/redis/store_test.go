package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/localstate"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewStore(client, ttl)
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return s, mr
}

func TestVisitorKV(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Hour)
	kv := s.For("visitor-a")

	if _, err := kv.Get(ctx, "theme"); !errors.Is(err, localstate.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := kv.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := kv.Get(ctx, "theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "dark" {
		t.Errorf("Get() = %q, want %q", got, "dark")
	}

	if ttl := mr.TTL(VisitorKey("visitor-a")); ttl != time.Hour {
		t.Errorf("TTL = %v, want %v", ttl, time.Hour)
	}
	score, err := mr.ZScore(KeySessions, "visitor-a")
	if err != nil {
		t.Fatalf("ZScore() error = %v", err)
	}
	if score != 1_700_000_000 {
		t.Errorf("session score = %v, want %v", score, 1_700_000_000)
	}

	// other visitors do not see the field
	if _, err := s.For("visitor-b").Get(ctx, "theme"); !errors.Is(err, localstate.ErrNotFound) {
		t.Errorf("Get(other visitor) error = %v, want ErrNotFound", err)
	}

	if err := kv.Delete(ctx, "theme"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := kv.Get(ctx, "theme"); !errors.Is(err, localstate.ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestVisitorKVExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Hour)
	kv := s.For("visitor-a")

	if err := kv.Set(ctx, "page_size", "48"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	mr.FastForward(time.Hour + time.Second)

	if _, err := kv.Get(ctx, "page_size"); !errors.Is(err, localstate.ErrNotFound) {
		t.Errorf("Get(expired) error = %v, want ErrNotFound", err)
	}
}

func TestRecordVisitDedup(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, 0)

	total, err := s.VisitTotal(ctx)
	if err != nil || total != 0 {
		t.Fatalf("VisitTotal() = %d, %v, want 0, nil", total, err)
	}

	steps := []struct {
		visitor string
		advance time.Duration
		counted bool
		total   int64
	}{
		{visitor: "visitor-a", counted: true, total: 1},
		{visitor: "visitor-a", advance: time.Minute, counted: false, total: 1},
		{visitor: "visitor-b", counted: true, total: 2},
		{visitor: "visitor-a", advance: 15 * time.Minute, counted: true, total: 3},
	}

	for i, st := range steps {
		mr.FastForward(st.advance)
		counted, err := s.RecordVisit(ctx, st.visitor, 15*time.Minute)
		if err != nil {
			t.Fatalf("step %d: RecordVisit() error = %v", i, err)
		}
		if counted != st.counted {
			t.Errorf("step %d: counted = %v, want %v", i, counted, st.counted)
		}
		total, err := s.VisitTotal(ctx)
		if err != nil {
			t.Fatalf("step %d: VisitTotal() error = %v", i, err)
		}
		if total != st.total {
			t.Errorf("step %d: total = %d, want %d", i, total, st.total)
		}
	}
}

func TestIdleSessionsAndPurge(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, 0)

	base := time.Unix(1_700_000_000, 0)
	for i, id := range []string{"old-1", "old-2", "fresh"} {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		if err := s.For(id).Set(ctx, "theme", "dark"); err != nil {
			t.Fatalf("Set(%s) error = %v", id, err)
		}
	}
	if _, err := s.RecordVisit(ctx, "old-1", time.Hour); err != nil {
		t.Fatalf("RecordVisit() error = %v", err)
	}

	// strictly older than the cutoff
	idle, err := s.IdleSessions(ctx, base.Add(2*time.Hour), 10)
	if err != nil {
		t.Fatalf("IdleSessions() error = %v", err)
	}
	if len(idle) != 2 || idle[0] != "old-1" || idle[1] != "old-2" {
		t.Fatalf("IdleSessions() = %v, want [old-1 old-2]", idle)
	}

	limited, err := s.IdleSessions(ctx, base.Add(2*time.Hour), 1)
	if err != nil {
		t.Fatalf("IdleSessions(limit 1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("IdleSessions(limit 1) = %v, want one id", limited)
	}

	if err := s.PurgeSession(ctx, "old-1"); err != nil {
		t.Fatalf("PurgeSession() error = %v", err)
	}
	if mr.Exists(VisitorKey("old-1")) || mr.Exists(VisitPingKey("old-1")) {
		t.Error("PurgeSession() left visitor keys behind")
	}

	n, err := s.SessionCount(ctx)
	if err != nil {
		t.Fatalf("SessionCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("SessionCount() = %d, want 2", n)
	}
}

func TestCatalogSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	apps, savedAt, err := s.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog(empty) error = %v", err)
	}
	if len(apps) != 0 || !savedAt.IsZero() {
		t.Fatalf("LoadCatalog(empty) = %d apps at %v, want none", len(apps), savedAt)
	}

	want := []*domain.Application{
		{Key: "https://robo.example.org", URL: "https://robo.example.org", Title: "Robótica", Subject: "Tecnología"},
		{Key: "https://lee.example.org", URL: "https://lee.example.org", Title: "Lectura", Level: "Primaria"},
	}
	if err := s.SaveCatalog(ctx, want); err != nil {
		t.Fatalf("SaveCatalog() error = %v", err)
	}

	got, savedAt, err := s.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if !savedAt.Equal(time.Unix(1_700_000_000, 0)) {
		t.Errorf("savedAt = %v, want %v", savedAt, time.Unix(1_700_000_000, 0))
	}
	if len(got) != len(want) {
		t.Fatalf("LoadCatalog() returned %d apps, want %d", len(got), len(want))
	}
	for i := range want {
		if *got[i] != *want[i] {
			t.Errorf("app %d = %+v, want %+v", i, *got[i], *want[i])
		}
	}
}

func TestLoadCatalogCorrupt(t *testing.T) {
	s, mr := newTestStore(t, 0)
	if err := mr.Set(KeyCatalog, "{not json"); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	if _, _, err := s.LoadCatalog(context.Background()); err == nil {
		t.Error("LoadCatalog() error = nil, want unmarshal error")
	}
}
