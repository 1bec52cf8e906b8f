package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/index"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

type fakeFeed struct {
	rows [][]string
	err  error
}

func (f *fakeFeed) Load(context.Context) ([][]string, error) { return f.rows, f.err }
func (f *fakeFeed) Location() string                         { return "memory" }

type fakeSnapshots struct {
	mu      sync.Mutex
	saved   []*domain.Application
	savedAt time.Time
	saveErr error
	loadErr error
}

func (f *fakeSnapshots) SaveCatalog(_ context.Context, apps []*domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = apps
	f.savedAt = time.Now()
	return nil
}

func (f *fakeSnapshots) LoadCatalog(context.Context) ([]*domain.Application, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, time.Time{}, f.loadErr
	}
	return f.saved, f.savedAt, nil
}

func feedRows() [][]string {
	return [][]string{
		{"1/2/2024 10:00:00", "ana@example.org", "Ana", "Robótica", "https://robo.example.org"},
		{"1/2/2024 11:00:00", "luis@example.org", "Luis", "Mates", "https://mates.example.org"},
	}
}

func TestCatalogReloader_Reload(t *testing.T) {
	log := logger.New("error", false)
	memIndex := index.NewMemoryIndex()
	snaps := &fakeSnapshots{}

	cr := NewCatalogReloader(&fakeFeed{rows: feedRows()}, snaps, memIndex, log, time.Hour, nil)
	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if memIndex.Count() != 2 {
		t.Errorf("Expected 2 applications after reload, got %d", memIndex.Count())
	}
	if len(snaps.saved) != 2 {
		t.Errorf("Expected snapshot with 2 applications, got %d", len(snaps.saved))
	}
}

func TestCatalogReloader_FeedFailure(t *testing.T) {
	log := logger.New("error", false)
	memIndex := index.NewMemoryIndex()
	feed := &fakeFeed{err: errors.New("503 from sheet")}

	cr := NewCatalogReloader(feed, nil, memIndex, log, time.Hour, nil)
	if err := cr.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail when the feed fails")
	}
	if st, _ := memIndex.Status(); st != index.StatusFailed {
		t.Errorf("Expected failed status, got %v", st)
	}

	// A later success recovers, a later failure keeps the data
	feed.rows, feed.err = feedRows(), nil
	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	feed.err = errors.New("timeout")
	_ = cr.Reload(context.Background())

	if st, _ := memIndex.Status(); st != index.StatusReady {
		t.Errorf("Expected ready status to survive a failed refresh, got %v", st)
	}
	if memIndex.Count() != 2 {
		t.Errorf("Expected previous snapshot to be kept, got %d", memIndex.Count())
	}
}

func TestCatalogReloader_SnapshotFailureIsNotFatal(t *testing.T) {
	log := logger.New("error", false)
	memIndex := index.NewMemoryIndex()
	snaps := &fakeSnapshots{saveErr: errors.New("redis down")}

	cr := NewCatalogReloader(&fakeFeed{rows: feedRows()}, snaps, memIndex, log, time.Hour, nil)
	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload should ignore snapshot errors, got %v", err)
	}
	if memIndex.Count() != 2 {
		t.Errorf("Expected 2 applications, got %d", memIndex.Count())
	}
}

func TestCatalogReloader_ManualTrigger(t *testing.T) {
	log := logger.New("error", false)
	memIndex := index.NewMemoryIndex()
	feed := &fakeFeed{rows: feedRows()[:1]}
	trigger := make(chan struct{}, 1)

	cr := NewCatalogReloader(feed, nil, memIndex, log, time.Hour, trigger)

	done := make(chan error, 1)
	go func() { done <- cr.Run(context.Background()) }()

	waitFor(t, func() bool { return memIndex.Count() == 1 })

	feed.rows = feedRows()
	trigger <- struct{}{}
	waitFor(t, func() bool { return memIndex.Count() == 2 })

	cr.Stop()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRedisSyncer_Sync(t *testing.T) {
	log := logger.New("error", false)

	t.Run("empty snapshot", func(t *testing.T) {
		memIndex := index.NewMemoryIndex()
		if err := NewRedisSyncer(&fakeSnapshots{}, memIndex, log).Sync(context.Background()); err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if st, _ := memIndex.Status(); st != index.StatusLoading {
			t.Errorf("Expected loading status, got %v", st)
		}
	})

	t.Run("warm start", func(t *testing.T) {
		memIndex := index.NewMemoryIndex()
		snaps := &fakeSnapshots{}
		_ = snaps.SaveCatalog(context.Background(), []*domain.Application{{Key: "https://robo.example.org"}})

		if err := NewRedisSyncer(snaps, memIndex, log).Sync(context.Background()); err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if _, ok := memIndex.Get("https://robo.example.org"); !ok {
			t.Error("Snapshot application missing from index")
		}
	})

	t.Run("read error", func(t *testing.T) {
		memIndex := index.NewMemoryIndex()
		snaps := &fakeSnapshots{loadErr: errors.New("redis down")}
		if err := NewRedisSyncer(snaps, memIndex, log).Sync(context.Background()); err == nil {
			t.Error("Sync should report a read error")
		}
	})
}

type fakeSessions struct {
	lastSeen map[string]time.Time
	failing  map[string]bool
}

func (f *fakeSessions) IdleSessions(_ context.Context, before time.Time, limit int64) ([]string, error) {
	ids := make([]string, 0)
	for id, seen := range f.lastSeen {
		if seen.Before(before) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeSessions) PurgeSession(_ context.Context, id string) error {
	if f.failing[id] {
		return errors.New("purge failed")
	}
	delete(f.lastSeen, id)
	return nil
}

func TestSessionCollector_Collect(t *testing.T) {
	log := logger.New("error", false)
	now := time.Now()

	store := &fakeSessions{
		lastSeen: map[string]time.Time{
			"active":  now.Add(-time.Hour),
			"recent":  now.Add(-10 * 24 * time.Hour),
			"old":     now.Add(-35 * 24 * time.Hour),
			"ancient": now.Add(-400 * 24 * time.Hour),
			"stuck":   now.Add(-90 * 24 * time.Hour),
		},
		failing: map[string]bool{"stuck": true},
	}

	// Create collector with 30 day threshold
	sc := NewSessionCollector(store, log, 24*time.Hour, 30*24*time.Hour)
	sc.now = func() time.Time { return now }

	deleted, err := sc.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 sessions purged, got %d", deleted)
	}

	for _, id := range []string{"active", "recent", "stuck"} {
		if _, ok := store.lastSeen[id]; !ok {
			t.Errorf("Session %s was incorrectly removed", id)
		}
	}
	for _, id := range []string{"old", "ancient"} {
		if _, ok := store.lastSeen[id]; ok {
			t.Errorf("Session %s was not removed", id)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
