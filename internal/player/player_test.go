package player

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistasign/vistasign/internal/http/api/tv/packets"
)

// fakeServer is a minimal TV API: a manifest, a refresh verdict, and a
// ping sink, with request counters.
type fakeServer struct {
	mu        sync.Mutex
	manifest  packets.ManifestResponse
	refresh   packets.RefreshCheckResponse
	manifests int32
	pings     []packets.PingRequest
	srv       *httptest.Server
}

func newFakeServer(m packets.ManifestResponse) *fakeServer {
	f := &fakeServer{manifest: m}
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.manifests, 1)
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.manifest)
	})
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.refresh)
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		var p packets.PingRequest
		json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		f.pings = append(f.pings, p)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	f.srv = httptest.NewServer(mux)
	return f
}

func (f *fakeServer) manifestCount() int32 { return atomic.LoadInt32(&f.manifests) }

func (f *fakeServer) setManifest(m packets.ManifestResponse) {
	f.mu.Lock()
	f.manifest = m
	f.mu.Unlock()
}

func (f *fakeServer) setRefresh(r packets.RefreshCheckResponse) {
	f.mu.Lock()
	f.refresh = r
	f.mu.Unlock()
}

func baseManifest() packets.ManifestResponse {
	return packets.ManifestResponse{
		ScreenID:       1,
		RefreshVersion: 3,
		Source:         "default",
		Media:          &packets.ManifestMedia{ID: 9, URL: "https://cdn.test/menu.png", Type: "image/png"},
		FetchedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}

func TestFetchManifestAppliesAndCaches(t *testing.T) {
	f := newFakeServer(baseManifest())
	defer f.srv.Close()

	cache := filepath.Join(t.TempDir(), "manifest.json")
	p := New(Config{ServerURL: f.srv.URL, Token: "tok-1", CacheFile: cache})

	var applied *packets.ManifestResponse
	p.OnManifest = func(m *packets.ManifestResponse) { applied = m }

	require.NoError(t, p.FetchManifest(context.Background()))

	assert.Equal(t, StatePlaying, p.State())
	require.NotNil(t, applied)
	assert.Equal(t, int64(3), applied.RefreshVersion)

	raw, err := os.ReadFile(cache)
	require.NoError(t, err)
	var cached packets.ManifestResponse
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, 9, cached.Media.ID)
}

func TestRunFallsBackToCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "manifest.json")
	raw, _ := json.Marshal(baseManifest())
	require.NoError(t, os.WriteFile(cache, raw, 0o644))

	// nothing listens here
	p := New(Config{
		ServerURL:         "http://127.0.0.1:1",
		Token:             "tok-1",
		CacheFile:         cache,
		HTTPTimeout:       100 * time.Millisecond,
		PollInterval:      time.Hour,
		HeartbeatInterval: time.Hour,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx)

	assert.Equal(t, StatePlaying, p.State())
	require.NotNil(t, p.Manifest())
	assert.Equal(t, int64(3), p.Manifest().RefreshVersion)
}

func TestRunOfflineWithoutCache(t *testing.T) {
	p := New(Config{
		ServerURL:         "http://127.0.0.1:1",
		Token:             "tok-1",
		HTTPTimeout:       100 * time.Millisecond,
		PollInterval:      time.Hour,
		HeartbeatInterval: time.Hour,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx)

	assert.Equal(t, StateOffline, p.State())
	assert.Nil(t, p.Manifest())
}

func TestPreciseWakeRefetches(t *testing.T) {
	m := baseManifest()
	next := time.Now().Add(150 * time.Millisecond).UTC().Format(time.RFC3339)
	m.NextCheck = &next
	f := newFakeServer(m)
	defer f.srv.Close()

	p := New(Config{
		ServerURL:         f.srv.URL,
		Token:             "tok-1",
		PollInterval:      time.Hour,
		HeartbeatInterval: time.Hour,
		WakeSkew:          10 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() { _ = p.Run(ctx); close(done) }()

	assert.Eventually(t, func() bool { return f.manifestCount() >= 2 },
		1500*time.Millisecond, 20*time.Millisecond,
		"wake timer should trigger a second manifest fetch")
	cancel()
	<-done
}

func TestCoarsePollRefetchesWhenStale(t *testing.T) {
	f := newFakeServer(baseManifest())
	defer f.srv.Close()
	f.setRefresh(packets.RefreshCheckResponse{ShouldRefresh: true, CurrentVersion: 4})

	p := New(Config{
		ServerURL:         f.srv.URL,
		Token:             "tok-1",
		PollInterval:      50 * time.Millisecond,
		HeartbeatInterval: time.Hour,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() { _ = p.Run(ctx); close(done) }()

	assert.Eventually(t, func() bool { return f.manifestCount() >= 2 },
		1500*time.Millisecond, 20*time.Millisecond)
	cancel()
	<-done
}

func TestHeartbeatPayload(t *testing.T) {
	f := newFakeServer(baseManifest())
	defer f.srv.Close()

	display := "tv"
	p := New(Config{
		ServerURL:         f.srv.URL,
		Token:             "tok-1",
		Viewport:          &packets.Viewport{Width: 1920, Height: 1080},
		DisplayType:       &display,
		PollInterval:      time.Hour,
		HeartbeatInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() { _ = p.Run(ctx); close(done) }()

	assert.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.pings) >= 1
	}, 1500*time.Millisecond, 20*time.Millisecond)
	cancel()
	<-done

	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.pings)
	ping := f.pings[0]
	assert.Equal(t, "tok-1", ping.Token)
	require.NotNil(t, ping.Viewport)
	assert.Equal(t, 1920, ping.Viewport.Width)
	require.NotNil(t, ping.DisplayType)
	assert.Equal(t, "tv", *ping.DisplayType)
}

func TestFetchManifestSingleFlight(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		json.NewEncoder(w).Encode(baseManifest())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := New(Config{ServerURL: srv.URL, Token: "tok-1"})

	first := make(chan error, 1)
	go func() { first <- p.FetchManifest(context.Background()) }()

	// wait until the first fetch is parked inside the handler
	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 },
		time.Second, 10*time.Millisecond)

	// the second call must collapse onto the in-flight one
	require.NoError(t, p.FetchManifest(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	close(release)
	require.NoError(t, <-first)
	assert.Equal(t, StatePlaying, p.State())
}

func TestWakeDelayClampsPastTimestamps(t *testing.T) {
	p := New(Config{ServerURL: "http://x", Token: "t"})

	past := time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
	d, ok := p.wakeDelay(&packets.ManifestResponse{NextCheck: &past})
	require.True(t, ok)
	assert.Equal(t, p.cfg.WakeSkew, d, "past next_check should fire after the skew buffer, not immediately spin")

	d, ok = p.wakeDelay(&packets.ManifestResponse{})
	assert.False(t, ok)
	assert.Zero(t, d)
}
