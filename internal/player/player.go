// Package player implements the client-side refresh loop that signage
// devices run against the TV API: a coarse refresh-check poll, a precise
// one-shot wake at the server's next_check hint, and a liveness heartbeat,
// all driven from a single timer loop.
package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/http/api/tv/packets"
)

// State reflects what the device should be showing right now.
type State string

const (
	StateLoading State = "loading"
	StatePlaying State = "playing"
	StateOffline State = "offline"
)

const (
	defaultPollInterval      = 60 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
	defaultWakeSkew          = 1500 * time.Millisecond
	defaultHTTPTimeout       = 10 * time.Second
)

// Config carries everything a device needs to run the loop.
type Config struct {
	ServerURL string // base URL, e.g. http://signage.local/api/tv
	Token     string // screen token issued at creation
	CacheFile string // last-known-good manifest path; empty disables caching

	Viewport    *packets.Viewport
	DisplayType *string

	// zero values fall back to the defaults above
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	WakeSkew          time.Duration
	HTTPTimeout       time.Duration
}

// Player drives the refresh loop. Create with New, then call Run once.
type Player struct {
	cfg    Config
	client *http.Client

	mu       sync.Mutex
	state    State
	manifest *packets.ManifestResponse
	fetching bool

	wake *time.Timer

	// OnManifest is invoked after every successful manifest apply,
	// including the cached fallback on startup.
	OnManifest func(m *packets.ManifestResponse)
}

func New(cfg Config) *Player {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.WakeSkew <= 0 {
		cfg.WakeSkew = defaultWakeSkew
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	return &Player{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		state:  StateLoading,
	}
}

// State returns the loop's current display state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Manifest returns the last applied manifest, nil before the first apply.
func (p *Player) Manifest() *packets.ManifestResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.manifest
}

// Run executes the refresh loop until ctx is cancelled. It performs the
// initial manifest fetch (with cached fallback), then services the coarse
// poll, the precise wake timer, and the heartbeat from one goroutine so
// manifest applies never race each other.
func (p *Player) Run(ctx context.Context) error {
	// wake fires at next_check + skew; parked until a manifest arms it
	p.mu.Lock()
	p.wake = time.NewTimer(time.Hour)
	p.wake.Stop()
	wakeC := p.wake.C
	p.mu.Unlock()

	if err := p.FetchManifest(ctx); err != nil {
		log.Warn().Err(err).Msg("initial manifest fetch failed, trying cache")
		if cached := p.loadCache(); cached != nil {
			p.apply(cached, false)
		} else {
			p.setState(StateOffline)
		}
	}

	poll := time.NewTicker(p.cfg.PollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(p.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			if p.checkRefresh(ctx) {
				if err := p.FetchManifest(ctx); err != nil {
					log.Warn().Err(err).Msg("manifest refetch failed")
				}
			}
		case <-wakeC:
			log.Debug().Msg("precise wake fired")
			if err := p.FetchManifest(ctx); err != nil {
				log.Warn().Err(err).Msg("scheduled manifest fetch failed")
			}
		case <-heartbeat.C:
			if err := p.sendHeartbeat(ctx); err != nil {
				log.Debug().Err(err).Msg("heartbeat failed")
			}
		}
	}
}

// FetchManifest fetches and applies the full manifest. Concurrent calls
// collapse onto the in-flight fetch: the loser returns immediately.
func (p *Player) FetchManifest(ctx context.Context) error {
	p.mu.Lock()
	if p.fetching {
		p.mu.Unlock()
		return nil
	}
	p.fetching = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.fetching = false
		p.mu.Unlock()
	}()

	var m packets.ManifestResponse
	u := fmt.Sprintf("%s/manifest?token=%s", p.cfg.ServerURL, url.QueryEscape(p.cfg.Token))
	if err := p.getJSON(ctx, u, &m); err != nil {
		return err
	}
	p.apply(&m, true)
	return nil
}

// checkRefresh runs the cheap two-tier poll. A network failure is treated
// as "no refresh" and retried on the next tick.
func (p *Player) checkRefresh(ctx context.Context) bool {
	p.mu.Lock()
	m := p.manifest
	p.mu.Unlock()
	if m == nil {
		return true
	}

	u := fmt.Sprintf("%s/refresh?token=%s&knownVersion=%d&knownMediaId=%s",
		p.cfg.ServerURL, url.QueryEscape(p.cfg.Token), m.RefreshVersion, url.QueryEscape(mediaKey(m)))
	var resp packets.RefreshCheckResponse
	if err := p.getJSON(ctx, u, &resp); err != nil {
		log.Debug().Err(err).Msg("refresh check failed")
		return false
	}
	return resp.ShouldRefresh
}

func (p *Player) sendHeartbeat(ctx context.Context) error {
	body, err := json.Marshal(packets.PingRequest{
		Token:       p.cfg.Token,
		Viewport:    p.cfg.Viewport,
		DisplayType: p.cfg.DisplayType,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ServerURL+"/ping", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("heartbeat rejected: %s", resp.Status)
	}
	return nil
}

// apply installs a manifest, persists it when it came from the network,
// and re-arms the precise wake timer from its next_check hint.
func (p *Player) apply(m *packets.ManifestResponse, fromNetwork bool) {
	p.mu.Lock()
	p.manifest = m
	p.state = StatePlaying
	if p.wake != nil {
		p.wake.Stop()
		if d, ok := p.wakeDelay(m); ok {
			p.wake.Reset(d)
		}
	}
	cb := p.OnManifest
	p.mu.Unlock()

	if fromNetwork {
		p.saveCache(m)
	}
	if cb != nil {
		cb(m)
	}
}

func (p *Player) wakeDelay(m *packets.ManifestResponse) (time.Duration, bool) {
	if m.NextCheck == nil {
		return 0, false
	}
	at, err := time.Parse(time.RFC3339, *m.NextCheck)
	if err != nil {
		log.Warn().Str("next_check", *m.NextCheck).Msg("unparseable next_check")
		return 0, false
	}
	d := time.Until(at) + p.cfg.WakeSkew
	if d < p.cfg.WakeSkew {
		d = p.cfg.WakeSkew
	}
	return d, true
}

func (p *Player) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Player) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *Player) loadCache() *packets.ManifestResponse {
	if p.cfg.CacheFile == "" {
		return nil
	}
	raw, err := os.ReadFile(p.cfg.CacheFile)
	if err != nil {
		return nil
	}
	var m packets.ManifestResponse
	if err := json.Unmarshal(raw, &m); err != nil {
		log.Warn().Err(err).Str("path", p.cfg.CacheFile).Msg("corrupt manifest cache")
		return nil
	}
	return &m
}

func (p *Player) saveCache(m *packets.ManifestResponse) {
	if p.cfg.CacheFile == "" {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := os.WriteFile(p.cfg.CacheFile, raw, 0o644); err != nil {
		log.Warn().Err(err).Str("path", p.cfg.CacheFile).Msg("could not persist manifest cache")
	}
}

func mediaKey(m *packets.ManifestResponse) string {
	if m.Media == nil {
		return ""
	}
	return strconv.Itoa(m.Media.ID)
}
