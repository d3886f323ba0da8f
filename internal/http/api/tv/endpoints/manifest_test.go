package endpoints

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistasign/vistasign/internal/db"
	"github.com/vistasign/vistasign/internal/http/api"
	"github.com/vistasign/vistasign/internal/http/api/tv/packets"
	"github.com/vistasign/vistasign/internal/model"
	"github.com/vistasign/vistasign/internal/resolver"
	"github.com/vistasign/vistasign/internal/storage"
)

// fakeStore stubs just the lookups the player protocol touches. The
// embedded interface panics on anything else, which is what we want.
type fakeStore struct {
	db.Store
	screens    map[string]model.Screen
	store      model.Store
	entries    []resolver.ScheduleEntry
	def        *resolver.DefaultEntry
	media      map[int]model.MediaAsset
	heartbeats int
}

func (f *fakeStore) GetScreenByToken(token string) (model.Screen, error) {
	s, ok := f.screens[token]
	if !ok {
		return model.Screen{}, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeStore) GetStoreByID(id int) (model.Store, error) { return f.store, nil }

func (f *fakeStore) ScheduleEntriesForScreen(screenID int) ([]resolver.ScheduleEntry, error) {
	return f.entries, nil
}

func (f *fakeStore) DefaultContentForScreen(screenID int) (*resolver.DefaultEntry, error) {
	return f.def, nil
}

func (f *fakeStore) GetMediaByID(id int) (model.MediaAsset, error) {
	m, ok := f.media[id]
	if !ok {
		return model.MediaAsset{}, sql.ErrNoRows
	}
	return m, nil
}

func (f *fakeStore) RecordHeartbeat(screenID int, info *string, width, height *int) error {
	f.heartbeats++
	return nil
}

type fakeStorage struct {
	failSigning bool
}

func (f *fakeStorage) SaveFile(fh *multipart.FileHeader, filename string) (string, error) {
	return "uploads/" + filename, nil
}

func (f *fakeStorage) SignedURL(objectKey string, expiry time.Duration) (string, error) {
	if f.failSigning {
		return "", storage.ErrSigning
	}
	return "https://cdn.test/" + objectKey + "?sig=abc", nil
}

func (f *fakeStorage) Delete(objectKey string) error { return nil }

func utc() *string {
	tz := "UTC"
	return &tz
}

// newTestRouter mounts the player module with an injected clock.
func newTestRouter(store *fakeStore, st *fakeStorage, now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctl := NewPlayerController(store, st)
	ctl.now = func() time.Time { return now }

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/tv"}, api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/manifest", ctl.getManifest)
		c.PUBLIC_GET("/refresh", ctl.refreshCheck)
		c.PUBLIC_POST("/ping", ctl.ping)
	}))
	return r
}

func baseFixture() *fakeStore {
	return &fakeStore{
		screens: map[string]model.Screen{
			"tok-1": {ID: 1, Token: "tok-1", StoreID: 10, RefreshVersion: 5},
		},
		store: model.Store{ID: 10, ClientID: 1, Name: "Downtown", Timezone: utc()},
		media: map[int]model.MediaAsset{
			7: {ID: 7, Name: "promo", ObjectKey: "uploads/promo.mp4", MimeType: "video/mp4"},
			9: {ID: 9, Name: "menu", ObjectKey: "uploads/menu.png", MimeType: "image/png"},
		},
	}
}

// Wednesday 2025-06-11, 10:00 UTC
var testNow = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

func getJSON(t *testing.T, r *gin.Engine, url string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestManifest_MissingToken(t *testing.T) {
	r := newTestRouter(baseFixture(), &fakeStorage{}, testNow)
	w := getJSON(t, r, "/api/tv/manifest", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManifest_InvalidToken(t *testing.T) {
	r := newTestRouter(baseFixture(), &fakeStorage{}, testNow)
	w := getJSON(t, r, "/api/tv/manifest?token=nope", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManifest_NoContentAssigned(t *testing.T) {
	r := newTestRouter(baseFixture(), &fakeStorage{}, testNow)

	var resp packets.ManifestResponse
	w := getJSON(t, r, "/api/tv/manifest?token=tok-1", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, resp.ScreenID)
	assert.Equal(t, int64(5), resp.RefreshVersion)
	assert.Equal(t, "none", resp.Source)
	assert.Nil(t, resp.Media)
	assert.Nil(t, resp.NextCheck)
}

func TestManifest_DefaultContent(t *testing.T) {
	fs := baseFixture()
	fs.def = &resolver.DefaultEntry{MediaID: 9, AssignedAt: testNow.Add(-time.Hour)}
	r := newTestRouter(fs, &fakeStorage{}, testNow)

	var resp packets.ManifestResponse
	w := getJSON(t, r, "/api/tv/manifest?token=tok-1", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "default", resp.Source)
	require.NotNil(t, resp.Media)
	assert.Equal(t, 9, resp.Media.ID)
	assert.Equal(t, "image/png", resp.Media.Type)
	assert.Contains(t, resp.Media.URL, "uploads/menu.png")
}

func TestManifest_ScheduledWinsAndNextCheck(t *testing.T) {
	fs := baseFixture()
	fs.def = &resolver.DefaultEntry{MediaID: 9, AssignedAt: testNow.Add(-time.Hour)}
	// lunch window 11:00-14:00 every day; at 12:00 it is active and the
	// manifest should announce the 14:00 boundary
	fs.entries = []resolver.ScheduleEntry{{
		ScheduleID: 3, MediaID: 7,
		StartSec: 11 * 3600, EndSec: 14 * 3600,
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
		Priority:   1,
		CreatedAt:  testNow.Add(-24 * time.Hour),
	}}
	noon := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	r := newTestRouter(fs, &fakeStorage{}, noon)

	var resp packets.ManifestResponse
	w := getJSON(t, r, "/api/tv/manifest?token=tok-1", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "scheduled", resp.Source)
	require.NotNil(t, resp.Media)
	assert.Equal(t, 7, resp.Media.ID)

	require.NotNil(t, resp.NextCheck)
	next, err := time.Parse(time.RFC3339, *resp.NextCheck)
	require.NoError(t, err)
	assert.True(t, next.Equal(time.Date(2025, 6, 11, 14, 0, 0, 0, time.UTC)))
}

func TestManifest_SigningFailure(t *testing.T) {
	fs := baseFixture()
	fs.def = &resolver.DefaultEntry{MediaID: 9, AssignedAt: testNow.Add(-time.Hour)}
	r := newTestRouter(fs, &fakeStorage{failSigning: true}, testNow)

	w := getJSON(t, r, "/api/tv/manifest?token=tok-1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRefreshCheck_VersionTier(t *testing.T) {
	r := newTestRouter(baseFixture(), &fakeStorage{}, testNow)

	var resp packets.RefreshCheckResponse
	w := getJSON(t, r, "/api/tv/refresh?token=tok-1&knownVersion=4&knownMediaId=", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.ShouldRefresh, "stale version must trigger a refresh")
	assert.Equal(t, int64(5), resp.CurrentVersion)
}

func TestRefreshCheck_MediaTier(t *testing.T) {
	fs := baseFixture()
	fs.def = &resolver.DefaultEntry{MediaID: 9, AssignedAt: testNow.Add(-time.Hour)}
	r := newTestRouter(fs, &fakeStorage{}, testNow)

	// version matches but the resolved media does not
	var resp packets.RefreshCheckResponse
	w := getJSON(t, r, "/api/tv/refresh?token=tok-1&knownVersion=5&knownMediaId=7", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.ShouldRefresh)

	// both tiers agree
	w = getJSON(t, r, "/api/tv/refresh?token=tok-1&knownVersion=5&knownMediaId=9", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.ShouldRefresh)
}

func TestRefreshCheck_MalformedVersion(t *testing.T) {
	r := newTestRouter(baseFixture(), &fakeStorage{}, testNow)
	w := getJSON(t, r, "/api/tv/refresh?token=tok-1&knownVersion=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshCheck_FirstPoll(t *testing.T) {
	// a player with no known state (no params) against a screen at v5
	r := newTestRouter(baseFixture(), &fakeStorage{}, testNow)

	var resp packets.RefreshCheckResponse
	w := getJSON(t, r, "/api/tv/refresh?token=tok-1", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.ShouldRefresh)
}

func TestPing(t *testing.T) {
	fs := baseFixture()
	r := newTestRouter(fs, &fakeStorage{}, testNow)

	body := `{"token":"tok-1","viewport":{"width":1920,"height":1080},"display_type":"tv"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tv/ping", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, fs.heartbeats)
}

func TestPing_InvalidToken(t *testing.T) {
	r := newTestRouter(baseFixture(), &fakeStorage{}, testNow)

	body := `{"token":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tv/ping", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Lunch-window walkthrough: default A, scheduled B from 12:00 to 14:00.
// No version bumps anywhere; the resolved media alone flips the check.
func TestLunchWindowEndToEnd(t *testing.T) {
	fs := baseFixture()
	fs.def = &resolver.DefaultEntry{MediaID: 9, AssignedAt: testNow.Add(-48 * time.Hour)}
	fs.entries = []resolver.ScheduleEntry{{
		ScheduleID: 1, MediaID: 7,
		StartSec: 12 * 3600, EndSec: 14 * 3600,
		DaysOfWeek: []int{3}, // Wednesday
		Priority:   1,
		CreatedAt:  testNow.Add(-24 * time.Hour),
	}}

	cases := []struct {
		clock time.Time
		media int
	}{
		{time.Date(2025, 6, 11, 11, 59, 0, 0, time.UTC), 9},
		{time.Date(2025, 6, 11, 12, 0, 1, 0, time.UTC), 7},
		{time.Date(2025, 6, 11, 14, 0, 1, 0, time.UTC), 9},
	}
	for _, tc := range cases {
		r := newTestRouter(fs, &fakeStorage{}, tc.clock)
		var resp packets.ManifestResponse
		w := getJSON(t, r, "/api/tv/manifest?token=tok-1", &resp)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resp.Media, "at %s", tc.clock)
		assert.Equal(t, tc.media, resp.Media.ID, "at %s", tc.clock)

		// the previous media's key must now read stale
		other := 9
		if tc.media == 9 {
			other = 7
		}
		var check packets.RefreshCheckResponse
		w = getJSON(t, r, fmt.Sprintf("/api/tv/refresh?token=tok-1&knownVersion=5&knownMediaId=%d", other), &check)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, check.ShouldRefresh, "at %s", tc.clock)
	}
}
