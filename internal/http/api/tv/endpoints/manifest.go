package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/db"
	"github.com/vistasign/vistasign/internal/http/api"
	"github.com/vistasign/vistasign/internal/http/api/tv/packets"
	"github.com/vistasign/vistasign/internal/model"
	redisclient "github.com/vistasign/vistasign/internal/redis"
	"github.com/vistasign/vistasign/internal/resolver"
	"github.com/vistasign/vistasign/internal/storage"
)

// signedURLValidity is how long a minted media URL stays playable. Players
// re-fetch the manifest far more often than this.
const signedURLValidity = time.Hour

// livenessTTL bounds the redis heartbeat key; three missed heartbeats and
// the screen reads as offline.
const livenessTTL = 90 * time.Second

type PlayerController struct {
	store   db.Store
	storage storage.Storage
	now     func() time.Time
}

func NewPlayerController(store db.Store, storageSystem storage.Storage) *PlayerController {
	return &PlayerController{store: store, storage: storageSystem, now: time.Now}
}

// PlayerModule mounts the unauthenticated player protocol: the full
// manifest fetch, the cheap refresh check, and the heartbeat.
func PlayerModule(store db.Store, storageSystem storage.Storage) api.Module {
	ctl := NewPlayerController(store, storageSystem)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/manifest", ctl.getManifest)
		c.PUBLIC_GET("/refresh", ctl.refreshCheck)
		c.PUBLIC_POST("/ping", ctl.ping)
	})
}

// screenForToken authenticates the player by its pairing token. A missing
// token is a malformed request; an unknown one is an auth failure, distinct
// from the valid "no content assigned" manifest.
func (p *PlayerController) screenForToken(ctx *gin.Context) (model.Screen, *api.APIError) {
	token := ctx.Query("token")
	if token == "" {
		return model.Screen{}, &api.APIError{Code: http.StatusBadRequest, Message: "missing token"}
	}
	screen, err := p.store.GetScreenByToken(token)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Screen{}, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid token"}
	}
	if err != nil {
		log.Error().Err(err).Msg("screen lookup failed")
		return model.Screen{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load screen"}
	}
	return screen, nil
}

// resolveScreen runs the resolver for a screen at the store's local now.
func (p *PlayerController) resolveScreen(screen model.Screen) (resolver.Resolution, []resolver.ScheduleEntry, time.Time, *api.APIError) {
	st, err := p.store.GetStoreByID(screen.StoreID)
	if err != nil {
		return resolver.Resolution{}, nil, time.Time{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load store"}
	}
	now := p.now().In(resolver.Location(st.Timezone))

	entries, err := p.store.ScheduleEntriesForScreen(screen.ID)
	if err != nil {
		return resolver.Resolution{}, nil, time.Time{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load schedules"}
	}
	def, err := p.store.DefaultContentForScreen(screen.ID)
	if err != nil {
		return resolver.Resolution{}, nil, time.Time{}, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load default content"}
	}

	return resolver.Resolve(entries, def, now), entries, now, nil
}

// GET /api/tv/manifest?token=
func (p *PlayerController) getManifest(ctx *gin.Context) (any, *api.APIError) {
	screen, apiErr := p.screenForToken(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	res, entries, now, apiErr := p.resolveScreen(screen)
	if apiErr != nil {
		return nil, apiErr
	}

	response := packets.ManifestResponse{
		ScreenID:       screen.ID,
		RefreshVersion: screen.RefreshVersion,
		Source:         string(res.Source),
		FetchedAt:      now.Format(time.RFC3339),
	}

	if res.Source != resolver.SourceNone {
		media, err := p.store.GetMediaByID(res.MediaID)
		if err != nil {
			log.Error().Err(err).Int("media_id", res.MediaID).Msg("resolved media missing")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load media"}
		}
		url, err := p.storage.SignedURL(media.ObjectKey, signedURLValidity)
		if err != nil {
			// the asset exists but cannot be served; distinct from media:null
			log.Error().Err(err).Int("media_id", media.ID).Msg("signed url issuance failed")
			return nil, &api.APIError{Code: http.StatusBadGateway, Message: "storage unavailable"}
		}
		response.Media = &packets.ManifestMedia{ID: media.ID, URL: url, Type: media.MimeType}
	}

	if next, ok := resolver.NextChangeAfter(entries, now); ok {
		formatted := next.Format(time.RFC3339)
		response.NextCheck = &formatted
	}

	return response, nil
}

// GET /api/tv/refresh?token=&knownVersion=&knownMediaId=
//
// Two-tier change detection: the version counter catches manual
// reassignments with a single integer compare, and the re-resolution
// catches schedule boundaries that shifted content without a bump. Both
// run on every poll.
func (p *PlayerController) refreshCheck(ctx *gin.Context) (any, *api.APIError) {
	screen, apiErr := p.screenForToken(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	knownVersion := int64(0)
	if raw := ctx.Query("knownVersion"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid knownVersion"}
		}
		knownVersion = v
	}
	knownMediaID := ctx.Query("knownMediaId")

	res, _, _, apiErr := p.resolveScreen(screen)
	if apiErr != nil {
		return nil, apiErr
	}

	return packets.RefreshCheckResponse{
		ShouldRefresh:  resolver.ShouldRefresh(screen.RefreshVersion, knownVersion, res.MediaKey(), knownMediaID),
		CurrentVersion: screen.RefreshVersion,
	}, nil
}

// POST /api/tv/ping
func (p *PlayerController) ping(ctx *gin.Context) (any, *api.APIError) {
	var request packets.PingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := p.store.GetScreenByToken(request.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid token"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load screen"}
	}

	var width, height *int
	if request.Viewport != nil {
		width, height = &request.Viewport.Width, &request.Viewport.Height
	}
	if err := p.store.RecordHeartbeat(screen.ID, request.DisplayType, width, height); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not record heartbeat"}
	}

	// best-effort liveness key for operator dashboards
	if redisclient.Rdb != nil {
		redisclient.Set(ctx, "screen:alive:"+request.Token, p.now().Unix(), livenessTTL)
	}

	return nil, nil
}
