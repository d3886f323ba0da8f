package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/db"
	"github.com/vistasign/vistasign/internal/http/api"
	"github.com/vistasign/vistasign/internal/http/api/admin/packets"
	"github.com/vistasign/vistasign/internal/model"
	"github.com/vistasign/vistasign/internal/mqttbus"
	"github.com/vistasign/vistasign/internal/redis"
)

type ScreenController struct {
	store db.Store
}

func newScreenController(store db.Store) *ScreenController {
	return &ScreenController{store: store}
}

// ScreenModule mounts all authenticated /screens endpoints.
func ScreenModule(store db.Store) api.Module {
	ctl := newScreenController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		// CRUD
		c.GET("/stores/:id/screens", ctl.listScreens)
		c.POST("/screens", ctl.createScreen)
		c.GET("/screens/:id", ctl.getScreen)
		c.PUT("/screens/:id", ctl.updateScreen)
		c.DELETE("/screens/:id", ctl.deleteScreen)

		// pairing claim
		c.POST("/screens/pair", ctl.pairScreen)

		// default (fallback) content
		c.POST("/screens/:id/content", ctl.assignDefaultContent)

		// explicit refresh
		c.POST("/screens/:id/refresh", ctl.refreshScreen)
		c.POST("/stores/:id/refresh", ctl.refreshStore)
	})
}

func screenResponse(s model.Screen) packets.ScreenResponse {
	resp := packets.ScreenResponse{
		ID:             s.ID,
		Token:          s.Token,
		DeviceID:       s.DeviceID,
		StoreID:        s.StoreID,
		Name:           s.Name,
		Orientation:    s.Orientation,
		RefreshVersion: s.RefreshVersion,
		Paired:         s.Paired,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
	if s.LastSeenAt != nil {
		seen := s.LastSeenAt.Format(time.RFC3339)
		resp.LastSeenAt = &seen
	}
	return resp
}

// notifyScreen pushes a best-effort refresh hint to a paired device.
func notifyScreen(s model.Screen) {
	if s.DeviceID != nil {
		go mqttbus.PublishRefresh(*s.DeviceID)
	}
}

func (t *ScreenController) listScreens(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	storeID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	all, err := t.store.ListScreens(storeID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list screens"}
	}
	out := make([]packets.ScreenResponse, 0, len(all))
	for _, s := range all {
		out = append(out, screenResponse(s))
	}
	return out, nil
}

func (t *ScreenController) createScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	orientation := req.Orientation
	if orientation == "" {
		orientation = "landscape"
	}
	screen, err := t.store.CreateScreen(req.StoreID, req.Name, orientation, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create screen"}
	}
	return screenResponse(screen), nil
}

func (t *ScreenController) getScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	s, err := t.store.GetScreenByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	return screenResponse(s), nil
}

func (t *ScreenController) updateScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var req packets.UpdateScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := t.store.UpdateScreen(id, req.Name, req.Orientation); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update screen"}
	}
	updated, err := t.store.GetScreenByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	return screenResponse(updated), nil
}

func (t *ScreenController) deleteScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if _, err := t.store.GetScreenByID(id); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if err := t.store.DeleteScreen(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete screen"}
	}
	return nil, nil
}

// pairScreen claims a pairing code a player registered and binds its device
// to the screen.
func (t *ScreenController) pairScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.PairScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	deviceID, err := redis.ClaimPairingCode(ctx, req.PairingCode)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "unknown pairing code"}
	}

	if err := t.store.PairScreen(req.ScreenID, deviceID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not pair screen"}
	}

	log.Info().Int("screen_id", req.ScreenID).Str("device_id", deviceID).Msg("screen paired")
	return gin.H{"success": "screen paired successfully"}, nil
}

// assignDefaultContent swaps the screen's fallback media. The store layer
// bumps the refresh version in the same transaction, so the next poll (or
// the MQTT hint) makes the player re-fetch.
func (t *ScreenController) assignDefaultContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screenID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	var req packets.AssignDefaultContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := t.store.GetScreenByID(screenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if _, err := t.store.GetMediaByID(req.MediaID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "media not found"}
	}

	if err := t.store.AssignDefaultContent(screenID, req.MediaID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not assign content"}
	}

	notifyScreen(screen)
	return gin.H{"success": "content assigned"}, nil
}

// refreshScreen bumps the version counter without changing any assignment,
// forcing the player to re-fetch its manifest.
func (t *ScreenController) refreshScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screenID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	screen, err := t.store.GetScreenByID(screenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	version, err := t.store.BumpRefreshVersion(screenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not refresh screen"}
	}
	notifyScreen(screen)
	return gin.H{"refresh_version": version}, nil
}

// refreshStore is the mass-refresh path for every screen in a store.
func (t *ScreenController) refreshStore(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	storeID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	n, err := t.store.BumpStoreRefreshVersions(storeID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not refresh store"}
	}
	screens, err := t.store.ListScreens(storeID)
	if err == nil {
		for _, s := range screens {
			notifyScreen(s)
		}
	}
	return packets.RefreshedResponse{ScreensRefreshed: n}, nil
}
