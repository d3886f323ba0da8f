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
)

type ScreenSetController struct {
	store db.Store
}

func newScreenSetController(store db.Store) *ScreenSetController {
	return &ScreenSetController{store: store}
}

// ScreenSetModule mounts the screen-set endpoints: named groups of screens
// within a store, with fan-out content assignment.
func ScreenSetModule(store db.Store) api.Module {
	ctl := newScreenSetController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/stores/:id/screen-sets", ctl.listSets)
		c.POST("/screen-sets", ctl.createSet)
		c.DELETE("/screen-sets/:id", ctl.deleteSet)

		c.GET("/screen-sets/:id/screens", ctl.listMembers)
		c.POST("/screen-sets/:id/screens", ctl.addMember)
		c.DELETE("/screen-sets/:id/screens/:screen_id", ctl.removeMember)

		// fan-out default content to every member
		c.POST("/screen-sets/:id/content", ctl.assignContent)
	})
}

func setResponse(g model.ScreenSet) packets.ScreenSetResponse {
	return packets.ScreenSetResponse{
		ID:          g.ID,
		StoreID:     g.StoreID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
}

func (t *ScreenSetController) listSets(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	storeID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	sets, err := t.store.ListScreenSets(storeID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list screen sets"}
	}
	out := make([]packets.ScreenSetResponse, 0, len(sets))
	for _, g := range sets {
		out = append(out, setResponse(g))
	}
	return out, nil
}

func (t *ScreenSetController) createSet(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateScreenSetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	g, err := t.store.CreateScreenSet(req.StoreID, req.Name, req.Description, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create screen set"}
	}
	return setResponse(g), nil
}

func (t *ScreenSetController) deleteSet(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := t.store.DeleteScreenSet(id); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen set not found"}
	}
	return nil, nil
}

func (t *ScreenSetController) listMembers(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	screens, err := t.store.ListScreensInSet(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list screens"}
	}
	out := make([]packets.ScreenResponse, 0, len(screens))
	for _, s := range screens {
		out = append(out, screenResponse(s))
	}
	return out, nil
}

func (t *ScreenSetController) addMember(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var req packets.AddScreenToSetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := t.store.GetScreenSetByID(id); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen set not found"}
	}
	if _, err := t.store.GetScreenByID(req.ScreenID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if err := t.store.AddScreenToSet(id, req.ScreenID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not add screen"}
	}
	return gin.H{"success": "screen added"}, nil
}

func (t *ScreenSetController) removeMember(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	screenID, err := strconv.Atoi(ctx.Param("screen_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid screen id"}
	}
	if err := t.store.RemoveScreenFromSet(id, screenID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "membership not found"}
	}
	return nil, nil
}

// assignContent fans the default-content swap out to every screen in the
// set. Each member gets its own transactional swap and version bump.
func (t *ScreenSetController) assignContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var req packets.AssignDefaultContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := t.store.GetMediaByID(req.MediaID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "media not found"}
	}

	screens, err := t.store.ListScreensInSet(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list screens"}
	}

	assigned := 0
	for _, s := range screens {
		if err := t.store.AssignDefaultContent(s.ID, req.MediaID); err != nil {
			log.Error().Err(err).Int("screen_id", s.ID).Msg("set fan-out assignment failed")
			continue
		}
		notifyScreen(s)
		assigned++
	}
	return gin.H{"screens_assigned": assigned}, nil
}
