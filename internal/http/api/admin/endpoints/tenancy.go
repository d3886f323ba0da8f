package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vistasign/vistasign/internal/db"
	"github.com/vistasign/vistasign/internal/http/api"
	"github.com/vistasign/vistasign/internal/http/api/admin/packets"
	"github.com/vistasign/vistasign/internal/model"
)

type TenancyController struct {
	store db.Store
}

func newTenancyController(store db.Store) *TenancyController {
	return &TenancyController{store: store}
}

// TenancyModule mounts the client/store hierarchy endpoints.
func TenancyModule(store db.Store) api.Module {
	ctl := newTenancyController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/clients", ctl.listClients)
		c.POST("/clients", ctl.createClient)

		c.GET("/clients/:id/stores", ctl.listStores)
		c.POST("/stores", ctl.createStore)
		c.PUT("/stores/:id", ctl.updateStore)
	})
}

func (t *TenancyController) listClients(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := t.store.ListClients()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list clients"}
	}
	out := make([]packets.ClientResponse, 0, len(all))
	for _, c := range all {
		out = append(out, packets.ClientResponse{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (t *TenancyController) createClient(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateClientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	c, err := t.store.CreateClient(req.Name)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create client"}
	}
	return packets.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (t *TenancyController) listStores(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	clientID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	all, err := t.store.ListStores(clientID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list stores"}
	}
	out := make([]packets.StoreResponse, 0, len(all))
	for _, s := range all {
		out = append(out, packets.StoreResponse{
			ID:        s.ID,
			ClientID:  s.ClientID,
			Name:      s.Name,
			Timezone:  s.Timezone,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (t *TenancyController) createStore(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateStoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	s, err := t.store.CreateStore(req.ClientID, req.Name, req.Timezone)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create store"}
	}
	return packets.StoreResponse{
		ID:        s.ID,
		ClientID:  s.ClientID,
		Name:      s.Name,
		Timezone:  s.Timezone,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (t *TenancyController) updateStore(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var req packets.UpdateStoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := t.store.UpdateStore(id, req.Name, req.Timezone); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update store"}
	}
	updated, err := t.store.GetStoreByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "store not found"}
	}
	return packets.StoreResponse{
		ID:        updated.ID,
		ClientID:  updated.ClientID,
		Name:      updated.Name,
		Timezone:  updated.Timezone,
		CreatedAt: updated.CreatedAt.Format(time.RFC3339),
	}, nil
}
