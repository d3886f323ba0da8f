package endpoints

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/db"
	"github.com/vistasign/vistasign/internal/http/api"
	"github.com/vistasign/vistasign/internal/http/api/admin/packets"
	"github.com/vistasign/vistasign/internal/model"
	"github.com/vistasign/vistasign/internal/storage"
)

type MediaController struct {
	store   db.Store
	storage storage.Storage
}

func newMediaController(store db.Store, storageSystem storage.Storage) *MediaController {
	return &MediaController{store: store, storage: storageSystem}
}

// MediaModule mounts all authenticated /media endpoints.
func MediaModule(store db.Store, storageSystem storage.Storage) api.Module {
	ctl := newMediaController(store, storageSystem)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/clients/:id/media", ctl.listMedia)
		c.GET("/media/:id", ctl.getMedia)
		c.POST("/media", ctl.uploadMedia)
		c.DELETE("/media/:id", ctl.deleteMedia)
	})
}

func mediaResponse(m model.MediaAsset) packets.MediaResponse {
	return packets.MediaResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		StoreID:   m.StoreID,
		Name:      m.Name,
		Type:      m.MimeType,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func (c *MediaController) listMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	clientID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	all, err := c.store.ListMedia(clientID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list media"}
	}
	out := make([]packets.MediaResponse, 0, len(all))
	for _, m := range all {
		out = append(out, mediaResponse(m))
	}
	return out, nil
}

func (c *MediaController) getMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	m, err := c.store.GetMediaByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}
	return mediaResponse(m), nil
}

// uploadMedia accepts a multipart form: file plus name/client_id (and an
// optional store_id scoping the asset to one location). Only images and
// videos are accepted.
func (c *MediaController) uploadMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	name := ctx.PostForm("name")
	clientID, err := strconv.Atoi(ctx.PostForm("client_id"))
	if err != nil || name == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing required form fields"}
	}

	var storeID *int
	if raw := ctx.PostForm("store_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid store_id"}
		}
		storeID = &id
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing file"}
	}

	mimeType := storage.ContentTypeForFilename(fileHeader.Filename)
	if !strings.HasPrefix(mimeType, "image/") && !strings.HasPrefix(mimeType, "video/") {
		return nil, &api.APIError{Code: http.StatusUnsupportedMediaType, Message: "only image and video uploads are supported"}
	}

	objectKey, err := c.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("media upload failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store file"}
	}

	m, err := c.store.CreateMediaAsset(clientID, storeID, name, objectKey, mimeType, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create media"}
	}
	return mediaResponse(m), nil
}

func (c *MediaController) deleteMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	m, err := c.store.GetMediaByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	}

	if err := c.store.DeleteMedia(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete media"}
	}
	// storage cleanup is best effort; a dangling object is harmless
	if err := c.storage.Delete(m.ObjectKey); err != nil {
		log.Warn().Err(err).Str("key", m.ObjectKey).Msg("could not delete stored object")
	}
	return nil, nil
}
