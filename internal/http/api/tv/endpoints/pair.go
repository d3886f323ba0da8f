package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/db"
	"github.com/vistasign/vistasign/internal/http/api"
	"github.com/vistasign/vistasign/internal/http/api/tv/packets"
	"github.com/vistasign/vistasign/internal/redis"
)

// pairingCodeTTL bounds how long an on-screen pairing code stays claimable.
const pairingCodeTTL = 15 * time.Minute

type PairingController struct {
	store db.Store
}

func NewPairingController(store db.Store) *PairingController {
	return &PairingController{store: store}
}

// PairingModule mounts the unauthenticated pairing registration endpoint.
// A freshly booted player shows a code on screen and registers it here; an
// admin then claims the code from the dashboard to bind the device.
func PairingModule(store db.Store) api.Module {
	ctl := NewPairingController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/register", ctl.registerPairingCode)
	})
}

// registerPairingCode binds a JSON pairing request and stores the pairing
// code in Redis until an admin claims it.
func (p *PairingController) registerPairingCode(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RegisterPairingCodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	isPaired, err := p.store.IsDevicePaired(request.DeviceID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not check pairing state"}
	}
	if isPaired {
		log.Warn().Str("device_id", request.DeviceID).Msg("device is already paired")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "screen is already paired"}
	}

	if err := redis.RegisterPairingCode(ctx, request.PairingCode, request.DeviceID, pairingCodeTTL); err != nil {
		log.Error().Err(err).Str("device_id", request.DeviceID).Msg("failed to register pairing code")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not register pairing code"}
	}

	return packets.RegisterPairingCodeResponse{DeviceID: request.DeviceID}, nil
}
