package packets

// REQUESTS FOR /api/tv/*

type RegisterPairingCodeRequest struct {
	PairingCode string `json:"code" binding:"required"`
	DeviceID    string `json:"device_id" binding:"required"`
}

type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PingRequest is the heartbeat payload. It only feeds operator-facing
// liveness; it never affects content resolution.
type PingRequest struct {
	Token       string    `json:"token" binding:"required"`
	Viewport    *Viewport `json:"viewport"`
	DisplayType *string   `json:"display_type"`
}
