package packets

// RESPONSES FOR /api/tv/*

type ManifestMedia struct {
	ID   int    `json:"id"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// ManifestResponse is the full payload describing what a screen should
// currently show. Media is null when no content is assigned; NextCheck is
// null when no schedule boundary lies ahead today.
type ManifestResponse struct {
	ScreenID       int            `json:"screen_id"`
	RefreshVersion int64          `json:"refresh_version"`
	Source         string         `json:"source"`
	Media          *ManifestMedia `json:"media"`
	NextCheck      *string        `json:"next_check"`
	FetchedAt      string         `json:"fetched_at"`
}

type RefreshCheckResponse struct {
	ShouldRefresh  bool  `json:"should_refresh"`
	CurrentVersion int64 `json:"current_version"`
}

type RegisterPairingCodeResponse struct {
	DeviceID string `json:"device_id"`
}
