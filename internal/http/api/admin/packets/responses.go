package packets

// RESPONSES FOR /api/admin/*

type ClientResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type StoreResponse struct {
	ID        int     `json:"id"`
	ClientID  int     `json:"client_id"`
	Name      string  `json:"name"`
	Timezone  *string `json:"timezone"`
	CreatedAt string  `json:"created_at"`
}

// ScreenResponse mirrors model.Screen but flattens times to RFC3339
type ScreenResponse struct {
	ID             int     `json:"id"`
	Token          string  `json:"token"`
	DeviceID       *string `json:"device_id"`
	StoreID        int     `json:"store_id"`
	Name           string  `json:"name"`
	Orientation    string  `json:"orientation"`
	RefreshVersion int64   `json:"refresh_version"`
	Paired         bool    `json:"paired"`
	LastSeenAt     *string `json:"last_seen_at"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type MediaResponse struct {
	ID        int    `json:"id"`
	ClientID  int    `json:"client_id"`
	StoreID   *int   `json:"store_id,omitempty"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

type ScheduleResponse struct {
	ID         int    `json:"id"`
	StoreID    int    `json:"store_id"`
	Name       string `json:"name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	DaysOfWeek []int  `json:"days_of_week"`
	Priority   int    `json:"priority"`
	CreatedAt  string `json:"created_at"`
}

type ScreenSetResponse struct {
	ID          int     `json:"id"`
	StoreID     int     `json:"store_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type RefreshedResponse struct {
	ScreensRefreshed int `json:"screens_refreshed"`
}
