package packets

// REQUESTS FOR /api/admin/*

type CreateClientRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateStoreRequest struct {
	ClientID int     `json:"client_id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Timezone *string `json:"timezone"`
}

type UpdateStoreRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
}

type CreateScreenRequest struct {
	StoreID     int    `json:"store_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Orientation string `json:"orientation"`
}

type UpdateScreenRequest struct {
	Name        *string `json:"name"`
	Orientation *string `json:"orientation"`
}

type PairScreenRequest struct {
	PairingCode string `json:"code" binding:"required"`
	ScreenID    int    `json:"screen_id" binding:"required"`
}

type AssignDefaultContentRequest struct {
	MediaID int `json:"media_id" binding:"required"`
}

// CreateScheduleRequest describes a recurring daily window. StartTime and
// EndTime are wall-clock "HH:MM" or "HH:MM:SS" in the store's timezone; an
// end before the start wraps past midnight. DaysOfWeek uses 0=Sunday.
type CreateScheduleRequest struct {
	StoreID    int    `json:"store_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	DaysOfWeek []int  `json:"days_of_week" binding:"required"`
	Priority   int    `json:"priority"`
}

type BindScheduleContentRequest struct {
	ScreenID int `json:"screen_id" binding:"required"`
	MediaID  int `json:"media_id" binding:"required"`
}

type CreateScreenSetRequest struct {
	StoreID     int     `json:"store_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type AddScreenToSetRequest struct {
	ScreenID int `json:"screen_id" binding:"required"`
}
