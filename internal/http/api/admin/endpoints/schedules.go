package endpoints

import (
	"fmt"
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

type ScheduleController struct {
	store db.Store
}

func NewScheduleController(store db.Store) *ScheduleController {
	return &ScheduleController{store: store}
}

func ScheduleModule(store db.Store) api.Module {
	ctl := NewScheduleController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		// top-level schedules
		c.GET("/stores/:id/schedules", ctl.listSchedules)
		c.POST("/schedules", ctl.createSchedule)
		c.DELETE("/schedules/:id", ctl.deleteSchedule)

		// schedule <-> screen content bindings
		c.POST("/schedules/:id/content", ctl.bindContent)
		c.DELETE("/schedules/:id/content/:screen_id", ctl.unbindContent)
	})
}

// parseTimeOfDay converts "HH:MM" or "HH:MM:SS" to seconds since midnight.
func parseTimeOfDay(s string) (int, error) {
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func formatTimeOfDay(sec int) string {
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec/60)%60, sec%60)
}

func scheduleResponse(s model.Schedule) packets.ScheduleResponse {
	days := make([]int, 0, len(s.DaysOfWeek))
	for _, d := range s.DaysOfWeek {
		days = append(days, int(d))
	}
	return packets.ScheduleResponse{
		ID:         s.ID,
		StoreID:    s.StoreID,
		Name:       s.Name,
		StartTime:  formatTimeOfDay(s.StartSec),
		EndTime:    formatTimeOfDay(s.EndSec),
		DaysOfWeek: days,
		Priority:   s.Priority,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}

func (s *ScheduleController) listSchedules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	storeID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	list, err := s.store.ListSchedules(storeID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list schedules"}
	}
	response := make([]packets.ScheduleResponse, 0, len(list))
	for _, it := range list {
		response = append(response, scheduleResponse(it))
	}
	return response, nil
}

func (s *ScheduleController) createSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	startSec, err := parseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	endSec, err := parseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if startSec == endSec {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "window is empty"}
	}

	days := make([]int64, 0, len(req.DaysOfWeek))
	for _, d := range req.DaysOfWeek {
		if d < 0 || d > 6 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "days_of_week values must be 0-6"}
		}
		days = append(days, int64(d))
	}
	if len(days) == 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "days_of_week is required"}
	}

	created, err := s.store.CreateSchedule(req.StoreID, req.Name, startSec, endSec, days, req.Priority, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create schedule"}
	}
	return scheduleResponse(created), nil
}

func (s *ScheduleController) deleteSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := s.store.DeleteSchedule(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete schedule"}
	}
	return nil, nil
}

// bindContent points a screen at a media asset for this schedule's window.
// The store layer bumps the screen's refresh version in the same
// transaction.
func (s *ScheduleController) bindContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	scheduleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var req packets.BindScheduleContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if _, err := s.store.GetScheduleByID(scheduleID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	screen, err := s.store.GetScreenByID(req.ScreenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if _, err := s.store.GetMediaByID(req.MediaID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "media not found"}
	}

	if err := s.store.BindScheduleContent(scheduleID, req.ScreenID, req.MediaID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not bind content"}
	}

	log.Info().Int("schedule_id", scheduleID).Int("screen_id", req.ScreenID).Int("media_id", req.MediaID).Msg("schedule content bound")
	notifyScreen(screen)
	return gin.H{"success": "content bound"}, nil
}

func (s *ScheduleController) unbindContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	scheduleID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	screenID, err := strconv.Atoi(ctx.Param("screen_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid screen id"}
	}

	screen, err := s.store.GetScreenByID(screenID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}

	if err := s.store.UnbindScheduleContent(scheduleID, screenID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not unbind content"}
	}

	notifyScreen(screen)
	return nil, nil
}
