// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/vistasign/vistasign/internal/model"
	"github.com/vistasign/vistasign/internal/resolver"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// tenancy
	CreateClient(name string) (model.Client, error)
	GetClientByID(id int) (model.Client, error)
	ListClients() ([]model.Client, error)
	CreateStore(clientID int, name string, timezone *string) (model.Store, error)
	GetStoreByID(id int) (model.Store, error)
	ListStores(clientID int) ([]model.Store, error)
	UpdateStore(id int, name, timezone *string) error

	// screens
	CreateScreen(storeID int, name, orientation string, createdBy int) (model.Screen, error)
	GetScreenByID(id int) (model.Screen, error)
	GetScreenByToken(token string) (model.Screen, error)
	ListScreens(storeID int) ([]model.Screen, error)
	UpdateScreen(id int, name, orientation *string) error
	DeleteScreen(id int) error
	PairScreen(id int, deviceID string) error
	IsDevicePaired(deviceID string) (bool, error)
	RecordHeartbeat(screenID int, info *string, width, height *int) error
	BumpRefreshVersion(screenID int) (int64, error)
	BumpStoreRefreshVersions(storeID int) (int, error)

	// screen sets
	CreateScreenSet(storeID int, name string, description *string, createdBy int) (model.ScreenSet, error)
	GetScreenSetByID(id int) (model.ScreenSet, error)
	ListScreenSets(storeID int) ([]model.ScreenSet, error)
	DeleteScreenSet(id int) error
	AddScreenToSet(setID, screenID int) error
	RemoveScreenFromSet(setID, screenID int) error
	ListScreensInSet(setID int) ([]model.Screen, error)

	// media
	CreateMediaAsset(clientID int, storeID *int, name, objectKey, mimeType string, createdBy int) (model.MediaAsset, error)
	GetMediaByID(id int) (model.MediaAsset, error)
	ListMedia(clientID int) ([]model.MediaAsset, error)
	DeleteMedia(id int) error

	// default (fallback) content
	AssignDefaultContent(screenID, mediaID int) error
	DefaultContentForScreen(screenID int) (*resolver.DefaultEntry, error)

	// schedules
	CreateSchedule(storeID int, name string, startSec, endSec int, days []int64, priority, createdBy int) (model.Schedule, error)
	GetScheduleByID(id int) (model.Schedule, error)
	ListSchedules(storeID int) ([]model.Schedule, error)
	DeleteSchedule(id int) error
	BindScheduleContent(scheduleID, screenID, mediaID int) error
	UnbindScheduleContent(scheduleID, screenID int) error
	ScheduleEntriesForScreen(screenID int) ([]resolver.ScheduleEntry, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	if conn == nil {
		conn = DB
	}
	return &pgStore{db: conn}
}
