//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/DropDNA/pkg/models"
	"github.com/himanishpuri/DropDNA/pkg/utils"
)

const DefaultDBFile = "dropdna.sqlite3"
const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// DropRecord is one cached detection result.
type DropRecord struct {
	CacheKey         string  `gorm:"primaryKey;type:varchar(320)" json:"cache_key"`
	TrackID          string  `gorm:"type:varchar(255);index:idx_drop_track" json:"track_id"`
	LoudnessOffsetDb float64 `json:"loudness_offset_db"`
	PreviewLengthMs  int     `json:"preview_length_ms"`
	DropStartMs      int     `json:"drop_start_ms"`
	Confidence       float64 `json:"confidence"`
	Method           string  `gorm:"type:varchar(32)" json:"method"`
	ComputedAtMs     int64   `gorm:"index:idx_drop_computed" json:"computed_at_ms"`
	UpdatedAt        time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("DROPDNA_CACHE_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := utils.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&DropRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the entry stored under key. A missing key is not an error.
func (c *DBClient) Get(key string) (models.CacheEntry, bool, error) {
	if c == nil || c.DB == nil {
		return models.CacheEntry{}, false, errors.New(errDBClientNil)
	}

	var rec DropRecord
	err := c.DB.Where("cache_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CacheEntry{}, false, nil
	}
	if err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("querying drop %q: %w", key, err)
	}
	return rec.toEntry(), true, nil
}

// Put inserts the entry or overwrites the one stored under the same key.
func (c *DBClient) Put(entry models.CacheEntry) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}

	rec := recordFromEntry(entry)
	err := c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upserting drop %q: %w", entry.Key, err)
	}
	return nil
}

// List returns every entry, most recently computed first.
func (c *DBClient) List() ([]models.CacheEntry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []DropRecord
	if err := c.DB.Order("computed_at_ms DESC").Order("cache_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing drops: %w", err)
	}

	out := make([]models.CacheEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntry())
	}
	return out, nil
}

// DeleteTrack removes every parameter profile stored for trackID.
func (c *DBClient) DeleteTrack(trackID string) (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	res := c.DB.Where("track_id = ?", trackID).Delete(&DropRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting drops for %q: %w", trackID, res.Error)
	}
	return int(res.RowsAffected), nil
}

// Clear removes every entry.
func (c *DBClient) Clear() (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	res := c.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&DropRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("clearing drops: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (c *DBClient) Count() (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var count int64
	if err := c.DB.Model(&DropRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting drops: %w", err)
	}
	return int(count), nil
}

func recordFromEntry(e models.CacheEntry) DropRecord {
	return DropRecord{
		CacheKey:         e.Key,
		TrackID:          e.Result.TrackID,
		LoudnessOffsetDb: e.LoudnessOffsetDb,
		PreviewLengthMs:  e.Result.PreviewLengthMs,
		DropStartMs:      e.Result.DropStartMs,
		Confidence:       e.Result.Confidence,
		Method:           string(e.Result.Method),
		ComputedAtMs:     e.Result.ComputedAtEpochMs,
	}
}

func (r DropRecord) toEntry() models.CacheEntry {
	return models.CacheEntry{
		Key:              r.CacheKey,
		LoudnessOffsetDb: r.LoudnessOffsetDb,
		Result: models.DropResult{
			TrackID:           r.TrackID,
			DropStartMs:       r.DropStartMs,
			Confidence:        r.Confidence,
			Method:            models.Method(r.Method),
			PreviewLengthMs:   r.PreviewLengthMs,
			ComputedAtEpochMs: r.ComputedAtMs,
		},
	}
}
