package store

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// visitRecord is the database shape of a Visit. The mode-change list is kept
// as an embedded JSON document; it is only ever read and written whole.
type visitRecord struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Phone       string
	ModeChanges string
}

func (visitRecord) TableName() string { return "visits" }

// overrideRecord is one late-checkout override row.
type overrideRecord struct {
	ReservationID string `gorm:"primaryKey"`
	CheckoutAt    time.Time
}

func (overrideRecord) TableName() string { return "late_checkouts" }

// databaseStore persists visits and overrides through GORM.
type databaseStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func newDatabaseStore(cfg DatabaseConfig, logger *zap.Logger) (*databaseStore, error) {
	// Suppress GORM logging; the application logger reports failures.
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Name), gormConfig)
	case "mysql":
		timeout := cfg.TimeoutSeconds
		if timeout <= 0 {
			timeout = 30
		}
		userInfo := url.UserPassword(cfg.User, cfg.Password).String()
		dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
			userInfo, cfg.Host, cfg.Port, cfg.Name, timeout, timeout, timeout)
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&visitRecord{}, &overrideRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store schema: %w", err)
	}

	return &databaseStore{db: db, logger: logger}, nil
}

func (s *databaseStore) Visits() ([]Visit, error) {
	var records []visitRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}

	visits := make([]Visit, 0, len(records))
	for _, r := range records {
		var changes []ModeChange
		if r.ModeChanges != "" {
			if err := json.Unmarshal([]byte(r.ModeChanges), &changes); err != nil {
				// One bad row should not hide the rest of the list.
				s.logger.Error("Skipping visit with malformed mode changes",
					zap.String("id", r.ID), zap.Error(err))
				continue
			}
		}
		visits = append(visits, Visit{
			ID:          r.ID,
			Name:        r.Name,
			Phone:       r.Phone,
			ModeChanges: changes,
		})
	}
	return visits, nil
}

func (s *databaseStore) AddVisit(v Visit) error {
	changes, err := json.Marshal(v.ModeChanges)
	if err != nil {
		return fmt.Errorf("failed to marshal mode changes: %w", err)
	}
	record := visitRecord{
		ID:          v.ID,
		Name:        v.Name,
		Phone:       v.Phone,
		ModeChanges: string(changes),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to persist visit: %w", err)
	}
	return nil
}

func (s *databaseStore) DeleteVisit(id string) error {
	result := s.db.Delete(&visitRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete visit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *databaseStore) Overrides() (map[string]time.Time, error) {
	var records []overrideRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	overrides := make(map[string]time.Time, len(records))
	for _, r := range records {
		overrides[r.ReservationID] = r.CheckoutAt
	}
	return overrides, nil
}

func (s *databaseStore) SetOverride(id string, t time.Time) error {
	record := overrideRecord{ReservationID: id, CheckoutAt: t}
	if err := s.db.Save(&record).Error; err != nil {
		return fmt.Errorf("failed to persist override: %w", err)
	}
	return nil
}

func (s *databaseStore) DeleteOverride(id string) error {
	if err := s.db.Delete(&overrideRecord{}, "reservation_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	return nil
}

func (s *databaseStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
