package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/cityweather/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SessionModel is the GORM model for the lookup_sessions table
type SessionModel struct {
	ID           string `gorm:"column:id;primaryKey;size:64"`
	Status       string `gorm:"column:status;size:16;not null"`
	Message      string `gorm:"column:message;size:512"`
	Reason       string `gorm:"column:reason;size:32"`
	ResultJSON   string `gorm:"column:result;type:text"`
	LoadingUntil int64  `gorm:"column:loading_until;not null"` // unix ms
	UpdatedAtMs  int64  `gorm:"column:updated_at;not null"`    // unix ms
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string {
	return "lookup_sessions"
}

// MySQLStore keeps sessions in MySQL through GORM
type MySQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMySQLStore connects, configures the pool and migrates the sessions table
//
// Parameters:
//   - dsn: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	config := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	if err := db.AutoMigrate(&SessionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sessions table: %w", err)
	}

	return newMySQLStore(db), nil
}

func newMySQLStore(db *gorm.DB) *MySQLStore {
	return &MySQLStore{db: db, now: time.Now}
}

// Get implements Store
func (s *MySQLStore) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	var record SessionModel

	result := s.db.WithContext(ctx).Where("id = ?", id).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return idleSnapshot(), nil
		}
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	snapshot := &models.Snapshot{
		State: models.RequestState{
			Status:  models.Status(record.Status),
			Message: record.Message,
			Reason:  models.FailureReason(record.Reason),
		},
	}
	if record.LoadingUntil > 0 {
		snapshot.LoadingUntil = time.UnixMilli(record.LoadingUntil)
	}
	if record.UpdatedAtMs > 0 {
		snapshot.UpdatedAt = time.UnixMilli(record.UpdatedAtMs)
	}

	if record.ResultJSON != "" {
		var weather models.WeatherResult
		if err := json.Unmarshal([]byte(record.ResultJSON), &weather); err != nil {
			return nil, fmt.Errorf("failed to decode session result: %w", err)
		}
		snapshot.Result = &weather
	}

	return snapshot, nil
}

// BeginLoading implements Store with an insert-if-absent followed by a conditional update;
// the WHERE clause is the compare-and-set
func (s *MySQLStore) BeginLoading(ctx context.Context, id string, until time.Time) (bool, error) {
	now := s.now().UnixMilli()
	db := s.db.WithContext(ctx)

	seed := SessionModel{ID: id, Status: string(models.StatusIdle), UpdatedAtMs: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return false, fmt.Errorf("failed to create session row: %w", err)
	}

	result := db.Model(&SessionModel{}).
		Where("id = ? AND (status <> ? OR loading_until <= ?)", id, string(models.StatusLoading), now).
		Updates(map[string]interface{}{
			"status":        string(models.StatusLoading),
			"message":       "",
			"reason":        "",
			"loading_until": until.UnixMilli(),
			"updated_at":    now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to begin loading: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// Reject implements Store with the same insert-if-absent and conditional update as BeginLoading
func (s *MySQLStore) Reject(ctx context.Context, id string, state models.RequestState) (bool, error) {
	now := s.now().UnixMilli()
	db := s.db.WithContext(ctx)

	seed := SessionModel{ID: id, Status: string(models.StatusIdle), UpdatedAtMs: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return false, fmt.Errorf("failed to create session row: %w", err)
	}

	result := db.Model(&SessionModel{}).
		Where("id = ? AND (status <> ? OR loading_until <= ?)", id, string(models.StatusLoading), now).
		Updates(map[string]interface{}{
			"status":        string(state.Status),
			"message":       state.Message,
			"reason":        string(state.Reason),
			"loading_until": 0,
			"updated_at":    now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to record rejection: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// Complete implements Store as an upsert; the result column is only overwritten when a result is given
func (s *MySQLStore) Complete(ctx context.Context, id string, state models.RequestState, weather *models.WeatherResult) error {
	record := SessionModel{
		ID:          id,
		Status:      string(state.Status),
		Message:     state.Message,
		Reason:      string(state.Reason),
		UpdatedAtMs: s.now().UnixMilli(),
	}
	columns := []string{"status", "message", "reason", "loading_until", "updated_at"}

	if weather != nil {
		data, err := json.Marshal(weather)
		if err != nil {
			return fmt.Errorf("failed to encode session result: %w", err)
		}
		record.ResultJSON = string(data)
		columns = append(columns, "result")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
