package event_service

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/varity-labs/varity-app-store/models"
)

// EventRecord archived fact
type EventRecord struct {
	ID        uint   `gorm:"primarykey"`
	EventID   string `gorm:"uniqueIndex;size:36"`
	Type      string `gorm:"index;size:32"`
	AppID     uint64 `gorm:"index"`
	Actor     string `gorm:"size:128"`
	Payload   string `gorm:"type:text"`
	Timestamp int64  `gorm:"index"`
	CreatedAt time.Time
}

func (EventRecord) TableName() string {
	return "tb_app_events"
}

// ArchiveSink appends every fact to a SQL table for indexers and audits
type ArchiveSink struct {
	Db *gorm.DB
}

// NewArchiveSink opens (and migrates) the sqlite archive at dsn
func NewArchiveSink(dsn string) (*ArchiveSink, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, err
	}
	log.Info("event archive ready", "dsn", dsn)
	return &ArchiveSink{Db: db}, nil
}

func (a *ArchiveSink) Name() string { return "archive" }

func (a *ArchiveSink) Publish(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}
	return a.Db.WithContext(ctx).Create(&EventRecord{
		EventID:   ev.ID,
		Type:      string(ev.Type),
		AppID:     ev.AppID,
		Actor:     string(ev.Actor),
		Payload:   string(payload),
		Timestamp: ev.Timestamp,
	}).Error
}

// ListByApp archived facts of one app, oldest first. limit <= 0 means no limit.
func (a *ArchiveSink) ListByApp(ctx context.Context, appID uint64, limit int) ([]models.Event, error) {
	records := make([]EventRecord, 0, 16)
	q := a.Db.WithContext(ctx).Where("app_id = ?", appID).Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(records))
	for _, r := range records {
		ev := models.Event{
			ID:        r.EventID,
			Type:      models.EventType(r.Type),
			AppID:     r.AppID,
			Actor:     models.Account(r.Actor),
			Timestamp: r.Timestamp,
		}
		if r.Payload != "" && r.Payload != "null" {
			if err := json.Unmarshal([]byte(r.Payload), &ev.Payload); err != nil {
				return nil, err
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

func (a *ArchiveSink) Close() error {
	sqlDB, err := a.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
