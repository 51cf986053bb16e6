package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/shopdash/internal/repo"
)

type sessionEntry struct {
	Profile   string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (sessionEntry) TableName() string { return "session_entries" }

// SQLite stores fields as rows of session_entries(profile, key, value).
type SQLite struct {
	repo.Base
	profile string
}

// NewSQLite migrates the session table on open.
func NewSQLite(ctx context.Context, db *gorm.DB, profile string) (*SQLite, error) {
	if db == nil {
		return nil, errors.New("sqlite connection required")
	}
	if profile == "" {
		profile = "default"
	}
	if err := db.WithContext(ctx).AutoMigrate(&sessionEntry{}); err != nil {
		return nil, fmt.Errorf("migrating session table: %w", err)
	}
	return &SQLite{Base: repo.NewBase(db), profile: profile}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var entry sessionEntry
	err := s.Scoped(ctx, map[string]any{"profile": s.profile, "key": key}).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	entry := sessionEntry{Profile: s.profile, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *SQLite) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.Scoped(ctx, map[string]any{"profile": s.profile, "key": keys}).
		Delete(&sessionEntry{}).Error
}
