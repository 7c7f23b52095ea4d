package drafts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/klauspost/compress/gzip"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type draftRow struct {
	Key       string `gorm:"primaryKey;column:key"`
	Body      []byte `gorm:"column:body"`
	UpdatedAt time.Time
}

func (draftRow) TableName() string {
	return "drafts"
}

// SQLite is a Store backed by a local SQLite database. Draft bodies are
// gzip-compressed at rest.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) a SQLite-backed store at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open drafts database: %w", err)
	}
	if err := db.AutoMigrate(&draftRow{}); err != nil {
		return nil, fmt.Errorf("migrate drafts schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row draftRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load draft %s: %w", key, err)
	}

	body, err := decompress(row.Body)
	if err != nil {
		return nil, false, fmt.Errorf("decompress draft %s: %w", key, err)
	}
	return body, true, nil
}

// Put implements Store.
func (s *SQLite) Put(ctx context.Context, key string, content []byte) error {
	body, err := compress(content)
	if err != nil {
		return fmt.Errorf("compress draft %s: %w", key, err)
	}

	row := draftRow{Key: key, Body: body, UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store draft %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&draftRow{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("delete draft %s: %w", key, err)
	}
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
