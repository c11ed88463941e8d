// Package db stores network documents in SQL databases: MySQL and Postgres
// through gorm, SQLite through database/sql.
package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// NetworkDocument is one stored network document.
type NetworkDocument struct {
	Name      string `gorm:"primaryKey;size:255"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// GormStore is a document store backed by MySQL or Postgres.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to driver ("mysql" or "postgres") and migrates the
// documents table. A missing MySQL database is created.
func OpenGorm(driver, dsn string) (*GormStore, error) {
	var open func(string) gorm.Dialector
	switch driver {
	case DriverMySQL:
		if dsn == "" {
			dsn = MySQLDSNFromEnv()
		}
		open = mysql.Open
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres store needs a dsn")
		}
		open = postgres.Open
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(open(dsn), cfg)
	if err != nil && driver == DriverMySQL && isUnknownDatabase(err) {
		if cerr := createDatabase(dsn); cerr != nil {
			return nil, fmt.Errorf("create database failed: %w", cerr)
		}
		db, err = gorm.Open(open(dsn), cfg)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(5)
	if err := db.AutoMigrate(&NetworkDocument{}); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return NewGormStore(db), nil
}

// NewGormStore wraps an existing connection. The caller migrates.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, name string) ([]byte, error) {
	var doc NetworkDocument
	err := s.db.WithContext(ctx).First(&doc, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (s *GormStore) Save(ctx context.Context, name string, data []byte) error {
	doc := NetworkDocument{Name: name, Data: data}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
}

func (s *GormStore) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&NetworkDocument{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
