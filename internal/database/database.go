package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booklibrary/internal/database/books"
	"github.com/mrlokans/booklibrary/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Warn))
}

// NewQuietDatabase opens the database with SQL logging disabled. The CLI uses
// it so that command output stays machine readable.
func NewQuietDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Silent))
}

func open(dbPath string, gormLogger logger.Interface) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Shelf{},
		&entities.Setting{},
		&entities.AuditEvent{},
		&entities.SyncProgress{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	n, err := books.NewRepository(db).BackfillDedupeKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if n > 0 {
		log.Printf("Backfilled duplicate-detection keys for %d books", n)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
