// Package sqlstore implements store.Store on gorm with the SQLite driver.
// Relationship sets live in join tables keyed by both ids, so adding a
// member twice is a no-op.
package sqlstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SergeyParamoshkin/realworld/internal/store"
)

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Bio          string
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

// followRow puts FollowerID in the follows set of UserID.
type followRow struct {
	UserID     string `gorm:"primaryKey;size:36"`
	FollowerID string `gorm:"primaryKey;size:36;index"`
	CreatedAt  time.Time
}

func (followRow) TableName() string { return "follows" }

type articleRow struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Slug        string    `gorm:"index;not null"`
	Title       string    `gorm:"index;not null"`
	Description string    `gorm:"not null"`
	Body        string    `gorm:"not null"`
	AuthorID    string    `gorm:"index;size:36;not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (articleRow) TableName() string { return "articles" }

type articleTagRow struct {
	ArticleID string `gorm:"primaryKey;size:36"`
	Position  int    `gorm:"primaryKey"`
	Tag       string `gorm:"index;not null"`
}

func (articleTagRow) TableName() string { return "article_tags" }

type favoriteRow struct {
	ArticleID string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

func (favoriteRow) TableName() string { return "favorites" }

type commentRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Body      string    `gorm:"not null"`
	ArticleID string    `gorm:"index;size:36;not null"`
	AuthorID  string    `gorm:"size:36;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (commentRow) TableName() string { return "comments" }

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// OpenFile opens (creating if needed) the database file at dbPath.
func OpenFile(dbPath string, debug bool) (*Store, error) {
	if err := os.MkdirAll(path.Dir(dbPath), fs.ModePerm); err != nil {
		return nil, err
	}

	return Open(dbPath+"?cache=shared&_journal_mode=WAL&_synchronous=NORMAL", debug)
}

// Open opens the SQLite database named by dsn and migrates the schema.
func Open(dsn string, debug bool) (*Store, error) {
	var gormLogger logger.Interface
	if debug {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}

	db, err := gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection also keeps in-memory
	// databases alive for the life of the store.
	sqlDB.SetMaxOpenConns(1)

	if _, err = sqlDB.Exec("PRAGMA temp_store = MEMORY;"); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	models := []interface{}{
		&userRow{},
		&followRow{},
		&articleRow{},
		&articleTagRow{},
		&favoriteRow{},
		&commentRow{},
	}
	for _, m := range models {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto migrate %T: %w", m, err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}

	return err
}

func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrConflict
	}

	return err
}
