package models

import (
	"fmt"
	"os"
	"path/filepath"

	sqlite "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// InitializeDb opens(or creates) the encrypted sqlite database & runs
// migrations for all jaga models.
func InitializeDb(dbPath, passPhrase string) error {
	var err error

	dsn := fmt.Sprintf("file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096", dbPath, passPhrase)
	db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("InitializeDb: %v", err)
	}

	return autoMigrate()
}

// InitializeTestDb swaps the package db for a throwaway database, so each
// test run starts from a clean slate.
func InitializeTestDb() {
	dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("jaga-test-%v.db", uuid.NewString()))
	if err := InitializeDb(dbPath, "test-passphrase"); err != nil {
		panic(err)
	}
}

func autoMigrate() error {
	return db.AutoMigrate(
		&User{},
		&Contact{},
		&AccountToken{},
		&IncidentLog{},
	)
}
