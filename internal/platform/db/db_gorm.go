package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	gmysql "gorm.io/driver/mysql"
	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"users_backend/internal/feature/users/domain/entity"
	"users_backend/internal/platform/config"
)

// BootstrapAdminLogin is the login of the admin record seeded at store
// initialization when absent.
const BootstrapAdminLogin = "Admin"

// PasswordHasher produces the digest stored for the bootstrap admin password.
type PasswordHasher interface {
	Hash(plaintext string) string
}

// OpenDB connects to the configured database, retrying until a deadline.
// DB_DRIVER selects the dialect ("mysql" or "postgres").
func OpenDB(cfg config.Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)
		dialector = gpostgres.Open(dsn)
	default:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		dialector = gmysql.Open(dsn)
	}

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション
		if err := db.AutoMigrate(&entity.User{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}

// SeedAdmin inserts the bootstrap admin record once if it does not exist yet.
// The seeded password equals the login and is expected to be changed
// immediately after first login.
func SeedAdmin(db *gorm.DB, hasher PasswordHasher) error {
	var existing entity.User
	err := db.Where("login = ?", BootstrapAdminLogin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	admin := &entity.User{
		Guid:         uuid.New(),
		Login:        BootstrapAdminLogin,
		PasswordHash: hasher.Hash(BootstrapAdminLogin),
		Name:         BootstrapAdminLogin,
		Admin:        true,
		CreatedOn:    time.Now().UTC(),
		CreatedBy:    "system",
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed bootstrap admin: %w", err)
	}
	return nil
}
