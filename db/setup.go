package db

import (
	"github.com/courier-dev/courier/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

// ConnectSQLite opens a sqlite database at the given DSN. Used by tests; the
// schema and constraints are identical to the postgres deployment.
func ConnectSQLite(dsn string) error {
	var err error

	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.AllowedContact{},
		&models.Message{},
		&models.Notification{},
		&models.PasswordReset{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
