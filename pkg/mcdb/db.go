package mcdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/config"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func MakeDSNFromConfig(c config.Configer) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.GetKey("DB_USERNAME"),
		c.GetKey("DB_PASSWORD"),
		c.GetKeyWithDefault("DB_HOST", "127.0.0.1"),
		c.GetKeyWithDefault("DB_PORT", "3306"),
		c.GetKey("DB_DATABASE"))
}

// Dialector picks the gorm driver from DB_CONNECTION. MySQL is used for
// shared deployments, sqlite for a single node and for tests.
func Dialector(c config.Configer) (gorm.Dialector, error) {
	switch conn := c.GetKeyWithDefault("DB_CONNECTION", "sqlite"); conn {
	case "mysql":
		return mysql.Open(MakeDSNFromConfig(c)), nil
	case "sqlite":
		dbPath := c.GetPathKeyWithDefault("DB_SQLITE_PATH", "~/.mcvr/mcvr.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, err
		}
		return sqlite.Open(dbPath), nil
	default:
		return nil, fmt.Errorf("unknown DB_CONNECTION '%s'", conn)
	}
}

const maxDBRetries = 5

// MustConnectToDB will attempt to connect to the database maxDBRetries times. If it isn't successful
// after that number of retries then it will call log.Fatalf(), which will cause the server to exit.
// Between retry attempts it will sleep for 3 seconds.
func MustConnectToDB(c config.Configer) *gorm.DB {
	dialector, err := Dialector(c)
	if err != nil {
		log.Fatalf("Invalid database configuration: %s", err)
	}

	retryCount := 1
	for {
		db, err := Open(dialector)
		switch {
		case err == nil:
			return db
		case retryCount >= maxDBRetries:
			log.Fatalf("Failed to open db (%s): %s", dialector.Name(), err)
		default:
			log.Warnf("Unable to connect to db (attempt %d): %s", retryCount, err)
			retryCount++
			time.Sleep(3 * time.Second)
		}
	}
}

// Open connects with logging silenced and migrates the schema.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&mcmodel.User{},
		&mcmodel.Collection{},
		&mcmodel.Folder{},
		&mcmodel.FolderAccess{},
		&mcmodel.Item{},
		&mcmodel.Upload{},
		&mcmodel.Notification{},
	)
}
