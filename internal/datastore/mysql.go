package datastore

import (
	"fmt"
	"net"
	"time"

	drivermysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
}

// Open sets up the MySQL database connection and runs migrations.
func (store *MySQLStore) Open() error {
	dsnConfig := drivermysql.NewConfig()
	dsnConfig.User = store.Settings.Output.MySQL.Username
	dsnConfig.Passwd = store.Settings.Output.MySQL.Password
	dsnConfig.Net = "tcp"
	dsnConfig.Addr = net.JoinHostPort(store.Settings.Output.MySQL.Host, store.Settings.Output.MySQL.Port)
	dsnConfig.DBName = store.Settings.Output.MySQL.Database
	dsnConfig.ParseTime = true
	dsnConfig.Loc = time.Local
	dsnConfig.Params = map[string]string{"charset": "utf8mb4"}
	dsn := dsnConfig.FormatDSN()

	newLogger := createGormLogger(store.Settings.Debug)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		getLogger().Error("failed to open MySQL database",
			"host", store.Settings.Output.MySQL.Host,
			"port", store.Settings.Output.MySQL.Port,
			"database", store.Settings.Output.MySQL.Database,
			"error", err)
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", redactDSN(dsn))
}

// Close MySQL database connections
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	sqlDB, err := store.DB.DB()
	if err != nil {
		getLogger().Error("failed to retrieve generic DB object", "error", err)
		return err
	}

	if err := sqlDB.Close(); err != nil {
		getLogger().Error("failed to close MySQL database", "error", err)
		return err
	}

	return nil
}
