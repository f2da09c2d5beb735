package database

import (
	"fmt"
	"regexp"
	"time"

	"enquiry-app/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var validDBName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func getDSNAndDialector(dbName string) (string, gorm.Dialector, error) {
	switch config.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			config.DBHost, config.DBUser, config.DBPassword, dbName, config.DBPort)
		return dsn, postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort, dbName)
		return dsn, mysql.Open(dsn), nil
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort, dbName)
		return dsn, sqlserver.Open(dsn), nil
	case "sqlite":
		dsn := dbName + ".db?_foreign_keys=on"
		return dsn, sqlite.Open(dsn), nil
	default:
		return "", nil, fmt.Errorf("unsupported DB_DRIVER: %s", config.DBDriver)
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Open connects to the application database.
func Open(dbName string) (*gorm.DB, error) {
	_, dialector, err := getDSNAndDialector(dbName)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(gormLogLevel(config.DBLogLevel)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if config.DBDriver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// EnsureDatabaseExists creates dbName on the server when missing. sqlite
// creates its file on open.
func EnsureDatabaseExists(log *zap.Logger, dbName string) error {
	if !validDBName.MatchString(dbName) {
		return fmt.Errorf("invalid database name %q", dbName)
	}

	var (
		dialector gorm.Dialector
		create    string
	)
	switch config.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=postgres port=%s sslmode=disable",
			config.DBHost, config.DBUser, config.DBPassword, config.DBPort)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/?charset=utf8mb4&parseTime=True&loc=Local",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort)
		dialector = mysql.Open(dsn)
		create = "CREATE DATABASE IF NOT EXISTS " + dbName
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=master",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort)
		dialector = sqlserver.Open(dsn)
		create = "IF DB_ID('" + dbName + "') IS NULL CREATE DATABASE " + dbName
	case "sqlite":
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", config.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("connect to DB server: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if config.DBDriver == "postgres" {
		var exists bool
		if err := db.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", dbName).Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			return nil
		}
		create = "CREATE DATABASE " + dbName
	}

	if err := db.Exec(create).Error; err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", config.DBDriver), zap.String("name", dbName))
	return nil
}
