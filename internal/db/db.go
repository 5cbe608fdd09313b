package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const defaultDatabasePath = "data/emberhaus.db"

// Models lists every table owned by the site, in migration and snapshot order.
func Models() []interface{} {
	return []interface{}{
		&JournalPost{},
		&Event{},
		&Ritual{},
		&PageContent{},
		&StandalonePage{},
	}
}

// Init opens the configured database, runs migrations and stores the handle in DB.
// driver is "sqlite" (dsn is a file path) or "mysql" (dsn is a go-sql-driver DSN).
func Init(driver, dsn string, gormLogger logger.Interface) error {
	gdb, err := Open(driver, dsn, gormLogger)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open returns a gorm handle without migrating. Unique violations are translated into
// gorm.ErrDuplicatedKey so services can map them to conflicts.
func Open(driver, dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	cfg := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = defaultDatabasePath
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		return gorm.Open(sqlite.Open(path), cfg)
	case "mysql":
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("mysql dsn is empty")
		}
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate 自动迁移模式，为全部内容模型创建表
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
