package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate 把考勤库 schema 升级到最新版本，已是最新时为空操作
func Migrate(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建 postgres 迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移失败: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("数据库 schema 已是最新")
	case err != nil:
		return fmt.Errorf("应用迁移失败: %w", err)
	}

	if version, dirty, verr := m.Version(); verr == nil {
		if dirty {
			logger.Warn("迁移处于 dirty 状态，需人工介入", zap.Uint("version", version))
		} else {
			logger.Info("数据库迁移就绪", zap.Uint("version", version))
		}
	}

	return nil
}
