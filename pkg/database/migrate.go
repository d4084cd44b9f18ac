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

// RunMigrations 将课表库结构迁移到最新版本
// 迁移脚本内嵌在二进制中，服务启动时自动补齐缺失的版本
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("连接迁移目标库失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("构建迁移实例失败: %w", err)
	}

	before, _, _ := m.Version()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("课表库结构已是最新", zap.Uint("schema_version", before))
		return nil
	case err != nil:
		return fmt.Errorf("应用迁移失败: %w", err)
	}

	after, dirty, _ := m.Version()
	if dirty {
		logger.Warn("迁移中断，库结构处于半完成状态", zap.Uint("schema_version", after))
		return nil
	}

	logger.Info("课表库结构迁移完成",
		zap.Uint("from_version", before),
		zap.Uint("schema_version", after))
	return nil
}
