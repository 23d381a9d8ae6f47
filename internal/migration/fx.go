package migration

import (
	"github.com/countrypulse/countrypulse/internal/config"
	countrydomain "github.com/countrypulse/countrypulse/internal/country/domain"
	"github.com/countrypulse/countrypulse/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

// Run applies the schema for the configured dialect and seeds the
// refresh metadata singleton. Postgres uses the embedded migration
// files; other dialects fall back to AutoMigrate plus the
// case-insensitive unique name index the migrations would create.
func Run(conn *gorm.DB, cfg config.Config) error {
	if cfg.DBType == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
	} else {
		if err := conn.AutoMigrate(&countrydomain.Country{}, &countrydomain.RefreshMetadata{}); err != nil {
			return err
		}
		if err := ensureNameIndex(conn, cfg.DBType); err != nil {
			return err
		}
	}

	return seed.EnsureRefreshMetadata(conn)
}

func ensureNameIndex(conn *gorm.DB, dbType string) error {
	if conn.Migrator().HasIndex(&countrydomain.Country{}, "idx_countries_name_ci") {
		return nil
	}

	// mysql cannot index the LOWER(name) expression on this column; its
	// default collation already compares case-insensitively, so a plain
	// prefix index on name is equivalent there.
	stmt := "CREATE UNIQUE INDEX idx_countries_name_ci ON countries (LOWER(name))"
	if dbType == "mysql" {
		stmt = "CREATE UNIQUE INDEX idx_countries_name_ci ON countries (name(191))"
	}
	return conn.Exec(stmt).Error
}
