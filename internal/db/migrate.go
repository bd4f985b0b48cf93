package db

import (
	"fmt"

	"github.com/dubytrack/dubytrack/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// allModels lists every persisted entity.
func allModels() []any {
	return []any{
		&models.User{},
		&models.Profile{},
		&models.FoodItem{},
		&models.FoodLog{},
		&models.WeightLog{},
		&models.RefreshToken{},
	}
}

// ddl defines an index or DDL statement to apply.
type ddl struct {
	name string // Human-readable name for error reporting.
	sql  string // SQL to execute.
}

// sharedDDLs are index statements valid on both dialects.
var sharedDDLs = []ddl{
	{
		name: "idx_food_logs_user_id_occurred_at",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_food_logs_user_id_occurred_at
			ON food_logs (user_id, occurred_at DESC)
		`,
	},
	{
		name: "idx_weight_logs_user_id_date",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_weight_logs_user_id_date
			ON weight_logs (user_id, date DESC)
		`,
	},
	{
		name: "idx_refresh_tokens_user_id_expires_at",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id_expires_at
			ON refresh_tokens (user_id, expires_at)
		`,
	},
}

// migratePostgres applies PostgreSQL-specific schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(allModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	for _, item := range sharedDDLs {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	_ = conn.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error

	// Trigram index speeds the food search substring match; the lowered
	// btree index is the fallback when pg_trgm is unavailable.
	trgmSQL := `
		CREATE INDEX IF NOT EXISTS idx_food_items_name_trgm
		ON food_items USING gin (LOWER(name) gin_trgm_ops)
	`
	lowerSQL := `
		CREATE INDEX IF NOT EXISTS idx_food_items_name_lower
		ON food_items (LOWER(name))
	`
	if errIdx := conn.Exec(trgmSQL).Error; errIdx != nil {
		if errLower := conn.Exec(lowerSQL).Error; errLower != nil {
			return fmt.Errorf("db: create index idx_food_items_name: %w", errLower)
		}
	}

	return nil
}

// migrateSQLite applies SQLite-specific schema updates and indexes.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(allModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	ddls := append(sharedDDLs, ddl{
		name: "idx_food_items_name_lower",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_food_items_name_lower
			ON food_items (LOWER(name))
		`,
	})
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}
