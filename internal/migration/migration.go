package migration

import (
    "embed"
    "errors"
    "fmt"

    "github.com/golang-migrate/migrate/v4"
    migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
    "github.com/golang-migrate/migrate/v4/source/iofs"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Up applies the embedded schema migrations through the pool.
func Up(pool *pgxpool.Pool) error {
    if pool == nil {
        return errors.New("migration database pool is required")
    }

    source, err := iofs.New(embeddedMigrations, "migrations")
    if err != nil {
        return fmt.Errorf("create migration source: %w", err)
    }

    db := stdlib.OpenDBFromPool(pool)
    defer db.Close()

    driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
    if err != nil {
        return fmt.Errorf("create migration driver: %w", err)
    }

    migrator, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
    if err != nil {
        return fmt.Errorf("create migrator: %w", err)
    }

    if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
        return fmt.Errorf("apply migrations: %w", err)
    }
    return nil
}
