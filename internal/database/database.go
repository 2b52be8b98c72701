package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/astrovaani/auth-service/internal/configs"
	"github.com/astrovaani/auth-service/internal/database/migrations"
)

type Database struct {
	DB     *sqlx.DB
	config *configs.Config
}

func Connect(cfg *configs.Config) (*Database, error) {
	db, err := sqlx.Open(cfg.SQLDriver(), cfg.SQLDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if cfg.DB.Migrate {
		if err := migrations.Up(db.DB, cfg.SQLDriver()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
	}

	return &Database{DB: db, config: cfg}, nil
}

func (d *Database) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

func (d *Database) HealthCheck(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}
	return d.DB.PingContext(ctx)
}
