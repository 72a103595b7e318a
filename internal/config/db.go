package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN builds the MySQL DSN unless DB_DSN was given verbatim.
func (e Env) DSN() string {
	if e.DBDSN != "" {
		return e.DBDSN
	}
	cfg := mysql.NewConfig()
	cfg.User = e.DBUser
	cfg.Passwd = e.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = e.DBHost + ":" + e.DBPort
	cfg.DBName = e.DBName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// OpenDB opens the connection pool and verifies it with a ping.
func OpenDB(env Env) (*sql.DB, error) {
	db, err := sql.Open("mysql", env.DSN())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	log.Printf("connected to MySQL database %q", env.DBName)
	return db, nil
}

// PingDB is used by the db-check endpoint.
func PingDB(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
