package db

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"

	"codefossils/logger"
)

// DB is the PostgreSQL-backed repository store.
type DB struct {
	conn *sqlx.DB
	// Prepared statements cache
	stmtCache struct {
		sync.RWMutex
		statements map[string]*sqlx.Stmt
	}
}

// safeLogInfo safely logs info messages, falling back to standard log if logger is not initialized
func safeLogInfo(msg string, fields ...zap.Field) {
	if logger.GetLogger() != nil {
		logger.Info(msg, fields...)
	} else {
		log.Printf("%s", msg)
	}
}

// New connects to databaseURL and applies pool settings from DB_MAX_OPEN_CONNS,
// DB_MAX_IDLE_CONNS and DB_CONN_MAX_LIFETIME.
func New(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: database URL cannot be empty", ErrInvalidInput)
	}

	safeLogInfo("Connecting to database")
	conn, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	maxOpenConns := intSetting("DB_MAX_OPEN_CONNS", 25)
	maxIdleConns := intSetting("DB_MAX_IDLE_CONNS", 25)
	connMaxLifetime := 5 * time.Minute
	if val := viper.GetString("DB_CONN_MAX_LIFETIME"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			connMaxLifetime = parsed
		}
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	safeLogInfo("Database connection established",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return NewFromConn(conn), nil
}

// NewFromConn wraps an existing connection.
func NewFromConn(conn *sqlx.DB) *DB {
	database := &DB{conn: conn}
	database.stmtCache.statements = make(map[string]*sqlx.Stmt)
	return database
}

func intSetting(key string, def int) int {
	if !viper.IsSet(key) {
		return def
	}
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return def
}

// getStmt returns a prepared statement from cache or creates a new one
func (db *DB) getStmt(ctx context.Context, query string) (*sqlx.Stmt, error) {
	db.stmtCache.RLock()
	stmt, exists := db.stmtCache.statements[query]
	db.stmtCache.RUnlock()

	if exists {
		return stmt, nil
	}

	db.stmtCache.Lock()
	defer db.stmtCache.Unlock()

	if stmt, exists = db.stmtCache.statements[query]; exists {
		return stmt, nil
	}

	stmt, err := db.conn.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	db.stmtCache.statements[query] = stmt
	return stmt, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}
	return nil
}

// Close releases cached statements and the connection pool.
func (db *DB) Close() error {
	db.stmtCache.Lock()
	for _, stmt := range db.stmtCache.statements {
		stmt.Close()
	}
	db.stmtCache.statements = make(map[string]*sqlx.Stmt)
	db.stmtCache.Unlock()

	return db.conn.Close()
}
