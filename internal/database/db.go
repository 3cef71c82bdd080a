// Package database owns the dual-dialect connection handle. The dialect is
// decided once at startup from the URL scheme; everything above this package
// works against the Backend and never branches on dialect itself.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/aquaflow/aquaflow/internal/config"
)

// Backend bundles the shared connection pool with its resolved dialect. It is
// constructed once in cmd/server and passed by reference into repositories.
type Backend struct {
	DB      *sql.DB
	Dialect config.Dialect
}

// Open connects to the configured database, applies pool sizing, and
// verifies the connection with a ping. Connection failure here is fatal to
// the process by design: the caller refuses to start serving.
func Open(cfg config.Config) (*Backend, error) {
	var (
		driver string
		dsn    string
		err    error
	)
	switch cfg.Dialect {
	case config.DialectMySQL:
		driver = "mysql"
		dsn, err = mysqlDSN(cfg.DatabaseURL, cfg.ForceSSL)
	default:
		driver = "pgx"
		dsn = postgresDSN(cfg.DatabaseURL, cfg.ForceSSL)
	}
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &Backend{DB: db, Dialect: cfg.Dialect}, nil
}

// Close releases the pool. Called on SIGINT/SIGTERM shutdown.
func (b *Backend) Close() error { return b.DB.Close() }

// Rebind rewrites ? placeholders to $1..$n for Postgres and leaves MySQL
// queries untouched. Repositories write all SQL with ? placeholders.
func (b *Backend) Rebind(query string) string {
	if b.Dialect != config.DialectPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// ExecContext runs a rebound statement on the shared pool.
func (b *Backend) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return b.DB.ExecContext(ctx, b.Rebind(query), args...)
}

// QueryContext runs a rebound query on the shared pool.
func (b *Backend) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return b.DB.QueryContext(ctx, b.Rebind(query), args...)
}

// QueryRowContext runs a rebound single-row query on the shared pool.
func (b *Backend) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return b.DB.QueryRowContext(ctx, b.Rebind(query), args...)
}

// InsertReturningID executes an INSERT written with ? placeholders and no
// RETURNING clause, and yields the generated id for either dialect: Postgres
// gets " RETURNING id" appended and scans the row, MySQL uses LastInsertId.
func (b *Backend) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if b.Dialect == config.DialectPostgres {
		var id int64
		err := b.DB.QueryRowContext(ctx, b.Rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := b.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IsDuplicate reports whether err is a unique-constraint violation for either
// dialect (MySQL error 1062, Postgres SQLSTATE 23505).
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(strings.ToLower(msg), "duplicate")
}

// postgresDSN passes the URL through to pgx, appending sslmode=require for
// managed cloud hosts when the URL does not already carry one.
func postgresDSN(dbURL string, forceSSL bool) string {
	if !forceSSL || strings.Contains(dbURL, "sslmode=") {
		return dbURL
	}
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + "sslmode=require"
}

// mysqlDSN converts a mysql:// URL into the go-sql-driver DSN form
// user:pass@tcp(host:port)/dbname?parseTime=true&loc=UTC.
func mysqlDSN(dbURL string, forceSSL bool) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("mysql url %q has no host", dbURL)
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	auth := u.User.Username()
	if pass, ok := u.User.Password(); ok && pass != "" {
		auth = auth + ":" + pass
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("mysql url %q has no database name", dbURL)
	}

	params := "charset=utf8mb4&parseTime=true&loc=UTC"
	if forceSSL {
		params += "&tls=true"
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", auth, host, port, name, params), nil
}
