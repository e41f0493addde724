package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/cblogserver/backend/internal/config"
)

const (
	defaultMySQLPort  = "3306"
	mysqlDialTimeout  = 5 * time.Second
	mysqlConnLifetime = 3 * time.Minute
	mysqlMaxIdleConns = 10
)

// DSN builds the MySQL data source name for a validated database configuration.
func DSN(d config.Database) string {
	c := mysql.NewConfig()
	c.User = d.User
	c.Passwd = d.Pass
	c.Net = "tcp"
	c.Addr = mysqlAddr(d.Hostname)
	c.DBName = d.Database
	c.ParseTime = true
	c.Timeout = mysqlDialTimeout
	return c.FormatDSN()
}

func mysqlAddr(hostname string) string {
	if _, _, err := net.SplitHostPort(hostname); err == nil {
		return hostname
	}
	return net.JoinHostPort(hostname, defaultMySQLPort)
}

// MySQLPool is a Pool backed by database/sql.
type MySQLPool struct {
	db    *sqlx.DB
	usage usage
}

// NewMySQLPool configures a pool for d without connecting.
func NewMySQLPool(d config.Database) (*MySQLPool, error) {
	db, err := sqlx.Open("mysql", DSN(d))
	if err != nil {
		return nil, fmt.Errorf("open mysql pool: %w", err)
	}
	return newMySQLPool(db), nil
}

func newMySQLPool(db *sqlx.DB) *MySQLPool {
	db.SetMaxOpenConns(MaxConnections)
	db.SetMaxIdleConns(mysqlMaxIdleConns)
	db.SetConnMaxLifetime(mysqlConnLifetime)
	return &MySQLPool{db: db}
}

func (p *MySQLPool) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	conn, err := p.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	p.usage.acquire()
	defer func() {
		p.usage.release()
		_ = conn.Close()
	}()

	rows, err := conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := Rows{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i := range values {
			values[i] = mysqlValue(types[i].DatabaseTypeName(), values[i])
		}
		result = append(result, NewRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return result, nil
}

// mysqlValue decodes numbers that the text protocol delivers as bytes.
// Queries without arguments are not prepared, so COUNT(*) arrives as text.
func mysqlValue(typeName string, value any) any {
	raw, ok := value.([]byte)
	if !ok {
		return normalize(value)
	}
	switch typeName {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT", "YEAR":
		if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return n
		}
	case "UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED INT", "UNSIGNED BIGINT":
		if n, err := strconv.ParseUint(string(raw), 10, 64); err == nil {
			return n
		}
	case "DECIMAL", "FLOAT", "DOUBLE":
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return f
		}
	}
	return normalize(value)
}

func (p *MySQLPool) Stats() Stats {
	s := p.db.Stats()
	inUse, peak := p.usage.snapshot()
	return Stats{
		MaxOpen:   s.MaxOpenConnections,
		Open:      s.OpenConnections,
		InUse:     inUse,
		PeakInUse: peak,
		WaitCount: s.WaitCount,
	}
}

func (p *MySQLPool) Close() error { return p.db.Close() }
