package db

import (
	"context"
	"errors"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// sqliteFlags open the blog database read-only. The file must already exist.
const sqliteFlags = sqlite.OpenReadOnly | sqlite.OpenURI

var errPoolClosed = errors.New("pool closed")

// SQLitePool is a Pool over a local SQLite file, used for development and tests.
type SQLitePool struct {
	pool  *sqlitex.Pool
	size  int
	usage usage
}

// NewSQLitePool opens a pool of at most size connections to the database at path.
func NewSQLitePool(path string, size int) (*SQLitePool, error) {
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		Flags:    sqliteFlags,
		PoolSize: size,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite pool: %w", err)
	}
	return &SQLitePool{pool: pool, size: size}, nil
}

func (p *SQLitePool) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	conn := p.pool.Get(ctx)
	if conn == nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("acquire connection: %w", err)
		}
		return nil, fmt.Errorf("acquire connection: %w", errPoolClosed)
	}
	p.usage.acquire()
	defer func() {
		conn.SetInterrupt(nil)
		p.usage.release()
		p.pool.Put(conn)
	}()
	conn.SetInterrupt(ctx.Done())

	result := Rows{}
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			result = append(result, sqliteRow(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	return result, nil
}

func sqliteRow(stmt *sqlite.Stmt) Row {
	n := stmt.ColumnCount()
	columns := make([]string, n)
	values := make([]any, n)
	for i := 0; i < n; i++ {
		columns[i] = stmt.ColumnName(i)
		switch stmt.ColumnType(i) {
		case sqlite.TypeInteger:
			values[i] = stmt.ColumnInt64(i)
		case sqlite.TypeFloat:
			values[i] = stmt.ColumnFloat(i)
		case sqlite.TypeText:
			values[i] = stmt.ColumnText(i)
		case sqlite.TypeBlob:
			buf := make([]byte, stmt.ColumnLen(i))
			stmt.ColumnBytes(i, buf)
			values[i] = string(buf)
		default:
			values[i] = nil
		}
	}
	return NewRow(columns, values)
}

func (p *SQLitePool) Stats() Stats {
	inUse, peak := p.usage.snapshot()
	return Stats{MaxOpen: p.size, InUse: inUse, PeakInUse: peak}
}

func (p *SQLitePool) Close() error { return p.pool.Close() }

// CreateSchema creates the blog tables in the database at path, creating the
// file if needed. With fixture set it also inserts the sample blog.
func CreateSchema(path string, fixture bool) error {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenURI)
	if err != nil {
		return fmt.Errorf("create database %s: %w", path, err)
	}
	defer conn.Close()

	script := Schema
	if fixture {
		script += "\n" + Fixture
	}
	// BEGIN TRANSACTION and COMMIT is implicitly done by sqlitex.ExecScript.
	if err := sqlitex.ExecScript(conn, script); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func probeSQLite(ctx context.Context, path string) error {
	conn, err := sqlite.OpenConn(path, sqliteFlags)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetInterrupt(ctx.Done())
	return sqlitex.Execute(conn, "PRAGMA schema_version;", nil)
}
