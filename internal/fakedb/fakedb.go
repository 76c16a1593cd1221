// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb holds types to fake an in-memory DB.
//
// Queries return the rows installed by Run. Statements executed through
// Exec, and transaction boundaries, are recorded and may be inspected
// with Statements.
package fakedb // import "github.com/go-lpc/mdb/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
)

var query struct {
	mu   sync.Mutex
	rows Rows
}

var execs struct {
	mu   sync.Mutex
	log  []Statement
	fail string
	id   int64
}

// Statement is a statement executed against the fake DB.
type Statement struct {
	Query string
	Args  []driver.Value
}

// Run installs rows as the result of the queries run by f.
// The statements log is cleared before f is run.
func Run(ctx context.Context, rows Rows, f func(ctx context.Context) error) error {
	query.mu.Lock()
	defer query.mu.Unlock()
	query.rows = rows

	execs.mu.Lock()
	execs.log = nil
	execs.fail = ""
	execs.id = 0
	execs.mu.Unlock()

	return f(ctx)
}

// FailOn makes every statement containing substr fail, until the next Run.
func FailOn(substr string) {
	execs.mu.Lock()
	defer execs.mu.Unlock()
	execs.fail = substr
}

// Statements returns the statements executed since the last Run.
func Statements() []Statement {
	execs.mu.Lock()
	defer execs.mu.Unlock()
	return append([]Statement(nil), execs.log...)
}

func record(q string, args []driver.Value) (int64, error) {
	execs.mu.Lock()
	defer execs.mu.Unlock()
	if execs.fail != "" && strings.Contains(q, execs.fail) {
		return 0, fmt.Errorf("fakedb: statement failed: %q", q)
	}
	execs.log = append(execs.log, Statement{Query: q, Args: args})
	execs.id++
	return execs.id, nil
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

// Open returns a new connection to the database.
func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

// Prepare returns a prepared statement, bound to this connection.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

// Close invalidates and potentially stops any current
// prepared statements and transactions, marking this
// connection as no longer in use.
func (c *Conn) Close() error {
	return nil
}

// Begin starts and returns a new transaction.
//
// Deprecated: Drivers should implement ConnBeginTx instead (or additionally).
func (c *Conn) Begin() (driver.Tx, error) {
	_, err := record("BEGIN", nil)
	if err != nil {
		return nil, err
	}
	return &Tx{}, nil
}

type Tx struct{}

func (tx *Tx) Commit() error {
	_, err := record("COMMIT", nil)
	return err
}

func (tx *Tx) Rollback() error {
	_, err := record("ROLLBACK", nil)
	return err
}

type Stmt struct {
	query string
}

// Close closes the statement.
func (stmt *Stmt) Close() error {
	return nil
}

// NumInput returns the number of placeholder parameters.
// The fake DB does not know, so the sql package does not sanity check
// argument counts.
func (stmt *Stmt) NumInput() int {
	return -1
}

// Exec executes a query that doesn't return rows, such
// as an INSERT or UPDATE.
//
// Deprecated: Drivers should implement StmtExecContext instead (or additionally).
func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	id, err := record(stmt.query, args)
	if err != nil {
		return nil, err
	}
	return Result{ID: id, N: 1}, nil
}

// Query executes a query that may return rows, such as a
// SELECT.
//
// Deprecated: Drivers should implement StmtQueryContext instead (or additionally).
func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return &query.rows, nil
}

// Result is the result of an executed statement.
type Result struct {
	ID int64
	N  int64
}

func (res Result) LastInsertId() (int64, error) { return res.ID, nil }
func (res Result) RowsAffected() (int64, error) { return res.N, nil }

type Rows struct {
	Names  []string
	Values [][]driver.Value
}

// Columns returns the names of the columns. The number of
// columns of the result is inferred from the length of the
// slice.
func (rows *Rows) Columns() []string {
	return rows.Names
}

// Close closes the rows iterator.
func (rows *Rows) Close() error {
	return nil
}

// Next is called to populate the next row of data into
// the provided slice. The provided slice will be the same
// size as the Columns() are wide.
//
// Next should return io.EOF when there are no more rows.
func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Tx     = (*Tx)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Result = (*Result)(nil)
	_ driver.Rows   = (*Rows)(nil)
)
