// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package txdb stores decoded MDB transcripts in a MySQL database.
package txdb // import "github.com/go-lpc/mdb/txdb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-lpc/mdb/decode"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to store and retrieve decoded
// transcripts.
type DB struct {
	db   *sql.DB
	name string
}

// Session describes one decoded capture.
type Session struct {
	ID      string
	Created time.Time
	Source  string  // capture file name
	Rate    float64 // sample rate, in Hz
	Samples int64
	Digest  string // hex-encoded SHA-256 of the capture file
	Frames  int
	Blocks  int
}

// Open opens a connection to the transcript database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("txdb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("txdb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("txdb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          CHAR(36) NOT NULL PRIMARY KEY,
	created     DATETIME NOT NULL,
	source      VARCHAR(255) NOT NULL,
	rate        DOUBLE NOT NULL,
	samples     BIGINT NOT NULL,
	digest      CHAR(64) NOT NULL,
	frames      INT NOT NULL,
	blocks      INT NOT NULL
);
CREATE TABLE IF NOT EXISTS annotations (
	session     CHAR(36) NOT NULL,
	idx         INT NOT NULL,
	kind        TINYINT UNSIGNED NOT NULL,
	beg         BIGINT NOT NULL,
	end         BIGINT NOT NULL,
	category    TINYINT UNSIGNED NOT NULL,
	field       TINYINT UNSIGNED NOT NULL,
	value       TINYINT UNSIGNED NOT NULL,
	width       TINYINT UNSIGNED NOT NULL,
	label       VARCHAR(255) NOT NULL,
	PRIMARY KEY (session, idx)
);
`

// CreateTables creates the sessions and annotations tables, if needed.
func (db *DB) CreateTables(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, stmt := range splitStmts(schema) {
		_, err := db.db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("txdb: could not create tables: %w", err)
		}
	}
	return nil
}

// SaveSession stores the session and its annotations in a single
// transaction and returns the session ID.
// A new ID is generated when sess.ID is empty.
func (db *DB) SaveSession(ctx context.Context, sess Session, anns []decode.Annotation) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.Created.IsZero() {
		sess.Created = time.Now().UTC()
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("txdb: could not start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO sessions (id, created, source, rate, samples, digest, frames, blocks) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		sess.ID, sess.Created, sess.Source, sess.Rate, sess.Samples,
		sess.Digest, sess.Frames, sess.Blocks,
	)
	if err != nil {
		return "", fmt.Errorf("txdb: could not insert session %q: %w", sess.ID, err)
	}

	for i, ann := range anns {
		_, err = tx.ExecContext(
			ctx,
			"INSERT INTO annotations (session, idx, kind, beg, end, category, field, value, width, label) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			sess.ID, i, uint8(ann.Kind), ann.Start, ann.End,
			uint8(ann.Category), uint8(ann.Field), ann.Value, ann.Width, ann.Label,
		)
		if err != nil {
			return "", fmt.Errorf("txdb: could not insert annotation %d of session %q: %w", i, sess.ID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", fmt.Errorf("txdb: could not commit session %q: %w", sess.ID, err)
	}

	return sess.ID, nil
}

// Sessions returns all the stored sessions, most recent first.
func (db *DB) Sessions(ctx context.Context) ([]Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sessions []Session
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT id, created, source, rate, samples, digest, frames, blocks FROM sessions ORDER BY created DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("txdb: could not query sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sess Session
		err = rows.Scan(
			&sess.ID, &sess.Created, &sess.Source, &sess.Rate,
			&sess.Samples, &sess.Digest, &sess.Frames, &sess.Blocks,
		)
		if err != nil {
			return sessions, fmt.Errorf("txdb: could not scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return sessions, fmt.Errorf("txdb: could not scan db for sessions: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return sessions, fmt.Errorf("txdb: context error while retrieving sessions: %w", err)
	}

	return sessions, nil
}

// Annotations returns the annotations of the session id, in transcript order.
func (db *DB) Annotations(ctx context.Context, id string) ([]decode.Annotation, error) {
	return db.annotations(
		ctx,
		"SELECT kind, beg, end, category, field, value, width, label FROM annotations WHERE session=? ORDER BY idx",
		id,
	)
}

// ChecksumErrors returns the failed checksum annotations of the session id.
func (db *DB) ChecksumErrors(ctx context.Context, id string) ([]decode.Annotation, error) {
	return db.annotations(
		ctx,
		"SELECT kind, beg, end, category, field, value, width, label FROM annotations WHERE session=? AND field=? AND category=? ORDER BY idx",
		id, uint8(decode.FieldChecksum), uint8(decode.Error),
	)
}

func (db *DB) annotations(ctx context.Context, query string, args ...interface{}) ([]decode.Annotation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var anns []decode.Annotation
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("txdb: could not query annotations: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var (
			ann            decode.Annotation
			kind, cat, fld uint8
		)
		err = rows.Scan(
			&kind, &ann.Start, &ann.End, &cat, &fld,
			&ann.Value, &ann.Width, &ann.Label,
		)
		if err != nil {
			return anns, fmt.Errorf("txdb: could not scan row %d for annotations: %w", i, err)
		}
		i++
		ann.Kind = decode.Kind(kind)
		ann.Category = decode.Category(cat)
		ann.Field = decode.Field(fld)
		anns = append(anns, ann)
	}

	if err := rows.Err(); err != nil {
		return anns, fmt.Errorf("txdb: could not scan db for annotations: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return anns, fmt.Errorf("txdb: context error while retrieving annotations: %w", err)
	}

	return anns, nil
}
