// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mdb-sql decodes MDB captures and stores their transcripts in the
// transcript database, or lists the stored sessions.
//
// Usage: mdb-sql [OPTIONS] [FILE1 [FILE2 ...]]
//
// Example:
//
//  $> mdb-sql -db=mdb -create ./session.bin
//  mdb-sql: session.bin: session=0d9c2b3e-... frames=64 blocks=23 chk-err=1
//  $> mdb-sql -db=mdb -list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-lpc/mdb/decode"
	"github.com/go-lpc/mdb/internal/profile"
	"github.com/go-lpc/mdb/internal/report"
	"github.com/go-lpc/mdb/txdb"
)

func main() {
	log.SetPrefix("mdb-sql: ")
	log.SetFlags(0)

	var (
		dbname = flag.String("db", "mdb", "name of the transcript database")
		create = flag.Bool("create", false, "create the database tables")
		list   = flag.Bool("list", false, "list stored sessions")
		cfg    = flag.String("cfg", "", "path to a YAML decoding profile")
		rate   = flag.Float64("rate", 0, "capture sample rate (Hz), overrides the profile")
	)

	flag.Parse()

	db, err := txdb.Open(*dbname)
	if err != nil {
		log.Fatalf("could not open transcript db: %+v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if *create {
		err = db.CreateTables(ctx)
		if err != nil {
			log.Fatalf("could not create tables: %+v", err)
		}
	}

	if *list {
		err = listSessions(ctx, os.Stdout, db)
		if err != nil {
			log.Fatalf("could not list sessions: %+v", err)
		}
		return
	}

	p := profile.Default()
	if *cfg != "" {
		p, err = profile.Load(*cfg)
		if err != nil {
			log.Fatalf("could not load profile: %+v", err)
		}
	}
	if *rate > 0 {
		p.Capture.SampleRate = *rate
	}

	for _, fname := range flag.Args() {
		err = store(ctx, db, fname, p)
		if err != nil {
			log.Fatalf("could not store %q: %+v", fname, err)
		}
	}
}

type transcriptDB interface {
	SaveSession(ctx context.Context, sess txdb.Session, anns []decode.Annotation) (string, error)
	Sessions(ctx context.Context) ([]txdb.Session, error)
	ChecksumErrors(ctx context.Context, id string) ([]decode.Annotation, error)
}

func store(ctx context.Context, db transcriptDB, fname string, p *profile.Profile) error {
	tr, _, err := report.Process(fname, p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	id, err := db.SaveSession(ctx, txdb.Session{
		Created: tr.Created,
		Source:  tr.Source,
		Rate:    tr.Rate,
		Samples: int64(tr.Samples),
		Digest:  tr.Digest,
		Frames:  tr.Frames,
		Blocks:  tr.Blocks,
	}, tr.Annotations)
	if err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}

	bad, err := db.ChecksumErrors(ctx, id)
	if err != nil {
		return fmt.Errorf("could not retrieve checksum errors: %w", err)
	}

	log.Printf(
		"%s: session=%s frames=%d blocks=%d chk-err=%d",
		fname, id, tr.Frames, tr.Blocks, len(bad),
	)
	return nil
}

func listSessions(ctx context.Context, w io.Writer, db transcriptDB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sessions, err := db.Sessions(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "ID\tCREATED\tSOURCE\tRATE\tFRAMES\tBLOCKS\n")
	for _, sess := range sessions {
		fmt.Fprintf(
			tw, "%s\t%s\t%s\t%g\t%d\t%d\n",
			sess.ID, sess.Created.UTC().Format(time.RFC3339),
			sess.Source, sess.Rate, sess.Frames, sess.Blocks,
		)
	}
	return tw.Flush()
}
