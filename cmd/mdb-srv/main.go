// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mdb-srv starts a TDAQ process decoding MDB captures.
//
// The /config command carries the path of the capture to decode,
// /start decodes it and the JSON transcript is published on the
// /annotations output.
//
// The MDB_SRV_CONFIG environment variable may point at a YAML profile
// holding the decoder settings, the prometheus endpoint address and the
// rotating log file configuration.
package main // import "github.com/go-lpc/mdb/cmd/mdb-srv"

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/mdb/internal/metrics"
	"github.com/go-lpc/mdb/internal/profile"
	"github.com/go-lpc/mdb/internal/report"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cmd := flags.New()

	p, err := loadProfile(os.Getenv("MDB_SRV_CONFIG"))
	if err != nil {
		log.Panicf("could not load profile: %+v", err)
	}

	stdout := logWriter(os.Stdout, p)
	if rot, ok := stdout.(rotatingWriter); ok {
		defer rot.Close()
	}

	dev := newServer(p)
	go dev.serveMetrics(p.Server.Metrics)

	srv := tdaq.New(cmd, stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/annotations", dev.annotations)

	srv.RunHandle(dev.run)

	err = srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

func loadProfile(fname string) (*profile.Profile, error) {
	if fname == "" {
		return profile.Default(), nil
	}
	return profile.Load(fname)
}

type rotatingWriter struct {
	io.Writer
	rot *lumberjack.Logger
}

func (w rotatingWriter) Close() error { return w.rot.Close() }

// logWriter tees w into the profile's rotating log file, if any.
func logWriter(w io.Writer, p *profile.Profile) io.Writer {
	cfg := p.Server
	if cfg.LogFile == "" {
		return w
	}
	rot := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxAge:     cfg.LogMaxAgeDays,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
	}
	return rotatingWriter{Writer: io.MultiWriter(w, rot), rot: rot}
}

// queueSize is the number of transcripts waiting for the /annotations output.
const queueSize = 16

type server struct {
	p   *profile.Profile
	mon *metrics.Metrics

	mu    sync.Mutex
	fname string
	n     int
	data  chan []byte
}

func newServer(p *profile.Profile) *server {
	return &server{
		p:    p,
		mon:  metrics.New(),
		data: make(chan []byte, queueSize),
	}
}

func (dev *server) serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", dev.mon.Handler())
	err := http.ListenAndServe(addr, mux)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("could not serve metrics on %q: %+v", addr, err)
	}
}

func (dev *server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	fname := dec.ReadStr()
	if err := dec.Err(); err != nil {
		ctx.Msg.Errorf("could not decode /config request: %+v", err)
		return fmt.Errorf("could not decode /config request: %w", err)
	}

	err := dev.configure(fname)
	if err != nil {
		ctx.Msg.Errorf("%+v", err)
		return err
	}
	ctx.Msg.Infof("capture: %q", fname)
	return nil
}

func (dev *server) configure(fname string) error {
	if fname == "" {
		return fmt.Errorf("empty capture file name")
	}
	_, err := os.Stat(fname)
	if err != nil {
		return fmt.Errorf("could not stat capture %q: %w", fname, err)
	}

	dev.mu.Lock()
	dev.fname = fname
	dev.mu.Unlock()
	return nil
}

func (dev *server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	dev.reset()
	return nil
}

func (dev *server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	dev.reset()
	return nil
}

func (dev *server) reset() {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.data = make(chan []byte, queueSize)
	dev.n = 0
}

func (dev *server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")

	dev.mu.Lock()
	fname := dev.fname
	dev.mu.Unlock()

	raw, err := dev.decode(fname)
	if err != nil {
		ctx.Msg.Errorf("could not decode %q: %+v", fname, err)
		return err
	}

	err = dev.publish(raw)
	if err != nil {
		ctx.Msg.Errorf("could not publish transcript of %q: %+v", fname, err)
		return fmt.Errorf("could not publish transcript of %q: %w", fname, err)
	}
	return nil
}

func (dev *server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dev.mu.Lock()
	n := dev.n
	dev.mu.Unlock()
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (dev *server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (dev *server) queue() chan []byte {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.data
}

// publish queues a transcript for the /annotations output.
func (dev *server) publish(raw []byte) error {
	q := dev.queue()
	select {
	case q <- raw:
		return nil
	default:
		return fmt.Errorf("transcript queue full (%d pending)", len(q))
	}
}

// decode decodes the named capture and returns its JSON transcript.
func (dev *server) decode(fname string) ([]byte, error) {
	if fname == "" {
		dev.mon.Failed()
		return nil, fmt.Errorf("no capture configured")
	}

	start := time.Now()
	tr, res, err := report.Process(fname, dev.p)
	if err != nil {
		dev.mon.Failed()
		return nil, err
	}
	dev.mon.Observe(res, tr.Samples, time.Since(start))

	raw, err := json.Marshal(tr)
	if err != nil {
		dev.mon.Failed()
		return nil, fmt.Errorf("could not encode transcript of %q: %w", fname, err)
	}

	dev.mu.Lock()
	dev.n++
	dev.mu.Unlock()

	return raw, nil
}

func (dev *server) annotations(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.queue():
		dst.Body = data
	}
	return nil
}

func (dev *server) run(ctx tdaq.Context) error {
	<-ctx.Ctx.Done()
	return nil
}
