// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profile loads YAML decoding profiles: decoder tuning, capture
// layout and decode service settings.
package profile // import "github.com/go-lpc/mdb/internal/profile"

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-lpc/mdb/decode"
	"github.com/go-lpc/mdb/wave"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSampleRate = 1e6 // Hz
	DefaultMetrics    = ":2112"
)

// Profile describes how a capture should be loaded and decoded.
type Profile struct {
	Decoder Decoder `yaml:"decoder"`
	Capture Capture `yaml:"capture"`
	Server  Server  `yaml:"server"`
}

// Decoder holds the decoder tuning knobs.
// Unset values take the decoder defaults.
type Decoder struct {
	SamplePoint    *float64 `yaml:"sample_point"`
	GlitchFraction *float64 `yaml:"glitch_fraction"`
	MaxInterByteMs *float64 `yaml:"max_inter_byte_ms"`
}

// Capture describes the layout of capture files.
type Capture struct {
	Format     string  `yaml:"format"`      // raw or csv
	SampleRate float64 `yaml:"sample_rate"` // Hz
	Channel    *int    `yaml:"channel"`     // raw: bit, csv: level column
}

// Server holds the decode service settings.
type Server struct {
	Metrics string `yaml:"metrics"` // address of the prometheus endpoint

	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
	LogCompress   bool   `yaml:"log_compress"`
}

// Default returns a normalized profile with every value set to its default.
func Default() *Profile {
	var p Profile
	Normalize(&p)
	return &p
}

// Load reads, validates and normalizes the named profile.
func Load(fname string) (*Profile, error) {
	raw, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("profile: could not read %q: %w", fname, err)
	}

	p, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("profile: could not load %q: %w", fname, err)
	}
	return p, nil
}

// Parse decodes, validates and normalizes a profile.
func Parse(r io.Reader) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&p)
	switch {
	case err == io.EOF:
		// empty document: all defaults.
	case err != nil:
		return nil, fmt.Errorf("profile: could not decode YAML: %w", err)
	}

	err = Validate(&p)
	if err != nil {
		return nil, err
	}
	Normalize(&p)

	return &p, nil
}

// Validate checks the profile values.
// It does not modify the profile.
func Validate(p *Profile) error {
	if p == nil {
		return fmt.Errorf("profile: nil profile")
	}

	dec := p.Decoder
	if v := dec.SamplePoint; v != nil && (*v < 0 || *v >= 1) {
		return fmt.Errorf("profile: decoder.sample_point=%g not in [0,1)", *v)
	}
	if v := dec.GlitchFraction; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("profile: decoder.glitch_fraction=%g not in [0,1]", *v)
	}
	if v := dec.MaxInterByteMs; v != nil && *v < 0 {
		return fmt.Errorf("profile: decoder.max_inter_byte_ms=%g is negative", *v)
	}

	capt := p.Capture
	format := wave.FormatRaw
	if capt.Format != "" {
		f, err := wave.ParseFormat(capt.Format)
		if err != nil {
			return fmt.Errorf("profile: invalid capture.format: %w", err)
		}
		format = f
	}
	if capt.SampleRate < 0 {
		return fmt.Errorf("profile: capture.sample_rate=%g is negative", capt.SampleRate)
	}
	if capt.SampleRate > 0 && decode.SamplesPerBit(1/capt.SampleRate) == 0 {
		return fmt.Errorf(
			"profile: capture.sample_rate=%gHz is too low for %d baud",
			capt.SampleRate, decode.BaudRate,
		)
	}
	if ch := capt.Channel; ch != nil {
		switch format {
		case wave.FormatRaw:
			if *ch < 0 || *ch > 7 {
				return fmt.Errorf("profile: capture.channel=%d not a valid raw bit", *ch)
			}
		case wave.FormatCSV:
			if *ch < 1 {
				return fmt.Errorf("profile: capture.channel=%d not a valid CSV level column", *ch)
			}
		}
	}

	srv := p.Server
	if srv.LogMaxSizeMB < 0 || srv.LogMaxBackups < 0 || srv.LogMaxAgeDays < 0 {
		return fmt.Errorf("profile: server log rotation values must be positive")
	}

	return nil
}

// Normalize fills unset values with their defaults.
// It must be called after Validate.
func Normalize(p *Profile) {
	if p == nil {
		return
	}

	if p.Decoder.SamplePoint == nil {
		p.Decoder.SamplePoint = ptr(0.5)
	}
	if p.Decoder.GlitchFraction == nil {
		p.Decoder.GlitchFraction = ptr(0.25)
	}
	if p.Decoder.MaxInterByteMs == nil {
		p.Decoder.MaxInterByteMs = ptr(1.0)
	}

	if p.Capture.Format == "" {
		p.Capture.Format = string(wave.FormatRaw)
	}
	f, _ := wave.ParseFormat(p.Capture.Format)
	p.Capture.Format = string(f)
	if p.Capture.SampleRate == 0 {
		p.Capture.SampleRate = DefaultSampleRate
	}
	if p.Capture.Channel == nil {
		ch := 0
		if f == wave.FormatCSV {
			ch = 1
		}
		p.Capture.Channel = &ch
	}

	if p.Server.Metrics == "" {
		p.Server.Metrics = DefaultMetrics
	}
	if p.Server.LogMaxSizeMB == 0 {
		p.Server.LogMaxSizeMB = 10
	}
	if p.Server.LogMaxBackups == 0 {
		p.Server.LogMaxBackups = 3
	}
	if p.Server.LogMaxAgeDays == 0 {
		p.Server.LogMaxAgeDays = 28
	}
}

func ptr(v float64) *float64 { return &v }

// Options returns the decoder options described by the profile.
func (p *Profile) Options() []decode.Option {
	var opts []decode.Option
	if v := p.Decoder.SamplePoint; v != nil {
		opts = append(opts, decode.WithSamplePoint(*v))
	}
	if v := p.Decoder.GlitchFraction; v != nil {
		opts = append(opts, decode.WithGlitchFraction(*v))
	}
	if v := p.Decoder.MaxInterByteMs; v != nil {
		opts = append(opts, decode.WithMaxInterByte(time.Duration(*v*float64(time.Millisecond))))
	}
	return opts
}

// Period returns the capture sample period, in seconds.
func (p *Profile) Period() float64 {
	return wave.Period(p.Capture.SampleRate)
}

// Format returns the capture file format.
func (p *Profile) Format() wave.Format {
	return wave.Format(p.Capture.Format)
}

// Channel returns the capture channel holding the MDB line.
func (p *Profile) Channel() int {
	if p.Capture.Channel == nil {
		return 0
	}
	return *p.Capture.Channel
}

// Load reads the named capture file as described by the profile.
func (p *Profile) Load(fname string) (wave.Waveform, error) {
	return wave.Load(fname, p.Format(), p.Period(), p.Channel())
}
