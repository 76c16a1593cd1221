// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"time"

	"github.com/go-lpc/mdb/decode"
	"github.com/go-lpc/mdb/internal/profile"
)

// Process loads the named capture as described by the profile and
// decodes it.
func Process(fname string, p *profile.Profile) (Transcript, decode.Result, error) {
	if p == nil {
		p = profile.Default()
	}

	wf, err := p.Load(fname)
	if err != nil {
		return Transcript{}, decode.Result{}, fmt.Errorf("report: could not load capture %q: %w", fname, err)
	}

	digest, err := DigestFile(fname)
	if err != nil {
		return Transcript{}, decode.Result{}, err
	}

	res := decode.New(p.Options()...).Run(wf.Samples, wf.Period)
	tr := Transcript{
		Source:      fname,
		Created:     time.Now().UTC(),
		Rate:        wf.Rate(),
		Samples:     wf.Len(),
		Digest:      digest,
		Frames:      len(res.Scan.Frames),
		Blocks:      len(res.Blocks),
		Annotations: res.Annotations,
	}
	return tr, res, nil
}
