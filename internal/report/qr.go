// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DigestToQR creates a QR code PNG encoding the provided capture digest.
func DigestToQR(digest string, size int) ([]byte, error) {
	digest = normalizeDigest(digest)
	if digest == "" {
		return nil, fmt.Errorf("report: capture digest is empty")
	}
	if size <= 0 {
		size = 128
	}
	png, err := qrcode.Encode(digest, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("report: could not encode QR code: %w", err)
	}
	return png, nil
}

// normalizeDigest keeps the hex digits of digest, upper-cased.
func normalizeDigest(digest string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(digest)) {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			b.WriteRune(r)
		}
	}
	return b.String()
}
