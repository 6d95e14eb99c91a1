// Copyright 2015, David Howden
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package id3v2 implements the ID3v2.2/2.3/2.4 tag codec: header and
// footer, extended header, syncsafe/unsynchronized frame parsing, the
// full frame taxonomy, and a size/padding-aware renderer (spec.md §4.E).
package id3v2

import "github.com/pkg/errors"

// Error kinds, matching spec.md §7. Each is a sentinel; wrapped with
// context via github.com/pkg/errors at the point of failure.
var (
	ErrInsufficientData  = errors.New("id3v2: insufficient data")
	ErrBadMagic          = errors.New("id3v2: bad magic")
	ErrNotFound          = errors.New("id3v2: not found")
	ErrUnsupportedVersion = errors.New("id3v2: unsupported version")
	ErrInvalidFieldValue = errors.New("id3v2: invalid field value")
	ErrOverflow          = errors.New("id3v2: overflow")
	ErrInconsistent      = errors.New("id3v2: inconsistent")
)
