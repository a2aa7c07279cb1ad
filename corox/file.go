// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// File collaborator: async_open, is_open, seek, async_read, eof.
// Backed directly by *os.File — Go's os package already suspends the
// calling goroutine without blocking an OS thread on supported
// platforms, so there is no separate "async" file type to build.

package corox

import (
	"io"
	"os"
)

// osFile adapts *os.File to the File collaborator contract.
type osFile struct {
	f   *os.File
	eof bool
}

func openFile(path string) (*osFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &osFile{f: f}, nil
}

func (o *osFile) IsOpen() bool { return o.f != nil }

func (o *osFile) Seek(offset int64, whence int) (int64, error) {
	o.eof = false
	return o.f.Seek(offset, whence)
}

// Read fills buf, reporting n bytes read. A short read (fewer than
// len(buf) bytes) or io.EOF records Eof() and returns a nil error with
// n possibly > 0, so the read that reaches the end of the file both
// delivers its last bytes and reports Eof(): the caller checks Eof()
// after each Read rather than treating io.EOF as failure.
func (o *osFile) Read(buf []byte) (int, error) {
	n, err := o.f.Read(buf)
	if err == io.EOF || (err == nil && n < len(buf)) {
		o.eof = true
		return n, nil
	}
	return n, err
}

func (o *osFile) Eof() bool { return o.eof }

// Close closes the underlying file and marks it no longer open, so a
// stray Read/Seek after Close fails instead of touching a closed fd.
func (o *osFile) Close() error {
	err := o.f.Close()
	o.f = nil
	return err
}
