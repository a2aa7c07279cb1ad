// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOsFileReadReportsEofWithoutError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	f, err := openFile(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 10)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, f.Eof())
}

func TestOsFileSeekResetsEof(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0o644))

	f, err := openFile(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 100)
	_, _ = f.Read(buf)
	assert.True(t, f.Eof())

	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	assert.False(t, f.Eof())
}

func TestOpenFileMissingReturnsError(t *testing.T) {
	_, err := openFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestOsFileIsOpenReflectsClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	f, err := openFile(path)
	require.NoError(t, err)
	assert.True(t, f.IsOpen())

	require.NoError(t, f.Close())
	assert.False(t, f.IsOpen())
}
