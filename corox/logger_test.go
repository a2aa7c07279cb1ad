// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileLoggerWritesTimestampedLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFileLogger(&buf)
	logger.Logf("hello %s\n", "world")
	assert.Contains(t, buf.String(), "hello world")
}

func TestDiscardLoggerDropsOutput(t *testing.T) {
	logger := NewDiscardLogger()
	logger.Logf("should not panic %d", 1)
}

func TestFatalExitfIsOverridableForTests(t *testing.T) {
	var called bool
	var gotFormat string
	orig := fatalExitf
	fatalExitf = func(format string, args ...any) { called = true; gotFormat = format }
	defer func() { fatalExitf = orig }()

	fatalExitf("boom %d", 42)
	assert.True(t, called)
	assert.Equal(t, "boom %d", gotFormat)
}
