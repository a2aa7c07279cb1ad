// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMimeTypeFor(t *testing.T) {
	testcases := []struct {
		filename string
		expected string
	}{
		{"index.html", "text/html"},
		{"photo.JPG", "image/jpeg"},
		{"archive.tar.gz", "application/gzip"},
		{"noext", "application/octet-stream"},
		{"unknownextension.zzz", "application/octet-stream"},
	}

	for _, tc := range testcases {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.expected, mimeTypeFor(tc.filename))
		})
	}
}
