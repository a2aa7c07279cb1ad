// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTP1RequestHeaderLookupIsCaseInsensitive(t *testing.T) {
	req := &http1Request{
		method:      MethodGET,
		methodStr:   "GET",
		path:        "/x",
		headerNames: []string{"Content-Type", "X-Custom"},
		headerVals:  []string{"text/plain", "v"},
	}

	v, ok := req.Header("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)

	_, ok = req.Header("missing")
	assert.False(t, ok)
}

func TestHTTP1RequestHasRanges(t *testing.T) {
	withRange := &http1Request{headerNames: []string{"Range"}, headerVals: []string{"bytes=0-1"}}
	assert.True(t, withRange.HasRanges())

	withoutRange := &http1Request{}
	assert.False(t, withoutRange.HasRanges())
}

func TestHTTP1RequestForHeadersStopsOnFalse(t *testing.T) {
	req := &http1Request{
		headerNames: []string{"A", "B", "C"},
		headerVals:  []string{"1", "2", "3"},
	}
	var seen []string
	req.ForHeaders(func(name, value string) bool {
		seen = append(seen, name)
		return name != "B"
	})
	assert.Equal(t, []string{"A", "B"}, seen)
}
