// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"bytes"
	"io"
)

// newBodyReader adapts a possibly-empty body slice into the io.Reader
// http.NewRequestWithContext wants, without allocating when body is
// empty.
func newBodyReader(body []byte) io.Reader {
	if len(body) == 0 {
		return nil
	}
	return bytes.NewReader(body)
}

// readAllLimited reads all of r. The upstream HTTP client is expected
// to bound response sizes itself; this just drains the body.
func readAllLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
