// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Request collaborator: exposes method, body, headers and the raw
// connection to handlers.

package corox

import "strings"

// Request exposes method, body, headers and the raw connection.
// *http1Request is the only implementation; it is deliberately minimal
// (no trailers, no multipart bodies) — just enough surface for the
// static and proxy handlers to work against.
type Request interface {
	Method() Method
	MethodString() string
	Path() string
	Header(name string) (string, bool)
	ForHeaders(func(name, value string) bool)
	Body() []byte
	Connection() *Connection
	HasRanges() bool
}

// http1Request is the concrete Request backing the bundled HTTP/1.1
// driver (http1.go).
type http1Request struct {
	method      Method
	methodStr   string
	path        string
	headerNames []string
	headerVals  []string
	body        []byte
	conn        *Connection
}

func (r *http1Request) Method() Method       { return r.method }
func (r *http1Request) MethodString() string { return r.methodStr }
func (r *http1Request) Path() string         { return r.path }
func (r *http1Request) Body() []byte         { return r.body }
func (r *http1Request) Connection() *Connection { return r.conn }

func (r *http1Request) Header(name string) (string, bool) {
	for i, n := range r.headerNames {
		if strings.EqualFold(n, name) {
			return r.headerVals[i], true
		}
	}
	return "", false
}

func (r *http1Request) ForHeaders(callback func(name, value string) bool) {
	for i, n := range r.headerNames {
		if !callback(n, r.headerVals[i]) {
			return
		}
	}
}

// HasRanges reports whether the request carries a Range header.
func (r *http1Request) HasRanges() bool {
	_, ok := r.Header("Range")
	return ok
}
