// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Response collaborator: set_status, set_status_and_content, add_header,
// set_format_type, set_delay, and a connection() offering chunked/raw
// writes. "Delayed" mode suppresses the framework's automatic reply
// because the handler has already written the wire bytes itself — the
// static handlers rely on this; the proxy handler replies through Reply.

package corox

import (
	"bufio"
	"fmt"
	"strconv"
)

// FormatType selects how Reply serializes a buffered body.
type FormatType int8

const (
	FormatNormal  FormatType = iota // Content-Length + body in one write
	FormatChunked                   // chunked transfer-encoding
)

// CRLF and TWOCRLF are the line-ending tokens used throughout the
// hand-rolled HTTP/1.1 wire writers.
const (
	CRLF     = "\r\n"
	TWOCRLF  = "\r\n\r\n"
	boundary = "GOROX-CoroxBoundary7e3f1c" // the fixed multipart boundary token
)

// MultipartEnd is the closing multipart boundary.
func MultipartEnd() string { return "--" + boundary + "--" }

// Response is the per-request outbound side, backing both user
// handlers and the static/proxy handlers that bypass most of it via
// Connection() for raw writes.
type Response interface {
	SetStatus(code int)
	SetStatusAndContent(code int, body []byte)
	AddHeader(name, value string)
	SetFormatType(FormatType)
	SetDelay(delay bool)
	Connection() *Connection
	BeginChunked() error
	WriteChunked(p []byte) bool
	EndChunked() error
	WriteData(p []byte) bool
	Reply() error
}

// http1Response is the concrete Response used by the bundled HTTP/1.1
// driver.
type http1Response struct {
	conn       *Connection
	bw         *bufio.Writer
	status     int
	headerKeys []string
	headerVals []string
	body       []byte
	format     FormatType
	delayed    bool // true once a handler has taken over raw writes
	replied    bool
}

func newHTTP1Response(conn *Connection, bw *bufio.Writer) *http1Response {
	return &http1Response{conn: conn, bw: bw, status: StatusOK}
}

func (r *http1Response) SetStatus(code int) { r.status = code }

func (r *http1Response) SetStatusAndContent(code int, body []byte) {
	r.status = code
	r.body = body
}

func (r *http1Response) AddHeader(name, value string) {
	r.headerKeys = append(r.headerKeys, name)
	r.headerVals = append(r.headerVals, value)
}

func (r *http1Response) SetFormatType(format FormatType) { r.format = format }
func (r *http1Response) SetDelay(delay bool)              { r.delayed = delay }
func (r *http1Response) Connection() *Connection          { return r.conn }

// BeginChunked writes the status line, headers so far, and the
// Transfer-Encoding: chunked header.
func (r *http1Response) BeginChunked() error {
	r.format = FormatChunked
	r.delayed = true
	if _, err := fmt.Fprintf(r.bw, "HTTP/1.1 %d %s"+CRLF, r.status, statusText(r.status)); err != nil {
		return err
	}
	for i, k := range r.headerKeys {
		if _, err := fmt.Fprintf(r.bw, "%s: %s"+CRLF, k, r.headerVals[i]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(r.bw, "Transfer-Encoding: chunked"+CRLF+CRLF); err != nil {
		return err
	}
	return r.bw.Flush()
}

// WriteChunked emits one chunk. Callers must still call EndChunked to
// emit the terminating zero-length chunk.
func (r *http1Response) WriteChunked(p []byte) bool {
	if _, err := fmt.Fprintf(r.bw, "%x"+CRLF, len(p)); err != nil {
		return false
	}
	if len(p) > 0 {
		if _, err := r.bw.Write(p); err != nil {
			return false
		}
		if _, err := r.bw.WriteString(CRLF); err != nil {
			return false
		}
	}
	return r.bw.Flush() == nil
}

// EndChunked emits the terminating zero-length chunk.
func (r *http1Response) EndChunked() error {
	if _, err := r.bw.WriteString("0" + CRLF + CRLF); err != nil {
		return err
	}
	return r.bw.Flush()
}

// WriteData performs a raw gather-write of p on the connection,
// bypassing any buffered header machinery — the "write_data(view) →
// bool" primitive handlers use once they've taken over the reply.
func (r *http1Response) WriteData(p []byte) bool {
	if _, err := r.bw.Write(p); err != nil {
		return false
	}
	return r.bw.Flush() == nil
}

// Reply performs the framework's automatic, non-delayed reply: status
// line, headers, Content-Length, and body in one shot. Handlers that
// called SetDelay(true) (chunked or range responses) must not call
// Reply — they have already written the wire bytes themselves.
func (r *http1Response) Reply() error {
	if r.delayed || r.replied {
		return nil
	}
	r.replied = true
	if _, err := fmt.Fprintf(r.bw, "HTTP/1.1 %d %s"+CRLF, r.status, statusText(r.status)); err != nil {
		return err
	}
	hasContentType := false
	for i, k := range r.headerKeys {
		if equalFoldASCII(k, "Content-Type") {
			hasContentType = true
		}
		if _, err := fmt.Fprintf(r.bw, "%s: %s"+CRLF, k, r.headerVals[i]); err != nil {
			return err
		}
	}
	if !hasContentType {
		if _, err := r.bw.WriteString("Content-Type: text/plain" + CRLF); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(r.bw, "Content-Length: %s"+CRLF, strconv.Itoa(len(r.body))); err != nil {
		return err
	}
	if _, err := r.bw.WriteString("Connection: keep-alive" + CRLF + CRLF); err != nil {
		return err
	}
	if len(r.body) > 0 {
		if _, err := r.bw.Write(r.body); err != nil {
			return err
		}
	}
	return r.bw.Flush()
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
