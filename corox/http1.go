// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Per-connection driver: reads one HTTP/1.1 request at a time off the
// connection's buffered reader, dispatches it through the Router, and
// loops for keep-alive until the peer disconnects, a parse error
// occurs, or the request asked to close (Connection: close, or HTTP/1.0
// without Connection: keep-alive). Grounded on hemi's own
// HTTP/1.1 request-line/header loop (hemi/web_server_http1.go's
// http1Conn.serve), reduced to a minimal subset: no trailers, no
// 100-continue, no pipelining beyond one in-flight request at a time.

package corox

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// driveHTTP1 is the driver task body spawned by the acceptor on the
// chosen executor for each accepted Connection. It returns once the
// connection leaves keep-alive, which releases it from the
// ConnectionTable via the quit callback installed at accept time.
func driveHTTP1(conn *Connection, router *Router, logger Logger) {
	defer conn.leaveKeepAlive()

	reader := conn.Reader()
	bw := bufio.NewWriter(conn.Socket())

	for {
		if conn.isClosing() {
			return
		}

		req, keepAlive, err := readHTTP1Request(reader, conn)
		if err != nil {
			if err != io.EOF {
				logger.Logf("corox: request parse error on connection %d: %v\n", conn.ID(), err)
			}
			return
		}
		conn.touch()

		resp := newHTTP1Response(conn, bw)
		if !keepAlive {
			resp.AddHeader("Connection", "close")
		}

		dispatchHTTP1(router, req, resp)

		if !resp.delayed {
			resp.Reply()
		}
		if err := bw.Flush(); err != nil {
			return
		}
		if !keepAlive {
			return
		}
	}
}

// dispatchHTTP1 resolves the route and replies 404/405 for unmatched
// paths and methods.
func dispatchHTTP1(router *Router, req *http1Request, resp *http1Response) {
	handler, registered, methodAllowed := router.Dispatch(req.Path(), req.Method())
	if !registered {
		resp.SetStatus(StatusNotFound)
		return
	}
	if !methodAllowed {
		resp.SetStatus(StatusMethodNotAllowed)
		return
	}
	handler(req, resp)
}

// readHTTP1Request parses one request-line + header block + body off
// reader. keepAlive defaults to true for HTTP/1.1 and false for
// HTTP/1.0, flipped by an explicit Connection header either way.
func readHTTP1Request(reader *bufio.Reader, conn *Connection) (*http1Request, bool, error) {
	line, err := readCRLFLine(reader)
	if err != nil {
		return nil, false, err
	}
	methodStr, path, version, err := parseRequestLine(line)
	if err != nil {
		return nil, false, err
	}
	method, ok := ParseMethod(methodStr)
	if !ok {
		return nil, false, wrapf(ErrInvalidConfig, "unsupported method %q", methodStr)
	}

	var names, values []string
	contentLength := 0
	keepAlive := version != "HTTP/1.0"
	for {
		hline, err := readCRLFLine(reader)
		if err != nil {
			return nil, false, err
		}
		if hline == "" {
			break
		}
		name, value, ok := splitHeaderLine(hline)
		if !ok {
			continue
		}
		names = append(names, name)
		values = append(values, value)
		switch {
		case strings.EqualFold(name, "Content-Length"):
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				contentLength = n
			}
		case strings.EqualFold(name, "Connection"):
			keepAlive = strings.EqualFold(strings.TrimSpace(value), "keep-alive")
		}
	}

	var body []byte
	if contentLength > 0 {
		body = make([]byte, contentLength)
		if _, err := io.ReadFull(reader, body); err != nil {
			return nil, false, err
		}
	}

	req := &http1Request{
		method:      method,
		methodStr:   methodStr,
		path:        path,
		headerNames: names,
		headerVals:  values,
		body:        body,
		conn:        conn,
	}
	return req, keepAlive, nil
}

// readCRLFLine reads one line, trimming a trailing CRLF or bare LF.
func readCRLFLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// parseRequestLine splits "METHOD /path HTTP/1.1" into its three
// tokens.
func parseRequestLine(line string) (method, path, version string, err error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", "", wrapf(ErrInvalidConfig, "malformed request line %q", line)
	}
	return parts[0], parts[1], parts[2], nil
}

// splitHeaderLine splits "Name: value" into its trimmed parts.
func splitHeaderLine(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	return line[:i], strings.TrimSpace(line[i+1:]), true
}
