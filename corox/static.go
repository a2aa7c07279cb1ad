// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Static file responder: maps a URI tree to files, serves them via
// in-memory cache, chunked transfer, single-range, or
// multipart/byteranges. Grounded on hemi/web_handlet_static.go's
// staticHandlet, generalized from gorox's webapp-rooted config model to
// a standalone configure_static/StaticFileCache contract.

package corox

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
)

// StaticRouteCatalog is the list of file paths scanned at configuration
// time under a root directory, plus the URI prefix they're mounted at.
type StaticRouteCatalog struct {
	prefix string
	root   string
	files  []string // paths relative to root, enumerated at configure time
}

// StaticFileCache maps absolute path to file contents. Populated once
// per (re)configuration and then swapped in atomically, so lookups
// never take a lock: the map is read-only after configuration.
type StaticFileCache struct {
	entries atomic.Pointer[map[string][]byte]
}

func newStaticFileCache() *StaticFileCache {
	c := &StaticFileCache{}
	empty := make(map[string][]byte)
	c.entries.Store(&empty)
	return c
}

func (c *StaticFileCache) get(path string) ([]byte, bool) {
	m := *c.entries.Load()
	body, ok := m[path]
	return body, ok
}

func (c *StaticFileCache) replace(m map[string][]byte) {
	c.entries.Store(&m)
}

// StaticConfig are the knobs set via set_transfer_chunked_size,
// set_file_resp_format_type and set_max_size_of_cache_files.
type StaticConfig struct {
	ChunkSize     int        // bounds both chunked writes and range streaming reads
	FormatType    FormatType // default no-Range response shape: chunked or single-response (range)
	MaxCacheBytes int64      // files <= this size are read fully into the cache
}

// StaticResponder serves one configured route catalog.
type StaticResponder struct {
	catalog *StaticRouteCatalog
	cache   *StaticFileCache
	config  StaticConfig
	logger  Logger
}

// pathTraversalUnsafe reports whether p looks like a traversal attempt.
// See DESIGN.md for why only ".." segments are rejected here: the root
// directory argument is always expected to be an absolute filesystem
// path (the worked example configures "/tmp/www"), so an
// operator-supplied absolute root is the normal, safe case.
func pathTraversalUnsafe(p string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// ConfigureStatic validates prefix/root, recursively enumerates root,
// and registers a GET handler for every regular file found. Invalid
// paths fail the process fast, matching hemi's UseExitln/EnvExitln
// idiom.
func ConfigureStatic(router *Router, logger Logger, prefix, root string) (*StaticResponder, error) {
	if pathTraversalUnsafe(prefix) || pathTraversalUnsafe(root) {
		fatalExitf("corox: static configuration rejected: prefix=%q root=%q contains a traversal segment", prefix, root)
	}
	prefix = "/" + strings.Trim(prefix, "/")
	root = strings.TrimRight(root, "/")

	catalog := &StaticRouteCatalog{prefix: prefix, root: root}
	cache := newStaticFileCache()
	sr := &StaticResponder{catalog: catalog, cache: cache, logger: logger, config: StaticConfig{
		ChunkSize:  16 * 1024,
		FormatType: FormatType(formatRange),
	}}

	if err := sr.rescan(); err != nil {
		fatalExitf("corox: static configuration rejected: %v", err)
	}
	for _, rel := range catalog.files {
		uri := joinURI(prefix, rel)
		absPath := filepath.Join(root, rel)
		router.Register(MethodGET|MethodHEAD, uri, sr.handlerFor(absPath))
	}
	return sr, nil
}

const (
	formatChunked = int8(FormatChunked)
	formatRange   = int8(FormatNormal) // "range" = default single-response format
)

func joinURI(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	if prefix == "/" {
		return "/" + rel
	}
	return prefix + "/" + rel
}

// rescan walks the root directory and records every regular file's
// path relative to root.
func (sr *StaticResponder) rescan() error {
	var files []string
	err := filepath.WalkDir(sr.catalog.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(sr.catalog.root, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sr.catalog.files = files
	return nil
}

// SetMaxSizeOfCacheFiles implements set_max_size_of_cache_files(max):
// rescans the directory and loads every regular file whose size <= max
// fully into the StaticFileCache.
func (sr *StaticResponder) SetMaxSizeOfCacheFiles(max int64) error {
	sr.config.MaxCacheBytes = max
	if err := sr.rescan(); err != nil {
		return err
	}
	entries := make(map[string][]byte)
	for _, rel := range sr.catalog.files {
		absPath := filepath.Join(sr.catalog.root, rel)
		info, err := os.Stat(absPath)
		if err != nil || info.Size() > max {
			continue
		}
		body, err := os.ReadFile(absPath)
		if err != nil {
			continue
		}
		entries[absPath] = body
	}
	sr.cache.replace(entries)
	return nil
}

// SetTransferChunkedSize sets the per-read/per-chunk size used when
// streaming files (set_transfer_chunked_size).
func (sr *StaticResponder) SetTransferChunkedSize(n int) { sr.config.ChunkSize = n }

// SetFileRespFormatType chooses the no-Range response shape
// (set_file_resp_format_type({chunked, range})).
func (sr *StaticResponder) SetFileRespFormatType(format FormatType) { sr.config.FormatType = format }

// handlerFor returns the GET/HEAD handler registered at absPath's URI.
func (sr *StaticResponder) handlerFor(absPath string) Handler {
	return func(req Request, resp Response) {
		if req.Method()&(MethodGET|MethodHEAD) == 0 {
			resp.SetStatus(StatusMethodNotAllowed)
			resp.AddHeader("Allow", "GET, HEAD")
			resp.Reply()
			return
		}

		info, err := os.Stat(absPath)
		if err != nil {
			resp.SetStatus(StatusNotFound)
			resp.Reply()
			return
		}
		size := info.Size()
		contentType := mimeTypeFor(absPath)
		filename := filepath.Base(absPath)

		rangeHeader, _ := req.Header("Range")
		hasRange := req.HasRanges()

		// Cache hit: the whole cached body is served, any Range header
		// is ignored.
		if body, hit := sr.cache.get(absPath); hit {
			resp.SetDelay(true)
			header := buildRangeHeader(contentType, filename, len(body), StatusOK, "")
			if !resp.WriteData([]byte(header)) {
				sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "write cached header for %s", absPath))
				return
			}
			resp.WriteData(body)
			return
		}

		if !hasRange {
			if sr.config.FormatType == FormatChunked {
				sr.serveChunked(resp, absPath, contentType, filename)
			} else {
				sr.serveSingle(resp, absPath, contentType, filename, size)
			}
			return
		}

		// Range present.
		spec, ok := strings.CutPrefix(rangeHeader, "bytes=")
		if !ok {
			sr.logger.Logf("corox: %v\n", wrapf(ErrRangeNotSatisfiable, "malformed Range header %q for %s", rangeHeader, absPath))
			resp.SetStatus(StatusRangeNotSatisfiable)
			resp.Reply()
			return
		}
		ranges, ok := parseRanges(spec, size)
		if !ok {
			sr.logger.Logf("corox: %v\n", wrapf(ErrRangeNotSatisfiable, "unsatisfiable range %q for %s (size %d)", spec, absPath, size))
			resp.SetStatus(StatusRangeNotSatisfiable)
			resp.Reply()
			return
		}
		if len(ranges) == 1 {
			sr.serveOneRange(resp, absPath, contentType, filename, size, ranges[0])
		} else {
			sr.serveMultiRange(resp, absPath, contentType, ranges, size)
		}
	}
}

// serveChunked sends a chunked header, then runs a chunk-size read
// loop terminated by the zero-chunk. On a read error mid-stream the
// connection is aborted without a further reply — a 204 at that point
// would never reach the wire because the chunked header has already
// gone out.
func (sr *StaticResponder) serveChunked(resp Response, absPath, contentType, filename string) {
	f, err := openFile(absPath)
	if err != nil {
		sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "open %s: %v", absPath, err))
		resp.SetStatus(StatusNoContent)
		resp.Reply()
		return
	}
	defer f.Close()

	resp.AddHeader("Content-Type", contentType)
	resp.AddHeader("Content-Disposition", fmt.Sprintf("attachment;filename=%s", filename))
	if err := resp.BeginChunked(); err != nil {
		return
	}
	buf := make([]byte, sr.config.ChunkSize)
	for {
		n, err := f.Read(buf)
		if err != nil {
			// Unrecoverable: the chunked header is already on the
			// wire, so there is nothing left to reply with.
			sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "read %s mid-stream: %v", absPath, err))
			return
		}
		if n > 0 && !resp.WriteChunked(buf[:n]) {
			sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "write chunk for %s", absPath))
			return
		}
		if f.Eof() {
			resp.EndChunked()
			return
		}
	}
}

// serveSingle sends a 200 header carrying the total length, then
// streams the file in chunks.
func (sr *StaticResponder) serveSingle(resp Response, absPath, contentType, filename string, size int64) {
	f, err := openFile(absPath)
	if err != nil {
		sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "open %s: %v", absPath, err))
		resp.SetStatus(StatusNoContent)
		resp.Reply()
		return
	}
	defer f.Close()

	resp.SetDelay(true)
	header := buildRangeHeader(contentType, filename, int(size), StatusOK, "")
	if !resp.WriteData([]byte(header)) {
		sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "write header for %s", absPath))
		return
	}
	sr.streamAll(resp, f, size)
}

// streamAll copies up to remaining bytes of f to resp in ChunkSize
// pieces. f must already be open and positioned; a file closed out
// from under a caller is treated as nothing left to send.
func (sr *StaticResponder) streamAll(resp Response, f *osFile, remaining int64) {
	if !f.IsOpen() {
		return
	}
	buf := make([]byte, sr.config.ChunkSize)
	for remaining > 0 {
		want := int64(len(buf))
		if remaining < want {
			want = remaining
		}
		n, err := f.Read(buf[:want])
		if err != nil {
			sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "stream read: %v", err))
			return
		}
		if n > 0 {
			if !resp.WriteData(buf[:n]) {
				sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "stream write"))
				return
			}
			remaining -= int64(n)
		}
		if f.Eof() && remaining > 0 {
			return // short file: abort, nothing more to send
		}
	}
}

// serveOneRange handles the single-range case: one Content-Range
// header followed by the selected span of bytes.
func (sr *StaticResponder) serveOneRange(resp Response, absPath, contentType, filename string, size int64, rng byteRange) {
	f, err := openFile(absPath)
	if err != nil {
		sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "open %s: %v", absPath, err))
		resp.SetStatus(StatusNoContent)
		resp.Reply()
		return
	}
	defer f.Close()
	if _, err := f.Seek(rng.start, 0); err != nil {
		sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "seek %s to %d: %v", absPath, rng.start, err))
		resp.SetStatus(StatusNoContent)
		resp.Reply()
		return
	}

	partSize := rng.size()
	status := StatusPartialContent
	if partSize == size {
		status = StatusOK
	}
	contentRange := fmt.Sprintf("Content-Range: bytes %d-%d/%d"+CRLF, rng.start, rng.end, size)

	resp.SetDelay(true)
	header := buildRangeHeader(contentType, filename, int(partSize), status, contentRange)
	if !resp.WriteData([]byte(header)) {
		sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "write range header for %s", absPath))
		return
	}
	sr.streamAll(resp, f, partSize)
}

// serveMultiRange handles the multipart/byteranges case: a
// multipart header, then each requested range as its own part.
func (sr *StaticResponder) serveMultiRange(resp Response, absPath, contentType string, ranges []byteRange, size int64) {
	f, err := openFile(absPath)
	if err != nil {
		sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "open %s: %v", absPath, err))
		resp.SetStatus(StatusNoContent)
		resp.Reply()
		return
	}
	defer f.Close()

	partHeaders := make([]string, len(ranges))
	total := int64(0)
	for i, rng := range ranges {
		partHeaders[i] = fmt.Sprintf("--%s"+CRLF+"Content-Type: %s"+CRLF+"Content-Range: bytes %d-%d/%d"+TWOCRLF,
			boundary, contentType, rng.start, rng.end, size)
		total += int64(len(partHeaders[i])) + rng.size()
		if i < len(ranges)-1 {
			total += int64(len(CRLF)) // separator written between parts only
		}
	}
	total += int64(len(MultipartEnd()))

	resp.SetDelay(true)
	if !resp.WriteData([]byte(buildMultipleRangeHeader(int(total)))) {
		sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "write multipart header for %s", absPath))
		return
	}
	for i, rng := range ranges {
		if !resp.WriteData([]byte(partHeaders[i])) {
			sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "write part header for %s", absPath))
			return
		}
		if _, err := f.Seek(rng.start, 0); err != nil {
			sr.logger.Logf("corox: %v\n", wrapf(ErrFileReadFailed, "seek %s to %d: %v", absPath, rng.start, err))
			return
		}
		sr.streamAll(resp, f, rng.size())
		if i < len(ranges)-1 {
			if !resp.WriteData([]byte(CRLF)) {
				sr.logger.Logf("corox: %v\n", wrapf(ErrPeerWriteFailed, "write part separator for %s", absPath))
				return
			}
		}
	}
	resp.WriteData([]byte(MultipartEnd()))
}

// buildRangeHeader is the bit-exact single-response header template
// (build_range_header). The literal "OK" reason phrase after the
// numeric status is part of the template, reproduced verbatim even
// for non-200 statuses.
func buildRangeHeader(mime, filename string, length int, status int, contentRange string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d OK"+CRLF, status)
	b.WriteString("Access-Control-Allow-origin: *" + CRLF)
	b.WriteString("Accept-Ranges: bytes" + CRLF)
	if contentRange != "" {
		b.WriteString(contentRange)
	}
	fmt.Fprintf(&b, "Content-Disposition: attachment;filename=%s"+CRLF, filename)
	b.WriteString("Connection: keep-alive" + CRLF)
	fmt.Fprintf(&b, "Content-Type: %s"+CRLF, mime)
	fmt.Fprintf(&b, "Content-Length: %s"+TWOCRLF, strconv.Itoa(length))
	return b.String()
}

// buildMultipleRangeHeader is the bit-exact multipart header template
// (build_multiple_range_header).
func buildMultipleRangeHeader(length int) string {
	var b strings.Builder
	b.WriteString("HTTP/1.1 206 Partial Content" + CRLF)
	fmt.Fprintf(&b, "Content-Length: %s"+CRLF, strconv.Itoa(length))
	fmt.Fprintf(&b, "Content-Type: multipart/byteranges; boundary=%s"+TWOCRLF, boundary)
	return b.String()
}
