// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Range header parsing: the "parse ranges" collaborator step.
// Preserves input order, since the multipart framing must reflect the
// order the client asked for each range in.

package corox

import (
	"strconv"
	"strings"
)

// byteRange is an inclusive [start, end] span within a file of some
// total size.
type byteRange struct {
	start, end int64
}

// parseRanges parses the value of a Range header (with the "bytes="
// prefix already stripped by the caller) against a file of the given
// size. ok is false on any malformed range, which the caller turns
// into a 416 response.
func parseRanges(spec string, size int64) (ranges []byteRange, ok bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, false
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		dash := strings.IndexByte(part, '-')
		if dash < 0 {
			return nil, false
		}
		startStr, endStr := part[:dash], part[dash+1:]
		var r byteRange
		switch {
		case startStr == "" && endStr == "": // "-"
			return nil, false
		case startStr == "": // "-suffixLength": last N bytes
			n, err := strconv.ParseInt(endStr, 10, 64)
			if err != nil || n <= 0 {
				return nil, false
			}
			if n > size {
				n = size
			}
			r = byteRange{start: size - n, end: size - 1}
		case endStr == "": // "start-": from start to EOF
			start, err := strconv.ParseInt(startStr, 10, 64)
			if err != nil || start < 0 || start >= size {
				return nil, false
			}
			r = byteRange{start: start, end: size - 1}
		default: // "start-end"
			start, err1 := strconv.ParseInt(startStr, 10, 64)
			end, err2 := strconv.ParseInt(endStr, 10, 64)
			if err1 != nil || err2 != nil || start < 0 || end < start || start >= size {
				return nil, false
			}
			if end >= size {
				end = size - 1
			}
			r = byteRange{start: start, end: end}
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return nil, false
	}
	return ranges, true
}

func (r byteRange) size() int64 { return r.end - r.start + 1 }
