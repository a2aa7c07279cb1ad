// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Error kinds for the engine core.

package corox

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel error kinds. Call sites compare with errors.Is; wrapping with
// pkgerrors.Wrap keeps the original cause available via errors.Cause.
var (
	ErrAddressInUse       = errors.New("corox: address in use")
	ErrAcceptorClosed     = errors.New("corox: acceptor closed")
	ErrRangeNotSatisfiable = errors.New("corox: range not satisfiable")
	ErrInvalidConfig      = errors.New("corox: invalid configuration")
	ErrPeerWriteFailed    = errors.New("corox: peer write failed")
	ErrFileReadFailed     = errors.New("corox: file read failed")
	ErrUpstream           = errors.New("corox: upstream error")
)

// wrapf wraps err with a sentinel kind and a formatted message, the way
// network-stack wraps parse errors with pkg/errors.
func wrapf(kind error, format string, args ...any) error {
	return pkgerrors.Wrapf(kind, format, args...)
}

// isAcceptAborted reports whether err denotes a deliberately closed
// listener rather than a transient accept failure.
func isAcceptAborted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAcceptorClosed) || isUseOfClosedConn(err)
}
