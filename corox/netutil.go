// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"errors"
	"net"
)

// isUseOfClosedConn reports whether err is the "operation aborted" /
// "bad descriptor" class of accept error that net.Listener.Accept
// returns after Close has been called on it — the acceptor's own
// shutdown signal, not a transient accept error.
func isUseOfClosedConn(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
