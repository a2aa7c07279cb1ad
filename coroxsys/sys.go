// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package coroxsys sets socket options the core needs at accept/listen
// time. It is the cross-platform equivalent of hemi's own
// hemi/library/system package, which ships one file per GOOS
// (misc_darwin.go, misc_freebsd.go, ...); golang.org/x/sys/unix already
// abstracts most of that away for the platforms corox targets.
package coroxsys

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// SetReuseAddr sets SO_REUSEADDR (not SO_REUSEPORT) on the listening
// socket so a restarted server can rebind its port
// immediately, matching hemi's SetReusePort helper
// (hemi/library/system/net_darwin.go and net_freebsd.go).
func SetReuseAddr(rawConn syscall.RawConn) error {
	var sockErr error
	err := rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// SetTCPNoDelay toggles TCP_NODELAY on an accepted connection, backing
// ServerConfig's set_no_delay(bool).
func SetTCPNoDelay(rawConn syscall.RawConn, enable bool) error {
	var sockErr error
	value := 0
	if enable {
		value = 1
	}
	err := rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, value)
	})
	if err != nil {
		return err
	}
	return sockErr
}
