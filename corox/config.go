// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// ServerConfig holds port, acceptor-thread-count, TCP_NODELAY flag,
// idle-timeout, reaper-tick, chunk size, static directory/prefix,
// file-response format, and optional TLS material. No config-language
// parser backs this — it's a plain struct built programmatically,
// validated with hemi's fail-fast idiom.

package corox

import "time"

// TLSMaterial is the optional init_tls(cert, key, pass) payload. TLS
// integration itself stays an external collaborator; corox only
// carries the configuration through to whatever net.Listener wrapper
// the caller supplies.
type TLSMaterial struct {
	CertFile string
	KeyFile  string
	Password string
}

// ServerConfig is the observable configuration surface of the engine.
type ServerConfig struct {
	Port                int
	AcceptorThreadCount int // worker count for the Embedded executor binding
	NoDelay             bool
	CheckDuration       time.Duration // reaper tick, set_check_duration
	TimeoutDuration     time.Duration // idle timeout; >0 enables the reaper, set_timeout_duration
	ShrinkToFit         bool          // set_shrink_to_fit
	TransferChunkedSize int           // set_transfer_chunked_size
	StaticURIPrefix     string
	StaticRootDir       string
	FileRespFormat      FormatType // set_file_resp_format_type
	MaxCacheBytes       int64      // set_max_size_of_cache_files
	TLS                 *TLSMaterial
}

// DefaultServerConfig returns the engine's defaults, mirroring the
// defaults hemi's Server_[G] mixin configures when a value is omitted
// (hemi/general.go's OnConfigure).
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		AcceptorThreadCount: 4,
		CheckDuration:       10 * time.Second,
		TimeoutDuration:     0, // reaper disabled unless explicitly set > 0
		TransferChunkedSize: 16 * 1024,
		FileRespFormat:      FormatNormal,
	}
}
