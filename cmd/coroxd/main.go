// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// coroxd is a standalone binary wiring the corox engine for a single
// static-file site, with an optional reverse-proxy route. Stands in for
// gorox's root main.go, minus the leader/worker process manager and
// the web-application/extension/service registries that come with it
// — those are out of this core's scope.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coroxio/corox/corox"
)

func main() {
	var (
		port       = flag.Int("port", 3000, "listen port, 0 picks an OS-assigned port")
		staticURI  = flag.String("static-uri", "/", "URI prefix to mount the static root under")
		staticRoot = flag.String("static-root", "", "filesystem directory to serve; empty disables static serving")
		proxyPath  = flag.String("proxy-path", "", "URL path to reverse-proxy; empty disables proxying")
		proxyHosts = flag.String("proxy-hosts", "", "comma-separated upstream host:port list")
		noDelay    = flag.Bool("no-delay", true, "set TCP_NODELAY on accepted connections")
		timeout    = flag.Duration("timeout", 0, "idle-connection timeout; 0 disables the reaper")
	)
	flag.Parse()

	cfg := corox.DefaultServerConfig()
	cfg.Port = *port
	cfg.NoDelay = *noDelay
	cfg.TimeoutDuration = *timeout

	server := corox.NewServer(cfg)

	if *staticRoot != "" {
		if err := server.ConfigureStatic(*staticURI, *staticRoot); err != nil {
			fmt.Fprintf(os.Stderr, "coroxd: configure_static failed: %v\n", err)
			os.Exit(1)
		}
	}

	if *proxyPath != "" {
		hosts := splitHosts(*proxyHosts)
		if len(hosts) == 0 {
			fmt.Fprintln(os.Stderr, "coroxd: -proxy-path given without -proxy-hosts")
			os.Exit(1)
		}
		err := server.ConfigureProxy(corox.ProxyConfig{
			URLPath: *proxyPath,
			Hosts:   hosts,
			Policy:  corox.PolicyWeightedRoundRobin,
		}, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "coroxd: configure_proxy failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "coroxd: start failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("coroxd: listening on port %d\n", server.Port())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Println("coroxd: shutting down")
	server.Stop()
}

func splitHosts(raw string) []string {
	var hosts []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if i > start {
				hosts = append(hosts, raw[start:i])
			}
			start = i + 1
		}
	}
	return hosts
}
