// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Reverse proxy dispatcher: forwards a request to one of N upstream
// hosts chosen by a load-balancing policy. Grounded on
// hemi/web_proxy_http.go's httpProxy handlet and WebExchanReverseProxy,
// generalized from gorox's backend-stream abstraction down to a plain
// UpstreamClient collaborator.

package corox

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
)

// LBPolicy selects how UpstreamChannel.pick chooses among hosts.
type LBPolicy int8

const (
	PolicyRandom LBPolicy = iota
	PolicyRoundRobin
	PolicyWeightedRoundRobin
)

// UpstreamChannel is the shared, load-balanced pool of upstream hosts
// bound to a proxy route. Internally synchronized; concurrent Pick is
// safe.
type UpstreamChannel struct {
	hosts   []string
	weights []int
	policy  LBPolicy

	cursor atomic.Uint64 // round-robin

	mu       sync.Mutex // guards wrrCurrent for the smooth weighted scheme
	wrrCurrent []int
}

// NewUpstreamChannel builds a channel over hosts. Weights default to 1
// per host when empty.
func NewUpstreamChannel(hosts []string, policy LBPolicy, weights []int) (*UpstreamChannel, error) {
	if len(hosts) == 0 {
		return nil, wrapf(ErrInvalidConfig, "configure_proxy: hosts must not be empty")
	}
	if len(weights) == 0 {
		weights = make([]int, len(hosts))
		for i := range weights {
			weights[i] = 1
		}
	} else if len(weights) != len(hosts) {
		return nil, wrapf(ErrInvalidConfig, "configure_proxy: weights must match hosts 1:1")
	}
	uc := &UpstreamChannel{hosts: hosts, weights: weights, policy: policy}
	if policy == PolicyWeightedRoundRobin {
		uc.wrrCurrent = make([]int, len(hosts))
	}
	return uc, nil
}

// Pick selects the next host according to the configured policy.
func (u *UpstreamChannel) Pick() string {
	switch u.policy {
	case PolicyRoundRobin:
		i := u.cursor.Add(1) - 1
		return u.hosts[int(i)%len(u.hosts)]
	case PolicyWeightedRoundRobin:
		return u.pickWeighted()
	default: // PolicyRandom
		return u.hosts[rand.IntN(len(u.hosts))]
	}
}

// pickWeighted implements the smooth weighted round-robin scheme: each
// host's running total increases by its own weight every pick; the
// host with the highest running total is chosen and then reduced by
// the sum of all weights. This spreads picks proportionally to weight
// without bursts, the same algorithm nginx's upstream module uses.
func (u *UpstreamChannel) pickWeighted() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	total := 0
	best := -1
	for i, w := range u.weights {
		u.wrrCurrent[i] += w
		total += w
		if best == -1 || u.wrrCurrent[i] > u.wrrCurrent[best] {
			best = i
		}
	}
	u.wrrCurrent[best] -= total
	return u.hosts[best]
}

// UpstreamResponse is what an UpstreamClient returns: status,
// response headers, and response body.
type UpstreamResponse struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// UpstreamClient is the upstream HTTP client collaborator, deliberately
// out of scope to build in depth — corox ships one implementation over
// net/http so the proxy dispatcher is runnable.
type UpstreamClient interface {
	Request(ctx context.Context, targetURL, method string, headers http.Header, body []byte) (*UpstreamResponse, error)
}

// httpUpstreamClient is the default UpstreamClient.
type httpUpstreamClient struct {
	client *http.Client
}

// NewHTTPUpstreamClient returns the default UpstreamClient.
func NewHTTPUpstreamClient() UpstreamClient {
	return &httpUpstreamClient{client: &http.Client{}}
}

func (c *httpUpstreamClient) Request(ctx context.Context, targetURL, method string, headers http.Header, body []byte) (*UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, newBodyReader(body))
	if err != nil {
		return nil, wrapf(ErrUpstream, "build upstream request: %v", err)
	}
	req.Header = headers.Clone()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, wrapf(ErrUpstream, "upstream request failed: %v", err)
	}
	defer resp.Body.Close()
	respBody, err := readAllLimited(resp.Body)
	if err != nil {
		return nil, wrapf(ErrUpstream, "read upstream body: %v", err)
	}
	return &UpstreamResponse{Status: resp.StatusCode, Headers: resp.Header, Body: respBody}, nil
}

// ProxyConfig mirrors the configure_proxy arguments.
type ProxyConfig struct {
	URLPath string
	Hosts   []string
	Policy  LBPolicy
	Weights []int
	Methods Method // default MethodAll
}

// ProxyDispatcher dispatches against one configured proxy route.
type ProxyDispatcher struct {
	channel *UpstreamChannel
	client  UpstreamClient
}

// ConfigureProxy builds an UpstreamChannel and registers a handler at
// url_path for the supplied methods (default: all nine HTTP methods).
func ConfigureProxy(router *Router, client UpstreamClient, cfg ProxyConfig) (*ProxyDispatcher, error) {
	channel, err := NewUpstreamChannel(cfg.Hosts, cfg.Policy, cfg.Weights)
	if err != nil {
		return nil, err
	}
	methods := cfg.Methods
	if methods == 0 {
		methods = MethodAll
	}
	pd := &ProxyDispatcher{channel: channel, client: client}
	router.Register(methods, cfg.URLPath, pd.handle)
	return pd, nil
}

// handle picks an upstream, forwards the incoming method/body/headers,
// copies the upstream's response headers back, and replies. Headers
// are forwarded both ways rather than dropped, since a reverse proxy
// that silently strips them breaks auth, caching, and cookies for
// anything behind it.
func (pd *ProxyDispatcher) handle(req Request, resp Response) {
	host := pd.channel.Pick()
	targetURL := resolveUpstreamURL(host, req.Path())

	headers := make(http.Header)
	req.ForHeaders(func(name, value string) bool {
		headers.Add(name, value)
		return true
	})

	upResp, err := pd.client.Request(context.Background(), targetURL, req.MethodString(), headers, req.Body())
	if err != nil {
		resp.SetStatus(StatusBadGateway)
		resp.Reply()
		return
	}
	for name, values := range upResp.Headers {
		for _, v := range values {
			resp.AddHeader(name, v)
		}
	}
	resp.SetStatusAndContent(upResp.Status, upResp.Body)
	resp.Reply()
}

// resolveUpstreamURL parses host into a URI to extract any path
// component it already carries, then appends the incoming request's
// path.
func resolveUpstreamURL(host, reqPath string) string {
	raw := host
	if !hasScheme(raw) {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw + reqPath
	}
	base := u.Path
	u.Path = base + reqPath
	return u.String()
}

func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ':':
			return i > 0 && i+2 < len(s) && s[i+1] == '/' && s[i+2] == '/'
		case '/', ' ':
			return false
		}
	}
	return false
}
