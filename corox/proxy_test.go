// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamChannelRoundRobin(t *testing.T) {
	uc, err := NewUpstreamChannel([]string{"a", "b", "c"}, PolicyRoundRobin, nil)
	require.NoError(t, err)

	picks := []string{uc.Pick(), uc.Pick(), uc.Pick(), uc.Pick()}
	assert.Equal(t, []string{"a", "b", "c", "a"}, picks)
}

func TestUpstreamChannelWeightedRoundRobinFavorsHigherWeight(t *testing.T) {
	uc, err := NewUpstreamChannel([]string{"a", "b"}, PolicyWeightedRoundRobin, []int{3, 1})
	require.NoError(t, err)

	counts := map[string]int{}
	for i := 0; i < 8; i++ {
		counts[uc.Pick()]++
	}
	assert.Equal(t, 6, counts["a"])
	assert.Equal(t, 2, counts["b"])
}

func TestUpstreamChannelRejectsMismatchedWeights(t *testing.T) {
	_, err := NewUpstreamChannel([]string{"a", "b"}, PolicyRandom, []int{1})
	assert.Error(t, err)
}

func TestUpstreamChannelRejectsEmptyHosts(t *testing.T) {
	_, err := NewUpstreamChannel(nil, PolicyRandom, nil)
	assert.Error(t, err)
}

func TestResolveUpstreamURL(t *testing.T) {
	assert.Equal(t, "http://10.0.0.1:8080/api/x", resolveUpstreamURL("10.0.0.1:8080", "/api/x"))
	assert.Equal(t, "https://up.example.com/base/x", resolveUpstreamURL("https://up.example.com/base", "/x"))
}

func TestProxyDispatcherForwardsHeadersBothWays(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "corox-test", r.Header.Get("X-From-Client"))
		w.Header().Set("X-From-Upstream", "yes")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("upstream body"))
	}))
	defer upstream.Close()

	router := NewRouter()
	_, err := ConfigureProxy(router, NewHTTPUpstreamClient(), ProxyConfig{
		URLPath: "/proxied",
		Hosts:   []string{upstream.URL},
		Policy:  PolicyRandom,
	})
	require.NoError(t, err)

	handler, registered, allowed := router.Dispatch("/proxied", MethodGET)
	require.True(t, registered)
	require.True(t, allowed)

	req := newFakeRequest("/proxied", map[string]string{"X-From-Client": "corox-test"})
	var buf bytes.Buffer
	resp := newTestResponse(&buf)
	handler(req, resp)
	require.NoError(t, resp.Reply())

	assert.Equal(t, http.StatusCreated, resp.status)
	assert.Contains(t, resp.headerVals, "yes")
	assert.Equal(t, []byte("upstream body"), resp.body)
}

func TestProxyDispatcherReturnsBadGatewayOnUpstreamFailure(t *testing.T) {
	router := NewRouter()
	_, err := ConfigureProxy(router, NewHTTPUpstreamClient(), ProxyConfig{
		URLPath: "/proxied",
		Hosts:   []string{"127.0.0.1:1"}, // nothing listens here
		Policy:  PolicyRandom,
	})
	require.NoError(t, err)

	handler, _, _ := router.Dispatch("/proxied", MethodGET)
	req := newFakeRequest("/proxied", nil)
	var buf bytes.Buffer
	resp := newTestResponse(&buf)
	handler(req, resp)

	assert.Equal(t, StatusBadGateway, resp.status)
}
