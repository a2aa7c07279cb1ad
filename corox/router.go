// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Router collaborator: register(method_set, path, handler);
// dispatch(request) → handler. The real route-matching trie is out of
// scope; this file gives it the simplest implementation that satisfies
// the contract, an exact-path map keyed by method, which is enough for
// the Static and Proxy components to register against.

package corox

import (
	"strings"
)

// Method is one of the nine HTTP methods the reverse proxy's default
// method set enumerates.
type Method uint16

const (
	MethodGET Method = 1 << iota
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodCONNECT
	MethodOPTIONS
	MethodTRACE
	MethodPATCH

	MethodAll = MethodGET | MethodHEAD | MethodPOST | MethodPUT | MethodDELETE |
		MethodCONNECT | MethodOPTIONS | MethodTRACE | MethodPATCH
)

var methodNames = map[string]Method{
	"GET": MethodGET, "HEAD": MethodHEAD, "POST": MethodPOST, "PUT": MethodPUT,
	"DELETE": MethodDELETE, "CONNECT": MethodCONNECT, "OPTIONS": MethodOPTIONS,
	"TRACE": MethodTRACE, "PATCH": MethodPATCH,
}

// ParseMethod maps an HTTP request-line method token to a Method bit,
// returning ok=false for unknown verbs.
func ParseMethod(name string) (Method, bool) {
	m, ok := methodNames[strings.ToUpper(name)]
	return m, ok
}

// Handler receives (request, response) and may run synchronously or
// return before finishing its reply. In Go both shapes are the same
// function type: a handler that needs to keep working after returning
// just does so on a goroutine it spawns itself via req.Connection()'s
// executor.
type Handler func(req Request, resp Response)

// route is one registered (method set, handler) pair for an exact path.
type route struct {
	methods Method
	handler Handler
}

// Router implements the register/dispatch contract with an exact-match
// path table, the stand-in for a real trie.
type Router struct {
	routes map[string]*route
}

// NewRouter constructs an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]*route)}
}

// Register installs handler for methods at path. A later Register call
// for the same path overwrites the earlier one, matching how
// configure_static/configure_proxy each own their own path namespace.
func (r *Router) Register(methods Method, path string, handler Handler) {
	r.routes[path] = &route{methods: methods, handler: handler}
}

// Dispatch resolves path+method to a handler. registered is false when
// no route matches the path (the caller replies 404); methodAllowed is
// false when the path exists but not for this method (the caller
// replies 405, mirroring staticHandlet.Handle's MethodGET|MethodHEAD
// check in the teacher).
func (r *Router) Dispatch(path string, method Method) (handler Handler, registered bool, methodAllowed bool) {
	rt, ok := r.routes[path]
	if !ok {
		return nil, false, false
	}
	return rt.handler, true, rt.methods&method != 0
}
