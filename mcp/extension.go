// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// ExtensionMethodHandler answers one extension request method.
type ExtensionMethodHandler func(ctx context.Context, params json.RawMessage) (any, error)

// ExtensionNotificationHandler answers one extension notification method.
type ExtensionNotificationHandler func(ctx context.Context, params json.RawMessage)

// extension is one registered namespaced capability.
type extension struct {
	name          string
	version       string
	settings      any
	methods       map[string]ExtensionMethodHandler
	notifications map[string]ExtensionNotificationHandler
}

// extensionRegistry holds every extension registered on a session, mutated
// only at setup time (registration is not expected at steady-state
// runtime, so a simple mutex suffices).
type extensionRegistry struct {
	mu   sync.Mutex
	byNS map[string]*extension
}

func newExtensionRegistry() *extensionRegistry {
	return &extensionRegistry{byNS: make(map[string]*extension)}
}

// register adds an extension. name must contain a "/" (namespace/method
// form); methods and notifications are keyed by their bare method name
// within the namespace.
func (r *extensionRegistry) register(name, version string, settings any, methods map[string]ExtensionMethodHandler, notifications map[string]ExtensionNotificationHandler) error {
	if !strings.Contains(name, "/") {
		return fmt.Errorf("mcp: extension name %q must contain '/'", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byNS[name] = &extension{
		name:          name,
		version:       version,
		settings:      settings,
		methods:       methods,
		notifications: notifications,
	}
	return nil
}

// experimentalCapabilities returns the capabilities.experimental map
// surfaced to a peer.
func (r *extensionRegistry) experimentalCapabilities() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.byNS) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.byNS))
	for name, ext := range r.byNS {
		out[name] = map[string]any{"version": ext.version, "settings": ext.settings}
	}
	return out
}

// method looks up a registered extension method by its fully-qualified
// "namespace/method" name. Method names are assumed globally unique, so a
// linear scan over namespaces is acceptable.
func (r *extensionRegistry) method(fullName string) (ExtensionMethodHandler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ns, ext := range r.byNS {
		if !strings.HasPrefix(fullName, ns+"/") {
			continue
		}
		if h, ok := ext.methods[strings.TrimPrefix(fullName, ns+"/")]; ok {
			return h, true
		}
	}
	return nil, false
}

func (r *extensionRegistry) notification(fullName string) (ExtensionNotificationHandler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ns, ext := range r.byNS {
		if !strings.HasPrefix(fullName, ns+"/") {
			continue
		}
		if h, ok := ext.notifications[strings.TrimPrefix(fullName, ns+"/")]; ok {
			return h, true
		}
	}
	return nil, false
}

// negotiated returns the intersection of the peer's advertised
// experimental namespace set with the locally registered set.
func (r *extensionRegistry) negotiated(peerExperimental map[string]any) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for name := range r.byNS {
		if _, ok := peerExperimental[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
