// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

// AuthResult is what a Validator reports about one Authorization header.
type AuthResult struct {
	Valid   bool
	Scopes  []string
	Subject string
	Message string
}

// Validator checks a bearer token synchronously, called once per HTTP
// request before dispatch. It is the only authentication surface this
// package defines; PKCE/token-exchange flows are external collaborators.
type Validator func(authorizationHeader string) AuthResult

// ResourceMetadataURL, when set on HTTP transport options, is surfaced in
// the WWW-Authenticate header of 401/403 responses so a client can
// discover how to obtain a token.
type AuthOptions struct {
	Validator          Validator
	RequiredScopes     []string
	ResourceMetadataURL string
}

func (o *AuthOptions) wwwAuthenticate(extra string) string {
	h := `Bearer`
	if o != nil && o.ResourceMetadataURL != "" {
		h += ` resource_metadata="` + o.ResourceMetadataURL + `"`
	}
	if extra != "" {
		h += `, ` + extra
	}
	return h
}
