// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authproxy

import (
	"encoding/base64"
	"log/slog"
)

const redacted = "[redacted]"

// Credential is the Basic authentication token for the upstream proxy.
// It is computed once and formats as redacted in logs.
type Credential struct {
	token string
}

// NewCredential encodes user:password, empty values produce a valid token.
func NewCredential(user, password string) Credential {
	return Credential{
		token: base64.StdEncoding.EncodeToString([]byte(user + ":" + password)),
	}
}

// Token returns the base64 encoded user:password.
func (c Credential) Token() string {
	return c.token
}

// HeaderValue returns the Proxy-Authorization header value.
func (c Credential) HeaderValue() string {
	return "Basic " + c.token
}

func (c Credential) String() string {
	return "Basic " + redacted
}

func (c Credential) GoString() string {
	return c.String()
}

func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}
