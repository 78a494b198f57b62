// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package authproxy provides a forward proxy that relays every client request
// to a single upstream proxy with a Proxy-Authorization header added.
// CONNECT requests are tunneled byte for byte, other requests are forwarded
// verbatim apart from the injected header.
// Clients that cannot authenticate to a proxy, or cannot be configured to,
// use authproxy as their proxy instead.
package authproxy
