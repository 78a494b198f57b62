// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

// RedactPassword hides a non-empty password.
func RedactPassword(s string) string {
	if s == "" {
		return ""
	}
	return "xxxxx"
}
