// SPDX-License-Identifier: Apache-2.0

// Package connstr manipulates Postgres connection strings in URL format.
package connstr

import (
	"fmt"
	"net/url"
	"strings"
)

// AppendSearchPathOption returns connStr with its options query parameter
// set so that the opened connection's search_path resolves to schema. An
// empty schema leaves the connection string untouched.
func AppendSearchPathOption(connStr, schema string) (string, error) {
	if schema == "" {
		return connStr, nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("parsing connection string: %w", err)
	}

	q := u.Query()
	q.Set("options", fmt.Sprintf("-c search_path=%s", schema))

	// url.Values encodes spaces inside the options value as '+', which the
	// server-side options parser does not decode.
	u.RawQuery = strings.ReplaceAll(q.Encode(), "+", "%20")

	return u.String(), nil
}
