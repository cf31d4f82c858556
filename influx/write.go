// Copyright (c) 2022 Exograd SAS.
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that the above
// copyright notice and this permission notice appear in all copies.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
// ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR
// IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.

package influx

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/exograd/go-influx/check"
)

// WriteParams overrides the client configuration for a single write. Zero
// fields fall back to the client settings.
type WriteParams struct {
	Database        string
	RetentionPolicy string
	Precision       Precision
}

func (params *WriteParams) Check(c *check.Checker) {
	if params.Precision != "" {
		c.CheckStringValue("precision", string(params.Precision),
			PrecisionValues)
		c.Check("precision", params.Precision != PrecisionRFC3339,
			"rfc3339 timestamps cannot be used to write points")
	}
}

// Write validates points and writes them synchronously.
func (c *Client) Write(points Points) error {
	return c.WriteWithParams(points, WriteParams{})
}

func (c *Client) WriteWithParams(points Points, params WriteParams) error {
	database := params.Database
	if database == "" {
		database = c.Cfg.Database
	}

	precision := params.Precision
	if precision == "" {
		precision = c.precision
	}

	if precision == PrecisionRFC3339 {
		return ErrRFC3339WritePrecision
	}

	if err := points.Validate(); err != nil {
		return fmt.Errorf("invalid points: %w", err)
	}

	var body bytes.Buffer
	if err := EncodePoints(points, precision, &body); err != nil {
		return fmt.Errorf("cannot encode points: %w", err)
	}

	uri := *c.baseURI
	uri.Path = "/write"

	query := url.Values{}
	query.Set("db", database)

	if params.RetentionPolicy != "" {
		query.Set("rp", params.RetentionPolicy)
	}

	if username, password, found := c.credentials(); found {
		query.Set("u", username)
		query.Set("p", password)
	}

	uri.RawQuery = query.Encode()

	res, err := c.httpClient.SendRequest("POST", &uri, nil, &body)
	if err != nil {
		return fmt.Errorf("cannot send request: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("cannot read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return responseError("POST", uri.String(), res.StatusCode, resBody)
	}

	return nil
}
