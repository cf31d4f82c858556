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
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/exograd/go-influx/check"
)

// QueryParams overrides the client configuration for a single query. A zero
// ChunkSize lets the server choose its own chunk size; any other value below
// one is clamped up to one.
type QueryParams struct {
	Database  string
	Precision Precision
	ChunkSize int
}

func (params *QueryParams) Check(c *check.Checker) {
	if params.Precision != "" {
		c.CheckStringValue("precision", string(params.Precision),
			PrecisionValues)
	}
}

// Query executes a query and returns the decoded response.
func (c *Client) Query(q string) (*Response, error) {
	return c.QueryWithParams(q, QueryParams{})
}

func (c *Client) QueryWithParams(q string, params QueryParams) (*Response, error) {
	uri := c.queryURI(q, params, false)

	res, err := c.httpClient.SendRequest("GET", uri, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot send request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, responseError("GET", uri.String(), res.StatusCode, body)
	}

	response, err := decodeResponseBody(body, res.StatusCode)
	if err != nil {
		return nil, err
	}

	if response.Err != "" {
		return nil, &InternalError{
			Message: fmt.Sprintf("response contains error %q despite "+
				"status %d", response.Err, res.StatusCode),
		}
	}

	return response, nil
}

// QueryRows executes a query and parses every row of the response with the
// parser.
func (c *Client) QueryRows(q string, parser RowParser) ([]interface{}, error) {
	return c.QueryRowsWithParams(q, QueryParams{}, parser)
}

func (c *Client) QueryRowsWithParams(q string, params QueryParams, parser RowParser) ([]interface{}, error) {
	res, err := c.QueryWithParams(q, params)
	if err != nil {
		return nil, err
	}

	if err := res.Error(); err != nil {
		return nil, err
	}

	return res.Rows(parser)
}

// QueryChunked executes a query in chunked mode: the server streams the
// response as a sequence of partial result objects, each one being parsed
// into a batch of rows and folded into the accumulator. Memory usage is
// bound by the chunk size instead of the full result set.
func (c *Client) QueryChunked(q string, parser RowParser, acc Accumulator) error {
	return c.QueryChunkedWithParams(q, QueryParams{}, parser, acc)
}

func (c *Client) QueryChunkedWithParams(q string, params QueryParams, parser RowParser, acc Accumulator) error {
	uri := c.queryURI(q, params, true)

	res, err := c.httpClient.SendRequest("GET", uri, nil, nil)
	if err != nil {
		return fmt.Errorf("cannot send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("cannot read response body: %w", err)
		}

		return responseError("GET", uri.String(), res.StatusCode, body)
	}

	return decodeChunkedResponses(res.Body, parser, acc)
}

func (c *Client) queryURI(q string, params QueryParams, chunked bool) *url.URL {
	database := params.Database
	if database == "" {
		database = c.Cfg.Database
	}

	precision := params.Precision
	if precision == "" {
		precision = c.precision
	}

	uri := *c.baseURI
	uri.Path = "/query"

	query := url.Values{}
	query.Set("q", q)
	query.Set("db", database)

	if code := precision.EpochCode(); code != "" {
		query.Set("epoch", code)
	}

	if chunked {
		if params.ChunkSize == 0 {
			query.Set("chunked", "true")
		} else {
			query.Set("chunked", strconv.Itoa(clampChunkSize(params.ChunkSize)))
		}
	}

	if username, password, found := c.credentials(); found {
		query.Set("u", username)
		query.Set("p", password)
	}

	uri.RawQuery = query.Encode()

	return &uri
}

// clampChunkSize makes sure a caller-specified chunk size is always at least
// one before being sent to the server.
func clampChunkSize(n int) int {
	if n < 1 {
		return 1
	}

	return n
}
