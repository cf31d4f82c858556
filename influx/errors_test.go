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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseErrorServer(t *testing.T) {
	assert := assert.New(t)

	err := responseError("POST", "http://localhost:8086/write", 500,
		[]byte(`{"error": "db not found"}`))

	var serverErr *ServerError
	if assert.True(errors.As(err, &serverErr)) {
		assert.Equal(500, serverErr.Status)
		assert.Equal("db not found", serverErr.Message)
	}
}

func TestResponseErrorClient(t *testing.T) {
	assert := assert.New(t)

	err := responseError("POST", "http://localhost:8086/write", 400,
		[]byte(`{"error": "db not found"}`))

	var clientErr *ClientError
	if assert.True(errors.As(err, &clientErr)) {
		assert.Equal(400, clientErr.Status)
		assert.Equal("db not found", clientErr.Message)
		assert.Equal("POST", clientErr.Method)
		assert.Equal("http://localhost:8086/write", clientErr.URI)
	}
}

func TestResponseErrorIllformedJSON(t *testing.T) {
	assert := assert.New(t)

	err := responseError("GET", "http://localhost:8086/query", 500,
		[]byte(`<html>this is not json</html>`))

	var illformedErr *IllformedJSONError
	if assert.True(errors.As(err, &illformedErr)) {
		assert.Equal(500, illformedErr.Status)
	}
}

func TestResponseErrorEmptyBody(t *testing.T) {
	assert := assert.New(t)

	// Without a body, the status text is all we have
	err := responseError("GET", "http://localhost:8086/query", 500, nil)

	var serverErr *ServerError
	if assert.True(errors.As(err, &serverErr)) {
		assert.Equal("Internal Server Error", serverErr.Message)
	}

	err = responseError("GET", "http://localhost:8086/query", 404, nil)

	var clientErr *ClientError
	if assert.True(errors.As(err, &clientErr)) {
		assert.Equal("Not Found", clientErr.Message)
	}
}

func TestResponseErrorNoErrorMember(t *testing.T) {
	assert := assert.New(t)

	err := responseError("GET", "http://localhost:8086/query", 503,
		[]byte(`{"message": "try later"}`))

	var serverErr *ServerError
	if assert.True(errors.As(err, &serverErr)) {
		assert.Equal("Service Unavailable", serverErr.Message)
	}
}

func TestClampChunkSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1, clampChunkSize(-5))
	assert.Equal(1, clampChunkSize(0))
	assert.Equal(1, clampChunkSize(1))
	assert.Equal(500, clampChunkSize(500))
}
