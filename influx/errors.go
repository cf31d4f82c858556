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
	"net/http"

	"github.com/exograd/go-influx/djson"
)

// ServerError is a 5xx response. The request may succeed if retried later;
// the library itself never retries.
type ServerError struct {
	Status  int
	Message string
}

func (err *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", err.Status, err.Message)
}

// ClientError is a 4xx response, i.e. a mistake on the caller side. The
// method and URI of the request are kept for diagnostics.
type ClientError struct {
	Status  int
	Message string

	Method string
	URI    string
}

func (err *ClientError) Error() string {
	return fmt.Sprintf("client error (status %d) for %s %s: %s",
		err.Status, err.Method, err.URI, err.Message)
}

// IllformedJSONError is a response body which is not valid JSON.
type IllformedJSONError struct {
	Status int
	Body   []byte
	Err    error
}

func (err *IllformedJSONError) Error() string {
	return fmt.Sprintf("invalid json response body: %v", err.Err)
}

func (err *IllformedJSONError) Unwrap() error {
	return err.Err
}

// UnexpectedResponseError is a response which was decoded as JSON but whose
// shape does not match the query response schema.
type UnexpectedResponseError struct {
	Message string
}

func NewUnexpectedResponseError(format string, args ...interface{}) *UnexpectedResponseError {
	return &UnexpectedResponseError{
		Message: fmt.Sprintf(format, args...),
	}
}

func (err *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response: %s", err.Message)
}

// InternalError signals a violation of the protocol invariants shared by the
// library and the server, e.g. a success status carrying an error payload.
// It indicates a bug somewhere, not a normal failure.
type InternalError struct {
	Message string
}

func (err *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", err.Message)
}

// responseError classifies a response carrying a non-2xx status. An empty
// body or a body without an error member yields the standard status text as
// the message; a body which is not valid JSON is an error of its own.
func responseError(method, uri string, status int, body []byte) error {
	var msg string

	if len(body) > 0 {
		value, err := djson.Decode(body)
		if err != nil {
			return &IllformedJSONError{Status: status, Body: body, Err: err}
		}

		if djson.IsObject(value) {
			obj := djson.AsObject(value)

			if errValue, found := obj["error"]; found && djson.IsString(errValue) {
				msg = djson.AsString(errValue)
			}
		}
	}

	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status >= 500:
		return &ServerError{Status: status, Message: msg}

	case status >= 400:
		return &ClientError{Status: status, Message: msg,
			Method: method, URI: uri}

	default:
		return &InternalError{
			Message: fmt.Sprintf("unhandled response status %d", status),
		}
	}
}
