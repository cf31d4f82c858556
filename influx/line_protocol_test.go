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
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodePoint(t *testing.T) {
	assert := assert.New(t)

	timestamp := time.Now().UTC()

	tests := []struct {
		p    *Point
		line string
	}{
		{NewPoint("m1", Tags{}, Fields{"a": 1}),
			`m1 a=1i`},
		{NewPoint("m2", Tags{}, Fields{"a": 123, "b": true, "c": "foo"}),
			`m2 a=123i,b=true,c="foo"`},
		{NewPoint("m3", Tags{"x": "foo"}, Fields{"a": -1}),
			`m3,x=foo a=-1i`},
		{NewPoint("m4", Tags{"x": "1", "y": "23"}, Fields{"abc": "def"}),
			`m4,x=1,y=23 abc="def"`},
		{NewPoint("m5", Tags{}, Fields{"a": 1.5}),
			`m5 a=1.5`},
		{NewPoint("m6", Tags{}, Fields{"a": uint64(42)}),
			`m6 a=42i`},
		{NewPoint("m7", Tags{}, Fields{"a": false}),
			`m7 a=false`},
		{NewPointWithTimestamp("m8", Tags{}, Fields{"a": 1}, timestamp),
			`m8 a=1i ` + strconv.FormatInt(timestamp.UnixNano(), 10)},
		{NewPoint(" m, 9 ", Tags{"x,y": "a b"}, Fields{"a b": 1}),
			`\ m\,\ 9\ ,x\,y=a\ b a\ b=1i`},
		{NewPoint("m10", Tags{}, Fields{"s": "a b"}),
			`m10 s="a b"`},
		{NewPoint("m11", Tags{}, Fields{"s": `va"l`}),
			`m11 s="va"l"`},
	}

	for _, test := range tests {
		var buf bytes.Buffer

		err := EncodePoint(test.p, PrecisionNanosecond, &buf)
		if assert.NoError(err, test.p.Measurement) {
			assert.Equal(test.line, buf.String(), test.p.Measurement)
		}
	}
}

func TestEncodePointPrecision(t *testing.T) {
	assert := assert.New(t)

	timestamp := time.Unix(1_650_000_000, 499_999_999).UTC()
	p := NewPointWithTimestamp("m", Tags{}, Fields{"a": 1}, timestamp)

	tests := []struct {
		precision Precision
		line      string
	}{
		{PrecisionNanosecond, `m a=1i 1650000000499999999`},
		{PrecisionMicrosecond, `m a=1i 1650000000500000`},
		{PrecisionMillisecond, `m a=1i 1650000000500`},
		{PrecisionSecond, `m a=1i 1650000000`},
	}

	for _, test := range tests {
		var buf bytes.Buffer

		err := EncodePoint(p, test.precision, &buf)
		if assert.NoError(err, string(test.precision)) {
			assert.Equal(test.line, buf.String(), string(test.precision))
		}
	}
}

func TestEncodePointInvalid(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer

	// No field
	err := EncodePoint(NewPoint("m", Tags{}, Fields{}), PrecisionNanosecond,
		&buf)
	assert.Error(err)

	// No measurement
	err = EncodePoint(NewPoint("", Tags{}, Fields{"a": 1}),
		PrecisionNanosecond, &buf)
	assert.Error(err)

	// Null field value
	err = EncodePoint(NewPoint("m", Tags{}, Fields{"a": nil}),
		PrecisionNanosecond, &buf)
	assert.Error(err)

	// RFC3339 timestamps are only valid for queries
	err = EncodePoint(NewPoint("m", Tags{}, Fields{"a": 1}),
		PrecisionRFC3339, &buf)
	assert.ErrorIs(err, ErrRFC3339WritePrecision)
}

func TestEncodePoints(t *testing.T) {
	assert := assert.New(t)

	timestamp := time.Now().UTC()

	tests := []struct {
		ps   Points
		line string
	}{
		{Points{},
			""},
		{Points{
			NewPoint("m1", Tags{}, Fields{"a": 1}),
		},
			"m1 a=1i\n"},
		{Points{
			NewPoint("m1", Tags{}, Fields{"a": 1}),
			NewPoint("m2", Tags{"x": "foo"}, Fields{"a": 1, "b": false}),
		},
			"m1 a=1i\nm2,x=foo a=1i,b=false\n"},
		{Points{
			NewPoint("m1", Tags{}, Fields{"a": 1}),
			NewPoint("m2", Tags{"x": "foo"}, Fields{"a": 1, "b": false}),
			NewPointWithTimestamp("m3", Tags{}, Fields{"a": "n"}, timestamp),
		},
			"m1 a=1i\nm2,x=foo a=1i,b=false\nm3 a=\"n\" " +
				strconv.FormatInt(timestamp.UnixNano(), 10) + "\n"},
	}

	for i, test := range tests {
		var buf bytes.Buffer

		err := EncodePoints(test.ps, PrecisionNanosecond, &buf)
		if assert.NoError(err, i+1) {
			assert.Equal(test.line, buf.String(), i+1)
		}
	}
}

func TestEncodePointRoundTrip(t *testing.T) {
	assert := assert.New(t)

	timestamp := time.Unix(1_650_000_000, 42).UTC()

	p := NewPointWithTimestamp("cpu load",
		Tags{"host": "a b", "dc,zone": "eu,1"},
		Fields{"idle": 12.5, "nb_procs": 8, "ok": true, "state": "up"},
		timestamp)

	var buf bytes.Buffer
	if !assert.NoError(EncodePoint(p, PrecisionNanosecond, &buf)) {
		return
	}

	measurement, tags, fields, ts := splitLine(t, buf.String())

	assert.Equal("cpu load", measurement)
	assert.Equal(map[string]string{"host": "a b", "dc,zone": "eu,1"}, tags)
	assert.Equal(map[string]string{
		"idle":     "12.5",
		"nb_procs": "8i",
		"ok":       "true",
		"state":    `"up"`,
	}, fields)
	assert.Equal(strconv.FormatInt(timestamp.UnixNano(), 10), ts)
}

// splitLine splits an encoded line on unescaped separators and undoes the
// escaping of each element.
func splitLine(t *testing.T, line string) (string, map[string]string, map[string]string, string) {
	t.Helper()

	segments := splitUnescaped(line, ' ')
	if len(segments) != 3 {
		t.Fatalf("invalid line %q", line)
	}

	elements := splitUnescaped(segments[0], ',')

	measurement := unescape(elements[0])

	tags := make(map[string]string)
	for _, element := range elements[1:] {
		kv := splitUnescaped(element, '=')
		tags[unescape(kv[0])] = unescape(kv[1])
	}

	fields := make(map[string]string)
	for _, element := range splitUnescaped(segments[1], ',') {
		kv := splitUnescaped(element, '=')
		fields[unescape(kv[0])] = kv[1]
	}

	return measurement, tags, fields, segments[2]
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	var part []byte

	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			part = append(part, s[i], s[i+1])
			i++

		case s[i] == sep:
			parts = append(parts, string(part))
			part = nil

		default:
			part = append(part, s[i])
		}
	}

	return append(parts, string(part))
}

func unescape(s string) string {
	return strings.NewReplacer(`\,`, ",", `\ `, " ").Replace(s)
}
